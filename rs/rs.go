// Package rs implements the systematic Reed-Solomon codec the container uses
// for optional forward error correction: EncodeChunked appends parity symbols
// to each data chunk, DecodeChunked detects and corrects up to nsym/2 symbol
// errors per chunk via Berlekamp-Massey, Chien search and the Forney
// algorithm, and Unecc strips parity without attempting correction. The field is GF(2^8)
// under the irreducible polynomial 0x11D with generator 2 and first
// consecutive root (fcr) 0, matching the container's ECC parameters.
package rs

import "github.com/pkg/errors"

// ErrUncorrectable is returned by decode when a chunk carries more errors
// than its parity can correct.
var ErrUncorrectable = errors.New("rs: block uncorrectable")

const generator = 2

// generatorPoly returns g(x) = Π_{i=0}^{nsym-1} (x - generator^i), the
// degree-nsym polynomial whose roots are generator^0 .. generator^(nsym-1).
func generatorPoly(nsym int) []byte {
	g := []byte{1}
	for i := 0; i < nsym; i++ {
		g = polyMul(g, []byte{1, gfPow(generator, i)})
	}
	return g
}

// Encode appends nsym Reed-Solomon parity bytes to data via systematic
// polynomial division (an LFSR running the generator polynomial), leaving
// the original data bytes untouched.
func Encode(data []byte, nsym int) []byte {
	gen := generatorPoly(nsym)
	out := make([]byte, len(data)+nsym)
	copy(out, data)
	for i := 0; i < len(data); i++ {
		coef := out[i]
		if coef == 0 {
			continue
		}
		for j := 1; j < len(gen); j++ {
			out[i+j] ^= gfMul(gen[j], coef)
		}
	}
	copy(out[:len(data)], data)
	return out
}

// syndromes evaluates block at generator^0 .. generator^(nsym-1), returning
// one syndrome per root. All zero means the block (as received) is a valid
// codeword.
func syndromes(block []byte, nsym int) []byte {
	s := make([]byte, nsym)
	for i := 0; i < nsym; i++ {
		s[i] = polyEval(block, gfPow(generator, i))
	}
	return s
}

func syndromesAllZero(s []byte) bool {
	for _, v := range s {
		if v != 0 {
			return false
		}
	}
	return true
}

// findErrorLocator runs Berlekamp-Massey over the syndromes to find the
// error locator polynomial Lambda(x). Its degree is the number of errors;
// more than nsym/2 errors is detected here as uncorrectable.
func findErrorLocator(synd []byte, nsym int) ([]byte, error) {
	errLoc := []byte{1}
	oldLoc := []byte{1}
	for i := 0; i < nsym; i++ {
		delta := synd[i]
		for j := 1; j < len(errLoc); j++ {
			delta ^= gfMul(errLoc[len(errLoc)-1-j], synd[i-j])
		}
		oldLoc = append(oldLoc, 0)
		if delta != 0 {
			if len(oldLoc) > len(errLoc) {
				newLoc := polyScale(oldLoc, delta)
				oldLoc = polyScale(errLoc, gfInverse(delta))
				errLoc = newLoc
			}
			errLoc = polyAdd(errLoc, polyScale(oldLoc, delta))
		}
	}
	for len(errLoc) > 0 && errLoc[0] == 0 {
		errLoc = errLoc[1:]
	}
	errs := len(errLoc) - 1
	if errs*2 > nsym {
		return nil, ErrUncorrectable
	}
	return errLoc, nil
}

// findErrorPositions runs a Chien search over every position of a block of
// length n, returning the (big-endian, index-0-highest-degree) positions
// whose locator X = generator^(n-1-pos) has its inverse as a root of errLoc.
func findErrorPositions(errLoc []byte, n int) []int {
	var pos []int
	for i := 0; i < n; i++ {
		if polyEval(errLoc, gfPow(generator, -i)) == 0 {
			pos = append(pos, n-1-i)
		}
	}
	return pos
}

// correctErrors applies the Forney algorithm to compute and apply the error
// magnitude at each position found by the Chien search, then re-checks the
// syndromes to confirm the correction is complete.
func correctErrors(block, synd, errLoc []byte, errPos []int, nsym int) error {
	if len(errPos) != len(errLoc)-1 {
		return ErrUncorrectable
	}
	if len(errPos) == 0 {
		return nil
	}

	// Omega(x) = [Synd(x) * Lambda(x)] mod x^nsym, both ascending-order
	// (synd is already ascending: synd[i] is the coefficient of x^i).
	omega := polyMul(synd, reversePoly(errLoc))
	if len(omega) > nsym {
		omega = omega[:nsym]
	}

	// Lambda'(x): formal derivative of the ascending-order locator; in
	// characteristic 2 only odd-degree terms survive, so lambdaPrime holds
	// the coefficients of a polynomial in x^2.
	lambdaAsc := reversePoly(errLoc)
	var lambdaPrime []byte
	for i := 1; i < len(lambdaAsc); i += 2 {
		lambdaPrime = append(lambdaPrime, lambdaAsc[i])
	}

	n := len(block)
	for _, pos := range errPos {
		i := n - 1 - pos
		xkInv := gfPow(generator, -i)
		xk := gfInverse(xkInv)

		omegaVal := polyEvalAscending(omega, xkInv)
		lambdaPrimeVal := polyEvalAscending(lambdaPrime, gfMul(xkInv, xkInv))
		if lambdaPrimeVal == 0 {
			return ErrUncorrectable
		}
		magnitude := gfMul(xk, gfDiv(omegaVal, lambdaPrimeVal))
		block[pos] ^= magnitude
	}

	if !syndromesAllZero(syndromes(block, nsym)) {
		return ErrUncorrectable
	}
	return nil
}

func reversePoly(p []byte) []byte {
	r := make([]byte, len(p))
	for i, c := range p {
		r[len(p)-1-i] = c
	}
	return r
}

func polyEvalAscending(p []byte, x byte) byte {
	var y byte
	for i := len(p) - 1; i >= 0; i-- {
		y = gfMul(y, x) ^ p[i]
	}
	return y
}

// decodeBlock corrects a single dataLen+nsym byte block in place and
// returns the leading dataLen data bytes.
func decodeBlock(block []byte, dataLen, nsym int) ([]byte, error) {
	synd := syndromes(block, nsym)
	if !syndromesAllZero(synd) {
		errLoc, err := findErrorLocator(synd, nsym)
		if err != nil {
			return nil, err
		}
		errPos := findErrorPositions(errLoc, len(block))
		if err := correctErrors(block, synd, errLoc, errPos, nsym); err != nil {
			return nil, err
		}
	}
	return block[:dataLen], nil
}

// EncodeChunked splits data into dlen-byte chunks (the final chunk may be
// shorter), appends nsym parity bytes to each, and concatenates the result.
func EncodeChunked(data []byte, dlen, nsym int) []byte {
	out := make([]byte, 0, len(data)+nsym*((len(data)+dlen-1)/dlen+1))
	for len(data) > 0 {
		n := dlen
		if n > len(data) {
			n = len(data)
		}
		out = append(out, Encode(data[:n], nsym)...)
		data = data[n:]
	}
	return out
}

// DecodeChunked splits data into (dlen+nsym)-byte blocks, corrects each via
// Reed-Solomon and strips its parity; a shorter final block carries fewer
// data bytes followed by the same nsym parity bytes. A block that cannot be
// corrected is replaced by as many zero bytes as it carried data (dlen for a
// full block) rather than aborting the whole stream, so a single bad block
// does not take out its neighbours.
func DecodeChunked(data []byte, dlen, nsym int) []byte {
	blockSz := dlen + nsym
	out := make([]byte, 0, len(data))
	for len(data) > 0 {
		n := blockSz
		if n > len(data) {
			n = len(data)
		}
		block := append([]byte(nil), data[:n]...)
		data = data[n:]

		dataLen := dlen
		if len(block) < blockSz {
			dataLen = len(block) - nsym
			if dataLen <= 0 {
				continue
			}
		}
		stripped, err := decodeBlock(block, dataLen, nsym)
		if err != nil {
			out = append(out, make([]byte, dataLen)...)
			continue
		}
		out = append(out, stripped...)
	}
	return out
}

// Unecc splits data into (dlen+nsym)-byte blocks and strips the parity
// bytes from each without attempting correction.
func Unecc(data []byte, dlen, nsym int) []byte {
	blockSz := dlen + nsym
	out := make([]byte, 0, len(data))
	for len(data) > 0 {
		n := blockSz
		if n > len(data) {
			n = len(data)
		}
		block := data[:n]
		data = data[n:]
		dataLen := dlen
		if len(block) < blockSz {
			dataLen = len(block) - nsym
			if dataLen < 0 {
				dataLen = 0
			}
		}
		out = append(out, block[:dataLen]...)
	}
	return out
}
