package rs

// GF(2^8) arithmetic over the field defined by the irreducible polynomial
// 0x11D (x^8 + x^4 + x^3 + x^2 + 1), with generator (primitive element) 2.

const (
	primPoly  = 0x11D
	fieldSize = 255
)

var expTable [fieldSize * 2]byte
var logTable [256]byte

func init() {
	x := byte(1)
	for i := 0; i < fieldSize; i++ {
		expTable[i] = x
		logTable[x] = byte(i)
		x = gfMulNoLUT(x, 2)
	}
	for i := fieldSize; i < len(expTable); i++ {
		expTable[i] = expTable[i-fieldSize]
	}
}

// gfMulNoLUT multiplies two GF(2^8) elements by carry-less multiplication
// followed by reduction modulo primPoly. Used only to build the log/exp
// tables above; everything else uses the tables.
func gfMulNoLUT(a, b byte) byte {
	var p byte
	for b > 0 {
		if b&1 != 0 {
			p ^= a
		}
		hiBitSet := a & 0x80
		a <<= 1
		if hiBitSet != 0 {
			a ^= byte(primPoly & 0xFF)
		}
		b >>= 1
	}
	return p
}

func gfMul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return expTable[int(logTable[a])+int(logTable[b])]
}

func gfDiv(a, b byte) byte {
	if a == 0 {
		return 0
	}
	return expTable[(int(logTable[a])-int(logTable[b])+fieldSize)%fieldSize]
}

// gfPow raises a to the given (possibly negative) power.
func gfPow(a byte, power int) byte {
	if a == 0 {
		if power == 0 {
			return 1
		}
		return 0
	}
	e := (int(logTable[a]) * power) % fieldSize
	if e < 0 {
		e += fieldSize
	}
	return expTable[e]
}

func gfInverse(a byte) byte {
	return expTable[fieldSize-int(logTable[a])]
}

// polyMul returns the product of two polynomials, each represented with
// index 0 as the highest-degree coefficient (matching on-wire byte order).
func polyMul(p, q []byte) []byte {
	r := make([]byte, len(p)+len(q)-1)
	for j := range q {
		if q[j] == 0 {
			continue
		}
		for i := range p {
			r[i+j] ^= gfMul(p[i], q[j])
		}
	}
	return r
}

// polyScale multiplies every coefficient of p by x.
func polyScale(p []byte, x byte) []byte {
	r := make([]byte, len(p))
	for i, c := range p {
		r[i] = gfMul(c, x)
	}
	return r
}

// polyAdd adds (XORs) two polynomials, aligning them at the lowest-degree
// (last) coefficient.
func polyAdd(p, q []byte) []byte {
	n := len(p)
	if len(q) > n {
		n = len(q)
	}
	r := make([]byte, n)
	copy(r[n-len(p):], p)
	for i, c := range q {
		r[n-len(q)+i] ^= c
	}
	return r
}

// polyEval evaluates a polynomial (index 0 = highest degree) at x using
// Horner's method.
func polyEval(p []byte, x byte) byte {
	y := p[0]
	for i := 1; i < len(p); i++ {
		y = gfMul(y, x) ^ p[i]
	}
	return y
}
