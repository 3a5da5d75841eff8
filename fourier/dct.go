// Package fourier implements the per-profile transform and quantisation
// kernels: Profile 0's lossless spectral coding, Profile 1's lossy
// perceptual coding, and Profile 4's raw passthrough. All three share the
// same DCT-II/III engine defined in this file.
package fourier

import "math"

// DCT computes the unnormalised DCT-II of x:
//
//	X[k] = 2 * sum_{n=0}^{N-1} x[n] * cos(pi*k*(2n+1)/(2N))
func DCT(x []float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	scale := math.Pi / (2 * float64(n))
	for k := 0; k < n; k++ {
		var sum float64
		for i, xi := range x {
			sum += xi * math.Cos(scale*float64(k)*float64(2*i+1))
		}
		out[k] = 2 * sum
	}
	return out
}

// IDCT computes the inverse of DCT (a DCT-III), the exact companion that
// satisfies IDCT(DCT(x)) = x:
//
//	x[n] = (1/(2N))*X[0] + (1/N) * sum_{k=1}^{N-1} X[k] * cos(pi*k*(2n+1)/(2N))
func IDCT(X []float64) []float64 {
	n := len(X)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	scale := math.Pi / (2 * float64(n))
	invN := 1 / (2 * float64(n))
	for i := 0; i < n; i++ {
		sum := X[0]
		for k := 1; k < n; k++ {
			sum += 2 * X[k] * math.Cos(scale*float64(k)*float64(2*i+1))
		}
		out[i] = sum * invN
	}
	return out
}
