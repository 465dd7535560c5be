package filter

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// Truncate is the kernel half-width in standard deviations.
const Truncate = 4.0

const (
	// Signals at least this long convolved with kernels at least this wide
	// go through the FFT path.
	fftMinSignal = 2048
	fftMinKernel = 64
)

// ErrInvalidSigma is returned by GaussianKernel for a non-positive sigma.
var ErrInvalidSigma = errors.New("filter: sigma must be positive")

// GaussianKernel returns the normalized Gaussian weights for the given
// standard deviation, truncated at Truncate*sigma. The kernel has odd
// length 2*radius+1 with radius = int(Truncate*sigma + 0.5).
func GaussianKernel(sigma float64) ([]float64, error) {
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidSigma, sigma)
	}

	radius := int(Truncate*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)
	denom := -0.5 / (sigma * sigma)
	for i := range kernel {
		x := float64(i - radius)
		kernel[i] = math.Exp(denom * x * x)
	}

	sum := floats.Sum(kernel)
	floats.Scale(1/sum, kernel)
	return kernel, nil
}

// Gaussian smooths in with a Gaussian kernel of standard deviation sigma,
// measured in samples. Edges are handled by reflection about the outer
// sample edge (d c b a | a b c d | d c b a). The result has the same length
// as in, and in is left untouched.
//
// A non-positive sigma or an empty input returns an unmodified copy.
func Gaussian(in []float64, sigma float64) []float64 {
	out := make([]float64, len(in))
	copy(out, in)

	kernel, err := GaussianKernel(sigma)
	if err != nil || len(in) == 0 {
		return out
	}

	ext := reflectPad(in, len(kernel)/2)

	if len(in) >= fftMinSignal && len(kernel) >= fftMinKernel {
		res, err := convolveFFT(ext, kernel, len(in))
		if err == nil {
			return res
		}
		log.WithError(err).Warn("FFT smoothing failed, using direct convolution")
	}

	convolveDirect(out, ext, kernel)
	return out
}

// reflectPad extends x by radius samples on both sides using reflect
// boundary handling. Radii longer than x wrap around repeatedly.
func reflectPad(x []float64, radius int) []float64 {
	n := len(x)
	ext := make([]float64, n+2*radius)
	for i := range ext {
		ext[i] = x[reflectIndex(i-radius, n)]
	}
	return ext
}

func reflectIndex(i, n int) int {
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}

// convolveDirect writes dst[i] = sum_j ext[i+j]*kernel[j]. The kernel is
// symmetric, so correlation and convolution coincide.
func convolveDirect(dst, ext, kernel []float64) {
	m := len(kernel)
	scratch := make([]float64, m)
	for i := range dst {
		vecmath.MulBlock(scratch, ext[i:i+m], kernel)
		dst[i] = floats.Sum(scratch)
	}
}

// convolveFFT computes the same result as convolveDirect via one
// zero-padded FFT, keeping the n fully overlapped output samples.
func convolveFFT(ext, kernel []float64, n int) ([]float64, error) {
	m := len(kernel)
	fullLen := len(ext) + m - 1
	fftSize := nextPowerOf2(fullLen)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("filter: failed to create FFT plan: %w", err)
	}

	sig := make([]complex128, fftSize)
	for i, v := range ext {
		sig[i] = complex(v, 0)
	}
	ker := make([]complex128, fftSize)
	for i, v := range kernel {
		ker[i] = complex(v, 0)
	}

	if err := plan.Forward(sig, sig); err != nil {
		return nil, fmt.Errorf("filter: forward FFT failed: %w", err)
	}
	if err := plan.Forward(ker, ker); err != nil {
		return nil, fmt.Errorf("filter: kernel FFT failed: %w", err)
	}
	for i := range sig {
		sig[i] *= ker[i]
	}
	if err := plan.Inverse(sig, sig); err != nil {
		return nil, fmt.Errorf("filter: inverse FFT failed: %w", err)
	}

	// Full convolution index m-1 lines up with input sample 0.
	out := make([]float64, n)
	for i := range out {
		out[i] = real(sig[i+m-1])
	}
	return out, nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
