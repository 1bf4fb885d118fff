package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitudes of the first n/2 bins of the
// discrete Fourier transform of data. Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	spec := fft.FFTReal(data)
	ps := make([]float64, len(spec)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// Frequencies returns the frequency of each PowerSpectrum bin for n
// samples spaced dt apart.
func Frequencies(n int, dt float64) []float64 {
	out := make([]float64, n/2)
	for k := range out {
		out[k] = float64(k) / (float64(n) * dt)
	}
	return out
}

// DominantFrequency is the frequency of the largest non-constant bin, or 0
// for fewer than four samples.
func DominantFrequency(data []float64, dt float64) float64 {
	if len(data) < 4 {
		return 0
	}
	ps := PowerSpectrum(data)
	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	return Frequencies(len(data), dt)[best]
}
