package audio

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// framePitch estimates the fundamental frequency of one frame from its
// autocorrelation, computed as the inverse transform of the power spectrum.
// ok is false for unvoiced or silent frames.
func framePitch(fft *fourier.FFT, fr []float64, sr float64) (hz float64, ok bool) {
	n := fft.Len()
	padded := make([]float64, n)
	copy(padded, fr)

	coeffs := fft.Coefficients(nil, padded)
	for i, c := range coeffs {
		coeffs[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}
	r := fft.Sequence(nil, coeffs)
	if r[0] <= 0 {
		return 0, false
	}

	minLag := int(math.Floor(sr / maxPitchHz))
	maxLag := int(math.Ceil(sr / minPitchHz))
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(fr) {
		maxLag = len(fr) - 1
	}

	best, bestCorr := 0, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		corr := r[lag] / r[0]
		if corr > bestCorr {
			best, bestCorr = lag, corr
		}
	}
	if best == 0 || bestCorr < voicedCorr {
		return 0, false
	}
	return sr / float64(best), true
}

func newAutocorrFFT() *fourier.FFT {
	return fourier.NewFFT(2 * FrameSize)
}
