package audio

import (
	"context"
	"errors"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	FrameSize = 2048
	HopSize   = 512
	NumMFCC   = 13
	NumMel    = 40

	minPitchHz   = 65.41   // C2
	maxPitchHz   = 2093.00 // C7
	voicedCorr   = 0.3
	rolloffRatio = 0.85

	// DefaultTempo is reported when no beat can be tracked
	DefaultTempo = 120.0
)

var ErrSilent = errors.New("audio is silent")

// Features summarizes a waveform for sentiment and scoring
type Features struct {
	Duration   float64 // seconds
	SampleRate int

	Energy         float64 // mean frame rms
	EnergyVariance float64
	EnergyStd      float64

	ZeroCrossingRate float64 // mean per frame
	SpectralCentroid float64 // mean, Hz
	SpectralRolloff  float64 // mean, Hz

	MFCCMeans    [NumMFCC]float64
	MFCCVariance float64 // over all coefficients and frames

	PitchVariance float64 // over voiced frames, Hz^2
	PitchStd      float64

	Tempo      float64 // bpm
	SpeechRate float64 // onsets per second
	SNR        float64 // dB
}

// Extract computes Features from a signal. Long inputs check ctx between
// frames so a request timeout stops the work early.
func Extract(ctx context.Context, sig *Signal) (*Features, error) {
	if sig == nil || len(sig.Samples) == 0 || sig.SampleRate <= 0 {
		return nil, ErrEmpty
	}
	if peak(sig.Samples) == 0 {
		return nil, ErrSilent
	}

	f := &Features{Duration: sig.Duration(), SampleRate: sig.SampleRate}

	snr, err := signalToNoise(sig.Samples)
	if err != nil {
		return nil, err
	}
	f.SNR = snr

	frames := frame(sig.Samples)
	sr := float64(sig.SampleRate)

	spec := fourier.NewFFT(FrameSize)
	acf := newAutocorrFFT()
	bank := melFilterBank(NumMel, FrameSize, sr)
	window := hann(FrameSize)

	rms := make([]float64, len(frames))
	zcr := make([]float64, len(frames))
	centroid := make([]float64, len(frames))
	rolloff := make([]float64, len(frames))
	melDB := make([][]float64, len(frames))
	mfcc := make([][]float64, len(frames))
	var pitches []float64

	windowed := make([]float64, FrameSize)
	coeffs := make([]complex128, FrameSize/2+1)
	for i, fr := range frames {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		rms[i] = frameRMS(fr)
		zcr[i] = zeroCrossings(fr)

		for j := range fr {
			windowed[j] = fr[j] * window[j]
		}
		coeffs = spec.Coefficients(coeffs, windowed)
		mag := make([]float64, len(coeffs))
		power := make([]float64, len(coeffs))
		for j, c := range coeffs {
			m := math.Hypot(real(c), imag(c))
			mag[j] = m
			power[j] = m * m
		}
		centroid[i], rolloff[i] = spectralShape(mag, sr)

		melDB[i] = powerToDB(applyFilterBank(bank, power))
		mfcc[i] = dct(melDB[i], NumMFCC)

		if p, ok := framePitch(acf, fr, sr); ok {
			pitches = append(pitches, p)
		}
	}

	if f.Energy, err = stats.Mean(rms); err != nil {
		return nil, err
	}
	if f.EnergyVariance, err = stats.Variance(rms); err != nil {
		return nil, err
	}
	if f.EnergyStd, err = stats.StandardDeviation(rms); err != nil {
		return nil, err
	}
	f.ZeroCrossingRate, _ = stats.Mean(zcr)
	f.SpectralCentroid, _ = stats.Mean(centroid)
	f.SpectralRolloff, _ = stats.Mean(rolloff)

	flat := make([]float64, 0, len(mfcc)*NumMFCC)
	for k := 0; k < NumMFCC; k++ {
		col := make([]float64, len(mfcc))
		for i := range mfcc {
			col[i] = mfcc[i][k]
		}
		f.MFCCMeans[k], _ = stats.Mean(col)
		flat = append(flat, col...)
	}
	f.MFCCVariance, _ = stats.Variance(flat)

	if len(pitches) > 1 {
		f.PitchVariance, _ = stats.Variance(pitches)
		f.PitchStd, _ = stats.StandardDeviation(pitches)
	}

	env := onsetEnvelope(melDB)
	onsets := pickOnsets(env, sr)
	if f.Duration > 0 {
		f.SpeechRate = float64(len(onsets)) / f.Duration
	}
	f.Tempo = estimateTempo(env, sr)

	return f, nil
}

func peak(samples []float64) float64 {
	var p float64
	for _, s := range samples {
		if a := math.Abs(s); a > p {
			p = a
		}
	}
	return p
}

// signalToNoise compares the mean magnitude above and below the signal mean
func signalToNoise(samples []float64) (float64, error) {
	mean, err := stats.Mean(samples)
	if err != nil {
		return 0, err
	}
	var above, below []float64
	for _, s := range samples {
		switch {
		case s > mean:
			above = append(above, math.Abs(s))
		case s < mean:
			below = append(below, math.Abs(s))
		}
	}
	if len(above) == 0 || len(below) == 0 {
		return 0, ErrSilent
	}
	signal, _ := stats.Mean(above)
	noise, _ := stats.Mean(below)
	return 20 * math.Log10(signal/(noise+1e-6)), nil
}

// frame splits samples into overlapping zero-padded frames
func frame(samples []float64) [][]float64 {
	n := 1
	if len(samples) > FrameSize {
		n = 1 + (len(samples)-FrameSize+HopSize-1)/HopSize
	}
	frames := make([][]float64, n)
	for i := range frames {
		fr := make([]float64, FrameSize)
		start := i * HopSize
		if start < len(samples) {
			copy(fr, samples[start:min(start+FrameSize, len(samples))])
		}
		frames[i] = fr
	}
	return frames
}

func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

func frameRMS(fr []float64) float64 {
	var sum float64
	for _, s := range fr {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(fr)))
}

func zeroCrossings(fr []float64) float64 {
	var n int
	for i := 1; i < len(fr); i++ {
		if (fr[i-1] >= 0) != (fr[i] >= 0) {
			n++
		}
	}
	return float64(n) / float64(len(fr))
}

// spectralShape returns the magnitude-weighted centroid and the frequency
// below which rolloffRatio of the magnitude lies.
func spectralShape(mag []float64, sr float64) (centroid, rolloff float64) {
	binHz := sr / float64(2*(len(mag)-1))
	var total, weighted float64
	for j, m := range mag {
		total += m
		weighted += m * float64(j) * binHz
	}
	if total == 0 {
		return 0, 0
	}
	centroid = weighted / total

	var cum float64
	for j, m := range mag {
		cum += m
		if cum >= rolloffRatio*total {
			rolloff = float64(j) * binHz
			break
		}
	}
	return centroid, rolloff
}
