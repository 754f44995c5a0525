package audio

import "math"

const (
	onsetWindow = 3    // frames either side of a peak
	onsetDelta  = 0.07 // threshold above the local mean, envelope normalized to [0, 1]
	onsetWaitS  = 0.03

	minTempo = 30.0
	maxTempo = 300.0
)

// onsetEnvelope is the mean positive rise of the mel spectrogram per frame
func onsetEnvelope(melDB [][]float64) []float64 {
	env := make([]float64, len(melDB))
	for i := 1; i < len(melDB); i++ {
		var sum float64
		for m := range melDB[i] {
			if d := melDB[i][m] - melDB[i-1][m]; d > 0 {
				sum += d
			}
		}
		env[i] = sum / float64(len(melDB[i]))
	}
	return env
}

// pickOnsets returns frame indices of local envelope peaks
func pickOnsets(env []float64, sr float64) []int {
	var maxV float64
	for _, v := range env {
		maxV = math.Max(maxV, v)
	}
	if maxV == 0 {
		return nil
	}

	norm := make([]float64, len(env))
	for i, v := range env {
		norm[i] = v / maxV
	}

	wait := int(math.Ceil(onsetWaitS * sr / HopSize))
	last := -wait - 1

	var onsets []int
	for i, v := range norm {
		lo, hi := max(0, i-onsetWindow), min(len(norm), i+onsetWindow+1)
		var localMax, localSum float64
		for _, w := range norm[lo:hi] {
			localMax = math.Max(localMax, w)
			localSum += w
		}
		if v < localMax || v < localSum/float64(hi-lo)+onsetDelta {
			continue
		}
		if i-last <= wait {
			continue
		}
		onsets = append(onsets, i)
		last = i
	}
	return onsets
}

// estimateTempo picks the autocorrelation lag of the onset envelope with
// the strongest support, weighted towards DefaultTempo on a log scale.
func estimateTempo(env []float64, sr float64) float64 {
	framesPerSec := sr / HopSize
	minLag := int(math.Ceil(60 * framesPerSec / maxTempo))
	maxLag := int(math.Floor(60 * framesPerSec / minTempo))
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(env) {
		maxLag = len(env) - 1
	}
	if maxLag < minLag {
		return DefaultTempo
	}

	best, bestScore := 0, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var acf float64
		for i := lag; i < len(env); i++ {
			acf += env[i] * env[i-lag]
		}
		bpm := 60 * framesPerSec / float64(lag)
		prior := math.Exp(-0.5 * math.Pow(math.Log2(bpm/DefaultTempo), 2))
		if score := acf * prior; score > bestScore {
			best, bestScore = lag, score
		}
	}
	if best == 0 {
		return DefaultTempo
	}
	return 60 * framesPerSec / float64(best)
}
