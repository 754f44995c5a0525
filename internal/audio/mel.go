package audio

import "math"

func hzToMel(hz float64) float64 {
	return 2595 * math.Log10(1+hz/700)
}

func melToHz(mel float64) float64 {
	return 700 * (math.Pow(10, mel/2595) - 1)
}

// melFilterBank builds area-normalized triangular filters spanning 0..sr/2
func melFilterBank(nMel, nFFT int, sr float64) [][]float64 {
	nBins := nFFT/2 + 1
	maxMel := hzToMel(sr / 2)

	edges := make([]float64, nMel+2)
	for i := range edges {
		edges[i] = melToHz(maxMel * float64(i) / float64(nMel+1))
	}

	bank := make([][]float64, nMel)
	for m := 0; m < nMel; m++ {
		lo, center, hi := edges[m], edges[m+1], edges[m+2]
		norm := 2 / (hi - lo)
		filter := make([]float64, nBins)
		for k := 0; k < nBins; k++ {
			hz := float64(k) * sr / float64(nFFT)
			switch {
			case hz > lo && hz <= center:
				filter[k] = norm * (hz - lo) / (center - lo)
			case hz > center && hz < hi:
				filter[k] = norm * (hi - hz) / (hi - center)
			}
		}
		bank[m] = filter
	}
	return bank
}

func applyFilterBank(bank [][]float64, power []float64) []float64 {
	out := make([]float64, len(bank))
	for m, filter := range bank {
		var sum float64
		for k, w := range filter {
			if w != 0 {
				sum += w * power[k]
			}
		}
		out[m] = sum
	}
	return out
}

// powerToDB converts power to decibels, floored 80 dB below the peak
func powerToDB(power []float64) []float64 {
	const amin, topDB = 1e-10, 80.0

	out := make([]float64, len(power))
	maxDB := math.Inf(-1)
	for i, p := range power {
		out[i] = 10 * math.Log10(math.Max(amin, p))
		maxDB = math.Max(maxDB, out[i])
	}
	for i := range out {
		out[i] = math.Max(out[i], maxDB-topDB)
	}
	return out
}

// dct is an orthonormal type-II DCT truncated to n coefficients
func dct(x []float64, n int) []float64 {
	size := float64(len(x))
	out := make([]float64, n)
	for k := 0; k < n; k++ {
		var sum float64
		for i, v := range x {
			sum += v * math.Cos(math.Pi/size*(float64(i)+0.5)*float64(k))
		}
		scale := math.Sqrt(2 / size)
		if k == 0 {
			scale = math.Sqrt(1 / size)
		}
		out[k] = sum * scale
	}
	return out
}
