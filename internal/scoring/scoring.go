package scoring

import (
	"math"
	"strconv"
	"strings"

	"mockinterview/internal/audio"
	"mockinterview/internal/classifier"
	"mockinterview/internal/model"
)

const (
	MinScore = 1.0
	MaxScore = 5.0

	// DefaultAudioScore is used when audio features are unavailable
	DefaultAudioScore = 3.0

	wordsPerPoint = 20.0
)

var sentimentScores = map[string]float64{
	model.SentimentPositive: 5,
	model.SentimentNeutral:  3,
	model.SentimentNegative: 1,
}

// Round2 rounds the exact binary value of v to two decimals. Ties that are
// exactly representable go to the even digit, so 2.775 (stored as 2.77499...)
// becomes 2.77.
func Round2(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}

func clamp(v float64) float64 {
	return math.Max(MinScore, math.Min(MaxScore, v))
}

// Text scores a written answer from its length and sentiment.
// The result has no floor: an empty negative answer scores 0.5.
func Text(response, sentiment string) float64 {
	words := float64(len(strings.Fields(response)))
	length := math.Min(MaxScore, words/wordsPerPoint)
	s, ok := sentimentScores[sentiment]
	if !ok {
		s = sentimentScores[model.SentimentNeutral]
	}
	return Round2((length + s) / 2)
}

// AudioBreakdown holds the four equally weighted audio sub-scores
type AudioBreakdown struct {
	Duration   float64 `json:"duration"`
	Quality    float64 `json:"quality"`
	Clarity    float64 `json:"clarity"`
	Engagement float64 `json:"engagement"`
}

// Total is the clamped, rounded mean of the sub-scores
func (b AudioBreakdown) Total() float64 {
	return Round2(clamp(0.25*b.Duration + 0.25*b.Quality + 0.25*b.Clarity + 0.25*b.Engagement))
}

// DurationScore buckets the answer length in seconds
func DurationScore(seconds float64) float64 {
	switch {
	case seconds < 10:
		return 2.0
	case seconds < 30:
		return 3.0
	case seconds <= 120:
		return 5.0
	case seconds <= 180:
		return 4.0
	default:
		return 3.0
	}
}

// Breakdown computes the audio sub-scores from extracted features
func Breakdown(f *audio.Features) AudioBreakdown {
	return AudioBreakdown{
		Duration:   DurationScore(f.Duration),
		Quality:    clamp((f.SNR + 20) / 20),
		Clarity:    clamp(3 + f.MFCCVariance),
		Engagement: clamp(2.5 + f.PitchStd/100 + f.EnergyStd*10),
	}
}

// Audio scores a spoken answer. Missing features degrade to DefaultAudioScore.
func Audio(f *audio.Features, cause error) classifier.Outcome[float64] {
	if f == nil {
		if cause == nil {
			cause = classifier.ErrNoFeatures
		}
		return classifier.Degrade(DefaultAudioScore, cause)
	}
	return classifier.Ok(Breakdown(f).Total())
}
