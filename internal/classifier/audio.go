package classifier

import (
	"errors"
	"strings"

	"mockinterview/internal/audio"
	"mockinterview/internal/model"
)

// Audio answer categories, derived from the question wording
const (
	CategoryNarrative      = "narrative"
	CategoryReasoning      = "reasoning"
	CategoryProblemSolving = "problem-solving"
	CategorySelfAssessment = "self-assessment"
)

var ErrNoFeatures = errors.New("no audio features")

// signal is one thresholded sub-score of the audio sentiment composite
type signal struct {
	name   string
	weight float64
	value  func(*audio.Features) float64
	high   float64
	low    float64
}

var audioSignals = []signal{
	{"energy", 0.30, func(f *audio.Features) float64 { return f.Energy }, 0.1, 0.05},
	{"tempo", 0.20, func(f *audio.Features) float64 { return f.Tempo }, 120, 90},
	{"energy_variance", 0.20, func(f *audio.Features) float64 { return f.EnergyVariance }, 0.01, 0.005},
	{"pitch_variance", 0.15, func(f *audio.Features) float64 { return f.PitchVariance }, 0.1, 0.05},
	{"speech_rate", 0.15, func(f *audio.Features) float64 { return f.SpeechRate }, 2.5, 1.5},
}

const audioSentimentThreshold = 0.3

// AudioClassifier labels spoken answers. Stateless.
type AudioClassifier struct{}

func NewAudioClassifier() *AudioClassifier {
	return &AudioClassifier{}
}

// Breakdown returns each signed sub-score in {-1, 0, +1} by name
func (c *AudioClassifier) Breakdown(f *audio.Features) map[string]int {
	out := make(map[string]int, len(audioSignals))
	for _, s := range audioSignals {
		v := s.value(f)
		switch {
		case v > s.high:
			out[s.name] = 1
		case v < s.low:
			out[s.name] = -1
		default:
			out[s.name] = 0
		}
	}
	return out
}

// Composite returns the weighted sum of the signed sub-scores, in [-1, 1]
func (c *AudioClassifier) Composite(f *audio.Features) float64 {
	signs := c.Breakdown(f)
	var total float64
	for _, s := range audioSignals {
		total += float64(signs[s.name]) * s.weight
	}
	return total
}

// Sentiment derives a label from prosodic features; nil features degrade to neutral
func (c *AudioClassifier) Sentiment(f *audio.Features, cause error) Outcome[string] {
	if f == nil {
		if cause == nil {
			cause = ErrNoFeatures
		}
		return Degrade(model.SentimentNeutral, cause)
	}

	composite := c.Composite(f)
	switch {
	case composite > audioSentimentThreshold:
		return Ok(model.SentimentPositive)
	case composite < -audioSentimentThreshold:
		return Ok(model.SentimentNegative)
	default:
		return Ok(model.SentimentNeutral)
	}
}

// Category classifies a spoken answer by the wording of its question.
// The audio itself is not consulted.
func (c *AudioClassifier) Category(question string) Outcome[string] {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "experience") || strings.Contains(q, "tell me about"):
		return Ok(CategoryNarrative)
	case strings.Contains(q, "why"):
		return Ok(CategoryReasoning)
	case strings.Contains(q, "how would you") || strings.Contains(q, "what would you"):
		return Ok(CategoryProblemSolving)
	case strings.Contains(q, "strength") || strings.Contains(q, "weakness"):
		return Ok(CategorySelfAssessment)
	default:
		return Ok(model.CategoryGeneral)
	}
}
