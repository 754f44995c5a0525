package classifier

import (
	"errors"
	"testing"

	"mockinterview/internal/audio"
	"mockinterview/internal/model"
)

func TestAudioSentiment(t *testing.T) {
	t.Parallel()

	c := NewAudioClassifier()
	lively := &audio.Features{Energy: 0.2, Tempo: 130, EnergyVariance: 0.02, PitchVariance: 0.5, SpeechRate: 3}
	flat := &audio.Features{Energy: 0.01, Tempo: 80, EnergyVariance: 0.001, PitchVariance: 0.01, SpeechRate: 1}
	mixed := &audio.Features{Energy: 0.2, Tempo: 100, EnergyVariance: 0.007, PitchVariance: 0.07, SpeechRate: 2}

	tests := []struct {
		name   string
		f      *audio.Features
		expect string
		score  float64
	}{
		{"all high", lively, model.SentimentPositive, 1},
		{"all low", flat, model.SentimentNegative, -1},
		{"energy only", mixed, model.SentimentNeutral, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := c.Composite(tt.f); got < tt.score-1e-9 || got > tt.score+1e-9 {
				t.Fatalf("composite: expected %f, got %f", tt.score, got)
			}
			out := c.Sentiment(tt.f, nil)
			if out.Degraded || out.Value != tt.expect {
				t.Fatalf("expected %s, got %+v", tt.expect, out)
			}
		})
	}
}

func TestAudioSentimentDegrades(t *testing.T) {
	t.Parallel()

	cause := errors.New("decode failed")
	out := NewAudioClassifier().Sentiment(nil, cause)
	if !out.Degraded || out.Value != model.SentimentNeutral || !errors.Is(out.Cause, cause) {
		t.Fatalf("unexpected outcome %+v", out)
	}
}

func TestAudioCategory(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Tell me about your previous work experience.":          CategoryNarrative,
		"Tell me about a time you worked closely with a team.":  CategoryNarrative,
		"Why do you want this job?":                             CategoryReasoning,
		"How would you approach a problem you have never seen?": CategoryProblemSolving,
		"What would you do if the build broke?":                 CategoryProblemSolving,
		"What are your greatest strengths?":                     CategorySelfAssessment,
		"Where do you see yourself in five years?":              model.CategoryGeneral,
	}

	c := NewAudioClassifier()
	for q, want := range tests {
		if got := c.Category(q).Value; got != want {
			t.Fatalf("%q: expected %s, got %s", q, want, got)
		}
	}
}
