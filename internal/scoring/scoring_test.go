package scoring

import (
	"errors"
	"math"
	"strings"
	"testing"

	"mockinterview/internal/audio"
	"mockinterview/internal/model"
)

func TestText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		response  string
		sentiment string
		expect    float64
	}{
		{"leadership answer positive", "I led a team of five developers and mentored two juniors", model.SentimentPositive, 2.77},
		{"leadership answer neutral", "I led a team of five developers and mentored two juniors", model.SentimentNeutral, 1.77},
		{"empty negative", "", model.SentimentNegative, 0.5},
		{"long positive caps length", strings.Repeat("word ", 150), model.SentimentPositive, 5},
		{"forty words neutral", strings.Repeat("word ", 40), model.SentimentNeutral, 2.5},
		{"unknown sentiment as neutral", "one", "confused", 1.52},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Text(tt.response, tt.sentiment); math.Abs(got-tt.expect) > 1e-9 {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     float64
		expect float64
	}{
		{2.775, 2.77},
		{1.775, 1.77},
		{2.675, 2.67},
		{1.005, 1.0},
		{0.125, 0.12},
		{0.375, 0.38},
		{3.14159, 3.14},
		{4.996, 5},
		{3, 3},
	}

	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.expect {
			t.Fatalf("Round2(%v): expected %v, got %v", tt.in, tt.expect, got)
		}
	}
}

func TestTextBounds(t *testing.T) {
	t.Parallel()

	for words := 0; words < 200; words += 7 {
		for _, s := range []string{model.SentimentPositive, model.SentimentNeutral, model.SentimentNegative} {
			got := Text(strings.Repeat("w ", words), s)
			if got < 0 || got > MaxScore {
				t.Fatalf("score %v out of bounds for %d words, %s", got, words, s)
			}
		}
	}
}

func TestDurationScore(t *testing.T) {
	t.Parallel()

	tests := map[float64]float64{
		0:     2,
		9.99:  2,
		10:    3,
		29.9:  3,
		30:    5,
		120:   5,
		120.5: 4,
		180:   4,
		181:   3,
	}
	for seconds, want := range tests {
		if got := DurationScore(seconds); got != want {
			t.Fatalf("%vs: expected %v, got %v", seconds, want, got)
		}
	}
}

func TestAudioShortAnswerContribution(t *testing.T) {
	t.Parallel()

	f := &audio.Features{Duration: 6, SNR: 20, MFCCVariance: 0.5, PitchStd: 50, EnergyStd: 0.05}
	b := Breakdown(f)
	if b.Duration != 2 {
		t.Fatalf("expected duration sub-score 2, got %v", b.Duration)
	}
	// quality 2, clarity 3.5, engagement 2.5+0.5+0.5=3.5
	want := Round2(0.25*2 + 0.25*2 + 0.25*3.5 + 0.25*3.5)
	out := Audio(f, nil)
	if out.Degraded || math.Abs(out.Value-want) > 1e-9 {
		t.Fatalf("expected %v, got %+v", want, out)
	}
}

func TestAudioClamps(t *testing.T) {
	t.Parallel()

	loud := &audio.Features{Duration: 60, SNR: 500, MFCCVariance: 900, PitchStd: 1e4, EnergyStd: 10}
	if got := Audio(loud, nil).Value; got != MaxScore {
		t.Fatalf("expected clamp to %v, got %v", MaxScore, got)
	}

	dead := &audio.Features{Duration: 1, SNR: -200, MFCCVariance: -10}
	b := Breakdown(dead)
	if b.Quality != MinScore || b.Clarity != MinScore {
		t.Fatalf("expected sub-scores clamped to %v, got %+v", MinScore, b)
	}
	if got := Audio(dead, nil).Value; got < MinScore || got > MaxScore {
		t.Fatalf("score %v out of bounds", got)
	}
}

func TestAudioDegrades(t *testing.T) {
	t.Parallel()

	cause := errors.New("timeout")
	out := Audio(nil, cause)
	if !out.Degraded || out.Value != DefaultAudioScore || !errors.Is(out.Cause, cause) {
		t.Fatalf("unexpected outcome %+v", out)
	}
}
