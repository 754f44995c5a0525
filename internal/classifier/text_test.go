package classifier

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"mockinterview/internal/model"
)

func defaultClassifier(t *testing.T) *TextClassifier {
	t.Helper()
	c, err := DefaultTextClassifier(afero.NewMemMapFs(), "")
	if err != nil {
		t.Fatalf("DefaultTextClassifier: %v", err)
	}
	return c
}

func TestPreprocess(t *testing.T) {
	t.Parallel()

	got := Preprocess("  Hello,   WORLD!! It's  me. ")
	if got != "hello world its me" {
		t.Fatalf("unexpected preprocess result %q", got)
	}
}

func TestSentiment(t *testing.T) {
	t.Parallel()

	c := defaultClassifier(t)
	tests := []struct {
		text   string
		expect string
	}{
		{"I am really proud of this excellent project", model.SentimentPositive},
		{"This was a terrible and frustrating experience", model.SentimentNegative},
		{"I work at a company in the city", model.SentimentNeutral},
		{"I was not happy with the outcome", model.SentimentNegative},
		{"It was not very good", model.SentimentNegative},
		{"I don't hate deadlines", model.SentimentPositive},
		{"", model.SentimentNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			out := c.Sentiment(tt.text)
			if out.Degraded {
				t.Fatalf("unexpected degraded outcome: %v", out.Cause)
			}
			if out.Value != tt.expect {
				t.Fatalf("expected %s, got %s", tt.expect, out.Value)
			}
		})
	}
}

func TestLabelPolarityThresholds(t *testing.T) {
	t.Parallel()

	tests := map[float64]string{
		0.11:  model.SentimentPositive,
		0.1:   model.SentimentNeutral,
		0:     model.SentimentNeutral,
		-0.1:  model.SentimentNeutral,
		-0.11: model.SentimentNegative,
	}
	for p, want := range tests {
		if got := LabelPolarity(p); got != want {
			t.Fatalf("polarity %v: expected %s, got %s", p, want, got)
		}
	}
}

func TestPolarityIntensifier(t *testing.T) {
	t.Parallel()

	lx, err := ParseLexicon(strings.NewReader("words: {good: 0.5}\nintensifiers: {very: 1.5}\nnegations: [not]\n"))
	if err != nil {
		t.Fatalf("ParseLexicon: %v", err)
	}
	if got := lx.Polarity("very good"); math.Abs(got-0.75) > 1e-9 {
		t.Fatalf("expected 0.75, got %f", got)
	}
	if got := lx.Polarity("not very good"); math.Abs(got+0.375) > 1e-9 {
		t.Fatalf("expected -0.375, got %f", got)
	}
	if got := lx.Polarity("good, good and bad"); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("unknown words must not count, got %f", got)
	}
}

func TestCategory(t *testing.T) {
	t.Parallel()

	c := defaultClassifier(t)
	tests := []struct {
		text   string
		expect string
	}{
		{"I led a team of five developers and mentored two juniors", "leadership"},
		{"I built a distributed data pipeline from scratch", "project"},
		{"I handle pressure by planning and taking breaks", "stress"},
		{"My goal is to become a senior architect", "goals"},
		{"I am good at communication and debugging", "strengths"},
		{"I am a software engineer with 5 years of experience", "introduction"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			out := c.Category(tt.text)
			if out.Degraded || out.Value != tt.expect {
				t.Fatalf("expected %s, got %+v", tt.expect, out)
			}
		})
	}
}

func TestCategoryWithoutModelDegrades(t *testing.T) {
	t.Parallel()

	c := NewTextClassifier(nil, nil)
	out := c.Category("I led a team")
	if !out.Degraded || out.Value != model.CategoryGeneral {
		t.Fatalf("expected degraded general, got %+v", out)
	}

	s := c.Sentiment("great")
	if !s.Degraded || s.Value != model.SentimentNeutral {
		t.Fatalf("expected degraded neutral, got %+v", s)
	}
}

func TestCategoryRecoversFromPanic(t *testing.T) {
	t.Parallel()

	// a model without a vectorizer panics on use
	c := NewTextClassifier(nil, &Model{labels: []string{"x"}})
	out := c.Category("anything")
	if !out.Degraded || out.Value != model.CategoryGeneral {
		t.Fatalf("expected degraded general, got %+v", out)
	}
}

func TestTrainRejectsSingleCategory(t *testing.T) {
	t.Parallel()

	if _, err := Train(map[string][]string{"only": {"one two"}}, 1); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCustomCorpus(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	doc := "categories:\n  cats: [meow purr whiskers, kitten meow]\n  dogs: [bark woof fetch, puppy bark]\n"
	if err := afero.WriteFile(fs, "/corpus.yaml", []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := DefaultTextClassifier(fs, "/corpus.yaml")
	if err != nil {
		t.Fatalf("DefaultTextClassifier: %v", err)
	}
	if got := c.Category("the puppy would bark").Value; got != "dogs" {
		t.Fatalf("expected dogs, got %s", got)
	}

	if _, err := DefaultTextClassifier(fs, "/missing.yaml"); err == nil {
		t.Fatalf("expected error for missing corpus")
	}
}

func TestParseLexiconEmpty(t *testing.T) {
	t.Parallel()

	if _, err := ParseLexicon(bytes.NewReader([]byte("words: {}\n"))); err == nil {
		t.Fatalf("expected error for empty lexicon")
	}
}
