package classifier

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"mockinterview/internal/model"
)

//go:embed corpus.yaml
var defaultCorpus []byte

//go:embed lexicon.yaml
var defaultLexicon []byte

const (
	positiveThreshold = 0.1
	negativeThreshold = -0.1

	negationFactor = -0.5
	nbAlpha        = 1.0
)

var wordRe = regexp.MustCompile(`[a-z]+(?:'[a-z]+)?`)

// Lexicon scores word polarity in [-1, 1]
type Lexicon struct {
	Words        map[string]float64 `yaml:"words"`
	Intensifiers map[string]float64 `yaml:"intensifiers"`
	Negations    []string           `yaml:"negations"`

	negations map[string]bool
}

// ParseLexicon reads a lexicon document
func ParseLexicon(r io.Reader) (*Lexicon, error) {
	var lx Lexicon
	if err := yaml.NewDecoder(r).Decode(&lx); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}
	if len(lx.Words) == 0 {
		return nil, fmt.Errorf("lexicon has no words")
	}
	lx.negations = toSet(lx.Negations)
	return &lx, nil
}

// Polarity averages the polarity of every lexicon word in text. A preceding
// negation flips and halves a word, a preceding intensifier scales it.
func (lx *Lexicon) Polarity(text string) float64 {
	tokens := wordRe.FindAllString(strings.ToLower(text), -1)

	var sum float64
	var n int
	for i, tok := range tokens {
		p, ok := lx.Words[tok]
		if !ok {
			continue
		}
		for j := i - 1; j >= 0 && j >= i-2; j-- {
			prev := tokens[j]
			if k, ok := lx.Intensifiers[prev]; ok && j == i-1 {
				p *= k
			}
			if lx.negations[prev] || strings.HasSuffix(prev, "n't") {
				p *= negationFactor
				break
			}
		}
		sum += clamp(p, -1, 1)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// LabelPolarity maps a polarity score to a sentiment label
func LabelPolarity(p float64) string {
	switch {
	case p > positiveThreshold:
		return model.SentimentPositive
	case p < negativeThreshold:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}

// TextClassifier labels written answers. Build once, share read-only.
type TextClassifier struct {
	lexicon *Lexicon
	model   *Model
}

// NewTextClassifier wires a lexicon and an optional category model.
// A nil model makes every category prediction degrade to general.
func NewTextClassifier(lexicon *Lexicon, m *Model) *TextClassifier {
	return &TextClassifier{lexicon: lexicon, model: m}
}

// DefaultTextClassifier trains on the embedded corpus, or on corpusPath
// when set.
func DefaultTextClassifier(fs afero.Fs, corpusPath string) (*TextClassifier, error) {
	lx, err := ParseLexicon(bytes.NewReader(defaultLexicon))
	if err != nil {
		return nil, err
	}

	corpus, err := ParseCorpus(bytes.NewReader(defaultCorpus))
	if err != nil {
		return nil, err
	}
	if corpusPath != "" {
		f, err := fs.Open(corpusPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open corpus %s: %w", corpusPath, err)
		}
		defer f.Close()
		if corpus, err = ParseCorpus(f); err != nil {
			return nil, err
		}
	}

	m, err := Train(corpus, nbAlpha)
	if err != nil {
		return nil, fmt.Errorf("failed to train category model: %w", err)
	}
	return NewTextClassifier(lx, m), nil
}

// ParseCorpus reads a `categories:` map of label to example answers
func ParseCorpus(r io.Reader) (map[string][]string, error) {
	var doc struct {
		Categories map[string][]string `yaml:"categories"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse corpus: %w", err)
	}
	return doc.Categories, nil
}

// Sentiment labels text as positive, negative or neutral
func (c *TextClassifier) Sentiment(text string) (out Outcome[string]) {
	defer func() {
		if r := recover(); r != nil {
			out = Degrade(model.SentimentNeutral, fmt.Errorf("sentiment panic: %v", r))
		}
	}()
	if c.lexicon == nil {
		return Degrade(model.SentimentNeutral, fmt.Errorf("no lexicon loaded"))
	}
	return Ok(LabelPolarity(c.lexicon.Polarity(text)))
}

// Category predicts the topic of text, falling back to general
func (c *TextClassifier) Category(text string) (out Outcome[string]) {
	defer func() {
		if r := recover(); r != nil {
			out = Degrade(model.CategoryGeneral, fmt.Errorf("category panic: %v", r))
		}
	}()
	label, err := c.model.Predict(text)
	if err != nil {
		return Degrade(model.CategoryGeneral, err)
	}
	return Ok(label)
}
