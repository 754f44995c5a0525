package classifier

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	punctuation = regexp.MustCompile(`[^\w\s]`)
	tokenRe     = regexp.MustCompile(`\w\w+`)

	ErrNoModel = errors.New("category model not loaded")
)

// Preprocess lowercases text, strips punctuation and collapses whitespace
func Preprocess(text string) string {
	text = strings.ToLower(text)
	text = punctuation.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// stopWords is the English stop list applied before n-gram extraction
var stopWords = toSet(strings.Fields(`
a about above after again against all am an and any are as at be because been before being below
between both but by can could did do does doing down during each few for from further had has have
having he her here hers herself him himself his how i if in into is it its itself just me more most
my myself no nor not now of off on once only or other our ours ourselves out over own same she should
so some such than that the their theirs them themselves then there these they this those through to
too under until up very was we were what when where which while who whom why will with would you your
yours yourself yourselves im ive id youre`))

func toSet(words []string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// terms returns unigrams and bigrams of already preprocessed text
func terms(text string) []string {
	var words []string
	for _, w := range tokenRe.FindAllString(text, -1) {
		if !stopWords[w] {
			words = append(words, w)
		}
	}
	out := make([]string, 0, 2*len(words))
	out = append(out, words...)
	for i := 1; i < len(words); i++ {
		out = append(out, words[i-1]+" "+words[i])
	}
	return out
}

// vectorizer is a fitted TF-IDF vocabulary with smoothed idf and l2 norm
type vectorizer struct {
	vocab map[string]int
	idf   []float64
}

func fitVectorizer(docs []string) *vectorizer {
	df := map[string]int{}
	for _, d := range docs {
		seen := map[string]bool{}
		for _, t := range terms(d) {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}

	names := make([]string, 0, len(df))
	for t := range df {
		names = append(names, t)
	}
	sort.Strings(names)

	v := &vectorizer{vocab: make(map[string]int, len(names)), idf: make([]float64, len(names))}
	n := float64(len(docs))
	for i, t := range names {
		v.vocab[t] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return v
}

// transform returns a sparse l2-normalized tf-idf vector
func (v *vectorizer) transform(doc string) map[int]float64 {
	vec := map[int]float64{}
	for _, t := range terms(doc) {
		if i, ok := v.vocab[t]; ok {
			vec[i]++
		}
	}
	var norm float64
	for i, tf := range vec {
		vec[i] = tf * v.idf[i]
		norm += vec[i] * vec[i]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// Model is a multinomial naive Bayes classifier over tf-idf features.
// Immutable after Train; safe for concurrent use.
type Model struct {
	vec        *vectorizer
	labels     []string
	logPrior   []float64
	logFeature [][]float64
}

// Train fits the model on a labelled corpus with additive smoothing alpha
func Train(corpus map[string][]string, alpha float64) (*Model, error) {
	labels := make([]string, 0, len(corpus))
	for label, docs := range corpus {
		if len(docs) > 0 {
			labels = append(labels, label)
		}
	}
	if len(labels) < 2 {
		return nil, fmt.Errorf("need at least two labelled categories, got %d", len(labels))
	}
	sort.Strings(labels)

	var docs []string
	var docLabel []int
	for li, label := range labels {
		for _, d := range corpus[label] {
			docs = append(docs, Preprocess(d))
			docLabel = append(docLabel, li)
		}
	}

	vec := fitVectorizer(docs)
	nFeatures := len(vec.idf)
	if nFeatures == 0 {
		return nil, errors.New("corpus has no usable terms")
	}

	counts := make([][]float64, len(labels))
	classDocs := make([]float64, len(labels))
	for i := range counts {
		counts[i] = make([]float64, nFeatures)
	}
	for di, d := range docs {
		li := docLabel[di]
		classDocs[li]++
		for fi, w := range vec.transform(d) {
			counts[li][fi] += w
		}
	}

	m := &Model{
		vec:        vec,
		labels:     labels,
		logPrior:   make([]float64, len(labels)),
		logFeature: make([][]float64, len(labels)),
	}
	for li := range labels {
		m.logPrior[li] = math.Log(classDocs[li] / float64(len(docs)))

		var total float64
		for _, c := range counts[li] {
			total += c
		}
		denom := total + alpha*float64(nFeatures)
		m.logFeature[li] = make([]float64, nFeatures)
		for fi, c := range counts[li] {
			m.logFeature[li][fi] = math.Log((c + alpha) / denom)
		}
	}
	return m, nil
}

// Labels returns the known categories in sorted order
func (m *Model) Labels() []string {
	return append([]string(nil), m.labels...)
}

// Predict returns the most likely category for raw text
func (m *Model) Predict(text string) (string, error) {
	if m == nil {
		return "", ErrNoModel
	}
	x := m.vec.transform(Preprocess(text))

	best, bestScore := -1, math.Inf(-1)
	for li := range m.labels {
		score := m.logPrior[li]
		for fi, w := range x {
			score += w * m.logFeature[li][fi]
		}
		if score > bestScore {
			best, bestScore = li, score
		}
	}
	if best < 0 {
		return "", errors.New("no category scored")
	}
	return m.labels[best], nil
}
