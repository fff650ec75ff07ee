package tfidf

import (
	"math"
	"strings"

	"github.com/sourcegraph/conc/iter"

	"github.com/hyperjump/bunseki/internal/models"
)

// dfSmoothing keeps the IDF finite for terms no document contains.
const dfSmoothing = 1e-5

// IDF holds inverse document frequencies aligned with a vocabulary.
type IDF struct {
	Vocab   *Vocabulary
	Weights []float64
}

// Weight returns the IDF of term, or 0 when term is not in the vocabulary.
func (f *IDF) Weight(term string) float64 {
	i, ok := f.Vocab.Index(term)
	if !ok {
		return 0
	}
	return f.Weights[i]
}

// ComputeIDF computes idf(t) = ln(N / (df(t) + 1e-5)) + 1 for every vocabulary term,
// where df(t) counts documents whose lower-cased extracted text contains t as a substring.
// An empty corpus yields all-zero weights.
func ComputeIDF(corpus []*models.Document, vocab *Vocabulary, extract TextExtractor) *IDF {
	weights := make([]float64, vocab.Len())
	n := len(corpus)
	if n == 0 {
		return &IDF{Vocab: vocab, Weights: weights}
	}

	texts := lowerTexts(corpus, extract)
	dfs := iter.Map(vocab.Terms, func(term *string) int {
		df := 0
		for _, text := range texts {
			if strings.Contains(text, *term) {
				df++
			}
		}
		return df
	})
	for i, df := range dfs {
		weights[i] = math.Log(float64(n)/(float64(df)+dfSmoothing)) + 1
	}
	return &IDF{Vocab: vocab, Weights: weights}
}

func lowerTexts(corpus []*models.Document, extract TextExtractor) []string {
	texts := make([]string, len(corpus))
	for i, doc := range corpus {
		texts[i] = strings.ToLower(extract(doc))
	}
	return texts
}
