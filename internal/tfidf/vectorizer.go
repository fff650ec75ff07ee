package tfidf

import (
	"strings"

	"github.com/sourcegraph/conc/iter"

	"github.com/hyperjump/bunseki/internal/models"
)

// Vectorize returns the TF-IDF vector of text over idf's vocabulary.
// Term frequency counts non-overlapping occurrences of each term in the lower-cased text,
// normalized by the total count over all terms; every component is 0 when nothing matches.
func Vectorize(text string, idf *IDF) []float64 {
	vec := make([]float64, idf.Vocab.Len())
	if len(vec) == 0 {
		return vec
	}
	lower := strings.ToLower(text)

	total := 0
	for i, term := range idf.Vocab.Terms {
		c := strings.Count(lower, term)
		vec[i] = float64(c)
		total += c
	}
	if total == 0 {
		for i := range vec {
			vec[i] = 0
		}
		return vec
	}
	for i := range vec {
		vec[i] = vec[i] / float64(total) * idf.Weights[i]
	}
	return vec
}

// VectorizeCorpus vectorizes every document's extracted text in parallel.
// The result is aligned with corpus.
func VectorizeCorpus(corpus []*models.Document, extract TextExtractor, idf *IDF) [][]float64 {
	return iter.Map(corpus, func(doc **models.Document) []float64 {
		return Vectorize(extract(*doc), idf)
	})
}
