package tfidf

import (
	"sort"
	"strings"

	"github.com/hyperjump/bunseki/internal/models"
)

// Tokenizer produces the filtered, deduplicated tokens of a text.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Vocabulary is an ordered set of terms. Terms are sorted lexicographically so a
// vocabulary built from the same token set always has the same index.
type Vocabulary struct {
	Terms []string
	index map[string]int
}

// NewVocabulary returns a vocabulary over the distinct terms given.
func NewVocabulary(terms []string) *Vocabulary {
	index := make(map[string]int, len(terms))
	uniq := make([]string, 0, len(terms))
	for _, t := range terms {
		if _, ok := index[t]; ok {
			continue
		}
		index[t] = 0
		uniq = append(uniq, t)
	}
	sort.Strings(uniq)
	for i, t := range uniq {
		index[t] = i
	}
	return &Vocabulary{Terms: uniq, index: index}
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.Terms)
}

// Index returns the position of term and whether it is present.
func (v *Vocabulary) Index(term string) (int, bool) {
	if v == nil {
		return 0, false
	}
	i, ok := v.index[term]
	return i, ok
}

// BuildVocabulary returns the union of the token sets of every document's extracted text.
func BuildVocabulary(corpus []*models.Document, tok Tokenizer, extract TextExtractor) *Vocabulary {
	var terms []string
	for _, doc := range corpus {
		terms = append(terms, tok.Tokenize(extract(doc))...)
	}
	return NewVocabulary(terms)
}

// BuildSharedVocabulary tokenizes the extracted texts of the whole corpus joined by single
// spaces. Segmentation may differ slightly from BuildVocabulary at document boundaries.
func BuildSharedVocabulary(corpus []*models.Document, tok Tokenizer, extract TextExtractor) *Vocabulary {
	parts := make([]string, len(corpus))
	for i, doc := range corpus {
		parts[i] = extract(doc)
	}
	return NewVocabulary(tok.Tokenize(strings.Join(parts, " ")))
}
