// Package tfidf builds vocabularies, inverse document frequencies and TF-IDF vectors
// over a corpus of documents.
package tfidf

import (
	"github.com/hyperjump/bunseki/internal/models"
	"github.com/hyperjump/bunseki/pkg/utils"
)

// TextExtractor returns the text of a document that feeds tokenization, document
// frequency and term frequency. A nil document must yield a string, never panic.
type TextExtractor func(doc *models.Document) string

// FullText joins the title and the whole content with a single space.
func FullText(doc *models.Document) string {
	return doc.TitleOrEmpty() + " " + doc.ContentOrEmpty()
}

// Prefix joins the title with the first n characters of the content.
// A non-positive n keeps the whole content.
func Prefix(n int) TextExtractor {
	if n <= 0 {
		return FullText
	}
	return func(doc *models.Document) string {
		return doc.TitleOrEmpty() + " " + utils.HeadRunes(doc.ContentOrEmpty(), n)
	}
}
