// Package textproc normalizes and segments raw document text into filtered search tokens.
package textproc

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/hyperjump/bunseki/internal/config"
)

// Segmenter splits text into candidate word units. For CJK text it should produce
// overlapping, search-suitable sub-word units; for Latin text, word units.
// Implementations must be safe for concurrent use once constructed.
type Segmenter interface {
	Segment(text string) []string
	Name() string
}

// NewSegmenter returns the segmenter registered under name.
// dictPath is only used by the gse segmenter (empty loads the embedded dictionary).
func NewSegmenter(name, dictPath string) (Segmenter, error) {
	switch name {
	case config.SegmenterGSE, "":
		return NewGSESegmenter(dictPath)
	case config.SegmenterBleve:
		return NewBleveSegmenter()
	case config.SegmenterSimple:
		return SimpleSegmenter{}, nil
	default:
		return nil, fmt.Errorf("unknown segmenter %q", name)
	}
}

// SimpleSegmenter splits on every rune that is not a letter or digit and keeps runs of
// Han characters whole. It has no dictionary, so Chinese recall is poor; use it for tests
// or Latin-only corpora.
type SimpleSegmenter struct{}

// Segment implements Segmenter.
func (SimpleSegmenter) Segment(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Name implements Segmenter.
func (SimpleSegmenter) Name() string { return config.SegmenterSimple }
