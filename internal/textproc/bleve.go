package textproc

import (
	"fmt"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"
	"github.com/blevesearch/bleve/v2/registry"

	"github.com/hyperjump/bunseki/internal/config"
)

type tokenAnalyzer interface {
	Analyze(input []byte) analysis.TokenStream
}

// BleveSegmenter uses Bleve's cjk analyzer: Unicode word boundaries for Latin text and
// overlapping bigrams for CJK runs. It needs no dictionary.
type BleveSegmenter struct {
	analyzer tokenAnalyzer
}

// NewBleveSegmenter builds the cjk analyzer from a private registry cache.
func NewBleveSegmenter() (*BleveSegmenter, error) {
	cache := registry.NewCache()
	a, err := cache.AnalyzerNamed(cjk.AnalyzerName)
	if err != nil {
		return nil, fmt.Errorf("build bleve %s analyzer: %w", cjk.AnalyzerName, err)
	}
	return &BleveSegmenter{analyzer: a}, nil
}

// Segment implements Segmenter.
func (s *BleveSegmenter) Segment(text string) []string {
	stream := s.analyzer.Analyze([]byte(text))
	out := make([]string, 0, len(stream))
	for _, tok := range stream {
		out = append(out, string(tok.Term))
	}
	return out
}

// Name implements Segmenter.
func (s *BleveSegmenter) Name() string { return config.SegmenterBleve }
