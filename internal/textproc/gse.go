package textproc

import (
	"fmt"

	"github.com/go-ego/gse"

	"github.com/hyperjump/bunseki/internal/config"
)

// GSESegmenter segments with a gse dictionary plus HMM in search mode, which emits the
// short overlapping words inside long compounds (e.g. 中华 and 人民 inside 中华人民共和国).
type GSESegmenter struct {
	seg gse.Segmenter
}

// NewGSESegmenter loads the dictionary at dictPath, or the embedded simplified Chinese
// dictionary when dictPath is empty. Loading takes a moment; construct once and share.
func NewGSESegmenter(dictPath string) (*GSESegmenter, error) {
	s := &GSESegmenter{}
	s.seg.SkipLog = true
	var err error
	if dictPath != "" {
		err = s.seg.LoadDict(dictPath)
	} else {
		err = s.seg.LoadDictEmbed()
	}
	if err != nil {
		return nil, fmt.Errorf("load gse dictionary: %w", err)
	}
	return s, nil
}

// Segment implements Segmenter.
func (s *GSESegmenter) Segment(text string) []string {
	return s.seg.CutSearch(text, true)
}

// Name implements Segmenter.
func (s *GSESegmenter) Name() string { return config.SegmenterGSE }
