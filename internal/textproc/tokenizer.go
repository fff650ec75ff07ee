package textproc

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	tagPattern = regexp.MustCompile(`<[^>]+>`)
	// The unescaped dot matches any character; "12x5" counts as numeric.
	numericPattern = regexp.MustCompile(`^[0-9]+(.[0-9]*)?$`)
)

// Tokenizer turns raw text into a deduplicated list of filtered tokens.
type Tokenizer struct {
	segmenter Segmenter
	stopwords map[string]struct{}
}

// TokenizerOption configures a Tokenizer.
type TokenizerOption func(*Tokenizer)

// WithExtraStopwords adds words to the default stopword set. Words are lower-cased.
func WithExtraStopwords(words ...string) TokenizerOption {
	return func(t *Tokenizer) {
		for _, w := range words {
			if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
				t.stopwords[w] = struct{}{}
			}
		}
	}
}

// NewTokenizer returns a tokenizer that segments with seg.
func NewTokenizer(seg Segmenter, opts ...TokenizerOption) *Tokenizer {
	t := &Tokenizer{
		segmenter: seg,
		stopwords: DefaultStopwords(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Segmenter returns the underlying segmenter.
func (t *Tokenizer) Segmenter() Segmenter {
	return t.segmenter
}

// Tokenize lower-cases text, replaces HTML-like tags with spaces, segments it and
// returns the surviving tokens in first-occurrence order without duplicates.
// Empty or whitespace-only input yields an empty slice.
func (t *Tokenizer) Tokenize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}
	clean := tagPattern.ReplaceAllString(strings.ToLower(text), " ")

	seen := make(map[string]struct{})
	tokens := make([]string, 0)
	for _, word := range t.segmenter.Segment(clean) {
		term := CleanToken(word)
		if !t.keep(term) {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		tokens = append(tokens, term)
	}
	return tokens
}

func (t *Tokenizer) keep(term string) bool {
	if utf8.RuneCountInString(term) <= 1 {
		return false
	}
	if _, stop := t.stopwords[term]; stop {
		return false
	}
	return !numericPattern.MatchString(term)
}

// CleanToken drops every character outside [A-Za-z0-9] and the CJK ideographs U+4E00–U+9FA5.
func CleanToken(word string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r >= 0x4E00 && r <= 0x9FA5:
			return r
		default:
			return -1
		}
	}, word)
}
