package tfidf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/bunseki/internal/models"
	"github.com/hyperjump/bunseki/internal/textproc"
)

func newTokenizer() *textproc.Tokenizer {
	return textproc.NewTokenizer(textproc.SimpleSegmenter{})
}

func doc(id, title, content string) *models.Document {
	return &models.Document{ID: id, Title: title, Content: content}
}

func TestExtractors(t *testing.T) {
	d := doc("1", "Title", "abcdef")
	assert.Equal(t, "Title abcdef", FullText(d))
	assert.Equal(t, "Title abc", Prefix(3)(d))
	assert.Equal(t, "Title abcdef", Prefix(0)(d))
	assert.Equal(t, " ", FullText(nil))

	cjk := doc("2", "标题", "机器学习算法")
	assert.Equal(t, "标题 机器", Prefix(2)(cjk))
}

func TestNewVocabulary_SortedAndDistinct(t *testing.T) {
	v := NewVocabulary([]string{"pear", "apple", "pear", "fig"})
	assert.Equal(t, []string{"apple", "fig", "pear"}, v.Terms)
	i, ok := v.Index("fig")
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = v.Index("kiwi")
	assert.False(t, ok)
	assert.Equal(t, 0, (*Vocabulary)(nil).Len())
}

func TestBuildVocabulary(t *testing.T) {
	corpus := []*models.Document{
		doc("1", "Go concurrency", "channels and goroutines"),
		doc("2", "Rust ownership", "borrow checker"),
		nil,
	}
	v := BuildVocabulary(corpus, newTokenizer(), FullText)
	assert.Equal(t, []string{"borrow", "channels", "checker", "concurrency", "go", "goroutines", "ownership", "rust"}, v.Terms)

	shared := BuildSharedVocabulary(corpus, newTokenizer(), FullText)
	assert.Equal(t, v.Terms, shared.Terms)
}

func TestComputeIDF(t *testing.T) {
	corpus := []*models.Document{
		doc("1", "", "golang tools"),
		doc("2", "", "golang"),
		doc("3", "", "python"),
	}
	vocab := NewVocabulary([]string{"golang", "python", "missing"})
	idf := ComputeIDF(corpus, vocab, FullText)

	assert.InDelta(t, math.Log(3/(2+1e-5))+1, idf.Weight("golang"), 1e-12)
	assert.InDelta(t, math.Log(3/(1+1e-5))+1, idf.Weight("python"), 1e-12)
	assert.InDelta(t, math.Log(3/1e-5)+1, idf.Weight("missing"), 1e-9)
	assert.Equal(t, 0.0, idf.Weight("unknown"))
	for _, w := range idf.Weights {
		assert.Greater(t, w, 0.0)
	}
}

func TestComputeIDF_SubstringDocumentFrequency(t *testing.T) {
	corpus := []*models.Document{doc("1", "", "GOLANGS are fun"), doc("2", "", "nothing")}
	idf := ComputeIDF(corpus, NewVocabulary([]string{"golang"}), FullText)
	assert.InDelta(t, math.Log(2/(1+1e-5))+1, idf.Weight("golang"), 1e-12)
}

func TestComputeIDF_EmptyCorpus(t *testing.T) {
	idf := ComputeIDF(nil, NewVocabulary([]string{"a1"}), FullText)
	assert.Equal(t, []float64{0}, idf.Weights)
}

func TestVectorize(t *testing.T) {
	vocab := NewVocabulary([]string{"aa", "bb"})
	idf := &IDF{Vocab: vocab, Weights: []float64{2, 3}}

	// "aaa" holds one non-overlapping "aa".
	vec := Vectorize("AAA bb bb", idf)
	require.Len(t, vec, 2)
	assert.InDelta(t, 1.0/3*2, vec[0], 1e-12)
	assert.InDelta(t, 2.0/3*3, vec[1], 1e-12)

	assert.Equal(t, []float64{0, 0}, Vectorize("nothing here", idf))
	assert.Empty(t, Vectorize("aa", &IDF{Vocab: NewVocabulary(nil)}))
}

func TestVectorizeCorpus_MatchesSequential(t *testing.T) {
	corpus := []*models.Document{
		doc("1", "alpha", "beta gamma"),
		doc("2", "gamma", "gamma delta"),
		nil,
		doc("4", "epsilon", ""),
	}
	vocab := BuildVocabulary(corpus, newTokenizer(), FullText)
	idf := ComputeIDF(corpus, vocab, FullText)

	got := VectorizeCorpus(corpus, FullText, idf)
	require.Len(t, got, len(corpus))
	for i, d := range corpus {
		assert.Equal(t, Vectorize(FullText(d), idf), got[i], "doc %d", i)
	}
	for _, v := range got[2] {
		assert.Equal(t, 0.0, v)
	}
}
