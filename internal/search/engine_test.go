package search

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/bunseki/internal/config"
	"github.com/hyperjump/bunseki/internal/models"
	"github.com/hyperjump/bunseki/internal/storage"
	"github.com/hyperjump/bunseki/internal/textproc"
	"github.com/hyperjump/bunseki/internal/tfidf"
)

func newTestEngine(t *testing.T, store storage.Storage, mutate func(*config.Config)) *Engine {
	t.Helper()
	cfg := config.Default()
	cfg.Text.Segmenter = config.SegmenterSimple
	if mutate != nil {
		mutate(cfg)
	}
	return NewEngine(store, textproc.NewTokenizer(textproc.SimpleSegmenter{}), cfg)
}

func doc(id, title, content string) *models.Document {
	return &models.Document{ID: id, Title: title, Content: content}
}

func ids(docs []*models.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func sampleCorpus() []*models.Document {
	return []*models.Document{
		doc("go1", "Golang concurrency", "goroutines channels select scheduler"),
		doc("bake1", "Bread baking", "flour yeast oven dough"),
		doc("go2", "Golang channels", "buffered channels goroutines deadlock"),
		doc("bake2", "Cake baking", "flour sugar oven frosting"),
		doc("misc", "Gardening", "tomatoes soil compost"),
	}
}

func TestEngine_Search_EmptyCorpus(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	assert.Empty(t, e.Search("anything", nil))
	assert.Empty(t, e.Search("anything", []*models.Document{}))
}

func TestEngine_Search_EmptyQueryFallback(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	corpus := make([]*models.Document, 15)
	for i := range corpus {
		corpus[i] = doc(fmt.Sprintf("d%02d", i), "title", "content")
	}
	for _, q := range []string{"", "   ", "the and of", "12 3.5 !!"} {
		hits, fallback := e.SearchScored(q, corpus)
		assert.True(t, fallback, "query %q", q)
		require.Len(t, hits, 10)
		for i, h := range hits {
			assert.Same(t, corpus[i], h.Document)
			assert.Equal(t, i+1, h.Rank)
		}
	}
	assert.Len(t, e.Search("", corpus[:3]), 3)
}

func TestEngine_Search_SelfSimilarity(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	d := doc("only", "Quarterly budget", "revenue projections for the next quarter")
	got := e.Search(d.Title, []*models.Document{d})
	require.Len(t, got, 1)
	assert.Same(t, d, got[0])
}

func TestEngine_Search_Relevance(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	got := ids(e.Search("goroutines channels", sampleCorpus()))
	require.Len(t, got, 5)
	assert.ElementsMatch(t, []string{"go1", "go2"}, got[:2])
}

func TestEngine_Search_ScoresBounded(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	hits, fallback := e.SearchScored("flour oven goroutines", sampleCorpus())
	assert.False(t, fallback)
	for _, h := range hits {
		assert.GreaterOrEqual(t, h.Score, 0.0)
		assert.LessOrEqual(t, h.Score, 1.0)
	}
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
}

func TestEngine_Search_ScalarMultipleRanksFirst(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	corpus := []*models.Document{
		doc("b", "", "walrus penguin otter"),
		doc("a", "", "walrus penguin"),
	}
	hits, _ := e.SearchScored("walrus penguin", corpus)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].Document.ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
	assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)
}

func TestEngine_Search_TiesKeepCorpusOrder(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	corpus := []*models.Document{
		doc("x", "", "unrelated words"),
		doc("first", "", "kiwi mango"),
		doc("second", "", "kiwi mango"),
		doc("third", "", "kiwi mango"),
	}
	got := ids(e.Search("kiwi", corpus))
	assert.Equal(t, []string{"first", "second", "third", "x"}, got)
}

func TestEngine_Search_LimitsResults(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	corpus := make([]*models.Document, 25)
	for i := range corpus {
		corpus[i] = doc(fmt.Sprintf("d%02d", i), "report", fmt.Sprintf("annual report section%c", 'a'+i))
	}
	assert.Len(t, e.Search("report", corpus), 10)

	e = newTestEngine(t, nil, func(c *config.Config) { c.Search.ResultLimit = 3 })
	assert.Len(t, e.Search("report", corpus), 3)
}

func TestEngine_Search_NilDocument(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	corpus := []*models.Document{nil, doc("a", "apples", "orchard")}
	got := e.Search("apples", corpus)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Nil(t, got[1])
}

func TestEngine_Search_QueryScope(t *testing.T) {
	e := newTestEngine(t, nil, func(c *config.Config) { c.Search.VocabularyScope = config.ScopeQuery })
	got := ids(e.Search("flour", sampleCorpus()))
	require.Len(t, got, 5)
	assert.ElementsMatch(t, []string{"bake1", "bake2"}, got[:2])
}

func TestEngine_Search_Deterministic(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	corpus := sampleCorpus()
	first := ids(e.Search("baking golang", corpus))
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ids(e.Search("baking golang", corpus)))
	}
}

func TestEngine_Cluster_EmptyCorpus(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	for _, k := range []int{3, 0, -1} {
		got, err := e.Cluster(nil, k)
		require.NoError(t, err, "k=%d", k)
		assert.NotNil(t, got, "k=%d", k)
		assert.Empty(t, got, "k=%d", k)
	}
}

func TestEngine_Cluster_InvalidK(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	for _, k := range []int{0, -1} {
		_, err := e.Cluster(sampleCorpus(), k)
		assert.True(t, errors.Is(err, ErrInvalidArgument), "k=%d: %v", k, err)
	}
}

func TestEngine_Cluster_Completeness(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	corpus := sampleCorpus()
	for k := 1; k <= len(corpus); k++ {
		clusters, err := e.Cluster(corpus, k)
		require.NoError(t, err)
		require.Len(t, clusters, k)

		seen := make(map[*models.Document]int)
		for _, c := range clusters {
			for _, d := range c.Documents {
				seen[d]++
			}
		}
		require.Len(t, seen, len(corpus), "k=%d", k)
		for _, d := range corpus {
			assert.Equal(t, 1, seen[d], "k=%d doc=%s", k, d.ID)
		}
	}
}

func TestEngine_Cluster_CorpusOrderWithinCluster(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	corpus := sampleCorpus()
	pos := make(map[*models.Document]int)
	for i, d := range corpus {
		pos[d] = i
	}
	clusters, err := e.Cluster(corpus, 2)
	require.NoError(t, err)
	for _, c := range clusters {
		for i := 1; i < len(c.Documents); i++ {
			assert.Less(t, pos[c.Documents[i-1]], pos[c.Documents[i]])
		}
	}
}

func TestEngine_Cluster_Themes(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	corpus := sampleCorpus()
	vocab := tfidf.BuildSharedVocabulary(corpus, e.tokenizer, tfidf.Prefix(300))

	clusters, err := e.Cluster(corpus, 2)
	require.NoError(t, err)
	for _, c := range clusters {
		assert.Len(t, c.Themes, 3)
		for _, th := range c.Themes {
			_, ok := vocab.Index(th)
			assert.True(t, ok, "theme %q not in vocabulary", th)
		}
	}

	tiny := []*models.Document{doc("t", "", "lonely")}
	clusters, err = e.Cluster(tiny, 1)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, []string{"lonely"}, clusters[0].Themes)
}

func TestEngine_Cluster_MoreClustersThanDocuments(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	corpus := sampleCorpus()[:2]
	clusters, err := e.Cluster(corpus, 4)
	require.NoError(t, err)
	require.Len(t, clusters, 4)

	total := 0
	for _, c := range clusters {
		total += c.Size()
		assert.NotNil(t, c.Documents)
	}
	assert.Equal(t, 2, total)
}

func TestEngine_Cluster_Deterministic(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	corpus := sampleCorpus()
	first, err := e.Cluster(corpus, 3)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := e.Cluster(corpus, 3)
		require.NoError(t, err)
		require.Len(t, again, len(first))
		for c := range first {
			assert.Equal(t, ids(first[c].Documents), ids(again[c].Documents))
			assert.Equal(t, first[c].Themes, again[c].Themes)
		}
	}
}

func TestEngine_SearchFor_ClusterFor(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "docs.db"))
	require.NoError(t, err)
	defer store.Close()

	for _, d := range sampleCorpus() {
		d.OwnerID = "alice"
		require.NoError(t, store.CreateDocument(ctx, d))
	}
	require.NoError(t, store.CreateDocument(ctx, &models.Document{
		ID: "bob1", OwnerID: "bob", Title: "Golang generics", Content: "goroutines channels type parameters",
	}))

	e := newTestEngine(t, store, nil)

	resp, err := e.SearchFor(ctx, "alice", &models.SearchRequest{Query: "  goroutines  "})
	require.NoError(t, err)
	assert.Equal(t, "goroutines", resp.Query)
	assert.Equal(t, 5, resp.CorpusSize)
	assert.False(t, resp.Fallback)
	for _, h := range resp.Results {
		assert.NotEqual(t, "bob1", h.Document.ID)
	}

	require.NoError(t, store.AddCollaborator(ctx, "bob", "bob1", "alice"))
	resp, err = e.SearchFor(ctx, "alice", &models.SearchRequest{Query: "generics"})
	require.NoError(t, err)
	assert.Equal(t, 6, resp.CorpusSize)
	assert.Equal(t, "bob1", resp.Results[0].Document.ID)

	empty, err := e.SearchFor(ctx, "carol", &models.SearchRequest{Query: "golang"})
	require.NoError(t, err)
	assert.Empty(t, empty.Results)

	k := 2
	cresp, err := e.ClusterFor(ctx, "alice", &models.ClusterRequest{K: &k})
	require.NoError(t, err)
	assert.Equal(t, 2, cresp.K)
	assert.Len(t, cresp.Clusters, 2)

	cresp, err = e.ClusterFor(ctx, "alice", &models.ClusterRequest{})
	require.NoError(t, err)
	assert.Equal(t, config.Default().Cluster.DefaultK, cresp.K)

	bad := 0
	_, err = e.ClusterFor(ctx, "alice", &models.ClusterRequest{K: &bad})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = e.SearchFor(ctx, "", &models.SearchRequest{Query: "x"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
