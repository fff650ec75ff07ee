// Package search provides the document intelligence engine: TF-IDF relevance search
// and k-means++ clustering over a principal's accessible documents.
package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/bunseki/internal/cluster"
	"github.com/hyperjump/bunseki/internal/config"
	"github.com/hyperjump/bunseki/internal/models"
	"github.com/hyperjump/bunseki/internal/ranking"
	"github.com/hyperjump/bunseki/internal/storage"
	"github.com/hyperjump/bunseki/internal/tfidf"
	"github.com/hyperjump/bunseki/pkg/utils"
)

// ErrInvalidArgument is returned for requests that can never succeed, such as k <= 0.
var ErrInvalidArgument = models.ErrInvalidArgument

// Engine runs search and clustering. It holds no per-request state: every vocabulary,
// IDF table and vector lives only for the duration of one call.
type Engine struct {
	storage   storage.Storage
	tokenizer tfidf.Tokenizer
	config    *config.Config
	ranker    *ranking.Ranker
	logger    *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine. store may be nil when only the corpus-level Search and
// Cluster are used. A nil cfg uses the defaults.
func NewEngine(store storage.Storage, tok tfidf.Tokenizer, cfg *config.Config, opts ...EngineOption) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &Engine{
		storage:   store,
		tokenizer: tok,
		config:    cfg,
		ranker:    ranking.NewRanker(cfg.Search.ResultLimit),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = utils.OrNop(e.logger)
	return e
}

// Search returns the corpus documents most similar to query, best first.
func (e *Engine) Search(query string, corpus []*models.Document) []*models.Document {
	hits, _ := e.SearchScored(query, corpus)
	docs := make([]*models.Document, len(hits))
	for i, h := range hits {
		docs[i] = h.Document
	}
	return docs
}

// SearchScored ranks corpus against query and returns the hits with their cosine scores.
// When the query has no usable terms the first documents are returned in corpus order
// with zero scores and fallback set.
func (e *Engine) SearchScored(query string, corpus []*models.Document) (hits []*models.SearchHit, fallback bool) {
	if len(corpus) == 0 {
		return []*models.SearchHit{}, false
	}

	terms := e.tokenizer.Tokenize(query)
	if len(terms) == 0 {
		n := len(corpus)
		if limit := e.ranker.Limit(); limit > 0 && n > limit {
			n = limit
		}
		hits = make([]*models.SearchHit, n)
		for i := 0; i < n; i++ {
			hits[i] = &models.SearchHit{Document: corpus[i], Rank: i + 1}
		}
		return hits, true
	}

	var vocab *tfidf.Vocabulary
	if e.config.Search.VocabularyScope == config.ScopeQuery {
		vocab = tfidf.NewVocabulary(terms)
	} else {
		vocab = tfidf.BuildVocabulary(corpus, e.tokenizer, tfidf.FullText)
	}
	idf := tfidf.ComputeIDF(corpus, vocab, tfidf.FullText)
	docVecs := tfidf.VectorizeCorpus(corpus, tfidf.FullText, idf)
	queryVec := tfidf.Vectorize(query, idf)

	ranked := e.ranker.Rank(queryVec, docVecs)
	hits = make([]*models.SearchHit, len(ranked))
	for i, r := range ranked {
		hits[i] = &models.SearchHit{Document: corpus[r.Index], Score: r.Score, Rank: i + 1}
	}
	e.logger.Debug("ranked corpus",
		zap.Int("query_terms", len(terms)),
		zap.Int("vocabulary", vocab.Len()),
		zap.Int("documents", len(corpus)))
	return hits, false
}

// Cluster partitions corpus into k clusters and names each by its heaviest terms.
// Every centroid yields a cluster, including empty ones. An empty corpus
// yields no clusters whatever k is; otherwise k must be positive.
func (e *Engine) Cluster(corpus []*models.Document, k int) ([]*models.Cluster, error) {
	if len(corpus) == 0 {
		return []*models.Cluster{}, nil
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: cluster count k must be positive, got %d", ErrInvalidArgument, k)
	}

	extract := tfidf.Prefix(e.config.Cluster.ContentPrefix)
	vocab := tfidf.BuildSharedVocabulary(corpus, e.tokenizer, extract)
	idf := tfidf.ComputeIDF(corpus, vocab, extract)
	points := tfidf.VectorizeCorpus(corpus, extract, idf)

	res, err := cluster.KMeans(points, k, cluster.Options{
		MaxIterations: e.config.Cluster.MaxIterations,
		Seed:          e.config.Cluster.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("k-means: %w", err)
	}

	themeCount := e.config.Cluster.ThemeCount
	if themeCount <= 0 {
		themeCount = cluster.DefaultThemeCount
	}
	members := res.Members()
	clusters := make([]*models.Cluster, len(res.Centroids))
	for c, centroid := range res.Centroids {
		docs := make([]*models.Document, len(members[c]))
		for i, p := range members[c] {
			docs[i] = corpus[p]
		}
		clusters[c] = &models.Cluster{
			Documents: docs,
			Themes:    cluster.Themes(centroid, vocab.Terms, themeCount),
		}
	}
	e.logger.Debug("clustered corpus",
		zap.Int("k", k),
		zap.Int("vocabulary", vocab.Len()),
		zap.Int("documents", len(corpus)),
		zap.Int("iterations", res.Iterations))
	return clusters, nil
}

// SearchFor runs a search over the documents principal can access.
func (e *Engine) SearchFor(ctx context.Context, principal string, req *models.SearchRequest) (*models.SearchResponse, error) {
	start := time.Now()
	if err := ProcessSearchRequest(req); err != nil {
		return nil, err
	}
	corpus, err := e.corpus(ctx, principal)
	if err != nil {
		return nil, err
	}

	hits, fallback := e.SearchScored(req.Query, corpus)
	return &models.SearchResponse{
		Results:    hits,
		Total:      len(hits),
		CorpusSize: len(corpus),
		QueryTime:  time.Since(start).Milliseconds(),
		Query:      req.Query,
		Fallback:   fallback,
	}, nil
}

// ClusterFor clusters the documents principal can access. A request without k uses
// the configured default.
func (e *Engine) ClusterFor(ctx context.Context, principal string, req *models.ClusterRequest) (*models.ClusterResponse, error) {
	start := time.Now()
	k, err := ProcessClusterRequest(req, e.config.Cluster.DefaultK)
	if err != nil {
		return nil, err
	}
	corpus, err := e.corpus(ctx, principal)
	if err != nil {
		return nil, err
	}

	clusters, err := e.Cluster(corpus, k)
	if err != nil {
		return nil, err
	}
	return &models.ClusterResponse{
		Clusters:   clusters,
		K:          k,
		CorpusSize: len(corpus),
		QueryTime:  time.Since(start).Milliseconds(),
	}, nil
}

func (e *Engine) corpus(ctx context.Context, principal string) ([]*models.Document, error) {
	if e.storage == nil {
		return nil, fmt.Errorf("search engine has no document store")
	}
	if principal == "" {
		return nil, fmt.Errorf("%w: principal is required", ErrInvalidArgument)
	}
	docs, err := e.storage.ListAccessibleDocuments(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	return docs, nil
}
