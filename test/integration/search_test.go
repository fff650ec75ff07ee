// Package integration exercises the HTTP API end to end with a file-backed database and
// the dictionary segmenter.
package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/bunseki/internal/config"
	"github.com/hyperjump/bunseki/internal/models"
	"github.com/hyperjump/bunseki/internal/search"
	"github.com/hyperjump/bunseki/internal/server"
	"github.com/hyperjump/bunseki/internal/storage"
	"github.com/hyperjump/bunseki/internal/textproc"
)

type client struct {
	t   *testing.T
	url string
}

func (c *client) do(method, path, principal string, body, out any) int {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, c.url+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if principal != "" {
		req.Header.Set(server.PrincipalHeader, principal)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func newAPI(t *testing.T) *client {
	t.Helper()
	if testing.Short() {
		t.Skip("loads the gse dictionary")
	}
	cfg := config.Default()
	cfg.Storage.DatabasePath = filepath.Join(t.TempDir(), "db.sqlite")

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	seg, err := textproc.NewSegmenter(cfg.Text.Segmenter, cfg.Text.DictionaryPath)
	require.NoError(t, err)
	tok := textproc.NewTokenizer(seg, textproc.WithExtraStopwords(cfg.Text.ExtraStopwords...))
	engine := search.NewEngine(store, tok, cfg)

	ts := httptest.NewServer(server.NewServer(engine, store, cfg, nil, nil).Handler())
	t.Cleanup(ts.Close)
	return &client{t: t, url: ts.URL}
}

func TestIntegration_SearchAndCluster(t *testing.T) {
	api := newAPI(t)

	docs := []models.DocumentInput{
		{ID: "ml", Title: "机器学习入门", Content: "机器学习算法从数据中学习规律。Machine learning algorithms learn from data."},
		{ID: "search", Title: "Search", Content: "Semantic search finds similar content across documents."},
		{ID: "cook", Title: "料理", Content: "今天的晚餐是红烧肉和米饭。"},
	}
	for _, d := range docs {
		require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/v1/documents", "alice", d, nil))
	}

	var resp models.SearchResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/v1/search", "alice",
		&models.SearchRequest{Query: "机器学习", WithScores: true}, &resp))
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "ml", resp.Results[0].Document.ID)
	assert.Greater(t, resp.Results[0].Score, 0.0)
	assert.Equal(t, 3, resp.CorpusSize)

	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/v1/search", "alice",
		&models.SearchRequest{Query: "machine learning", WithScores: true}, &resp))
	assert.Equal(t, "ml", resp.Results[0].Document.ID)

	k := 2
	var clusters models.ClusterResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/v1/clusters", "alice",
		&models.ClusterRequest{K: &k}, &clusters))
	require.Len(t, clusters.Clusters, 2)
	total := 0
	for _, c := range clusters.Clusters {
		total += c.Size()
		assert.LessOrEqual(t, len(c.Themes), 3)
	}
	assert.Equal(t, 3, total)
}

func TestIntegration_CollaboratorLifecycle(t *testing.T) {
	api := newAPI(t)

	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/v1/documents", "alice",
		&models.DocumentInput{ID: "plan", Title: "Plan", Content: "launch plan for the product"}, nil))

	var resp models.SearchResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/v1/search", "bob",
		&models.SearchRequest{Query: "launch", WithScores: true}, &resp))
	assert.Empty(t, resp.Results)

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/v1/documents/plan", "bob", nil, nil))
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/v1/documents/plan/collaborators", "alice",
		&models.CollaboratorInput{PrincipalID: "bob"}, nil))

	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/v1/search", "bob",
		&models.SearchRequest{Query: "launch", WithScores: true}, &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "plan", resp.Results[0].Document.ID)

	// Collaborators can read but not modify.
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/documents/plan", "bob", nil, nil))
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPut, "/api/v1/documents/plan", "bob",
		&models.DocumentInput{Content: "hijacked"}, nil))
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, "/api/v1/documents/plan", "bob", nil, nil))

	require.Equal(t, http.StatusOK, api.do(http.MethodDelete, "/api/v1/documents/plan/collaborators/bob", "alice", nil, nil))
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/v1/search", "bob",
		&models.SearchRequest{Query: "launch", WithScores: true}, &resp))
	assert.Empty(t, resp.Results)

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPost, "/api/v1/search", "",
		&models.SearchRequest{Query: "launch"}, nil))
}
