package models

// SearchHit is a single ranked document. Score is the cosine similarity in [0, 1].
type SearchHit struct {
	Document *Document `json:"document"`
	Score    float64   `json:"score"`
	Rank     int       `json:"rank"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Results []*SearchHit `json:"results"`
	Total   int          `json:"total"`
	// CorpusSize is the number of documents the caller could access.
	CorpusSize int    `json:"corpus_size"`
	QueryTime  int64  `json:"query_time_ms"`
	Query      string `json:"query"`
	// Fallback is set when the query produced no usable terms and the first documents
	// of the corpus were returned unranked.
	Fallback bool `json:"fallback,omitempty"`
}

// Documents returns the ranked documents without scores.
func (r *SearchResponse) Documents() []*Document {
	docs := make([]*Document, len(r.Results))
	for i, hit := range r.Results {
		docs[i] = hit.Document
	}
	return docs
}

// Cluster is a group of documents with the vocabulary terms weighted highest in its centroid.
type Cluster struct {
	Documents []*Document `json:"documents"`
	Themes    []string    `json:"themes"`
}

// Size returns the number of documents in the cluster.
func (c *Cluster) Size() int {
	return len(c.Documents)
}

// ClusterResponse is the response for a clustering request.
type ClusterResponse struct {
	Clusters   []*Cluster `json:"clusters"`
	K          int        `json:"k"`
	CorpusSize int        `json:"corpus_size"`
	QueryTime  int64      `json:"query_time_ms"`
}
