// Package cli formats search and clustering results for the bunseki command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/bunseki/internal/models"
	"github.com/hyperjump/bunseki/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one line per result.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// snippetLength is how many characters of content the text format shows per document.
const snippetLength = 200

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	case "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, compact or json)", s)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteSearchResults writes search results to w. Scores are shown only when withScores is set.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat, withScores bool) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	case OutputCompact:
		for _, hit := range response.Results {
			if withScores {
				fmt.Fprintf(w, "%d\t%.4f\t%s\t%s\n", hit.Rank, hit.Score, hit.Document.ID, hit.Document.TitleOrEmpty())
			} else {
				fmt.Fprintf(w, "%d\t%s\t%s\n", hit.Rank, hit.Document.ID, hit.Document.TitleOrEmpty())
			}
		}
		return nil
	default:
		writeSearchResultsText(w, response, withScores)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse, withScores bool) {
	fmt.Fprintf(w, "\nFound %d of %d documents in %dms\n", response.Total, response.CorpusSize, response.QueryTime)
	if response.Fallback {
		fmt.Fprintln(w, "Query has no searchable terms; showing documents unranked.")
	}
	fmt.Fprintln(w)
	for _, hit := range response.Results {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		if withScores {
			fmt.Fprintf(w, "Rank: %d | Score: %.4f\n", hit.Rank, hit.Score)
		} else {
			fmt.Fprintf(w, "Rank: %d\n", hit.Rank)
		}
		writeDocument(w, hit.Document)
	}
}

func writeDocument(w io.Writer, doc *models.Document) {
	if doc == nil {
		return
	}
	fmt.Fprintf(w, "ID: %s\n", doc.ID)
	if doc.Title != "" {
		fmt.Fprintf(w, "Title: %s\n", doc.Title)
	}
	fmt.Fprintf(w, "\n%s\n\n", utils.Truncate(doc.Content, snippetLength))
}

// WriteClusters writes clustering results to w.
func WriteClusters(w io.Writer, response *models.ClusterResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	case OutputCompact:
		for i, c := range response.Clusters {
			ids := make([]string, len(c.Documents))
			for j, d := range c.Documents {
				ids[j] = d.ID
			}
			fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, strings.Join(c.Themes, ","), strings.Join(ids, ","))
		}
		return nil
	default:
		fmt.Fprintf(w, "\n%d clusters over %d documents in %dms\n\n", len(response.Clusters), response.CorpusSize, response.QueryTime)
		for i, c := range response.Clusters {
			fmt.Fprintf(w, "Cluster %d (%d documents) themes: %s\n", i+1, c.Size(), strings.Join(c.Themes, ", "))
			for _, d := range c.Documents {
				title := d.TitleOrEmpty()
				if title == "" {
					title = TruncateWords(d.ContentOrEmpty(), 8)
				}
				fmt.Fprintf(w, "  - %s  %s\n", d.ID, title)
			}
			fmt.Fprintln(w)
		}
		return nil
	}
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
