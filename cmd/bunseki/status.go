package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hyperjump/bunseki/internal/models"
	"github.com/hyperjump/bunseki/internal/storage"
)

// statusConfigResponse holds the configuration fields reported by status.
type statusConfigResponse struct {
	Segmenter       string `json:"segmenter"`
	ResultLimit     int    `json:"result_limit"`
	VocabularyScope string `json:"vocabulary_scope"`
	DefaultK        int    `json:"default_k"`
	MaxIterations   int    `json:"max_iterations"`
	ContentPrefix   int    `json:"content_prefix"`
	DatabasePath    string `json:"database_path,omitempty"`
}

// statusResponse is the shape of the GET /api/v1/status response.
type statusResponse struct {
	Documents        int64                 `json:"documents"`
	DiskUsageBytes   *int64                `json:"disk_usage_bytes,omitempty"`
	Config           *statusConfigResponse `json:"config,omitempty"`
	WatchDirectories []string              `json:"watch_directories,omitempty"`
	Watching         int                   `json:"watching,omitempty"`
}

// addServerFlag registers the --server flag that sends a command to a running server.
func addServerFlag(fs *pflag.FlagSet, target *string) {
	fs.StringVar(target, "server", "", "server URL (empty = use local storage)")
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	var serverURL, principal, output string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show document count, disk usage and configuration",
		Long: `Show document count, disk usage and configuration.

With --as only the documents that principal can access are counted. Against a
running server --as is required and only the principal's view is reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				status *statusResponse
				err    error
			)
			if serverURL != "" {
				if principal == "" {
					return fmt.Errorf("status against a server requires --as")
				}
				status, err = statusViaHTTP(cmd.Context(), serverURL, principal)
			} else {
				status, err = statusLocal(cmd.Context(), opts, principal)
			}
			if err != nil {
				return fmt.Errorf("status failed: %w", err)
			}
			return writeStatus(cmd.OutOrStdout(), status, output)
		},
	}
	addServerFlag(cmd.Flags(), &serverURL)
	cmd.Flags().StringVar(&principal, "as", "", "principal whose documents are counted")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text or json")
	return cmd
}

func statusLocal(ctx context.Context, opts *globalOptions, principal string) (*statusResponse, error) {
	cfg, _, logger, err := opts.setup()
	if err != nil {
		return nil, err
	}
	defer func() { _ = logger.Sync() }()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer components.Close()

	var docCount int64
	if principal == "" {
		docCount, err = components.Storage.CountDocuments(ctx)
	} else {
		var docs []*models.Document
		docs, err = components.Storage.ListAccessibleDocuments(ctx, principal)
		docCount = int64(len(docs))
	}
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	status := &statusResponse{
		Documents: docCount,
		Config: &statusConfigResponse{
			Segmenter:       cfg.Text.Segmenter,
			ResultLimit:     cfg.Search.ResultLimit,
			VocabularyScope: cfg.Search.VocabularyScope,
			DefaultK:        cfg.Cluster.DefaultK,
			MaxIterations:   cfg.Cluster.MaxIterations,
			ContentPrefix:   cfg.Cluster.ContentPrefix,
			DatabasePath:    cfg.Storage.DatabasePath,
		},
		WatchDirectories: cfg.Watch.Directories,
	}
	if diskBytes, err := storage.DiskUsageBytes(storage.DatabaseFiles(cfg.Storage.DatabasePath)...); err == nil {
		status.DiskUsageBytes = &diskBytes
	}
	return status, nil
}

func statusViaHTTP(ctx context.Context, serverURL, principal string) (*statusResponse, error) {
	var status statusResponse
	if err := callServer(ctx, http.MethodGet, serverURL, "/api/v1/status", principal, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func writeStatus(w io.Writer, status *statusResponse, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	case "text", "":
		fmt.Fprintf(w, "documents:          %d   # count of stored documents\n", status.Documents)
		if status.DiskUsageBytes != nil {
			fmt.Fprintf(w, "disk_usage_bytes:   %d   # database files on disk\n", *status.DiskUsageBytes)
		}
		for _, dir := range status.WatchDirectories {
			fmt.Fprintf(w, "watching:           %s\n", dir)
		}
		if len(status.WatchDirectories) == 0 && status.Watching > 0 {
			fmt.Fprintf(w, "watching:           %d directories\n", status.Watching)
		}
		if c := status.Config; c != nil {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "# configuration")
			fmt.Fprintf(w, "segmenter:          %s\n", c.Segmenter)
			fmt.Fprintf(w, "result_limit:       %d\n", c.ResultLimit)
			fmt.Fprintf(w, "vocabulary_scope:   %s\n", c.VocabularyScope)
			fmt.Fprintf(w, "default_k:          %d\n", c.DefaultK)
			fmt.Fprintf(w, "max_iterations:     %d\n", c.MaxIterations)
			fmt.Fprintf(w, "content_prefix:     %d\n", c.ContentPrefix)
			if c.DatabasePath != "" {
				fmt.Fprintf(w, "database_path:      %s\n", c.DatabasePath)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q; use text or json", format)
	}
}
