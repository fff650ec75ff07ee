package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperjump/bunseki/internal/cli"
	"github.com/hyperjump/bunseki/internal/models"
)

// buildSearchQuery joins positional args into a single query string.
// Quoted phrases arrive as a single arg, so "hyperjump profile" and hyperjump profile both yield "hyperjump profile".
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

type searchOptions struct {
	principal  string
	withScores bool
	output     string
	serverURL  string
}

func newSearchCmd(opts *globalOptions) *cobra.Command {
	so := &searchOptions{}
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Rank the caller's documents against a free-text query",
		Long: `Rank every document the principal can access against the query and print the
top results. An empty query prints the first documents unranked.`,
		Example: `  bunseki search --as alice invoice from microsoft
  bunseki search --as alice --scores --output json "quarterly report"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(so.output)
			if err != nil {
				return err
			}
			req := &models.SearchRequest{Query: buildSearchQuery(args), WithScores: true}

			var resp *models.SearchResponse
			if so.serverURL != "" {
				resp, err = searchViaHTTP(cmd.Context(), so.serverURL, so.principal, req)
			} else {
				resp, err = searchLocal(cmd.Context(), opts, so.principal, req)
			}
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			return cli.WriteSearchResults(cmd.OutOrStdout(), resp, format, so.withScores)
		},
	}
	cmd.Flags().StringVar(&so.principal, "as", "", "principal to search as (required)")
	cmd.Flags().BoolVar(&so.withScores, "scores", false, "show similarity scores")
	cmd.Flags().StringVarP(&so.output, "output", "o", string(cli.OutputText), "output format: text, compact or json")
	addServerFlag(cmd.Flags(), &so.serverURL)
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

func searchLocal(ctx context.Context, opts *globalOptions, principal string, req *models.SearchRequest) (*models.SearchResponse, error) {
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
	return components.Engine.SearchFor(ctx, principal, req)
}

func searchViaHTTP(ctx context.Context, serverURL, principal string, req *models.SearchRequest) (*models.SearchResponse, error) {
	var resp models.SearchResponse
	if err := callServer(ctx, http.MethodPost, serverURL, "/api/v1/search", principal, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
