package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/hyperjump/bunseki/internal/cli"
	"github.com/hyperjump/bunseki/internal/models"
)

type clusterOptions struct {
	principal string
	k         int
	output    string
	serverURL string
}

func newClusterCmd(opts *globalOptions) *cobra.Command {
	co := &clusterOptions{}
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Group the caller's documents into themed clusters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := cli.ParseOutputFormat(co.output)
			if err != nil {
				return err
			}
			req := &models.ClusterRequest{}
			if cmd.Flags().Changed("k") {
				k := co.k
				req.K = &k
			}

			var resp *models.ClusterResponse
			if co.serverURL != "" {
				resp, err = clusterViaHTTP(cmd.Context(), co.serverURL, co.principal, req)
			} else {
				resp, err = clusterLocal(cmd.Context(), opts, co.principal, req)
			}
			if err != nil {
				return fmt.Errorf("cluster failed: %w", err)
			}
			return cli.WriteClusters(cmd.OutOrStdout(), resp, format)
		},
	}
	cmd.Flags().StringVar(&co.principal, "as", "", "principal to cluster as (required)")
	cmd.Flags().IntVarP(&co.k, "k", "k", 0, "number of clusters (default from config)")
	cmd.Flags().StringVarP(&co.output, "output", "o", string(cli.OutputText), "output format: text, compact or json")
	addServerFlag(cmd.Flags(), &co.serverURL)
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

func clusterLocal(ctx context.Context, opts *globalOptions, principal string, req *models.ClusterRequest) (*models.ClusterResponse, error) {
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
	return components.Engine.ClusterFor(ctx, principal, req)
}

func clusterViaHTTP(ctx context.Context, serverURL, principal string, req *models.ClusterRequest) (*models.ClusterResponse, error) {
	var resp models.ClusterResponse
	if err := callServer(ctx, http.MethodPost, serverURL, "/api/v1/clusters", principal, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
