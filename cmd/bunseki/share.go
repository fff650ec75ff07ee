package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/hyperjump/bunseki/internal/models"
)

type shareOptions struct {
	owner     string
	remove    bool
	serverURL string
}

func newShareCmd(opts *globalOptions) *cobra.Command {
	so := &shareOptions{}
	cmd := &cobra.Command{
		Use:   "share <doc-id> <principal>",
		Short: "Grant (or with --remove, revoke) a principal's access to a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			docID, principal := args[0], args[1]
			var err error
			if so.serverURL != "" {
				err = shareViaHTTP(cmd.Context(), so, docID, principal)
			} else {
				err = shareLocal(cmd.Context(), opts, so, docID, principal)
			}
			if err != nil {
				return fmt.Errorf("share failed: %w", err)
			}
			if so.remove {
				fmt.Fprintf(cmd.OutOrStdout(), "Revoked %s on %s\n", principal, docID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Shared %s with %s\n", docID, principal)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&so.owner, "as", "", "owner of the document (required)")
	cmd.Flags().BoolVar(&so.remove, "remove", false, "revoke access instead of granting it")
	addServerFlag(cmd.Flags(), &so.serverURL)
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

func shareLocal(ctx context.Context, opts *globalOptions, so *shareOptions, docID, principal string) error {
	cfg, _, logger, err := opts.setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()
	if so.remove {
		return components.Storage.RemoveCollaborator(ctx, so.owner, docID, principal)
	}
	return components.Storage.AddCollaborator(ctx, so.owner, docID, principal)
}

func shareViaHTTP(ctx context.Context, so *shareOptions, docID, principal string) error {
	path := "/api/v1/documents/" + url.PathEscape(docID) + "/collaborators"
	if so.remove {
		return callServer(ctx, http.MethodDelete, so.serverURL, path+"/"+url.PathEscape(principal), so.owner, nil, nil)
	}
	return callServer(ctx, http.MethodPost, so.serverURL, path, so.owner, &models.CollaboratorInput{PrincipalID: principal}, nil)
}
