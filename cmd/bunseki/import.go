package main

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/hyperjump/bunseki/internal/ingest"
)

type importOptions struct {
	principal  string
	include    []string
	exclude    []string
	noProgress bool
}

func newImportCmd(opts *globalOptions) *cobra.Command {
	imp := &importOptions{}
	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Import a file or directory as documents owned by a principal",
		Long: `Extract text from a file, or from every matching file under a directory, and store
each one as a document. Files already imported with the same size and modification
time are skipped.`,
		Example: `  bunseki import --as alice ~/Documents/reports
  bunseki import --as alice --include "**/*.md" --exclude "drafts/**" ./notes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts, imp, args[0])
		},
	}
	cmd.Flags().StringVar(&imp.principal, "as", "", "principal that owns the imported documents (required)")
	cmd.Flags().StringArrayVar(&imp.include, "include", nil, "only import paths matching this glob (repeatable)")
	cmd.Flags().StringArrayVar(&imp.exclude, "exclude", nil, "skip paths matching this glob (repeatable)")
	cmd.Flags().BoolVar(&imp.noProgress, "no-progress", false, "disable the progress bar")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

func runImport(cmd *cobra.Command, opts *globalOptions, imp *importOptions, path string) error {
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

	filter := &ingest.Filter{
		Extensions: cfg.Import.Extensions,
		Include:    append(append([]string{}, cfg.Import.Include...), imp.include...),
		Exclude:    append(append([]string{}, cfg.Import.Exclude...), imp.exclude...),
	}
	importer := ingest.NewImporter(components.Storage, ingest.WithLogger(logger))

	var progress ingest.Progress
	var bar *progressbar.ProgressBar
	if !imp.noProgress && isInteractive(os.Stderr) {
		progress = func(done, total int, _ string) {
			if bar == nil {
				bar = newProgressBar(total, os.Stderr)
			}
			_ = bar.Set(done)
		}
	}

	summary, err := importer.ImportDirectory(cmd.Context(), imp.principal, path, filter, progress)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	for _, e := range summary.Errors {
		logger.Debug("import error", zap.Error(e))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d, unchanged %d, failed %d\n",
		summary.Imported, summary.Unchanged, summary.Failed)
	return nil
}

func isInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func newProgressBar(total int, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Importing"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(w),
		progressbar.OptionClearOnFinish(),
	)
}
