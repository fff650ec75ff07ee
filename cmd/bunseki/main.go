// Command bunseki runs the document analysis server and its command line client.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/bunseki/internal/config"
	"github.com/hyperjump/bunseki/internal/search"
	"github.com/hyperjump/bunseki/internal/storage"
	"github.com/hyperjump/bunseki/internal/textproc"
	"github.com/hyperjump/bunseki/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/bunseki/config.yaml"

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	debug      bool
}

// loadConfig loads config from path. When path is the default, ./config.yaml in the
// current working directory is preferred if present, and built-in defaults are used
// when neither file exists.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// setup loads the config and builds a logger for a subcommand.
func (o *globalOptions) setup() (*config.Config, string, *zap.Logger, error) {
	cfg, resolved, err := loadConfig(o.configPath)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := utils.NewLogger(cfg.Debug || o.debug)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, resolved, logger, nil
}

// Components holds the long-lived objects shared by the server and local commands.
type Components struct {
	Storage   storage.Storage
	Tokenizer *textproc.Tokenizer
	Engine    *search.Engine
}

// Close releases the components' resources.
func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	if cfg.Storage.DatabasePath != storage.InMemory {
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.DatabasePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	seg, err := textproc.NewSegmenter(cfg.Text.Segmenter, cfg.Text.DictionaryPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize segmenter: %w", err)
	}
	logger.Debug("segmenter initialized", zap.String("segmenter", seg.Name()))

	tok := textproc.NewTokenizer(seg, textproc.WithExtraStopwords(cfg.Text.ExtraStopwords...))
	engine := search.NewEngine(store, tok, cfg, search.WithLogger(logger))

	return &Components{
		Storage:   store,
		Tokenizer: tok,
		Engine:    engine,
	}, nil
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "bunseki",
		Short: "Document search and theme clustering",
		Long: `bunseki stores documents per owner, ranks them against free-text queries
with TF-IDF and cosine similarity, and groups them into themed clusters with k-means++.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath, "config file path")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newServerCmd(opts),
		newSearchCmd(opts),
		newClusterCmd(opts),
		newImportCmd(opts),
		newShareCmd(opts),
		newStatusCmd(opts),
		newInitCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bunseki version %s\n", version)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
