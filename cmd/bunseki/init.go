package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hyperjump/bunseki/internal/config"
)

func newInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file with every default filled in",
		Long: `Write a configuration file holding the built-in defaults, ready to edit.
The file is written to ./config.yaml unless a path is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "config.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			configPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("failed to resolve config path: %w", err)
			}
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
			}
			if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			if err := config.Save(configPath, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing configuration file")
	return cmd
}
