package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Arbor edits 3D scene documents",
	Long: `Arbor builds, inspects and serves 3D scene documents: ordered trees of entities,
lights and groups kept in sync with a render registry.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("dir", "", "Document directory for the file store")
}

// setup loads the configuration named by the persistent flags and builds the logger.
func setup(cmd *cobra.Command, quiet bool) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	level, _ := cmd.Flags().GetString("log-level")
	cfg, err := cli.LoadConfig(path, level)
	if err != nil {
		return nil, nil, err
	}
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.Store.Dir = dir
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, cli.CreateLogger(cfg.Logging, quiet), nil
}

// openDocument builds a session with the document at path loaded.
func openDocument(ctx context.Context, cmd *cobra.Command, path string, opts cli.BuildOptions) (*cli.Session, error) {
	cfg, logger, err := setup(cmd, true)
	if err != nil {
		return nil, err
	}
	cfg.Editor.Document = path
	return cli.NewSession(ctx, cfg, logger, opts)
}

// stdout is where colour and glamour decisions look for a terminal.
var stdout = os.Stdout

func isTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
