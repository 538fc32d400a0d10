package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <document>",
	Short: "Print the hierarchy of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, _ := cmd.Flags().GetBool("report")
		watch, _ := cmd.Flags().GetBool("watch")
		out := cmd.OutOrStdout()

		if err := inspect(cmd.Context(), cmd, args[0], report, out); err != nil {
			return err
		}
		if !watch {
			return nil
		}

		cfg, logger, err := setup(cmd, true)
		if err != nil {
			return err
		}
		if cfg.Store.Backend != config.StoreFile {
			return fmt.Errorf("--watch needs the file store, not %s", cfg.Store.Backend)
		}
		path := args[0]
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.Store.Dir, path)
		}

		ctx := cli.NewShutdownContext(cmd.Context())
		defer ctx.Stop()
		cli.PrintSystemMessage(out, "Watching %s", path)
		return cli.WatchDocument(ctx, path, logger, func() {
			fmt.Fprintln(out)
			if err := inspect(ctx, cmd, args[0], report, out); err != nil {
				cli.PrintSystemMessage(out, "%v", err)
			}
		})
	},
}

func inspect(ctx context.Context, cmd *cobra.Command, path string, report bool, out io.Writer) error {
	s, err := openDocument(ctx, cmd, path, cli.BuildOptions{})
	if err != nil {
		return err
	}
	defer s.Close()

	rows := s.Editor.Hierarchy()
	if report {
		md, err := tui.NewRenderer(isTTY(stdout))(tui.SceneReport(path, rows, s.Editor.Snapshot()))
		if err != nil {
			return err
		}
		fmt.Fprint(out, md)
		return nil
	}

	profile := termenv.Ascii
	if isTTY(stdout) {
		profile = termenv.ColorProfile()
	}
	tui.PrintHierarchy(out, rows, profile)
	return nil
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("report", false, "Render a markdown summary instead of the outline")
	inspectCmd.Flags().Bool("watch", false, "Print again whenever the document changes")
}
