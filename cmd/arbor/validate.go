package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <document>",
	Short: "Check that every element of a document loads",
	Long: `Loads the document and reports every element that was skipped: unknown types,
malformed fields, missing assets and elements saved with an error mark.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			mu    sync.Mutex
			diags []*domain.DiagnosticEvent
		)
		hooks := domain.LifecycleHooks{
			OnDiagnostic: func(_ context.Context, e *domain.DiagnosticEvent) {
				mu.Lock()
				defer mu.Unlock()
				diags = append(diags, e)
			},
		}

		s, err := openDocument(cmd.Context(), cmd, args[0], cli.BuildOptions{Hooks: hooks})
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		defer s.Close()

		out := cmd.OutOrStdout()
		for _, d := range diags {
			fmt.Fprintf(out, "%-18s %-20s %s\n", d.Kind, d.Label, d.Msg)
		}
		if len(diags) > 0 {
			return fmt.Errorf("validation failed: %d elements skipped", len(diags))
		}
		fmt.Fprintf(out, "Document is valid! %d elements.\n", len(s.Editor.Hierarchy()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
