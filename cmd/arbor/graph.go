package main

import (
	"fmt"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <document>",
	Short: "Export the hierarchy as a Mermaid diagram",
	Long:  `Loads the document and outputs a Mermaid diagram (graph TD) of its hierarchy.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openDocument(cmd.Context(), cmd, args[0], cli.BuildOptions{})
		if err != nil {
			return err
		}
		defer s.Close()

		var overlay *graph.GraphOverlay
		if show, _ := cmd.Flags().GetBool("disabled"); show {
			overlay = &graph.GraphOverlay{Disabled: true}
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(s.Editor.Hierarchy(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("disabled", false, "Style disabled elements")
}
