package main

import (
	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new <document>",
	Short: "Create a document holding the default scene",
	Long:  `Saves a ground plane and a default point light to a new document. An existing document is replaced atomically.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd, true)
		if err != nil {
			return err
		}
		s, err := cli.NewSession(cmd.Context(), cfg, logger, cli.BuildOptions{Fresh: true})
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Editor.SaveAs(cmd.Context(), args[0]); err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.OutOrStdout(), "Created %s", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
}
