package main

import (
	"fmt"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <document> <type>",
	Short: "Add an element to a document",
	Long: `Loads the document, creates an element of the given type and saves it back.
Without --parent the element is appended to the top level; with it, to the end of that group.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openDocument(ctx, cmd, args[0], cli.BuildOptions{})
		if err != nil {
			return err
		}
		defer s.Close()

		parent, _ := cmd.Flags().GetString("parent")
		if parent != "" {
			ref, ok := s.Editor.Resolve(parent)
			if !ok {
				return fmt.Errorf("parent %s not found", parent)
			}
			if err := s.Editor.Select(ctx, ref, false); err != nil {
				return err
			}
		}

		ref, err := s.Editor.Create(ctx, args[1])
		if err != nil {
			return err
		}
		if name, _ := cmd.Flags().GetString("name"); name != "" {
			if err := s.Editor.Edit(ctx, ref, map[string]any{"name": name}); err != nil {
				return err
			}
		}
		if err := s.Editor.Save(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ref.Element().AsBase().ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().String("name", "", "Name of the new element")
	addCmd.Flags().String("parent", "", "ID of the group to add into")
}
