package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/latticehq/lattice/internal/index"
	"github.com/latticehq/lattice/internal/template"
)

var treeCmd = &cobra.Command{
	Use:     "tree <id>",
	Short:   "Show a document's ancestor root chain and composed template sections",
	GroupID: "views",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repoRoot, err := findRepoRoot()
		if err != nil {
			return err
		}

		db, err := openIndex(ctx, repoRoot)
		if err != nil {
			return err
		}
		defer db.Close()

		row, err := index.GetDocument(ctx, db.Conn(), args[0])
		if err != nil {
			return err
		}
		if row == nil {
			return fmt.Errorf("no document with id %q", args[0])
		}

		ancestors, err := template.FindAncestorRoots(ctx, db.Conn(), row.Path)
		if err != nil {
			return err
		}
		composed, err := template.Compose(ctx, db.Conn(), repoRoot, row.Path)
		if err != nil {
			return err
		}

		if jsonOutput {
			fmt.Fprintf(cmd.OutOrStdout(), "{\"id\":%q,\"ancestors\":%d,\"contributors\":%d}\n",
				row.ID, len(ancestors), len(composed.ContributorIDs))
			return nil
		}

		if len(ancestors) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("no ancestor root documents"), row.ID)
			return nil
		}

		for i, a := range ancestors {
			indent := ""
			for j := 0; j < i; j++ {
				indent += "  "
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s%s %s\n", indent, boldStyle.Render(a.RootID), mutedStyle.Render(a.DirectoryPath))
		}
		indent := ""
		for j := 0; j < len(ancestors); j++ {
			indent += "  "
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s %s\n", indent, row.ID, mutedStyle.Render(row.Path))

		if composed.Context != "" {
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), boldStyle.Render("[Lattice] Context"))
			fmt.Fprintln(cmd.OutOrStdout(), composed.Context)
		}
		if composed.AcceptanceCriteria != "" {
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), boldStyle.Render("[Lattice] Acceptance Criteria"))
			fmt.Fprintln(cmd.OutOrStdout(), composed.AcceptanceCriteria)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
}
