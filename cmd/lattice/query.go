package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/latticehq/lattice/internal/index"
)

var queryFlags struct {
	limit int
}

var queryCmd = &cobra.Command{
	Use:     "query <terms...>",
	Short:   "Full-text search document bodies",
	GroupID: "views",
	Args:    cobra.MinimumNArgs(1),
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

		results, err := index.Search(ctx, db.Conn(), strings.Join(args, " "), queryFlags.limit)
		if err != nil {
			return err
		}

		if jsonOutput {
			fmt.Fprint(cmd.OutOrStdout(), "[")
			for i, r := range results {
				if i > 0 {
					fmt.Fprint(cmd.OutOrStdout(), ",")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "{\"id\":%q,\"rank\":%g}", r.DocumentID, r.Rank)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "]")
			return nil
		}

		if len(results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("no matches"))
			return nil
		}

		for _, r := range results {
			row, err := index.GetDocument(ctx, db.Conn(), r.DocumentID)
			if err != nil || row == nil {
				fmt.Fprintln(cmd.OutOrStdout(), boldStyle.Render(r.DocumentID))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", boldStyle.Render(row.ID), row.Name)
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().IntVar(&queryFlags.limit, "limit", 20, "maximum results returned")
	rootCmd.AddCommand(queryCmd)
}
