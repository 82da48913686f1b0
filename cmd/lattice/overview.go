package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/latticehq/lattice/internal/config"
	"github.com/latticehq/lattice/internal/overview"
)

var overviewFlags struct {
	limit int
}

var overviewCmd = &cobra.Command{
	Use:     "overview",
	Short:   "Show the highest-ranked documents by recent activity and importance",
	GroupID: "views",
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

		repoCfg, err := config.LoadRepoConfig(latticeDirOf(repoRoot))
		if err != nil {
			return err
		}

		scored, err := overview.Rank(ctx, db.Conn(), overview.Options{
			Weights: repoCfg.Overview,
			Limit:   overviewFlags.limit,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			fmt.Fprint(cmd.OutOrStdout(), "[")
			for i, s := range scored {
				if i > 0 {
					fmt.Fprint(cmd.OutOrStdout(), ",")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "{\"id\":%q,\"name\":%q,\"score\":%.4f}", s.Document.ID, s.Document.Name, s.Score)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "]")
			return nil
		}

		for _, s := range scored {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %6.3f  %s\n", boldStyle.Render(s.Document.ID), s.Score, s.Document.Name)
		}
		return nil
	},
}

func init() {
	overviewCmd.Flags().IntVar(&overviewFlags.limit, "limit", overview.DefaultLimit, "maximum rows returned")
	rootCmd.AddCommand(overviewCmd)
}
