package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/latticehq/lattice/internal/index"
)

var listFlags struct {
	pathPrefix string
	taskType   string
	closed     bool
	open       bool
	limit      int
}

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List indexed documents",
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

		f := index.DocumentFilter{
			PathPrefix: listFlags.pathPrefix,
			TaskType:   listFlags.taskType,
			SortBy:     index.SortByUpdatedAt,
			SortOrder:  index.Desc,
			Limit:      listFlags.limit,
		}
		if listFlags.closed {
			t := true
			f.Closed = &t
		} else if listFlags.open {
			t := false
			f.Closed = &t
		}

		rows, err := index.List(ctx, db.Conn(), f)
		if err != nil {
			return err
		}

		if jsonOutput {
			fmt.Fprint(cmd.OutOrStdout(), "[")
			for i, row := range rows {
				if i > 0 {
					fmt.Fprint(cmd.OutOrStdout(), ",")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "{\"id\":%q,\"path\":%q,\"name\":%q}", row.ID, row.Path, row.Name)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "]")
			return nil
		}

		for _, row := range rows {
			status := ""
			if row.TaskType != "" {
				status = " " + mutedStyle.Render(row.TaskType)
				if row.IsClosed {
					status += " " + mutedStyle.Render("closed")
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s%s\n", boldStyle.Render(row.ID), row.Name, status)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listFlags.pathPrefix, "path", "", "restrict to documents under this path prefix")
	listCmd.Flags().StringVar(&listFlags.taskType, "type", "", "restrict to this task type")
	listCmd.Flags().BoolVar(&listFlags.closed, "closed", false, "only closed tasks")
	listCmd.Flags().BoolVar(&listFlags.open, "open", false, "only open tasks")
	listCmd.Flags().IntVar(&listFlags.limit, "limit", 50, "maximum rows returned")
	rootCmd.AddCommand(listCmd)
}
