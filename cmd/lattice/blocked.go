package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/latticehq/lattice/internal/index"
	"github.com/latticehq/lattice/internal/reftracker"
)

var blockedCmd = &cobra.Command{
	Use:     "blocked <id>",
	Short:   "Show the open blockers holding a task back, and what it blocks",
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

		edges, err := reftracker.Forward(ctx, db.Conn(), row.ID)
		if err != nil {
			return err
		}

		var blockedBy, blocking []index.DocumentRow
		for _, e := range edges {
			switch e.Link.Type {
			case index.LinkBlockedBy:
				blockedBy = append(blockedBy, e.Document)
			case index.LinkBlocking:
				blocking = append(blocking, e.Document)
			}
		}

		openBlockers := 0
		for _, d := range blockedBy {
			if !d.IsClosed {
				openBlockers++
			}
		}

		if jsonOutput {
			fmt.Fprintf(cmd.OutOrStdout(), "{\"id\":%q,\"ready\":%v,\"blocked_by\":%d,\"blocking\":%d}\n",
				row.ID, openBlockers == 0, len(blockedBy), len(blocking))
			return nil
		}

		if openBlockers == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("not blocked"), row.ID)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), warnStyle.Render(fmt.Sprintf("blocked by %d open task(s)", openBlockers)), row.ID)
		}
		for _, d := range blockedBy {
			status := mutedStyle.Render("open")
			if d.IsClosed {
				status = mutedStyle.Render("closed")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  blocked-by  %s  %s  %s\n", d.ID, d.Name, status)
		}
		for _, d := range blocking {
			status := mutedStyle.Render("open")
			if d.IsClosed {
				status = mutedStyle.Render("closed")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  blocking    %s  %s  %s\n", d.ID, d.Name, status)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(blockedCmd)
}
