package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/latticehq/lattice/internal/ready"
)

var readyFlags struct {
	pathPrefix     string
	taskType       string
	includeBacklog bool
	includeClaimed bool
	sortPolicy     string
	limit          int
}

var readyCmd = &cobra.Command{
	Use:     "ready",
	Short:   "List tasks that are ready to work on",
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

		var policy ready.SortPolicy
		switch readyFlags.sortPolicy {
		case "", "hybrid":
			policy = ready.SortHybrid
		case "priority":
			policy = ready.SortPriority
		case "oldest":
			policy = ready.SortOldest
		default:
			return fmt.Errorf("unknown sort policy %q (want hybrid, priority, or oldest)", readyFlags.sortPolicy)
		}

		f := ready.Filter{
			IncludeBacklog: readyFlags.includeBacklog,
			IncludeClaimed: readyFlags.includeClaimed,
			PathPrefix:     readyFlags.pathPrefix,
			TaskType:       readyFlags.taskType,
			Limit:          readyFlags.limit,
			SortPolicy:     policy,
		}

		tasks, err := ready.Query(ctx, db.Conn(), repoRoot, f)
		if err != nil {
			return err
		}

		if jsonOutput {
			fmt.Fprint(cmd.OutOrStdout(), "[")
			for i, t := range tasks {
				if i > 0 {
					fmt.Fprint(cmd.OutOrStdout(), ",")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "{\"id\":%q,\"name\":%q,\"claimed\":%v}", t.Document.ID, t.Document.Name, t.Claimed)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "]")
			return nil
		}

		for _, t := range tasks {
			priority := "-"
			if t.Document.Priority != nil {
				priority = fmt.Sprintf("P%d", *t.Document.Priority)
			}
			claimed := ""
			if t.Claimed {
				claimed = " " + warnStyle.Render("claimed")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-4s %s%s\n", boldStyle.Render(t.Document.ID), priority, t.Document.Name, claimed)
		}
		return nil
	},
}

func init() {
	readyCmd.Flags().StringVar(&readyFlags.pathPrefix, "path", "", "restrict to documents under this path prefix")
	readyCmd.Flags().StringVar(&readyFlags.taskType, "type", "", "restrict to this task type")
	readyCmd.Flags().BoolVar(&readyFlags.includeBacklog, "include-backlog", false, "include P4 backlog tasks")
	readyCmd.Flags().BoolVar(&readyFlags.includeClaimed, "include-claimed", false, "include already-claimed tasks")
	readyCmd.Flags().StringVar(&readyFlags.sortPolicy, "sort", "hybrid", "sort policy: hybrid, priority, or oldest")
	readyCmd.Flags().IntVar(&readyFlags.limit, "limit", 20, "maximum rows returned")
	rootCmd.AddCommand(readyCmd)
}
