package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/latticehq/lattice/internal/document"
	"github.com/latticehq/lattice/internal/index"
)

var showCmd = &cobra.Command{
	Use:     "show <id>",
	Short:   "Show a document's indexed metadata and body",
	GroupID: "docs",
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

		if err := db.WithWriteTx(ctx, func(tx *sql.Tx) error {
			return index.RecordView(ctx, tx, row.ID)
		}); err != nil {
			return err
		}

		raw, err := os.ReadFile(filepath.Join(repoRoot, row.Path))
		if err != nil {
			return fmt.Errorf("read %s: %w", row.Path, err)
		}
		doc, err := document.Parse(row.Path, raw)
		if err != nil {
			return err
		}

		if jsonOutput {
			fmt.Fprintf(cmd.OutOrStdout(), "{\"id\":%q,\"path\":%q,\"name\":%q,\"task_type\":%q,\"is_closed\":%v}\n",
				row.ID, row.Path, row.Name, row.TaskType, row.IsClosed)
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), boldStyle.Render(row.ID), row.Name)
		fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render(row.Path))
		if row.TaskType != "" {
			status := "open"
			if row.IsClosed {
				status = "closed"
			}
			priority := "-"
			if row.Priority != nil {
				priority = fmt.Sprintf("P%d", *row.Priority)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", row.TaskType, priority, status)
		}
		if doc.Body != "" {
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), doc.Body)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
