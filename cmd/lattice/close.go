package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/latticehq/lattice/internal/document"
	"github.com/latticehq/lattice/internal/index"
)

var closeCmd = &cobra.Command{
	Use:     "close <id>",
	Short:   "Mark a task document closed",
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

		now := time.Now().UTC()
		err = db.WithWriteTx(ctx, func(tx *sql.Tx) error {
			b := index.NewUpdateBuilder(row.ID)
			b.IsClosed = index.Set(true)
			b.ClosedAt = index.Set(now)
			return b.Apply(ctx, tx)
		})
		if err != nil {
			return err
		}

		absPath := filepath.Join(repoRoot, row.Path)
		raw, err := os.ReadFile(absPath)
		if err != nil {
			return fmt.Errorf("read %s: %w", row.Path, err)
		}
		doc, err := document.Parse(row.Path, raw)
		if err != nil {
			return err
		}
		doc.Path = absPath
		doc.Frontmatter.ClosedAt = &now
		if err := document.WriteDocument(doc, document.WriteOptions{Mode: document.WriteFrontmatterOnly, WithTimestamp: true}); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("closed"), row.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(closeCmd)
}
