package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/latticehq/lattice/internal/config"
	"github.com/latticehq/lattice/internal/document"
	"github.com/latticehq/lattice/internal/format"
	"github.com/latticehq/lattice/internal/index"
	"github.com/latticehq/lattice/internal/links"
)

var fmtFlags struct {
	check bool
}

var fmtCmd = &cobra.Command{
	Use:     "fmt <id>",
	Short:   "Reflow a document's body to the configured line width",
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

		repoCfg, err := config.LoadRepoConfig(latticeDirOf(repoRoot))
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

		// Post-edit, a document is re-parsed, body-formatted, and
		// link-normalized before a single atomic write stamps updated-at.
		wrapped := format.Wrap(doc.Body, format.Config{LineWidth: repoCfg.Format.LineWidth})
		normalized := links.Normalize(wrapped.Content, indexResolver{ctx: ctx, q: db.Conn()})

		if !wrapped.Modified && !normalized.HasChanges {
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("already formatted"), row.ID)
			return nil
		}
		if fmtFlags.check {
			cmd.SilenceUsage = true
			return fmt.Errorf("%s would be reformatted", row.ID)
		}

		doc.Path = absPath
		doc.Body = normalized.Content

		err = db.WithWriteTx(ctx, func(tx *sql.Tx) error {
			if err := index.UpdateContentMetadata(ctx, tx, row.ID, hashBody(doc.Body), len(doc.Body)); err != nil {
				return err
			}
			return syncLinksAndFTS(ctx, tx, row.ID, doc.Frontmatter, doc.Body)
		})
		if err != nil {
			return err
		}

		if err := document.WriteDocument(doc, document.WriteOptions{Mode: document.WriteFull, WithTimestamp: true}); err != nil {
			return err
		}
		for _, unresolved := range normalized.Unresolvable {
			fmt.Fprintln(cmd.OutOrStdout(), warnStyle.Render("unresolved reference:"), unresolved)
		}
		fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("reformatted"), row.ID)
		return nil
	},
}

func init() {
	fmtCmd.Flags().BoolVar(&fmtFlags.check, "check", false, "report whether the document would change without writing it")
	rootCmd.AddCommand(fmtCmd)
}
