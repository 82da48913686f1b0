package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/latticehq/lattice/internal/document"
	"github.com/latticehq/lattice/internal/index"
)

var editFlags struct {
	bodyFile string
}

var editCmd = &cobra.Command{
	Use:     "edit <id>",
	Short:   "Replace a document's body content",
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

		newBody, err := readNewBody(cmd, editFlags.bodyFile)
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
		doc.Body = newBody

		err = db.WithWriteTx(ctx, func(tx *sql.Tx) error {
			if err := index.UpdateContentMetadata(ctx, tx, row.ID, hashBody(newBody), len(newBody)); err != nil {
				return err
			}
			return syncLinksAndFTS(ctx, tx, row.ID, doc.Frontmatter, newBody)
		})
		if err != nil {
			return err
		}

		if err := document.WriteDocument(doc, document.WriteOptions{Mode: document.WriteBodyOnly}); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("edited"), row.ID)
		return nil
	},
}

// readNewBody reads the replacement body from --body-file, or from stdin
// when no file is given.
func readNewBody(cmd *cobra.Command, bodyFile string) (string, error) {
	if bodyFile != "" {
		raw, err := os.ReadFile(bodyFile)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", bodyFile, err)
		}
		return string(raw), nil
	}
	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(raw), nil
}

func init() {
	editCmd.Flags().StringVar(&editFlags.bodyFile, "body-file", "", "read the new body from this file (default: stdin)")
	rootCmd.AddCommand(editCmd)
}
