package main

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/latticehq/lattice/internal/document"
	"github.com/latticehq/lattice/internal/index"
	"github.com/latticehq/lattice/internal/latticeid"
)

var createFlags struct {
	name        string
	description string
	taskType    string
	priority    int
	labels      []string
	parentID    string
}

var createCmd = &cobra.Command{
	Use:     "create <path>",
	Short:   "Create a new document",
	GroupID: "docs",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		relPath := filepath.ToSlash(args[0])
		ctx := cmd.Context()

		repoRoot, err := findRepoRoot()
		if err != nil {
			return err
		}
		clientID, err := resolveClientID(repoRoot)
		if err != nil {
			return err
		}

		db, err := openIndex(ctx, repoRoot)
		if err != nil {
			return err
		}
		defer db.Close()

		name := createFlags.name
		if name == "" {
			name = document.DeriveNameFromPath(relPath)
		}

		now := time.Now().UTC()
		var priority *int
		if createFlags.taskType != "" {
			p := createFlags.priority
			priority = &p
		}

		isRoot, dirPath := isRootDocPath(relPath)

		fm := document.Frontmatter{
			Name:        name,
			Description: createFlags.description,
			ParentID:    createFlags.parentID,
			TaskType:    createFlags.taskType,
			Priority:    priority,
			Labels:      createFlags.labels,
			CreatedAt:   &now,
			UpdatedAt:   &now,
		}
		const initialBody = ""

		var id string
		var row index.DocumentRow
		err = db.WithWriteTx(ctx, func(tx *sql.Tx) error {
			id, err = nextLatticeID(ctx, tx, clientID)
			if err != nil {
				return err
			}

			row = index.DocumentRow{
				ID:            id,
				Path:          relPath,
				Name:          name,
				Description:   createFlags.description,
				ParentID:      createFlags.parentID,
				TaskType:      createFlags.taskType,
				Priority:      priority,
				CreatedAt:     &now,
				UpdatedAt:     &now,
				IsRoot:        isRoot,
				InTasksDir:    strings.HasPrefix(relPath, "tasks/"),
				InDocsDir:     strings.HasPrefix(relPath, "docs/"),
				BodyHash:      hashBody(initialBody),
				ContentLength: len(initialBody),
			}
			if err := index.InsertDocument(ctx, tx, row, createFlags.labels); err != nil {
				return err
			}

			fm.LatticeID = id
			if err := syncLinksAndFTS(ctx, tx, id, fm, initialBody); err != nil {
				return err
			}
			if isRoot {
				if err := index.UpsertDirectoryRoot(ctx, tx, directoryRootFor(dirPath, id)); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		fm.LatticeID = id
		doc := &document.Document{
			Path:           filepath.Join(repoRoot, relPath),
			Frontmatter:    fm,
			Body:           initialBody,
			HasFrontmatter: true,
		}
		if err := document.WriteDocument(doc, document.WriteOptions{Mode: document.WriteFull}); err != nil {
			return err
		}

		if jsonOutput {
			fmt.Fprintf(cmd.OutOrStdout(), "{\"id\":%q,\"path\":%q}\n", id, relPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(id), mutedStyle.Render(relPath))
		return nil
	},
}

func nextLatticeID(ctx context.Context, tx *sql.Tx, clientID string) (string, error) {
	counter, err := index.NextCounter(ctx, tx, clientID)
	if err != nil {
		return "", err
	}
	return latticeid.Format(clientID, counter)
}

func init() {
	createCmd.Flags().StringVar(&createFlags.name, "name", "", "document name (default: derived from path)")
	createCmd.Flags().StringVar(&createFlags.description, "description", "", "one-line description")
	createCmd.Flags().StringVar(&createFlags.taskType, "type", "", "task type: bug, feature, task, chore (omit for a knowledge document)")
	createCmd.Flags().IntVar(&createFlags.priority, "priority", 2, "task priority 0-4 (only meaningful with --type)")
	createCmd.Flags().StringSliceVar(&createFlags.labels, "label", nil, "label to attach (repeatable)")
	createCmd.Flags().StringVar(&createFlags.parentID, "parent", "", "parent document's lattice id")
	rootCmd.AddCommand(createCmd)
}
