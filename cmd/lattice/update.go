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

var updateFlags struct {
	name          string
	description   string
	taskType      string
	priority      int
	clearPriority bool
	parentID      string
	clearParent   bool
	labels        []string
	clearLabels   bool
}

var updateCmd = &cobra.Command{
	Use:     "update <id>",
	Short:   "Partially update a document's frontmatter fields",
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

		b := index.NewUpdateBuilder(row.ID)
		flags := cmd.Flags()
		if flags.Changed("name") {
			b.Name = index.Set(updateFlags.name)
		}
		if flags.Changed("description") {
			b.Description = index.Set(updateFlags.description)
		}
		if flags.Changed("type") {
			b.TaskType = index.Set(updateFlags.taskType)
		}
		switch {
		case updateFlags.clearPriority:
			b.Priority = index.Clear[int]()
		case flags.Changed("priority"):
			b.Priority = index.Set(updateFlags.priority)
		}
		switch {
		case updateFlags.clearParent:
			b.ParentID = index.Clear[string]()
		case flags.Changed("parent"):
			b.ParentID = index.Set(updateFlags.parentID)
		}
		switch {
		case updateFlags.clearLabels:
			b.Labels = index.Clear[[]string]()
		case flags.Changed("label"):
			b.Labels = index.Set(updateFlags.labels)
		}

		if err := db.WithWriteTx(ctx, func(tx *sql.Tx) error {
			return b.Apply(ctx, tx)
		}); err != nil {
			return err
		}

		updated, err := index.GetDocument(ctx, db.Conn(), row.ID)
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
		doc.Frontmatter.Name = updated.Name
		doc.Frontmatter.Description = updated.Description
		doc.Frontmatter.TaskType = updated.TaskType
		doc.Frontmatter.Priority = updated.Priority
		if updated.ParentID != "" {
			doc.Frontmatter.ParentID = updated.ParentID
		} else {
			doc.Frontmatter.ParentID = ""
		}
		labels, err := index.GetLabels(ctx, db.Conn(), row.ID)
		if err != nil {
			return err
		}
		doc.Frontmatter.Labels = labels

		if err := db.WithWriteTx(ctx, func(tx *sql.Tx) error {
			return syncLinksAndFTS(ctx, tx, row.ID, doc.Frontmatter, doc.Body)
		}); err != nil {
			return err
		}

		if err := document.WriteDocument(doc, document.WriteOptions{Mode: document.WriteFrontmatterOnly, WithTimestamp: true}); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("updated"), row.ID)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateFlags.name, "name", "", "new name")
	updateCmd.Flags().StringVar(&updateFlags.description, "description", "", "new description")
	updateCmd.Flags().StringVar(&updateFlags.taskType, "type", "", "new task type")
	updateCmd.Flags().IntVar(&updateFlags.priority, "priority", 0, "new priority 0-4")
	updateCmd.Flags().BoolVar(&updateFlags.clearPriority, "clear-priority", false, "clear priority (knowledge document)")
	updateCmd.Flags().StringVar(&updateFlags.parentID, "parent", "", "new parent document id")
	updateCmd.Flags().BoolVar(&updateFlags.clearParent, "clear-parent", false, "remove the parent link")
	updateCmd.Flags().StringSliceVar(&updateFlags.labels, "label", nil, "replace labels (repeatable)")
	updateCmd.Flags().BoolVar(&updateFlags.clearLabels, "clear-labels", false, "remove all labels")
	rootCmd.AddCommand(updateCmd)
}
