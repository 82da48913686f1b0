package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:     "init",
	Short:   "Initialize a .lattice directory in the current repository",
	GroupID: "maint",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := repoFlag
		if dir == "" {
			var err error
			dir, err = os.Getwd()
			if err != nil {
				return err
			}
		}

		latticeDir := latticeDirOf(dir)
		if err := os.MkdirAll(latticeDir, 0o755); err != nil {
			return err
		}

		ctx := cmd.Context()
		db, err := openIndex(ctx, dir)
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("initialized"), latticeDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
