package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/latticehq/lattice/internal/lint"
)

var checkFlags struct {
	pathPrefix string
	errorsOnly bool
}

var checkCmd = &cobra.Command{
	Use:     "check",
	Short:   "Run lint rules over indexed documents",
	GroupID: "maint",
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

		lctx := &lint.Context{Queryer: db.Conn(), RepoRoot: repoRoot}
		cfg := lint.Config{ErrorsOnly: checkFlags.errorsOnly, PathPrefix: checkFlags.pathPrefix}

		summary, err := lint.ExecuteRules(ctx, lctx, lint.AllRules(), cfg)
		if err != nil {
			return err
		}

		if jsonOutput {
			fmt.Fprintf(cmd.OutOrStdout(), "{\"errors\":%d,\"warnings\":%d,\"documents_checked\":%d}\n",
				summary.ErrorCount, summary.WarningCount, summary.DocumentsChecked)
		} else {
			for _, r := range summary.Results {
				style := warnStyle
				if r.Severity.IsError() {
					style = errorStyle
				}
				line := ""
				if r.Line != nil {
					line = fmt.Sprintf(":%d", *r.Line)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s%s %s %s\n", style.Render(string(r.Severity)), r.Path, line, mutedStyle.Render(r.Code), r.Message)
			}
			if summary.IsClean() {
				fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("clean"), fmt.Sprintf("(%d documents checked)", summary.DocumentsChecked))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%d errors, %d warnings across %d documents\n",
					summary.ErrorCount, summary.WarningCount, summary.AffectedDocuments)
			}
		}

		if summary.HasErrors() {
			cmd.SilenceUsage = true
			return fmt.Errorf("lint found %d error(s)", summary.ErrorCount)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkFlags.pathPrefix, "path", "", "restrict to documents under this path prefix")
	checkCmd.Flags().BoolVar(&checkFlags.errorsOnly, "errors-only", false, "suppress warning-level results")
	rootCmd.AddCommand(checkCmd)
}
