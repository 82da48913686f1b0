package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/latticehq/lattice/internal/claim"
	"github.com/latticehq/lattice/internal/config"
)

var claimFlags struct {
	claimant string
}

var claimCmd = &cobra.Command{
	Use:     "claim <id>",
	Short:   "Claim a task for exclusive work",
	GroupID: "coord",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repoRoot, err := findRepoRoot()
		if err != nil {
			return err
		}
		claimant := claimFlags.claimant
		if claimant == "" {
			claimant, err = resolveClientID(repoRoot)
			if err != nil {
				return err
			}
		}

		repoCfg, err := config.LoadRepoConfig(latticeDirOf(repoRoot))
		if err != nil {
			return err
		}
		staleAfter := time.Duration(repoCfg.Claim.StaleAfterDays) * 24 * time.Hour

		if err := claim.Claim(latticeDirOf(repoRoot), args[0], claimant, staleAfter); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("claimed"), args[0], mutedStyle.Render("by "+claimant))
		return nil
	},
}

var releaseFlags struct {
	force bool
}

var releaseCmd = &cobra.Command{
	Use:     "release <id>",
	Short:   "Release a claim on a task",
	GroupID: "coord",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repoRoot, err := findRepoRoot()
		if err != nil {
			return err
		}
		repoCfg, err := config.LoadRepoConfig(latticeDirOf(repoRoot))
		if err != nil {
			return err
		}
		staleAfter := time.Duration(repoCfg.Claim.StaleAfterDays) * 24 * time.Hour

		if err := claim.Release(latticeDirOf(repoRoot), args[0], staleAfter, releaseFlags.force); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("released"), args[0])
		return nil
	},
}

func init() {
	claimCmd.Flags().StringVar(&claimFlags.claimant, "as", "", "claimant identity (default: resolved client id)")
	releaseCmd.Flags().BoolVar(&releaseFlags.force, "force", false, "release even if the claim is stale")
	rootCmd.AddCommand(claimCmd, releaseCmd)
}
