// Command lattice is the CLI front end for the filesystem-native
// knowledge/task engine implemented under internal/. It is a thin shell:
// flag parsing, repo-root discovery, and output rendering live here;
// every operation's actual semantics live in internal/*.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
