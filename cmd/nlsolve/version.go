package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/nlsolve/internal/version"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the version number of nlsolve",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("nlsolve v%s\n", version.Version)
			fmt.Printf("commit %s, built %s\n", version.GitCommit, version.BuildTime)
		},
	}
}
