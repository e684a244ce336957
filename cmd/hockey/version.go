package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/hockey"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of hockey",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hockey version %s\n", strings.TrimSpace(hockey.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
