package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/starmesh-systems/starmesh/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.Info())
		},
	}
}
