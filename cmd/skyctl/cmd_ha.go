package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/starmesh-systems/starmesh/pkg/hostagent"
)

func newHACmd() *cobra.Command {
	var baseImage string

	cmd := &cobra.Command{
		Use:   "ha <verb> <machine-id> <workdir> [args...]",
		Short: "Run one Host Agent verb invocation against this host",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			verb := args[0]
			machineID, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid machine id %q: %w", args[1], err)
			}
			workDir := args[2]
			verbArgs := args[3:]

			a, err := hostagent.New(machineID, workDir, baseImage)
			if err != nil {
				return fmt.Errorf("constructing host agent: %w", err)
			}

			out, err := a.Dispatch(verb, verbArgs)
			if err != nil {
				return err
			}
			if out != "" {
				fmt.Println(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&baseImage, "base-image", "/var/lib/starmesh/rootfs", "base rootfs image new node containers overlay onto")
	return cmd
}
