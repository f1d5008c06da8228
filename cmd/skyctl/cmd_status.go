package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/starmesh-systems/starmesh/pkg/cli"
	"github.com/starmesh-systems/starmesh/pkg/hostagent"
)

func newStatusCmd() *cobra.Command {
	var baseImage string

	cmd := &cobra.Command{
		Use:   "status <machine-id> <workdir>",
		Short: "Show every node's home machine and, for owned nodes, its container status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			machineID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid machine id %q: %w", args[0], err)
			}
			workDir := args[1]

			a, err := hostagent.New(machineID, workDir, baseImage)
			if err != nil {
				return fmt.Errorf("constructing host agent: %w", err)
			}
			rows, err := a.List()
			if err != nil {
				return err
			}

			table := cli.NewTable("NAME", "HOME", "PID", "STATUS")
			for _, r := range rows {
				table.Row(r.Name, strconv.Itoa(r.Home), pidCell(r.PID), statusCell(r))
			}
			table.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&baseImage, "base-image", "/var/lib/starmesh/rootfs", "base rootfs image new node containers overlay onto")
	return cmd
}

func pidCell(pid int) string {
	if pid == 0 {
		return "-"
	}
	return strconv.Itoa(pid)
}

func statusCell(r hostagent.NodeStatus) string {
	if !r.Owned {
		return cli.Dim("unowned")
	}
	if r.Running {
		return cli.Green("running")
	}
	return cli.Red("stopped")
}
