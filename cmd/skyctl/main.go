// skyctl — satellite-ground network emulation
//
// skyctl drives every role in a constellation run: the Topology Controller
// pacemaker loop, the per-host Host Agent verb dispatch, and the command
// façade HTTP endpoint.
//
// Usage:
//
//	skyctl tc run -c run.yaml          # drive the controller pacemaker loop
//	skyctl ha <verb> <mid> <dir> [...]  # run one Host Agent verb invocation
//	skyctl facade serve -c run.yaml     # serve the command façade
//	skyctl status <mid> <dir>          # show node placement and container status
//	skyctl version                     # print build info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/starmesh-systems/starmesh/pkg/nsnet"
	"github.com/starmesh-systems/starmesh/pkg/util"
)

var verbose bool

func main() {
	// The container primitive re-execs this same binary to become a pause
	// container's PID 1. That hidden entry point must be handled before
	// cobra ever sees os.Args — it carries its own positional argv, not a
	// skyctl subcommand.
	if len(os.Args) > 1 && os.Args[1] == nsnet.ReexecArg {
		if len(os.Args) != 5 {
			fmt.Fprintf(os.Stderr, "skyctl: %s requires <rootfs> <baseimage> <name>\n", nsnet.ReexecArg)
			os.Exit(1)
		}
		nsnet.PauseMain(os.Args[2], os.Args[3], os.Args[4])
		return
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "skyctl",
	Short:             "Satellite-ground network emulation",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `skyctl drives every role in a constellation run.

  skyctl tc run -c run.yaml           # drive the controller pacemaker loop
  skyctl ha <verb> <mid> <dir> [...]  # run one Host Agent verb invocation
  skyctl facade serve -c run.yaml     # serve the command façade
  skyctl status <mid> <dir>           # show node placement and container status
  skyctl version                      # print build info`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			return util.SetLogLevel("debug")
		}
		return util.SetLogLevel("info")
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(
		newTCCmd(),
		newHACmd(),
		newFacadeCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)
}
