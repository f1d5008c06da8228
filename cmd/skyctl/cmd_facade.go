package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/starmesh-systems/starmesh/pkg/facade"
	"github.com/starmesh-systems/starmesh/pkg/settings"
	"github.com/starmesh-systems/starmesh/pkg/topo"
	"github.com/starmesh-systems/starmesh/pkg/transport"
	"github.com/starmesh-systems/starmesh/pkg/util"
)

func newFacadeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "facade",
		Short: "Command façade commands",
	}
	cmd.AddCommand(newFacadeServeCmd())
	return cmd
}

func newFacadeServeCmd() *cobra.Command {
	var configPath, assignmentPath, listen, remoteDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the command façade's POST /execute endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := settings.LoadRunConfig(configPath)
			if err != nil {
				return fmt.Errorf("loading run config: %w", err)
			}
			assignment, err := topo.LoadAssignment(assignmentPath)
			if err != nil {
				return fmt.Errorf("loading assignment: %w", err)
			}

			dir := remoteDir
			if dir == "" && len(cfg.Machines) > 0 {
				dir = cfg.Machines[0].Dir
			}
			if dir == "" {
				dir = settings.DefaultWorkDir
			}

			f := &facade.Facade{
				Assignment: assignment,
				RemoteDir:  dir,
				Dial: func(addr string) (transport.Transport, error) {
					return transport.Dial(addr, 22, facadeUser(cfg), "", facadeKeyPath(cfg))
				},
			}

			util.WithField("addr", listen).Info("facade: listening")
			return http.ListenAndServe(listen, f.Handler())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "run.yaml", "run configuration file")
	cmd.Flags().StringVar(&assignmentPath, "assignment", "assignment.json", "node placement assignment file")
	cmd.Flags().StringVar(&remoteDir, "remote-dir", "", "worker-side directory the Host Agent was started against (defaults to the first machine's dir)")
	cmd.Flags().StringVar(&listen, "listen", ":8080", "address to listen on")
	return cmd
}

// facadeUser and facadeKeyPath pick the SSH identity the façade dials workers
// with, falling back to the first configured machine's credentials since the
// façade has no per-request identity of its own (trusted-network, no auth).
func facadeUser(cfg *settings.RunConfig) string {
	if len(cfg.Machines) > 0 {
		return cfg.Machines[0].User
	}
	return "root"
}

func facadeKeyPath(cfg *settings.RunConfig) string {
	if len(cfg.Machines) > 0 {
		return cfg.Machines[0].KeyPath
	}
	return ""
}
