package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/starmesh-systems/starmesh/pkg/audit"
	"github.com/starmesh-systems/starmesh/pkg/controller"
	"github.com/starmesh-systems/starmesh/pkg/settings"
	"github.com/starmesh-systems/starmesh/pkg/telemetry"
)

func newTCCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tc",
		Short: "Topology Controller commands",
	}
	cmd.AddCommand(newTCRunCmd())
	return cmd
}

func newTCRunCmd() *cobra.Command {
	var configPath, localDir string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Drive the pacemaker loop: poll, diff, and fan a tick out to every worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := settings.Load()
			if err != nil {
				return fmt.Errorf("loading skyctl settings: %w", err)
			}
			if configPath == "" {
				configPath = filepath.Join(prefs.GetRunConfigDir(), "run.yaml")
			}

			cfg, err := settings.LoadRunConfig(configPath)
			if err != nil {
				return fmt.Errorf("loading run config: %w", err)
			}

			auditPath := cfg.AuditLogPath
			if auditPath == "" {
				auditPath = prefs.GetAuditLogPath(prefs.GetRunConfigDir())
			}

			c := controller.New(*cfg, localDir, controller.DefaultDialer)

			if auditPath != "" {
				rotation := audit.RotationConfig{
					MaxSize:    int64(prefs.GetAuditMaxSizeMB()) * 1024 * 1024,
					MaxBackups: prefs.GetAuditMaxBackups(),
				}
				logger, err := audit.NewFileLogger(auditPath, rotation)
				if err != nil {
					return fmt.Errorf("opening audit log: %w", err)
				}
				defer logger.Close()
				c.Audit = logger
				audit.SetDefaultLogger(logger)
			}
			if cfg.RedisAddr != "" {
				pub := telemetry.NewPublisher(cfg.RedisAddr)
				defer pub.Close()
				c.Telem = pub
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return c.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "run configuration file (defaults to <run-config-dir>/run.yaml)")
	cmd.Flags().StringVar(&localDir, "local-dir", filepath.Join(os.TempDir(), "skyctl-tc"), "local scratch directory for change-sets and assignment state")
	return cmd
}
