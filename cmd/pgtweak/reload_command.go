package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pgtweak/internal/pgserver"
	"pgtweak/internal/reload"
)

func newReloadCommand(cctx *commandContext, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Signal the server to re-read its configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := buildLogger(cfg, opts)
			if err != nil {
				return err
			}
			gateway := pgserver.New(connParams(cfg, opts))
			defer gateway.Close()

			dataDir, err := gateway.DataDirectory(cmd.Context())
			if err != nil {
				return err
			}
			if pid, pidErr := reload.ReadPostmasterPID(dataDir); pidErr == nil && !reload.Running(pid) {
				return fmt.Errorf("postmaster pid %d from %s is not running", pid, dataDir)
			}

			sent, err := reload.New(gateway, logger).Reload(cmd.Context())
			if err != nil {
				return err
			}
			if !sent {
				return errors.New("could not determine postmaster pid; reload signal not sent")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Reload signal sent")
			return nil
		},
	}
}
