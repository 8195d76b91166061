package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"pgtweak/internal/logfiles"
	"pgtweak/internal/pgserver"
)

func newLogfileCommand(cctx *commandContext, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logfile",
		Short: "Print the server log file that was most recently written to",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			gateway := pgserver.New(connParams(cfg, opts))
			defer gateway.Close()

			info, err := logfiles.New(gateway).Current(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if info.Path == "" {
				fmt.Fprintln(out, "No server log file found")
				return nil
			}
			fmt.Fprintf(out, "%s (%s)\n", info.Path, humanize.Bytes(uint64(info.Size)))
			return nil
		},
	}
}
