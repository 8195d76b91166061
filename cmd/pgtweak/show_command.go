package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pgtweak/internal/pgserver"
)

func newShowCommand(cctx *commandContext, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <setting>",
		Short: "Print the live value of a server setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			gateway := pgserver.New(connParams(cfg, opts))
			defer gateway.Close()

			value, err := gateway.Show(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}
