package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	pgconf  string
	changes []string

	dbhost string
	dbport int
	dbuser string
	dbname string

	force     bool
	comment   bool
	noComment bool
	report    bool
	noReport  bool

	verbose bool
	quiet   bool
	debug   bool
}

func newRootCommand() *cobra.Command {
	var configFlag string
	opts := &rootOptions{}

	cctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "pgtweak",
		Short:         "Change postgresql.conf settings on a live server and verify them",
		Long: `pgtweak rewrites settings in postgresql.conf, asks the running server to
reload its configuration, and polls SHOW until the new values are visible.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(opts.changes) == 0 {
				return cmd.Help()
			}
			return runApply(cmd, cctx, opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&opts.dbhost, "dbhost", "", "Database server host")
	rootCmd.PersistentFlags().IntVar(&opts.dbport, "dbport", 0, "Database server port (default 5432)")
	rootCmd.PersistentFlags().StringVar(&opts.dbuser, "dbuser", "", "Database user (default postgres)")
	rootCmd.PersistentFlags().StringVar(&opts.dbname, "dbname", "", "Database name")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "Only report errors")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Debug output with source locations")

	flags := rootCmd.Flags()
	flags.StringVar(&opts.pgconf, "pgconf", "", "Path to the postgresql.conf file to edit")
	flags.StringArrayVar(&opts.changes, "change", nil, "Setting to change as name=value (repeatable)")
	flags.BoolVar(&opts.force, "force", false, "Rewrite even when the current value already matches")
	flags.BoolVar(&opts.comment, "comment", true, "Annotate rewritten lines with a change comment")
	flags.BoolVar(&opts.noComment, "no-comment", false, "Disable the change comment")
	flags.BoolVar(&opts.report, "report", true, "Report the current server log file before reloading")
	flags.BoolVar(&opts.noReport, "no-report", false, "Disable the log file report")

	rootCmd.AddCommand(newShowCommand(cctx, opts))
	rootCmd.AddCommand(newLogfileCommand(cctx, opts))
	rootCmd.AddCommand(newReloadCommand(cctx, opts))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}
