package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"pgtweak/internal/apply"
	"pgtweak/internal/confedit"
	"pgtweak/internal/logfiles"
	"pgtweak/internal/pgserver"
	"pgtweak/internal/reload"
	"pgtweak/internal/verify"
)

func runApply(cmd *cobra.Command, cctx *commandContext, opts *rootOptions) error {
	cfg, err := cctx.ensureConfig()
	if err != nil {
		return err
	}
	changes, err := parseChanges(opts.changes)
	if err != nil {
		return err
	}

	confPath := strings.TrimSpace(opts.pgconf)
	if confPath == "" {
		confPath = cfg.Postgres.ConfPath
	}
	if confPath == "" {
		return errors.New("--pgconf is required (or set postgres.conf_path in the config file)")
	}

	logger, err := buildLogger(cfg, opts)
	if err != nil {
		return err
	}

	gateway := pgserver.New(connParams(cfg, opts))
	defer gateway.Close()

	editor := confedit.New(confPath, programName)
	defer editor.Close()

	verifier := verify.New(gateway, cfg.Verify.Attempts, time.Duration(cfg.Verify.IntervalMS)*time.Millisecond, logger)
	signaler := reload.New(gateway, logger)
	locator := logfiles.New(gateway)
	runner := apply.NewRunner(gateway, editor, signaler, verifier, locator, logger)

	annotate := cfg.Edit.Comment
	if cmd.Flags().Changed("comment") {
		annotate = opts.comment
	}
	report := cfg.Edit.Report
	if cmd.Flags().Changed("report") {
		report = opts.report
	}

	outcome, runErr := runner.Run(cmd.Context(), changes, apply.Options{
		Force:    opts.force,
		Annotate: annotate && !opts.noComment,
		Report:   report && !opts.noReport,
	})

	out := cmd.OutOrStdout()
	if outcome.LogFile.Path != "" {
		fmt.Fprintf(out, "Current log file: %s (%s)\n",
			outcome.LogFile.Path, humanize.Bytes(uint64(outcome.LogFile.Size)))
	}
	if len(outcome.Results) > 0 && !opts.quiet {
		fmt.Fprintln(out, renderResults(outcome.Results, useTableOutput()))
	}
	if runErr != nil && errors.Is(runErr, apply.ErrNoChanges) {
		return fmt.Errorf("%w (use --force to rewrite anyway)", apply.ErrNoChanges)
	}
	return runErr
}
