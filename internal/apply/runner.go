package apply

import (
	"context"
	"fmt"
	"log/slog"

	"pgtweak/internal/confedit"
	"pgtweak/internal/logfiles"
	"pgtweak/internal/logging"
	"pgtweak/internal/verify"
)

// Change is one requested setting edit.
type Change struct {
	Name  string
	Value string
}

// Options controls a change batch.
type Options struct {
	// Force rewrites the file even when the current value already matches.
	Force bool
	// Annotate appends the change comment to rewritten lines.
	Annotate bool
	// Report resolves the current server log file before reloading.
	Report bool
}

// Reloader signals the server to re-read its configuration.
type Reloader interface {
	Reload(ctx context.Context) (bool, error)
}

// Outcome aggregates the per-setting results of a batch.
type Outcome struct {
	// Results follow the order the changes were requested in.
	Results []verify.Result
	// Applied counts settings whose file rewrite changed a line.
	Applied int
	// Signaled reports whether the reload signal was delivered.
	Signaled bool
	// LogFile is populated when Options.Report is set and a log file exists.
	LogFile logfiles.Info
}

// Runner wires the components of a change batch together. All handles are
// request scoped: the gateway connection and the editor's file handle open
// on first use and are closed by the caller once the run ends.
type Runner struct {
	reader   verify.ValueReader
	editor   *confedit.Editor
	signaler Reloader
	verifier *verify.Verifier
	locator  *logfiles.Locator
	logger   *slog.Logger
}

func NewRunner(reader verify.ValueReader, editor *confedit.Editor, signaler Reloader, verifier *verify.Verifier, locator *logfiles.Locator, logger *slog.Logger) *Runner {
	return &Runner{
		reader:   reader,
		editor:   editor,
		signaler: signaler,
		verifier: verifier,
		locator:  locator,
		logger:   logging.NewComponentLogger(logger, "apply"),
	}
}

// Run applies the requested changes. It returns ErrNoChanges when nothing
// needed rewriting and force was off; the Outcome is still populated so the
// caller can print the per-setting status.
func (r *Runner) Run(ctx context.Context, changes []Change, opts Options) (Outcome, error) {
	outcome := Outcome{}
	if len(changes) == 0 {
		return outcome, ErrNoChanges
	}

	results := make(map[string]verify.Result, len(changes))
	pending := make(map[string]string, len(changes))
	order := make([]string, 0, len(changes))

	for _, change := range changes {
		order = append(order, change.Name)

		current, err := r.reader.Show(ctx, change.Name)
		if err != nil {
			return outcome, err
		}
		if current == change.Value && !opts.Force {
			r.logger.Info("setting already holds requested value",
				logging.String(logging.FieldSetting, change.Name), "value", current)
			results[change.Name] = verify.Result{
				Name:      change.Name,
				Requested: change.Value,
				Actual:    current,
				State:     verify.StateAlreadyCorrect,
			}
			continue
		}

		lines, err := r.editor.Rewrite(change.Name, change.Value, opts.Annotate)
		if err != nil {
			return outcome, err
		}
		if lines == 0 {
			r.logger.Warn("no active assignment found in config file",
				logging.String(logging.FieldSetting, change.Name), "path", r.editor.Path())
		} else {
			outcome.Applied++
			r.logger.Debug("config line rewritten",
				logging.String(logging.FieldSetting, change.Name), "value", change.Value)
		}
		// Missing keys are still polled (the server may already agree) but
		// do not count toward the convergence target.
		pending[change.Name] = change.Value
		results[change.Name] = verify.Result{Name: change.Name, Requested: change.Value, State: verify.StateUnverified}
	}

	if len(pending) == 0 {
		outcome.Results = ordered(order, results)
		return outcome, ErrNoChanges
	}

	if opts.Report && r.locator != nil {
		info, err := r.locator.Current(ctx)
		if err != nil {
			r.logger.Warn("could not determine current log file", logging.Error(err))
		} else {
			outcome.LogFile = info
		}
	}

	signaled, err := r.signaler.Reload(ctx)
	if err != nil {
		return outcome, fmt.Errorf("reload server: %w", err)
	}
	outcome.Signaled = signaled
	if !signaled {
		r.logger.Warn("reload signal not delivered; settings are unlikely to converge")
	}

	for name, res := range r.verifier.Verify(ctx, pending, outcome.Applied) {
		results[name] = res
	}
	outcome.Results = ordered(order, results)

	for _, res := range outcome.Results {
		if res.State == verify.StateUnverified {
			r.logger.Warn("setting did not converge",
				logging.String(logging.FieldSetting, res.Name),
				"requested", res.Requested, "actual", res.Actual)
		}
	}
	return outcome, nil
}

func ordered(order []string, results map[string]verify.Result) []verify.Result {
	out := make([]verify.Result, 0, len(order))
	for _, name := range order {
		if res, ok := results[name]; ok {
			out = append(out, res)
		}
	}
	return out
}
