// Package verify confirms that live server settings converged to their
// requested values after a configuration reload.
package verify

import (
	"context"
	"log/slog"
	"time"

	"pgtweak/internal/logging"
)

// State describes the outcome for a single setting after a change batch.
type State int

const (
	// StateUnverified means the live value never matched within the polling window.
	StateUnverified State = iota
	// StateVerified means the live value converged after the reload.
	StateVerified
	// StateAlreadyCorrect means the value matched before any file edit.
	StateAlreadyCorrect
)

func (s State) String() string {
	switch s {
	case StateVerified:
		return "verified"
	case StateAlreadyCorrect:
		return "already correct"
	default:
		return "unverified"
	}
}

// Result records the verification outcome for one setting.
type Result struct {
	Name      string
	Requested string
	Actual    string
	State     State
}

// ValueReader reads live setting values from the server.
type ValueReader interface {
	Show(ctx context.Context, name string) (string, error)
}

// Defaults give the server roughly six seconds to apply a reload.
const (
	DefaultAttempts = 30
	DefaultInterval = 200 * time.Millisecond
)

// Verifier polls the server until changed settings converge or the attempt
// budget is exhausted. The server applies a reload asynchronously and does
// not document when SHOW reflects it, hence bounded polling instead of a
// blocking wait.
type Verifier struct {
	reader   ValueReader
	attempts int
	interval time.Duration
	logger   *slog.Logger
}

// New constructs a verifier. Non-positive attempts or interval fall back to
// the defaults; a nil logger is replaced with a no-op one.
func New(reader ValueReader, attempts int, interval time.Duration, logger *slog.Logger) *Verifier {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Verifier{
		reader:   reader,
		attempts: attempts,
		interval: interval,
		logger:   logging.NewComponentLogger(logger, "verify"),
	}
}

// Verify polls every pending setting (name to requested value) until the
// number of verified settings reaches target or the attempts run out.
// Settings that never converge come back in StateUnverified. Polling stops
// early when the context is canceled; the reload already issued stays in
// effect regardless.
func (v *Verifier) Verify(ctx context.Context, pending map[string]string, target int) map[string]Result {
	results := make(map[string]Result, len(pending))
	for name, requested := range pending {
		results[name] = Result{Name: name, Requested: requested, State: StateUnverified}
	}
	if len(pending) == 0 {
		return results
	}

	verified := 0
	for attempt := 1; attempt <= v.attempts; attempt++ {
		if attempt > 1 && !sleepCtx(ctx, v.interval) {
			return results
		}
		for name, requested := range pending {
			if results[name].State == StateVerified {
				continue
			}
			actual, err := v.reader.Show(ctx, name)
			if err != nil {
				v.logger.Debug("verification read failed", logging.String(logging.FieldSetting, name), logging.Error(err))
				continue
			}
			res := results[name]
			res.Actual = actual
			if Converged(requested, actual) {
				res.State = StateVerified
				verified++
				v.logger.Debug("setting converged",
					logging.String(logging.FieldSetting, name), "value", actual, "attempt", attempt)
			}
			results[name] = res
		}
		if verified >= len(pending) || (target > 0 && verified >= target) {
			return results
		}
	}
	return results
}

// Converged reports whether the live value satisfies the requested one.
// A bare integer request matches the same integer carrying a unit suffix
// ("100" converges to "100ms"), since SHOW reports some time and memory
// settings with units attached.
func Converged(requested, actual string) bool {
	if requested == actual {
		return true
	}
	if !isInteger(requested) {
		return false
	}
	digits, suffix := splitUnit(actual)
	return suffix != "" && digits == requested
}

func isInteger(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}

// splitUnit separates "100ms" into digits and an alphabetic suffix. Both
// results are empty when the value does not have that shape.
func splitUnit(value string) (digits, suffix string) {
	i := 0
	for i < len(value) && value[i] >= '0' && value[i] <= '9' {
		i++
	}
	digits, suffix = value[:i], value[i:]
	if digits == "" || suffix == "" {
		return "", ""
	}
	for j := 0; j < len(suffix); j++ {
		c := suffix[j]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return "", ""
		}
	}
	return digits, suffix
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
