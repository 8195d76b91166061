package apply_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pgtweak/internal/apply"
	"pgtweak/internal/confedit"
	"pgtweak/internal/verify"
)

// scriptedGateway serves SHOW values in sequence per setting, repeating the
// last one once the script runs out.
type scriptedGateway struct {
	values map[string][]string
	calls  map[string]int
}

func newScriptedGateway(values map[string][]string) *scriptedGateway {
	return &scriptedGateway{values: values, calls: make(map[string]int)}
}

func (g *scriptedGateway) Show(_ context.Context, name string) (string, error) {
	seq, ok := g.values[name]
	if !ok || len(seq) == 0 {
		return "", fmt.Errorf("no scripted value for %s", name)
	}
	idx := g.calls[name]
	g.calls[name]++
	if idx >= len(seq) {
		idx = len(seq) - 1
	}
	return seq[idx], nil
}

type fakeReloader struct {
	calls int
	sent  bool
	err   error
}

func (r *fakeReloader) Reload(context.Context) (bool, error) {
	r.calls++
	return r.sent, r.err
}

func writeConf(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "postgresql.conf")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write conf: %v", err)
	}
	return path
}

func readConf(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read conf: %v", err)
	}
	return string(content)
}

func newRunner(gw *scriptedGateway, editor *confedit.Editor, rel *fakeReloader) *apply.Runner {
	verifier := verify.New(gw, 5, time.Millisecond, nil)
	return apply.NewRunner(gw, editor, rel, verifier, nil, nil)
}

func TestRunRewritesReloadsAndVerifies(t *testing.T) {
	path := writeConf(t, "log_statement = none\nshared_buffers = 128MB\n")
	editor := confedit.New(path, "pgtweak")
	defer editor.Close()

	gw := newScriptedGateway(map[string][]string{
		"log_statement": {"none", "all"},
	})
	rel := &fakeReloader{sent: true}
	runner := newRunner(gw, editor, rel)

	outcome, err := runner.Run(context.Background(),
		[]apply.Change{{Name: "log_statement", Value: "all"}},
		apply.Options{Annotate: true})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if outcome.Applied != 1 {
		t.Fatalf("expected 1 applied change, got %d", outcome.Applied)
	}
	if !outcome.Signaled {
		t.Fatal("expected reload signal")
	}
	if rel.calls != 1 {
		t.Fatalf("expected exactly one reload, got %d", rel.calls)
	}
	if len(outcome.Results) != 1 || outcome.Results[0].State != verify.StateVerified {
		t.Fatalf("unexpected results: %+v", outcome.Results)
	}

	content := readConf(t, path)
	if !strings.Contains(content, "log_statement = 'all' ## changed by pgtweak on ") {
		t.Fatalf("config line not rewritten as expected: %q", content)
	}
	if got := strings.Count(content, "\n"); got != 2 {
		t.Fatalf("line count changed: %d newlines in %q", got, content)
	}
}

func TestRunAlreadyCorrectSkipsWrite(t *testing.T) {
	original := "log_statement = 'all'\n"
	path := writeConf(t, original)
	editor := confedit.New(path, "pgtweak")
	defer editor.Close()

	gw := newScriptedGateway(map[string][]string{
		"log_statement": {"all"},
	})
	rel := &fakeReloader{sent: true}
	runner := newRunner(gw, editor, rel)

	outcome, err := runner.Run(context.Background(),
		[]apply.Change{{Name: "log_statement", Value: "all"}},
		apply.Options{})
	if !errors.Is(err, apply.ErrNoChanges) {
		t.Fatalf("expected ErrNoChanges, got %v", err)
	}
	if rel.calls != 0 {
		t.Fatal("reload must not run when nothing changed")
	}
	if got := readConf(t, path); got != original {
		t.Fatalf("file was modified: %q", got)
	}
	if len(outcome.Results) != 1 || outcome.Results[0].State != verify.StateAlreadyCorrect {
		t.Fatalf("unexpected results: %+v", outcome.Results)
	}
}

func TestRunForceRewritesMatchingValue(t *testing.T) {
	path := writeConf(t, "log_statement = all\n")
	editor := confedit.New(path, "pgtweak")
	defer editor.Close()

	gw := newScriptedGateway(map[string][]string{
		"log_statement": {"all", "all"},
	})
	rel := &fakeReloader{sent: true}
	runner := newRunner(gw, editor, rel)

	outcome, err := runner.Run(context.Background(),
		[]apply.Change{{Name: "log_statement", Value: "all"}},
		apply.Options{Force: true})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if outcome.Applied != 1 {
		t.Fatalf("expected forced rewrite, got applied=%d", outcome.Applied)
	}
	if outcome.Results[0].State != verify.StateVerified {
		t.Fatalf("unexpected state: %v", outcome.Results[0].State)
	}
	if !strings.Contains(readConf(t, path), "log_statement = 'all'") {
		t.Fatal("forced rewrite missing from file")
	}
}

func TestRunMixedBatchStillSucceeds(t *testing.T) {
	path := writeConf(t, "log_statement = none\nwork_mem = 4MB\n")
	editor := confedit.New(path, "pgtweak")
	defer editor.Close()

	gw := newScriptedGateway(map[string][]string{
		"log_statement": {"none", "all"},
		"work_mem":      {"4MB", "4MB"},
	})
	rel := &fakeReloader{sent: true}
	runner := newRunner(gw, editor, rel)

	outcome, err := runner.Run(context.Background(),
		[]apply.Change{
			{Name: "log_statement", Value: "all"},
			{Name: "work_mem", Value: "256"},
		},
		apply.Options{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if outcome.Applied != 2 {
		t.Fatalf("expected 2 applied changes, got %d", outcome.Applied)
	}

	byName := make(map[string]verify.Result)
	for _, res := range outcome.Results {
		byName[res.Name] = res
	}
	if byName["log_statement"].State != verify.StateVerified {
		t.Fatalf("log_statement: %+v", byName["log_statement"])
	}
	if byName["work_mem"].State != verify.StateUnverified {
		t.Fatalf("work_mem: %+v", byName["work_mem"])
	}
	if byName["work_mem"].Actual != "4MB" {
		t.Fatalf("work_mem actual: %q", byName["work_mem"].Actual)
	}
}

func TestRunMissingKeyIsSoftFailure(t *testing.T) {
	path := writeConf(t, "shared_buffers = 128MB\n")
	editor := confedit.New(path, "pgtweak")
	defer editor.Close()

	gw := newScriptedGateway(map[string][]string{
		"log_statement": {"none"},
	})
	rel := &fakeReloader{sent: true}
	runner := newRunner(gw, editor, rel)

	outcome, err := runner.Run(context.Background(),
		[]apply.Change{{Name: "log_statement", Value: "all"}},
		apply.Options{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if outcome.Applied != 0 {
		t.Fatalf("expected no applied changes, got %d", outcome.Applied)
	}
	if rel.calls != 1 {
		t.Fatalf("reload should still run, got %d calls", rel.calls)
	}
	if outcome.Results[0].State != verify.StateUnverified {
		t.Fatalf("unexpected state: %v", outcome.Results[0].State)
	}
}

func TestRunUnknownSettingAborts(t *testing.T) {
	path := writeConf(t, "shared_buffers = 128MB\n")
	editor := confedit.New(path, "pgtweak")
	defer editor.Close()

	gw := newScriptedGateway(map[string][]string{})
	rel := &fakeReloader{sent: true}
	runner := newRunner(gw, editor, rel)

	_, err := runner.Run(context.Background(),
		[]apply.Change{{Name: "no_such_setting", Value: "1"}},
		apply.Options{})
	if err == nil {
		t.Fatal("expected error for unknown setting")
	}
	if rel.calls != 0 {
		t.Fatal("reload must not run after a hard failure")
	}
}
