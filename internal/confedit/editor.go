// Package confedit rewrites single name = value assignments in a flat
// Postgres configuration file while preserving all surrounding content.
package confedit

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// Editor performs in-place edits of a configuration file. One editor (and
// one underlying file handle) serves a whole run; the advisory exclusive
// lock is taken per rewrite transaction so concurrent invocations of the
// tool never interleave a read/modify/write cycle.
type Editor struct {
	path    string
	program string

	file *os.File
	lock *flock.Flock

	now func() time.Time
}

// New prepares an editor for the configuration file at path. The file is
// opened lazily on the first rewrite. program appears in annotation
// comments.
func New(path, program string) *Editor {
	return &Editor{path: path, program: program, now: time.Now}
}

// Path reports the configuration file location.
func (e *Editor) Path() string { return e.path }

func (e *Editor) ensure() (*os.File, error) {
	if e.file != nil {
		return e.file, nil
	}
	file, err := os.OpenFile(e.path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	e.file = file
	e.lock = flock.New(e.path)
	return file, nil
}

// Rewrite replaces the value of the last active assignment of name and
// returns the number of lines changed (0 or 1). Zero means the key has no
// uncommented assignment; callers treat that as a soft failure. The lock
// acquisition blocks without timeout.
func (e *Editor) Rewrite(name, value string, annotate bool) (int, error) {
	if strings.TrimSpace(name) == "" {
		return 0, errors.New("setting name is required")
	}
	if value == "" {
		return 0, errors.New("setting value is required")
	}
	file, err := e.ensure()
	if err != nil {
		return 0, err
	}

	if err := e.lock.Lock(); err != nil {
		return 0, fmt.Errorf("lock config file: %w", err)
	}
	defer func() { _ = e.lock.Unlock() }()

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek config file: %w", err)
	}
	content, err := io.ReadAll(file)
	if err != nil {
		return 0, fmt.Errorf("read config file: %w", err)
	}

	// Explicit line scan: only the last uncommented assignment of the key
	// is authoritative; earlier or commented occurrences stay untouched.
	lines := splitLines(string(content))
	target := -1
	for i, line := range lines {
		if isActiveAssignment(line.text, name) {
			target = i
		}
	}
	if target < 0 {
		return 0, nil
	}

	lines[target].text = e.renderAssignment(lines[target].text, value, annotate)

	var out strings.Builder
	out.Grow(len(content) + 64)
	for _, line := range lines {
		out.WriteString(line.text)
		out.WriteString(line.terminator)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek config file: %w", err)
	}
	if _, err := file.WriteString(out.String()); err != nil {
		return 0, fmt.Errorf("write config file: %w", err)
	}
	if err := file.Truncate(int64(out.Len())); err != nil {
		return 0, fmt.Errorf("truncate config file: %w", err)
	}
	if err := file.Sync(); err != nil {
		return 0, fmt.Errorf("sync config file: %w", err)
	}
	return 1, nil
}

// Close releases the underlying file handle.
func (e *Editor) Close() error {
	if e == nil || e.file == nil {
		return nil
	}
	file := e.file
	e.file = nil
	return file.Close()
}

// renderAssignment keeps the original prefix through '=' (indentation and
// spacing included) and replaces everything after it.
func (e *Editor) renderAssignment(line, value string, annotate bool) string {
	idx := strings.Index(line, "=")
	rendered := line[:idx+1] + " " + QuoteValue(value)
	if annotate {
		rendered += fmt.Sprintf(" ## changed by %s on %s", e.program, e.now().Format("2006-01-02 15:04:05"))
	}
	return rendered
}

// QuoteValue wraps purely alphabetic values other than on/off in single
// quotes, which is what the server expects for string settings.
func QuoteValue(value string) string {
	if !isAlphabetic(value) {
		return value
	}
	switch strings.ToLower(value) {
	case "on", "off":
		return value
	}
	return "'" + value + "'"
}

func isAlphabetic(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// isActiveAssignment reports whether line is an uncommented "name = value"
// assignment of exactly the given key.
func isActiveAssignment(line, name string) bool {
	rest := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(rest, name) {
		return false
	}
	rest = strings.TrimLeft(rest[len(name):], " \t")
	return strings.HasPrefix(rest, "=")
}

type rawLine struct {
	text       string
	terminator string
}

// splitLines keeps the original terminators so rejoining reproduces the
// file byte for byte outside the edited line.
func splitLines(content string) []rawLine {
	var lines []rawLine
	for len(content) > 0 {
		idx := strings.IndexByte(content, '\n')
		if idx < 0 {
			lines = append(lines, rawLine{text: content})
			break
		}
		text := content[:idx]
		terminator := "\n"
		if strings.HasSuffix(text, "\r") {
			text = strings.TrimSuffix(text, "\r")
			terminator = "\r\n"
		}
		lines = append(lines, rawLine{text: text, terminator: terminator})
		content = content[idx+1:]
	}
	return lines
}
