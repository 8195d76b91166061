// Package reload asks a running Postgres server to re-read its
// configuration by sending SIGHUP to the postmaster.
package reload

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"pgtweak/internal/logging"
)

// PIDFileName is the pid file Postgres maintains in its data directory.
const PIDFileName = "postmaster.pid"

// DataDirResolver reports the server's data directory.
type DataDirResolver interface {
	DataDirectory(ctx context.Context) (string, error)
}

// Signaler discovers the postmaster pid and delivers the reload signal.
type Signaler struct {
	resolver DataDirResolver
	logger   *slog.Logger
}

// New constructs a signaler. A nil logger is replaced with a no-op one.
func New(resolver DataDirResolver, logger *slog.Logger) *Signaler {
	return &Signaler{
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "reload"),
	}
}

// Reload sends SIGHUP to the postmaster. It returns false without an error
// when the pid cannot be determined; callers treat that as a soft failure
// and let verification time out downstream.
func (s *Signaler) Reload(ctx context.Context) (bool, error) {
	dataDir, err := s.resolver.DataDirectory(ctx)
	if err != nil {
		return false, err
	}
	pid, err := ReadPostmasterPID(dataDir)
	if err != nil {
		s.logger.Warn("postmaster pid unavailable, reload signal not sent",
			"data_dir", dataDir, logging.Error(err))
		return false, nil
	}
	if err := unix.Kill(pid, unix.SIGHUP); err != nil {
		return false, fmt.Errorf("signal postmaster %d: %w", pid, err)
	}
	s.logger.Debug("reload signal sent", "pid", pid)
	return true, nil
}

// ReadPostmasterPID parses the process id from <dataDir>/postmaster.pid.
// The first whitespace-separated token of the first line is the pid.
func ReadPostmasterPID(dataDir string) (int, error) {
	path := filepath.Join(dataDir, PIDFileName)
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read pid file: %w", err)
	}
	line, _, _ := strings.Cut(string(content), "\n")
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, fmt.Errorf("pid file %s is empty", path)
	}
	pid, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("parse pid from %s: %w", path, err)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("pid file %s holds invalid pid %d", path, pid)
	}
	return pid, nil
}

// Running reports whether a process with the given pid exists, probed with
// the null signal.
func Running(pid int) bool {
	return unix.Kill(pid, 0) == nil
}
