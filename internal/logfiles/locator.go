// Package logfiles finds the server log file that was most recently
// written to, for operator reporting.
package logfiles

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// SettingsReader resolves the directories the server reports for logging.
type SettingsReader interface {
	Show(ctx context.Context, name string) (string, error)
}

// Info describes one server log file.
type Info struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Locator reports the active server log file.
type Locator struct {
	reader SettingsReader
}

func New(reader SettingsReader) *Locator {
	return &Locator{reader: reader}
}

// Current returns the newest log file in the server's log directory. The
// log_directory setting may be relative, in which case it is joined to
// data_directory. A zero Info with nil error means no log file matched.
func (l *Locator) Current(ctx context.Context) (Info, error) {
	logDir, err := l.reader.Show(ctx, "log_directory")
	if err != nil {
		return Info{}, err
	}
	if !filepath.IsAbs(logDir) {
		dataDir, err := l.reader.Show(ctx, "data_directory")
		if err != nil {
			return Info{}, err
		}
		logDir = filepath.Join(dataDir, logDir)
	}
	return Newest(logDir)
}

// Newest scans dir for file names containing "post" and returns the one
// with the latest modification time.
func Newest(dir string) (Info, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Info{}, fmt.Errorf("list log directory: %w", err)
	}

	var candidates []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.Contains(entry.Name(), "post") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		candidates = append(candidates, Info{
			Path:    filepath.Join(dir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	if len(candidates) == 0 {
		return Info{}, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ModTime.Before(candidates[j].ModTime)
	})
	return candidates[len(candidates)-1], nil
}
