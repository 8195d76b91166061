package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"pgtweak/internal/verify"
)

// renderResults formats per-setting outcomes, as a rounded table on a
// terminal and as plain key=value lines otherwise.
func renderResults(results []verify.Result, asTable bool) string {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		actual := res.Actual
		if actual == "" {
			actual = "-"
		}
		rows = append(rows, []string{res.Name, res.Requested, actual, res.State.String()})
	}

	if asTable {
		return renderTable([]string{"Setting", "Requested", "Actual", "Status"}, rows)
	}

	var b strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&b, "%s: requested=%s actual=%s status=%q\n", row[0], row[1], row[2], row[3])
	}
	return strings.TrimRight(b.String(), "\n")
}

func useTableOutput() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
