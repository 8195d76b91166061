package main

import (
	"fmt"
	"regexp"
	"strings"

	"pgtweak/internal/apply"
)

var changeNamePattern = regexp.MustCompile(`^\w+$`)

// parseChanges converts --change arguments into ordered changes. Surrounding
// single quotes on the value are stripped so shell-quoted values behave the
// same as bare ones.
func parseChanges(args []string) ([]apply.Change, error) {
	changes := make([]apply.Change, 0, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		value = stripQuotes(strings.TrimSpace(value))
		if !ok || name == "" || value == "" {
			return nil, fmt.Errorf("malformed --change %q (expected name=value)", arg)
		}
		if !changeNamePattern.MatchString(name) {
			return nil, fmt.Errorf("invalid setting name %q", name)
		}
		changes = append(changes, apply.Change{Name: name, Value: value})
	}
	return changes, nil
}

func stripQuotes(value string) string {
	if len(value) >= 2 && strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'") {
		return value[1 : len(value)-1]
	}
	return value
}
