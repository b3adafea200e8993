// Package cli contains implementations of CLI commands. The command code is supposed contain only logic specific to
// the CLI and delegate complex/reusable stuff to code in /internal/commands.
// Commands in cli package should print results in human-readable format to stdout.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/wot-oss/fwreg/internal/model"
)

const DefaultListSeparator = ","

// Stderrf prints a message to os.Stderr, followed by newline
func Stderrf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
	_, _ = fmt.Fprintln(os.Stderr)
}

// printViolations prints the individual problems of a schema or policy error one per line.
// Returns false if err carries no violations
func printViolations(err error) bool {
	var sErr *model.SchemaViolationError
	var pErr *model.PolicyViolationError
	var vs []model.Violation
	switch {
	case errors.As(err, &sErr):
		vs = sErr.Violations
	case errors.As(err, &pErr):
		vs = pErr.Violations
	default:
		return false
	}
	for _, v := range vs {
		Stderrf("  %s", v)
	}
	return true
}
