package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/wot-oss/fwreg/internal/commands"
	"github.com/wot-oss/fwreg/internal/config"
)

var errValidationFailed = errors.New("validation failed")

// Validate validates each file and reports all of them. Fails if at least one file is invalid
func Validate(ctx context.Context, layout config.Layout, files []string) error {
	results, err := commands.ValidateFiles(ctx, layout, files)
	if err != nil {
		Stderrf("could not load validation rules: %v", err)
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Ok() {
			fmt.Printf("validated successfully: %s\n", r.File)
			continue
		}
		failed++
		Stderrf("invalid %s", r.File)
		if !printViolations(r.Err) {
			Stderrf("  %v", r.Err)
		}
	}
	if failed > 0 {
		Stderrf("%d of %d files failed validation", failed, len(results))
		return errValidationFailed
	}
	return nil
}
