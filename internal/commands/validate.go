package commands

import (
	"context"

	"github.com/wot-oss/fwreg/internal/catalog"
	"github.com/wot-oss/fwreg/internal/commands/validate"
	"github.com/wot-oss/fwreg/internal/config"
)

// ValidationResult is the outcome of validating one manifest file
type ValidationResult struct {
	File string
	// Source is the file's path relative to the registry root. Empty if the file could not be read
	Source string
	Err    error
}

func (r ValidationResult) Ok() bool {
	return r.Err == nil
}

// ValidateFiles validates each of the given manifest files against the registry's schema and allow-list.
// Unlike an index build, all files are validated regardless of earlier failures.
// Returns an error only if the schema or allow-list cannot be loaded
func ValidateFiles(ctx context.Context, layout config.Layout, files []string) ([]ValidationResult, error) {
	validator, err := validate.Load(layout.SchemaFile, layout.AllowListFile)
	if err != nil {
		return nil, err
	}
	res := make([]ValidationResult, 0, len(files))
	for _, f := range files {
		r := ValidationResult{File: f}
		doc, err := catalog.Load(layout.Root, f)
		if err != nil {
			r.Err = err
			res = append(res, r)
			continue
		}
		r.Source = doc.Source
		r.Err = validator.Validate(ctx, doc)
		res = append(res, r)
	}
	return res, nil
}
