package validate

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/wot-oss/fwreg/internal/model"
	"github.com/wot-oss/fwreg/internal/utils"
)

const manifestSchemaUrl = "resource://manifest.schema.json"

// SchemaValidator checks manifests against a fixed JSON schema
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// NewSchemaValidator compiles the given JSON schema document
func NewSchemaValidator(schema []byte) (*SchemaValidator, error) {
	compiler := jsonschema.NewCompiler()
	err := compiler.AddResource(manifestSchemaUrl, bytes.NewReader(schema))
	if err != nil {
		return nil, fmt.Errorf("invalid manifest schema: %w", err)
	}
	s, err := compiler.Compile(manifestSchemaUrl)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest schema: %w", err)
	}
	return &SchemaValidator{schema: s}, nil
}

// LoadSchemaValidator reads and compiles the schema at path.
// Returns a *model.MissingInputError if there is no file at path
func LoadSchemaValidator(path string) (*SchemaValidator, error) {
	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &model.MissingInputError{What: "manifest schema", Path: path}
	}
	_, raw, err := utils.ReadRequiredFile(path)
	if err != nil {
		return nil, err
	}
	return NewSchemaValidator(raw)
}

// Validate validates the generic JSON value of a manifest. All violations found are reported
// in a single *model.SchemaViolationError
func (v *SchemaValidator) Validate(source string, parsed any) error {
	err := v.schema.Validate(parsed)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("could not validate %s: %w", source, err)
	}
	var violations []model.Violation
	violations = collectLeaves(ve, violations)
	return &model.SchemaViolationError{Source: source, Violations: dedup(violations)}
}

func collectLeaves(ve *jsonschema.ValidationError, acc []model.Violation) []model.Violation {
	if len(ve.Causes) == 0 {
		return append(acc, model.Violation{Field: fieldName(ve.InstanceLocation), Message: ve.Message})
	}
	for _, c := range ve.Causes {
		acc = collectLeaves(c, acc)
	}
	return acc
}

func dedup(vs []model.Violation) []model.Violation {
	seen := make(map[model.Violation]struct{}, len(vs))
	res := vs[:0]
	for _, v := range vs {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		res = append(res, v)
	}
	return res
}

// fieldName converts a JSON pointer into a dotted field path, e.g. "/boards/0/brand" -> "boards.0.brand"
func fieldName(pointer string) string {
	p := strings.TrimPrefix(pointer, "/")
	if p == "" {
		return "(root)"
	}
	segs := strings.Split(p, "/")
	for i, s := range segs {
		s = strings.ReplaceAll(s, "~1", "/")
		segs[i] = strings.ReplaceAll(s, "~0", "~")
	}
	return strings.Join(segs, ".")
}
