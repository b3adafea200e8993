package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wot-oss/fwreg/internal/model"
	"github.com/wot-oss/fwreg/internal/utils"
	"gopkg.in/yaml.v3"
)

var allowListExts = []string{".json", ".yaml", ".yml"}

// LoadAllowList reads the allow-list at path. JSON is expected unless the file name ends with .yaml or .yml.
// If there is no file at path, its siblings with the other accepted extensions are tried.
// Returns nil and no error if none of them exists or path is empty: enforcement is then disabled
func LoadAllowList(path string) (*model.AllowList, error) {
	path = findAllowListFile(path)
	if path == "" {
		return nil, nil
	}
	_, raw, err := utils.ReadRequiredFile(path)
	if err != nil {
		return nil, err
	}
	var al model.AllowList
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &al)
	default:
		err = json.Unmarshal(raw, &al)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid allow-list %s: %w", path, err)
	}
	return &al, nil
}

func findAllowListFile(path string) string {
	if path == "" {
		return ""
	}
	candidates := []string{path}
	base := strings.TrimSuffix(path, filepath.Ext(path))
	for _, ext := range allowListExts {
		if c := base + ext; c != path {
			candidates = append(candidates, c)
		}
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		} else if !errors.Is(err, os.ErrNotExist) {
			// let the reader report it
			return c
		}
	}
	return ""
}

// PolicyValidator checks manifest fields against an allow-list
type PolicyValidator struct {
	enabled  bool
	brands   model.ValueSet
	models   model.ValueSet
	mcus     model.ValueSet
	regions  model.ValueSet
	features model.ValueSet
	scenes   model.ValueSet
}

// NewPolicyValidator creates a validator for the allow-list al. A nil allow-list disables all checks
func NewPolicyValidator(al *model.AllowList) *PolicyValidator {
	if al == nil {
		return &PolicyValidator{}
	}
	return &PolicyValidator{
		enabled:  true,
		brands:   model.NewValueSet(al.Brands),
		models:   model.NewValueSet(al.Models),
		mcus:     model.NewValueSet(al.MCUs),
		regions:  model.NewValueSet(al.Regions),
		features: model.NewValueSet(al.Features),
		scenes:   model.NewValueSet(al.Scenes),
	}
}

// Validate returns a *model.PolicyViolationError listing every value of m which is not allowed
func (v *PolicyValidator) Validate(source string, m *model.Manifest) error {
	if !v.enabled {
		return nil
	}
	var violations []model.Violation
	for _, b := range m.Boards {
		violations = check(violations, v.brands, "boards.brand", b.Brand)
		violations = check(violations, v.models, "boards.model", b.Model)
	}
	violations = checkAll(violations, v.mcus, "mcu", m.MCU)
	violations = checkAll(violations, v.regions, "regions", m.Regions)
	violations = checkAll(violations, v.features, "features", m.Features)
	violations = checkAll(violations, v.scenes, "scenes", m.Scenes)

	if len(violations) > 0 {
		return &model.PolicyViolationError{Source: source, Violations: violations}
	}
	return nil
}

func checkAll(acc []model.Violation, allowed model.ValueSet, field string, values []string) []model.Violation {
	for _, val := range values {
		acc = check(acc, allowed, field, val)
	}
	return acc
}

func check(acc []model.Violation, allowed model.ValueSet, field, value string) []model.Violation {
	if allowed.Allows(value) {
		return acc
	}
	return append(acc, model.Violation{Field: field, Message: fmt.Sprintf("'%s' is not in allowed list", value)})
}
