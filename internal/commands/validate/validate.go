package validate

import (
	"context"

	"github.com/wot-oss/fwreg/internal/model"
	"github.com/wot-oss/fwreg/internal/utils"
)

// Validator validates manifest documents against the schema first and the allow-list second.
// Schema conformance does not imply allow-list conformance and vice versa.
type Validator struct {
	schema *SchemaValidator
	policy *PolicyValidator
}

func NewValidator(schema *SchemaValidator, policy *PolicyValidator) *Validator {
	if policy == nil {
		policy = NewPolicyValidator(nil)
	}
	return &Validator{schema: schema, policy: policy}
}

// Load creates a Validator from the schema file and the optional allow-list file
func Load(schemaFile, allowListFile string) (*Validator, error) {
	sv, err := LoadSchemaValidator(schemaFile)
	if err != nil {
		return nil, err
	}
	al, err := LoadAllowList(allowListFile)
	if err != nil {
		return nil, err
	}
	return NewValidator(sv, NewPolicyValidator(al)), nil
}

func (v *Validator) Validate(ctx context.Context, doc *model.Document) error {
	log := utils.GetLogger(ctx, "validate")

	if v.schema != nil {
		if err := v.schema.Validate(doc.Source, doc.Parsed); err != nil {
			return err
		}
		log.Debug("passed validation against manifest schema", "source", doc.Source)
	}
	if err := v.policy.Validate(doc.Source, &doc.Manifest); err != nil {
		return err
	}
	log.Debug("passed allow-list validation", "source", doc.Source)
	return nil
}
