package devices

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/KevinKickass/OpenSitePlanner/internal/types"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/device-catalog-v1.json
var catalogSchemaJSON string

//go:embed schema/site-layout-v1.json
var layoutSchemaJSON string

type Validator struct {
	catalog *jsonschema.Schema
	layout  *jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	catalog, err := compileSchema("device-catalog-v1.json", catalogSchemaJSON)
	if err != nil {
		return nil, err
	}

	layout, err := compileSchema("site-layout-v1.json", layoutSchemaJSON)
	if err != nil {
		return nil, err
	}

	return &Validator{catalog: catalog, layout: layout}, nil
}

func compileSchema(name, source string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()

	if err := compiler.AddResource(name, strings.NewReader(source)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource %s: %w", name, err)
	}

	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}

	return schema, nil
}

// ValidateCatalog checks a catalog document of the form {"devices": [...]}.
func (v *Validator) ValidateCatalog(data []byte) error {
	return validate(v.catalog, data)
}

// ValidateLayout checks a nested device array as stored on a site.
func (v *Validator) ValidateLayout(data []byte) error {
	return validate(v.layout, data)
}

func (v *Validator) ValidateSiteLayout(layout types.Layout) error {
	if layout == nil {
		layout = types.Layout{}
	}
	data, err := json.Marshal(layout)
	if err != nil {
		return fmt.Errorf("failed to marshal layout: %w", err)
	}

	return v.ValidateLayout(data)
}

func validate(schema *jsonschema.Schema, data []byte) error {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	return nil
}
