package structure

import (
	"github.com/invopop/jsonschema"

	"github.com/erazemk/regali/internal/model"
)

// Schema returns the JSON Schema of the structure document accepted by the
// structure endpoints.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference: true,
	}
	s := r.Reflect(&model.StructureDefinition{})
	s.Title = "Zone structure definition"
	s.Description = "Corridors contain shelves, shelves contain positions; every position becomes one bin."
	return s
}
