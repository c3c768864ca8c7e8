package structure

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/regali/internal/model"
)

func grid(corridors, shelves, positions int) model.StructureDefinition {
	def := model.StructureDefinition{DefaultCapacity: 10}
	for c := 0; c < corridors; c++ {
		corridor := model.Corridor{Code: string(rune('a' + c))}
		for s := 0; s < shelves; s++ {
			shelf := model.Shelf{Code: string(rune('1' + s))}
			for p := 0; p < positions; p++ {
				shelf.Positions = append(shelf.Positions, model.Position{Code: string(rune('1' + p))})
			}
			corridor.Shelves = append(corridor.Shelves, shelf)
		}
		def.Corridors = append(def.Corridors, corridor)
	}
	return def
}

func TestNormalizeUppercasesAndDefaultsLabels(t *testing.T) {
	def, err := Normalize(grid(1, 1, 2))
	require.NoError(t, err)

	c := def.Corridors[0]
	assert.Equal(t, "A", c.Code)
	assert.Equal(t, "A", c.Label)
	assert.Equal(t, "1", c.Shelves[0].Code)
	assert.Len(t, c.Shelves[0].Positions, 2)
}

func TestNormalizeKeepsLabels(t *testing.T) {
	in := grid(1, 1, 1)
	in.Corridors[0].Label = "  Cold aisle "
	def, err := Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, "Cold aisle", def.Corridors[0].Label)
}

func TestNormalizeReportsEveryViolation(t *testing.T) {
	neg := -1
	in := model.StructureDefinition{
		Corridors: []model.Corridor{
			{Code: "A", Shelves: []model.Shelf{
				{Code: "1", Positions: []model.Position{{Code: "1"}, {Code: "1"}}},
				{Code: "2"},
			}},
			{Code: "a", Shelves: []model.Shelf{
				{Code: "1-2", Capacity: &neg, Positions: []model.Position{{Code: ""}}},
			}},
		},
	}

	_, err := Normalize(in)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	paths := make([]string, 0, len(ve.Violations))
	for _, v := range ve.Violations {
		paths = append(paths, v.Path)
	}
	assert.ElementsMatch(t, []string{
		"corridors[0].shelves[0].positions[1].code", // duplicate position
		"corridors[0].shelves[1].positions",         // empty shelf
		"corridors[1].code",                         // duplicate corridor (case-insensitive)
		"corridors[1].shelves[0].code",              // separator in code
		"corridors[1].shelves[0].capacity",          // negative capacity
		"corridors[1].shelves[0].positions[0].code", // missing code
	}, paths)
	assert.True(t, IsValidationError(err))
}

func TestNormalizeRejectsEmptyStructure(t *testing.T) {
	_, err := Normalize(model.StructureDefinition{})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Violations, 1)
	assert.Equal(t, "corridors", ve.Violations[0].Path)
}

func TestNormalizeRejectsLongCodes(t *testing.T) {
	in := grid(1, 1, 1)
	in.Corridors[0].Code = "ABCDEFGHIJKLMNOPQ"
	_, err := Normalize(in)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Violations[0].Message, "at most 16")
}

func TestAddressIsDeterministic(t *testing.T) {
	assert.Equal(t, "Z1-A-01-3", Address("Z1", "A", "01", "3"))
	assert.Equal(t, Address("Z1", "A", "01", "3"), Address("Z1", "A", "01", "3"))
}

func TestExpandProducesUniqueAddresses(t *testing.T) {
	def, err := Normalize(grid(2, 2, 3))
	require.NoError(t, err)

	slots := Expand("Z1", def)
	require.Len(t, slots, 12)

	seen := make(map[string]bool)
	for _, s := range slots {
		assert.False(t, seen[s.Address], "duplicate address %s", s.Address)
		seen[s.Address] = true
		assert.Equal(t, 10, s.Capacity)
	}
	assert.Equal(t, "Z1-A-1-1", slots[0].Address)
	assert.Equal(t, "Z1-B-2-3", slots[11].Address)
}

func TestSchemaDescribesCorridors(t *testing.T) {
	data, err := json.Marshal(Schema())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"corridors"`)
	assert.Contains(t, string(data), `"positions"`)
}
