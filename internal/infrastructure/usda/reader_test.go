package usda

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/backend/internal/domain"
)

func decodeEntry(t *testing.T, raw string) domain.RawNutrientEntry {
	t.Helper()
	var entry domain.RawNutrientEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &entry))
	return entry
}

func TestReadNutrient(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantID     *int
		wantNumber string
		wantName   string
		wantUnit   string
		wantValue  *float64
	}{
		{
			name:       "search result shape",
			raw:        `{"nutrientId":1008,"nutrientNumber":"208","nutrientName":"Energy","unitName":"KCAL","value":52}`,
			wantID:     intPtr(1008),
			wantNumber: "208",
			wantName:   "energy",
			wantUnit:   "kcal",
			wantValue:  floatPtr(52),
		},
		{
			name:       "detail shape",
			raw:        `{"nutrient":{"id":1003,"number":"203","name":"Protein","unitName":"g"},"amount":20.5}`,
			wantID:     intPtr(1003),
			wantNumber: "203",
			wantName:   "protein",
			wantUnit:   "g",
			wantValue:  floatPtr(20.5),
		},
		{
			name:       "sub-object wins over flat fields",
			raw:        `{"nutrient":{"id":1004,"name":"Total lipid (fat)"},"nutrientId":9999,"nutrientName":"Fat","unitName":"G","amount":3}`,
			wantID:     intPtr(1004),
			wantName:   "total lipid (fat)",
			wantUnit:   "g",
			wantValue:  floatPtr(3),
		},
		{
			name:       "amount wins over value",
			raw:        `{"nutrientName":"Protein","amount":7,"value":9}`,
			wantName:   "protein",
			wantValue:  floatPtr(7),
		},
		{
			name:       "non-numeric amount falls through to value",
			raw:        `{"nutrientName":"Protein","amount":"7","value":9}`,
			wantName:   "protein",
			wantValue:  floatPtr(9),
		},
		{
			name:       "numeric legacy number is coerced to string",
			raw:        `{"nutrient":{"number":203},"amount":1}`,
			wantNumber: "203",
			wantValue:  floatPtr(1),
		},
		{
			name:       "fractional identifier is ignored",
			raw:        `{"nutrientId":1008.5,"value":1}`,
			wantValue:  floatPtr(1),
		},
		{
			name: "empty entry",
			raw:  `{}`,
		},
		{
			name: "wrong types everywhere",
			raw:  `{"nutrient":"protein","nutrientId":"1003","nutrientName":{"x":1},"unitName":[],"amount":null,"value":true}`,
		},
		{
			name: "not an object",
			raw:  `42`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReadNutrient(decodeEntry(t, tt.raw))

			assert.Equal(t, tt.wantID, got.ID)
			assert.Equal(t, tt.wantNumber, got.Number)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.wantUnit, got.Unit)
			assert.Equal(t, tt.wantValue, got.Value)
		})
	}
}

func TestReadRawKeepsCasing(t *testing.T) {
	r := readRaw(decodeEntry(t, `{"nutrient":{"name":"Vitamin C, total ascorbic acid","unitName":"MG"},"amount":4.6}`))

	assert.Equal(t, "Vitamin C, total ascorbic acid", r.name)
	assert.Equal(t, "MG", r.unit)
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
