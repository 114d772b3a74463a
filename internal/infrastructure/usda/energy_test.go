package usda

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/backend/internal/domain"
)

func decodeRecord(t *testing.T, raw string) *domain.RawFoodRecord {
	t.Helper()
	var rec domain.RawFoodRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	return &rec
}

func byIDEntry(id int, value float64) domain.RawNutrientEntry {
	return domain.RawNutrientEntry{NutrientID: domain.Num(float64(id)), Value: domain.Num(value)}
}

func TestResolveEnergy(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.EnergyEstimate
	}{
		{
			name: "branded label calories without serving size",
			raw:  `{"dataType":"Branded","labelNutrients":{"calories":{"value":200}}}`,
			want: domain.EnergyEstimate{Calories: 200, Per: "serving"},
		},
		{
			name: "branded label calories with serving size",
			raw:  `{"dataType":"Branded","servingSize":28,"servingSizeUnit":"g","labelNutrients":{"calories":{"value":149.6}}}`,
			want: domain.EnergyEstimate{Calories: 150, Per: "28 g"},
		},
		{
			name: "branded label calories with fractional serving and no unit",
			raw:  `{"dataType":"Branded","servingSize":"2.26","labelNutrients":{"calories":{"value":90}}}`,
			want: domain.EnergyEstimate{Calories: 90, Per: "2.3"},
		},
		{
			name: "label calories of zero fall through to nutrients",
			raw:  `{"dataType":"Branded","labelNutrients":{"calories":{"value":0}},"foodNutrients":[{"nutrientId":1008,"value":250}]}`,
			want: domain.EnergyEstimate{Calories: 250, Per: "100 g"},
		},
		{
			name: "identifier 1008 scaled to gram serving",
			raw:  `{"dataType":"Foundation","servingSize":150,"servingSizeUnit":"g","foodNutrients":[{"nutrientId":1008,"value":120}]}`,
			want: domain.EnergyEstimate{Calories: 180, Per: "150 g"},
		},
		{
			name: "half-tenth gram serving rounds up",
			raw:  `{"dataType":"Foundation","servingSize":28.25,"servingSizeUnit":"g","foodNutrients":[{"nutrientId":1008,"value":100}]}`,
			want: domain.EnergyEstimate{Calories: 28, Per: "28.3 g"},
		},
		{
			name: "grams unit spelled GRM",
			raw:  `{"dataType":"SR Legacy","servingSize":50,"servingSizeUnit":"GRM","foodNutrients":[{"nutrientId":1008,"value":100}]}`,
			want: domain.EnergyEstimate{Calories: 50, Per: "50 g"},
		},
		{
			name: "non-gram serving is not scaled",
			raw:  `{"dataType":"Foundation","servingSize":1,"servingSizeUnit":"cup","foodNutrients":[{"nutrientId":1008,"value":120}]}`,
			want: domain.EnergyEstimate{Calories: 120, Per: "100 g"},
		},
		{
			name: "legacy number 208",
			raw:  `{"foodNutrients":[{"nutrient":{"number":"208"},"amount":89}]}`,
			want: domain.EnergyEstimate{Calories: 89, Per: "100 g"},
		},
		{
			name: "energy by name and kcal unit",
			raw:  `{"foodNutrients":[{"nutrientName":"Energy","unitName":"KCAL","value":64.4}]}`,
			want: domain.EnergyEstimate{Calories: 64, Per: "100 g"},
		},
		{
			name: "energy in kilojoules converted",
			raw:  `{"foodNutrients":[{"nutrientName":"Energy","unitName":"kJ","value":418.4}]}`,
			want: domain.EnergyEstimate{Calories: 100, Per: "100 g"},
		},
		{
			name: "kcal entry preferred over kJ entry",
			raw:  `{"foodNutrients":[{"nutrientName":"Energy","unitName":"kJ","value":1000},{"nutrientName":"Energy","unitName":"kcal","value":239}]}`,
			want: domain.EnergyEstimate{Calories: 239, Per: "100 g"},
		},
		{
			name: "zero direct energy falls back to macros",
			raw:  `{"foodNutrients":[{"nutrientId":1008,"value":0},{"nutrientId":1003,"value":20},{"nutrientId":1004,"value":10},{"nutrientId":1005,"value":30},{"nutrientId":1006,"value":0}]}`,
			want: domain.EnergyEstimate{Calories: 290, Per: "100 g"},
		},
		{
			name: "nothing known for analytical record",
			raw:  `{"dataType":"Foundation"}`,
			want: domain.EnergyEstimate{Calories: 0, Per: "100 g"},
		},
		{
			name: "nothing known for branded record",
			raw:  `{"dataType":"Branded"}`,
			want: domain.EnergyEstimate{Calories: 0, Per: "serving"},
		},
		{
			name: "branded nutrients are reported per 100 g",
			raw:  `{"dataType":"Branded","servingSize":30,"servingSizeUnit":"g","foodNutrients":[{"nutrientId":1008,"value":400}]}`,
			want: domain.EnergyEstimate{Calories: 400, Per: "100 g"},
		},
		{
			name: "empty object",
			raw:  `{}`,
			want: domain.EnergyEstimate{Calories: 0, Per: "100 g"},
		},
		{
			name: "malformed fields",
			raw:  `{"labelNutrients":"x","foodNutrients":{"a":1},"servingSize":"abc"}`,
			want: domain.EnergyEstimate{Calories: 0, Per: "100 g"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveEnergy(decodeRecord(t, tt.raw)))
		})
	}
}

func TestResolveEnergy_NilRecord(t *testing.T) {
	assert.Equal(t, domain.EnergyEstimate{Calories: 0, Per: "100 g"}, ResolveEnergy(nil))
}

func TestAtwaterEnergy(t *testing.T) {
	tests := []struct {
		name    string
		entries domain.NutrientList
		want    float64
		wantOK  bool
	}{
		{
			name: "protein fat carbs",
			entries: domain.NutrientList{
				byIDEntry(NutrientIDProtein, 20),
				byIDEntry(NutrientIDTotalFat, 10),
				byIDEntry(NutrientIDCarbohydrate, 30),
			},
			want:   290,
			wantOK: true,
		},
		{
			name: "alcohol counts seven per gram",
			entries: domain.NutrientList{
				byIDEntry(NutrientIDAlcoholEthyl, 10),
			},
			want:   70,
			wantOK: true,
		},
		{
			name: "nitrogen substitutes for absent protein",
			entries: domain.NutrientList{
				{NutrientNumber: "202", Value: domain.Num(2)},
			},
			want:   50, // 2 * 6.25 * 4
			wantOK: true,
		},
		{
			name: "protein of zero is not replaced by nitrogen",
			entries: domain.NutrientList{
				byIDEntry(NutrientIDProtein, 0),
				byIDEntry(NutrientIDNitrogen, 2),
				byIDEntry(NutrientIDCarbohydrate, 1),
			},
			want:   4,
			wantOK: true,
		},
		{
			name: "fat by NLEA name",
			entries: domain.NutrientList{
				{NutrientName: "Total fat (NLEA)", Value: domain.Num(1.5)},
			},
			want:   14, // round(13.5)
			wantOK: true,
		},
		{
			name: "fat falls back to NLEA identifier",
			entries: domain.NutrientList{
				byIDEntry(NutrientIDTotalFatNLEA, 2),
			},
			want:   18,
			wantOK: true,
		},
		{
			name: "fat by legacy number",
			entries: domain.NutrientList{
				{Nutrient: &domain.NutrientRef{Number: "204"}, Amount: domain.Num(1)},
			},
			want:   9,
			wantOK: true,
		},
		{
			name: "all macros zero",
			entries: domain.NutrientList{
				byIDEntry(NutrientIDProtein, 0),
				byIDEntry(NutrientIDTotalFat, 0),
			},
			wantOK: false,
		},
		{
			name:   "no macros",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := atwaterEnergy(readAll(tt.entries))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnergyPer100g_KilojouleConversion(t *testing.T) {
	got, ok := EnergyPer100g(domain.NutrientList{
		{NutrientName: "Energy", UnitName: "kj", Value: domain.Num(418.4)},
	})

	require.True(t, ok)
	assert.InDelta(t, 100.0, got, 1e-9)
}

func TestEnergyPer100g_DirectTiersBeatMacros(t *testing.T) {
	got, ok := EnergyPer100g(domain.NutrientList{
		byIDEntry(NutrientIDProtein, 50),
		{NutrientNumber: "208", Value: domain.Num(33)},
	})

	require.True(t, ok)
	assert.Equal(t, 33.0, got)
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{150, "150"},
		{0, "0"},
		{2.26, "2.3"},
		{28.34, "28.3"},
		{0.5, "0.5"},
		{1.04, "1.0"},
		{0.25, "0.3"},
		{1.25, "1.3"},
		{28.25, "28.3"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatNumber(tt.in))
		})
	}
}
