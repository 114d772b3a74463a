package usda

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/platewise/backend/internal/domain"
)

// labelNutrientKeys fixes the order label entries are merged in.
var labelNutrientKeys = []string{
	"calories", "totalFat", "saturatedFat", "transFat", "cholesterol",
	"sodium", "totalCarbohydrate", "dietaryFiber", "totalSugars", "addedSugars",
	"protein", "vitaminD", "calcium", "iron", "potassium",
}

// labelNutrientNames maps Branded label keys to FDC nutrient names.
var labelNutrientNames = map[string]string{
	"calories":          "Energy",
	"totalFat":          "Total lipid (fat)",
	"saturatedFat":      "Fatty acids, total saturated",
	"transFat":          "Fatty acids, total trans",
	"cholesterol":       "Cholesterol",
	"sodium":            "Sodium, Na",
	"totalCarbohydrate": "Carbohydrate, by difference",
	"dietaryFiber":      "Fiber, total dietary",
	"totalSugars":       "Sugars, total",
	"addedSugars":       "Added sugars",
	"protein":           "Protein",
	"vitaminD":          "Vitamin D",
	"calcium":           "Calcium, Ca",
	"iron":              "Iron, Fe",
	"potassium":         "Potassium, K",
}

// labelNutrientUnits holds the unit each label key is declared in.
var labelNutrientUnits = map[string]string{
	"calories":          "kcal",
	"totalFat":          "g",
	"saturatedFat":      "g",
	"transFat":          "g",
	"cholesterol":       "mg",
	"sodium":            "mg",
	"totalCarbohydrate": "g",
	"dietaryFiber":      "g",
	"totalSugars":       "g",
	"addedSugars":       "g",
	"protein":           "g",
	"vitaminD":          "mcg",
	"calcium":           "mg",
	"iron":              "mg",
	"potassium":         "mg",
}

// NormalizeNutrients merges a detail record's nutrient list and its label
// summary into one table with a single entry per name, sorted by name.
// The result is never nil.
func NormalizeNutrients(rec *domain.RawFoodRecord) []domain.CanonicalNutrient {
	if rec == nil {
		return []domain.CanonicalNutrient{}
	}
	candidates := append(nutrientListEntries(rec.FoodNutrients), labelEntries(rec.LabelNutrients)...)
	merged := dedupeByName(candidates)

	c := collate.New(language.English)
	sort.SliceStable(merged, func(i, j int) bool {
		return c.CompareString(merged[i].Name, merged[j].Name) < 0
	})
	return merged
}

func nutrientListEntries(entries domain.NutrientList) []domain.CanonicalNutrient {
	out := make([]domain.CanonicalNutrient, 0, len(entries))
	for _, entry := range entries {
		r := readRaw(entry)
		if r.name == "" || r.value == nil {
			continue
		}
		value, unit := *r.value, r.unit
		if strings.EqualFold(r.name, "energy") && strings.EqualFold(unit, "kj") {
			value /= kilojoulesPerKilocalorie
			unit = "kcal"
		}
		out = append(out, domain.CanonicalNutrient{Name: r.name, Value: value, Unit: unit})
	}
	return out
}

func labelEntries(label domain.LabelNutrients) []domain.CanonicalNutrient {
	if len(label) == 0 {
		return nil
	}
	out := make([]domain.CanonicalNutrient, 0, len(labelNutrientKeys))
	for _, key := range labelNutrientKeys {
		entry, ok := label[key]
		if !ok {
			continue
		}
		value, ok := entry.Value.Float()
		if !ok {
			continue
		}
		out = append(out, domain.CanonicalNutrient{
			Name:  labelNutrientNames[key],
			Value: value,
			Unit:  labelNutrientUnits[key],
		})
	}
	return out
}

// dedupeByName keeps the first entry for each trimmed name, except that a
// zero value is replaced by a later nonzero one. Two different nonzero values
// are not reconciled: the first stays.
func dedupeByName(candidates []domain.CanonicalNutrient) []domain.CanonicalNutrient {
	index := make(map[string]int, len(candidates))
	out := make([]domain.CanonicalNutrient, 0, len(candidates))
	for _, n := range candidates {
		n.Name = strings.TrimSpace(n.Name)
		if n.Name == "" {
			continue
		}
		i, seen := index[n.Name]
		if !seen {
			index[n.Name] = len(out)
			out = append(out, n)
			continue
		}
		if out[i].Value == 0 && n.Value != 0 {
			out[i] = n
		}
	}
	return out
}
