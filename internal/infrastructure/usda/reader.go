package usda

import (
	"math"
	"strings"

	"github.com/platewise/backend/internal/domain"
)

// rawReading is a nutrient entry resolved field by field but with the
// upstream casing preserved. The normalizer needs the original name and
// unit; everything else works on the lowercased NutrientReading.
type rawReading struct {
	id     *int
	number string
	name   string
	unit   string
	value  *float64
}

// readRaw resolves each field of an entry, first present wins: the structured
// nutrient sub-object before the flat search-result field, and "amount"
// before "value".
func readRaw(entry domain.RawNutrientEntry) rawReading {
	var ref domain.NutrientRef
	if entry.Nutrient != nil {
		ref = *entry.Nutrient
	}

	var r rawReading
	if id, ok := integerOf(ref.ID); ok {
		r.id = &id
	} else if id, ok := integerOf(entry.NutrientID); ok {
		r.id = &id
	}
	r.number = firstText(ref.Number, entry.NutrientNumber)
	r.name = firstText(ref.Name, entry.NutrientName)
	r.unit = firstText(ref.UnitName, entry.UnitName)

	if v, ok := entry.Amount.Float(); ok {
		r.value = &v
	} else if v, ok := entry.Value.Float(); ok {
		r.value = &v
	}
	return r
}

// ReadNutrient extracts a uniform reading from one raw nutrient entry.
// Absent or mistyped fields yield nil or empty values.
func ReadNutrient(entry domain.RawNutrientEntry) domain.NutrientReading {
	r := readRaw(entry)
	return domain.NutrientReading{
		ID:     r.id,
		Number: r.number,
		Name:   strings.ToLower(r.name),
		Unit:   strings.ToLower(r.unit),
		Value:  r.value,
	}
}

// readAll reads every entry of a nutrient list.
func readAll(entries domain.NutrientList) []domain.NutrientReading {
	readings := make([]domain.NutrientReading, 0, len(entries))
	for _, entry := range entries {
		readings = append(readings, ReadNutrient(entry))
	}
	return readings
}

func firstText(values ...domain.Text) string {
	for _, v := range values {
		if v != "" {
			return v.String()
		}
	}
	return ""
}

func integerOf(n domain.Number) (int, bool) {
	v, ok := n.Float()
	if !ok || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}
