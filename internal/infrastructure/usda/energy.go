package usda

import (
	"math"
	"strings"

	"github.com/platewise/backend/internal/domain"
)

// FoodData Central nutrient identifiers
const (
	NutrientIDNitrogen     = 1002
	NutrientIDProtein      = 1003
	NutrientIDTotalFat     = 1004 // Total lipid (fat)
	NutrientIDCarbohydrate = 1005 // Carbohydrate, by difference
	NutrientIDAlcohol      = 1006
	NutrientIDEnergy       = 1008 // kcal
	NutrientIDAlcoholEthyl = 1018
	NutrientIDTotalFatNLEA = 1085
)

// Legacy SR nutrient numbers
const (
	NutrientNumberNitrogen     = "202"
	NutrientNumberProtein      = "203"
	NutrientNumberTotalFat     = "204"
	NutrientNumberCarbohydrate = "205"
	NutrientNumberEnergy       = "208"
	NutrientNumberAlcohol      = "221"
	NutrientNumberTotalFatNLEA = "298"
)

// Atwater general factors, kcal per gram.
const (
	kcalPerGramProtein      = 4.0
	kcalPerGramFat          = 9.0
	kcalPerGramCarbohydrate = 4.0
	kcalPerGramAlcohol      = 7.0
)

const (
	kilojoulesPerKilocalorie = 4.184
	nitrogenToProteinFactor  = 6.25

	perHundredGrams = "100 g"
	perServing      = "serving"
)

// nutrientMatch selects readings for one way of identifying a nutrient.
type nutrientMatch func(domain.NutrientReading) bool

func byID(ids ...int) nutrientMatch {
	return func(r domain.NutrientReading) bool {
		if r.ID == nil {
			return false
		}
		for _, id := range ids {
			if *r.ID == id {
				return true
			}
		}
		return false
	}
}

func byNumber(number string) nutrientMatch {
	return func(r domain.NutrientReading) bool {
		return r.Number != "" && r.Number == number
	}
}

func byName(names ...string) nutrientMatch {
	return func(r domain.NutrientReading) bool {
		for _, name := range names {
			if r.Name == name {
				return true
			}
		}
		return false
	}
}

func byNameAndUnit(name, unit string) nutrientMatch {
	return func(r domain.NutrientReading) bool {
		return r.Name == name && r.Unit == unit
	}
}

// lookup tries each match in order and returns the value of the first reading
// with a numeric value under the first match that has one. Zero counts.
func lookup(readings []domain.NutrientReading, matches ...nutrientMatch) (float64, bool) {
	for _, match := range matches {
		for _, r := range readings {
			if r.Value != nil && match(r) {
				return *r.Value, true
			}
		}
	}
	return 0, false
}

// energyAttempt is one tier of the per-100 g energy chain.
type energyAttempt func([]domain.NutrientReading) (float64, bool)

// directEnergy returns the first positive value selected by match.
func directEnergy(match nutrientMatch) energyAttempt {
	return func(readings []domain.NutrientReading) (float64, bool) {
		for _, r := range readings {
			if r.Value != nil && *r.Value > 0 && match(r) {
				return *r.Value, true
			}
		}
		return 0, false
	}
}

func fromKilojoules(attempt energyAttempt) energyAttempt {
	return func(readings []domain.NutrientReading) (float64, bool) {
		kj, ok := attempt(readings)
		if !ok {
			return 0, false
		}
		return kj / kilojoulesPerKilocalorie, true
	}
}

// per100gEnergyChain is tried in order; the first positive result wins.
var per100gEnergyChain = []energyAttempt{
	directEnergy(byID(NutrientIDEnergy)),
	directEnergy(byNumber(NutrientNumberEnergy)),
	directEnergy(byNameAndUnit("energy", "kcal")),
	fromKilojoules(directEnergy(byNameAndUnit("energy", "kj"))),
	atwaterEnergy,
}

// atwaterEnergy estimates kcal from macronutrients. Missing macros count as
// zero; at least one macro must be positive.
func atwaterEnergy(readings []domain.NutrientReading) (float64, bool) {
	protein, ok := lookup(readings,
		byID(NutrientIDProtein), byNumber(NutrientNumberProtein), byName("protein"))
	if !ok {
		if nitrogen, found := lookup(readings,
			byID(NutrientIDNitrogen), byNumber(NutrientNumberNitrogen), byName("nitrogen")); found {
			protein = nitrogen * nitrogenToProteinFactor
		}
	}

	fat, ok := lookup(readings,
		byID(NutrientIDTotalFat), byNumber(NutrientNumberTotalFat),
		byName("total lipid (fat)", "total fat (nlea)"))
	if !ok {
		fat, _ = lookup(readings, byID(NutrientIDTotalFatNLEA), byNumber(NutrientNumberTotalFatNLEA))
	}

	carbs, _ := lookup(readings,
		byID(NutrientIDCarbohydrate), byNumber(NutrientNumberCarbohydrate),
		byName("carbohydrate, by difference"))

	alcohol, _ := lookup(readings,
		byID(NutrientIDAlcohol, NutrientIDAlcoholEthyl), byNumber(NutrientNumberAlcohol),
		byName("alcohol, ethyl"))

	if protein <= 0 && fat <= 0 && carbs <= 0 && alcohol <= 0 {
		return 0, false
	}

	kcal := math.Round(protein*kcalPerGramProtein +
		fat*kcalPerGramFat +
		carbs*kcalPerGramCarbohydrate +
		alcohol*kcalPerGramAlcohol)
	if kcal <= 0 {
		return 0, false
	}
	return kcal, true
}

// EnergyPer100g runs the per-100 g chain over a nutrient list.
func EnergyPer100g(entries domain.NutrientList) (float64, bool) {
	readings := readAll(entries)
	for _, attempt := range per100gEnergyChain {
		if kcal, ok := attempt(readings); ok {
			return kcal, true
		}
	}
	return 0, false
}

// ResolveEnergy returns a best-effort calorie count for a record and what the
// count is per. Branded label calories are per serving; analytical data is per
// 100 g and is scaled to the declared serving when that serving is in grams.
func ResolveEnergy(rec *domain.RawFoodRecord) domain.EnergyEstimate {
	if rec == nil {
		return domain.EnergyEstimate{Per: perHundredGrams}
	}

	if kcal, ok := labelCalories(rec); ok {
		per := perServing
		if size, ok := declaredServing(rec); ok {
			per = size
		}
		return domain.EnergyEstimate{Calories: roundKcal(kcal), Per: per}
	}

	branded := rec.IsBranded()
	per100g, ok := EnergyPer100g(rec.FoodNutrients)
	if !ok {
		if branded {
			return domain.EnergyEstimate{Per: perServing}
		}
		return domain.EnergyEstimate{Per: perHundredGrams}
	}

	if !branded {
		if grams, ok := servingGrams(rec); ok {
			return domain.EnergyEstimate{
				Calories: roundKcal(per100g * grams / 100),
				Per:      FormatNumber(grams) + " g",
			}
		}
	}
	return domain.EnergyEstimate{Calories: roundKcal(per100g), Per: perHundredGrams}
}

func labelCalories(rec *domain.RawFoodRecord) (float64, bool) {
	if rec.LabelNutrients == nil {
		return 0, false
	}
	cal, ok := rec.LabelNutrients["calories"]
	if !ok {
		return 0, false
	}
	return positive(cal.Value.Float())
}

// declaredServing formats servingSize and servingSizeUnit when the size is a
// positive number.
func declaredServing(rec *domain.RawFoodRecord) (string, bool) {
	size, ok := positive(rec.ServingSize.Float())
	if !ok {
		return "", false
	}
	text := FormatNumber(size)
	if unit := strings.TrimSpace(rec.ServingSizeUnit.String()); unit != "" {
		text += " " + unit
	}
	return text, true
}

// servingGrams returns the declared serving when it is expressed in grams.
func servingGrams(rec *domain.RawFoodRecord) (float64, bool) {
	size, ok := positive(rec.ServingSize.Float())
	if !ok {
		return 0, false
	}
	switch strings.ToLower(strings.TrimSpace(rec.ServingSizeUnit.String())) {
	case "g", "gram", "grams", "grm":
		return size, true
	}
	return 0, false
}

func roundKcal(v float64) int {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}
