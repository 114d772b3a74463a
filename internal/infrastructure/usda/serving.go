package usda

import (
	"strings"

	"github.com/platewise/backend/internal/domain"
)

// servingAttempt is one source of a serving description.
type servingAttempt func(*domain.RawFoodRecord) (string, bool)

var servingChain = []servingAttempt{
	declaredServing,
	householdServing,
	firstPortionWeight,
}

func householdServing(rec *domain.RawFoodRecord) (string, bool) {
	text := strings.TrimSpace(rec.HouseholdServingFullText.String())
	return text, text != ""
}

func firstPortionWeight(rec *domain.RawFoodRecord) (string, bool) {
	if len(rec.FoodPortions) == 0 {
		return "", false
	}
	grams, ok := positive(rec.FoodPortions[0].GramWeight.Float())
	if !ok {
		return "", false
	}
	return FormatNumber(grams) + " g", true
}

// FormatServing describes a record's serving for display: the declared
// serving size, then the household text, then the first portion weight, then
// fallback (or "100 g" when fallback is empty).
func FormatServing(rec *domain.RawFoodRecord, fallback string) string {
	if rec != nil {
		for _, attempt := range servingChain {
			if text, ok := attempt(rec); ok {
				return text
			}
		}
	}
	if fallback = strings.TrimSpace(fallback); fallback != "" {
		return fallback
	}
	return perHundredGrams
}
