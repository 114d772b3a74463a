package usda

import (
	"math"
	"strconv"
)

// FormatNumber renders integers without decimals and anything else with
// exactly one decimal place, rounding ties away from zero.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
}

// positive returns v when it is a finite number greater than zero.
func positive(v float64, ok bool) (float64, bool) {
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}
