package domain

import (
	"encoding/json"
	"strings"
)

// FoodData Central data types.
const (
	DataTypeFoundation = "Foundation"
	DataTypeSRLegacy   = "SR Legacy"
	DataTypeBranded    = "Branded"
)

// RawFoodRecord is a food as returned by FoodData Central. It is the union of
// the Foundation/SR Legacy and Branded shapes; every field is optional.
type RawFoodRecord struct {
	FdcID                    Number         `json:"fdcId"`
	Description              Text           `json:"description"`
	DataType                 Text           `json:"dataType"`
	BrandName                Text           `json:"brandName"`
	GtinUpc                  Text           `json:"gtinUpc"`
	FoodNutrients            NutrientList   `json:"foodNutrients"`
	LabelNutrients           LabelNutrients `json:"labelNutrients"`
	ServingSize              Quantity       `json:"servingSize"`
	ServingSizeUnit          Text           `json:"servingSizeUnit"`
	HouseholdServingFullText Text           `json:"householdServingFullText"`
	FoodPortions             PortionList    `json:"foodPortions"`
}

// UnmarshalJSON leaves the record empty when the value is not an object, so
// one malformed element does not poison a whole result page.
func (r *RawFoodRecord) UnmarshalJSON(data []byte) error {
	type plain RawFoodRecord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		*r = RawFoodRecord{}
		return nil
	}
	*r = RawFoodRecord(p)
	return nil
}

// IsBranded reports whether the record carries label-declared (per serving)
// data rather than per-100 g analytical data.
func (r *RawFoodRecord) IsBranded() bool {
	return r != nil && strings.EqualFold(strings.TrimSpace(r.DataType.String()), DataTypeBranded)
}

// DecodeFoodRecord decodes a single upstream record. Only a payload that is
// not a JSON object is rejected; malformed fields inside it decode as absent.
func DecodeFoodRecord(data []byte) (*RawFoodRecord, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil || probe == nil {
		return nil, ErrInvalidInput
	}
	var rec RawFoodRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, ErrInvalidInput
	}
	return &rec, nil
}

// NutrientRef is the structured "nutrient" sub-object used by detail records.
type NutrientRef struct {
	ID       Number `json:"id"`
	Number   Text   `json:"number"`
	Name     Text   `json:"name"`
	UnitName Text   `json:"unitName"`
}

// UnmarshalJSON leaves the reference empty when the value is not an object.
func (n *NutrientRef) UnmarshalJSON(data []byte) error {
	type plain NutrientRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		*n = NutrientRef{}
		return nil
	}
	*n = NutrientRef(p)
	return nil
}

// RawNutrientEntry is one upstream nutrient entry. Search results use the flat
// fields, detail records use the Nutrient sub-object and Amount.
type RawNutrientEntry struct {
	Nutrient       *NutrientRef `json:"nutrient,omitempty"`
	NutrientID     Number       `json:"nutrientId"`
	NutrientNumber Text         `json:"nutrientNumber"`
	NutrientName   Text         `json:"nutrientName"`
	UnitName       Text         `json:"unitName"`
	Amount         Number       `json:"amount"`
	Value          Number       `json:"value"`
}

// UnmarshalJSON leaves the entry empty when the value is not an object.
func (e *RawNutrientEntry) UnmarshalJSON(data []byte) error {
	type plain RawNutrientEntry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		*e = RawNutrientEntry{}
		return nil
	}
	*e = RawNutrientEntry(p)
	return nil
}

// NutrientList decodes as empty when the upstream value is not an array.
type NutrientList []RawNutrientEntry

// UnmarshalJSON never returns an error.
func (l *NutrientList) UnmarshalJSON(data []byte) error {
	var entries []RawNutrientEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		*l = nil
		return nil
	}
	*l = entries
	return nil
}

// LabelValue is one labelNutrients entry, e.g. {"value": 200}.
type LabelValue struct {
	Value Number `json:"value"`
}

// UnmarshalJSON leaves the value absent when the entry is not an object.
func (v *LabelValue) UnmarshalJSON(data []byte) error {
	type plain LabelValue
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		*v = LabelValue{}
		return nil
	}
	*v = LabelValue(p)
	return nil
}

// LabelNutrients is the Branded label summary keyed by FDC label field name
// (calories, totalFat, ...).
type LabelNutrients map[string]LabelValue

// UnmarshalJSON decodes as absent when the upstream value is not an object.
func (m *LabelNutrients) UnmarshalJSON(data []byte) error {
	var values map[string]LabelValue
	if err := json.Unmarshal(data, &values); err != nil {
		*m = nil
		return nil
	}
	*m = values
	return nil
}

// FoodPortion is one household portion of a Foundation/SR Legacy record.
type FoodPortion struct {
	GramWeight         Number `json:"gramWeight"`
	Amount             Number `json:"amount"`
	Modifier           Text   `json:"modifier"`
	PortionDescription Text   `json:"portionDescription"`
}

// UnmarshalJSON leaves the portion empty when the value is not an object.
func (p *FoodPortion) UnmarshalJSON(data []byte) error {
	type plain FoodPortion
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		*p = FoodPortion{}
		return nil
	}
	*p = FoodPortion(v)
	return nil
}

// PortionList decodes as empty when the upstream value is not an array.
type PortionList []FoodPortion

// UnmarshalJSON never returns an error.
func (l *PortionList) UnmarshalJSON(data []byte) error {
	var portions []FoodPortion
	if err := json.Unmarshal(data, &portions); err != nil {
		*l = nil
		return nil
	}
	*l = portions
	return nil
}

// NutrientReading is the uniform view of one RawNutrientEntry regardless of
// which upstream schema produced it. Name and Unit are lowercased.
type NutrientReading struct {
	ID     *int     `json:"id"`
	Number string   `json:"number"`
	Name   string   `json:"name"`
	Unit   string   `json:"unit"`
	Value  *float64 `json:"value"`
}

// EnergyEstimate is a best-effort calorie figure and what it is per
// ("100 g", "150 g", "serving", ...).
type EnergyEstimate struct {
	Calories int    `json:"calories"`
	Per      string `json:"per"`
}

// CompactFoodRow is the display shape of one search result.
type CompactFoodRow struct {
	FdcID     int64   `json:"fdcId"`
	Name      string  `json:"name"`
	Calories  int     `json:"calories"`
	Unit      string  `json:"unit"`
	DataType  string  `json:"dataType"`
	BrandName *string `json:"brandName"`
	GtinUpc   *string `json:"gtinUpc"`
}

// CanonicalNutrient is one row of a normalized nutrient table.
type CanonicalNutrient struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// SearchPage is one page of raw search results from the record source.
type SearchPage struct {
	Records   []RawFoodRecord `json:"foods"`
	TotalHits int             `json:"totalHits"`
}

// FoodDetail is the display shape of a single food.
type FoodDetail struct {
	FdcID     int64               `json:"fdcId"`
	Name      string              `json:"name"`
	DataType  string              `json:"dataType"`
	BrandName *string             `json:"brandName"`
	GtinUpc   *string             `json:"gtinUpc"`
	Calories  int                 `json:"calories"`
	Per       string              `json:"per"`
	Serving   string              `json:"serving"`
	Nutrients []CanonicalNutrient `json:"nutrients"`
}
