package domain

// ScanItem is one ingredient identified in a meal photo.
type ScanItem struct {
	Name         string  `json:"name"`
	PortionDesc  string  `json:"portion_desc"`
	PortionGrams float64 `json:"portion_grams"`
}
