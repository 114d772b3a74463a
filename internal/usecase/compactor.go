package usecase

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/platewise/backend/internal/domain"
	"github.com/platewise/backend/internal/infrastructure/usda"
)

const unknownFoodName = "Unknown"

// Match tiers used to rank rows against the query, best first.
const (
	matchExact = iota
	matchPrefix
	matchSubstring
	matchNone
)

// CompactSearchResults turns raw search records into display rows ranked
// against query: exact name matches first, then prefix, then substring
// matches, then alphabetical. The ordering is stable.
func CompactSearchResults(query string, records []domain.RawFoodRecord) []domain.CompactFoodRow {
	rows := make([]domain.CompactFoodRow, 0, len(records))
	for i := range records {
		rows = append(rows, compactRow(&records[i], usda.ResolveEnergy(&records[i])))
	}
	rankRows(query, rows)
	return rows
}

// compactRow builds the display row of rec from its already resolved energy.
func compactRow(rec *domain.RawFoodRecord, energy domain.EnergyEstimate) domain.CompactFoodRow {
	name := rec.Description.String()
	if strings.TrimSpace(name) == "" {
		name = unknownFoodName
	}
	fdcID, _ := rec.FdcID.Int64()

	return domain.CompactFoodRow{
		FdcID:     fdcID,
		Name:      name,
		Calories:  energy.Calories,
		Unit:      usda.FormatServing(rec, energy.Per),
		DataType:  rec.DataType.String(),
		BrandName: optionalText(rec.BrandName),
		GtinUpc:   optionalText(rec.GtinUpc),
	}
}

// rankRows sorts rows in place by match tier, then by name.
func rankRows(query string, rows []domain.CompactFoodRow) {
	q := strings.ToLower(strings.TrimSpace(query))
	c := collate.New(language.English)

	names := make([]string, len(rows))
	tiers := make([]int, len(rows))
	for i := range rows {
		names[i] = strings.ToLower(rows[i].Name)
		tiers[i] = matchTier(q, names[i])
	}

	// Sort an index permutation so the tier and name lookups stay aligned.
	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if tiers[ia] != tiers[ib] {
			return tiers[ia] < tiers[ib]
		}
		return c.CompareString(names[ia], names[ib]) < 0
	})

	sorted := make([]domain.CompactFoodRow, len(rows))
	for i, idx := range order {
		sorted[i] = rows[idx]
	}
	copy(rows, sorted)
}

func matchTier(query, name string) int {
	switch {
	case name == query:
		return matchExact
	case strings.HasPrefix(name, query):
		return matchPrefix
	case strings.Contains(name, query):
		return matchSubstring
	default:
		return matchNone
	}
}

func optionalText(t domain.Text) *string {
	s := strings.TrimSpace(t.String())
	if s == "" {
		return nil
	}
	return &s
}
