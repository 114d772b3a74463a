package usecase

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/platewise/backend/internal/domain"
	"github.com/platewise/backend/internal/infrastructure/usda"
)

const (
	defaultPageSize = 25
	maxPageSize     = 200
)

// searchDataTypes are queried in order; the first one with results is used.
var searchDataTypes = []string{domain.DataTypeFoundation, domain.DataTypeSRLegacy}

// FoodServiceConfig holds configuration for the food service
type FoodServiceConfig struct {
	PageSize int
}

// SearchResult is one ranked page of compact search rows.
type SearchResult struct {
	Foods     []domain.CompactFoodRow `json:"foods"`
	Page      int                     `json:"page"`
	PageSize  int                     `json:"pageSize"`
	TotalHits int                     `json:"totalHits"`
	DataType  string                  `json:"dataType"`
}

// FoodService answers search and detail lookups against the food database
type FoodService struct {
	source   domain.RecordSource
	pageSize int
	logger   *zap.Logger
}

// NewFoodService creates a new food service with dependencies
func NewFoodService(source domain.RecordSource, config FoodServiceConfig, logger *zap.Logger) *FoodService {
	pageSize := config.PageSize
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FoodService{
		source:   source,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Search queries Foundation foods first and falls back to SR Legacy only when
// Foundation has nothing. Results from the two sources are never merged.
func (s *FoodService) Search(ctx context.Context, query string, page int) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, eris.Wrap(domain.ErrInvalidInput, "search: query is required")
	}
	if page < 1 {
		page = 1
	}

	result := &SearchResult{
		Foods:    []domain.CompactFoodRow{},
		Page:     page,
		PageSize: s.pageSize,
	}
	for i, dataType := range searchDataTypes {
		if i > 0 {
			s.logger.Info("no results, falling back",
				zap.String("query", query),
				zap.String("from", searchDataTypes[i-1]),
				zap.String("to", dataType),
			)
		}

		found, err := s.source.SearchRecords(ctx, query, page, dataType, s.pageSize)
		if err != nil {
			return nil, eris.Wrapf(err, "search %q in %s", query, dataType)
		}
		if found == nil || len(found.Records) == 0 {
			result.DataType = dataType
			continue
		}

		result.Foods = CompactSearchResults(query, found.Records)
		result.DataType = dataType
		result.TotalHits = found.TotalHits
		if result.TotalHits < len(found.Records) {
			result.TotalHits = len(found.Records)
		}
		return result, nil
	}
	return result, nil
}

// Detail fetches one food and assembles its display view.
func (s *FoodService) Detail(ctx context.Context, fdcID int64) (*domain.FoodDetail, error) {
	if fdcID <= 0 {
		return nil, eris.Wrapf(domain.ErrInvalidInput, "detail: invalid fdcId %d", fdcID)
	}

	rec, err := s.source.GetDetailRecord(ctx, fdcID)
	if err != nil {
		return nil, eris.Wrapf(err, "detail %d", fdcID)
	}
	return BuildFoodDetail(fdcID, rec), nil
}

// Normalize returns the canonical nutrient table of a detail record.
func (s *FoodService) Normalize(rec *domain.RawFoodRecord) []domain.CanonicalNutrient {
	return usda.NormalizeNutrients(rec)
}

// BuildFoodDetail composes the detail view from a raw record. fdcID is used
// when the record does not carry its own identifier.
func BuildFoodDetail(fdcID int64, rec *domain.RawFoodRecord) *domain.FoodDetail {
	if rec == nil {
		rec = &domain.RawFoodRecord{}
	}
	energy := usda.ResolveEnergy(rec)
	row := compactRow(rec, energy)
	if row.FdcID == 0 {
		row.FdcID = fdcID
	}

	return &domain.FoodDetail{
		FdcID:     row.FdcID,
		Name:      row.Name,
		DataType:  row.DataType,
		BrandName: row.BrandName,
		GtinUpc:   row.GtinUpc,
		Calories:  energy.Calories,
		Per:       energy.Per,
		Serving:   row.Unit,
		Nutrients: usda.NormalizeNutrients(rec),
	}
}
