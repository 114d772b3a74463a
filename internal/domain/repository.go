package domain

import "context"

// RecordSource fetches raw records from the food-composition database.
// Implementations must bound every call with a timeout and report any
// non-success response as ErrFetchFailed.
type RecordSource interface {
	SearchRecords(ctx context.Context, query string, page int, dataType string, pageSize int) (*SearchPage, error)
	GetDetailRecord(ctx context.Context, fdcID int64) (*RawFoodRecord, error)
}

// IngredientExtractor identifies the ingredients visible in a meal photo.
type IngredientExtractor interface {
	ExtractIngredients(ctx context.Context, image []byte) ([]ScanItem, error)
}
