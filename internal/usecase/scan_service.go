package usecase

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/platewise/backend/internal/domain"
)

// maxImageBytes bounds the decoded photo sent to the vision service.
const maxImageBytes = 5 << 20

// ScanService identifies the ingredients in a meal photo
type ScanService struct {
	extractor domain.IngredientExtractor
	logger    *zap.Logger
}

// NewScanService creates a scan service. A nil extractor makes every call
// fail with domain.ErrNotConfigured.
func NewScanService(extractor domain.IngredientExtractor, logger *zap.Logger) *ScanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanService{extractor: extractor, logger: logger}
}

// Analyze decodes a base64 photo (optionally a data URL), asks the extractor
// for ingredients and returns them without blank or repeated names.
func (s *ScanService) Analyze(ctx context.Context, imageBase64 string) ([]domain.ScanItem, error) {
	image, err := decodeImage(imageBase64)
	if err != nil {
		return nil, err
	}
	if s.extractor == nil {
		return nil, eris.Wrap(domain.ErrNotConfigured, "scan: no vision credentials")
	}

	items, err := s.extractor.ExtractIngredients(ctx, image)
	if err != nil {
		return nil, eris.Wrap(err, "scan: extract ingredients")
	}

	deduped := dedupeScanItems(items)
	s.logger.Debug("scan analyzed", zap.Int("items", len(deduped)), zap.Int("raw_items", len(items)))
	return deduped, nil
}

func decodeImage(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "data:") {
		if i := strings.Index(encoded, ","); i >= 0 {
			encoded = encoded[i+1:]
		}
	}
	if encoded == "" {
		return nil, eris.Wrap(domain.ErrInvalidInput, "scan: image_base64 required")
	}

	image, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, eris.Wrap(domain.ErrInvalidInput, "scan: image_base64 is not valid base64")
	}
	if len(image) > maxImageBytes {
		return nil, eris.Wrapf(domain.ErrInvalidInput, "scan: image larger than %d bytes", maxImageBytes)
	}
	return image, nil
}

// dedupeScanItems drops items without a name and keeps the first item for
// each lowercased trimmed name.
func dedupeScanItems(items []domain.ScanItem) []domain.ScanItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]domain.ScanItem, 0, len(items))
	for _, item := range items {
		item.Name = strings.TrimSpace(item.Name)
		key := strings.ToLower(item.Name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
