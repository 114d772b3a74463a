package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/platewise/backend/internal/domain"
	"github.com/platewise/backend/internal/usecase"
)

const (
	serviceName    = "platewise-backend"
	serviceVersion = "1.0.0"

	// maxBodyBytes bounds JSON request bodies; base64 photos are the largest.
	maxBodyBytes = 15 << 20
)

// FoodLookup is the food service as seen by the handlers
type FoodLookup interface {
	Search(ctx context.Context, query string, page int) (*usecase.SearchResult, error)
	Detail(ctx context.Context, fdcID int64) (*domain.FoodDetail, error)
	Normalize(rec *domain.RawFoodRecord) []domain.CanonicalNutrient
}

// MealScanner is the scan service as seen by the handlers
type MealScanner interface {
	Analyze(ctx context.Context, imageBase64 string) ([]domain.ScanItem, error)
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NormalizeRequest carries a raw FDC detail record to normalize
type NormalizeRequest struct {
	Detail json.RawMessage `json:"detail"`
}

// NormalizeResponse is the canonical nutrient table of a record
type NormalizeResponse struct {
	Nutrients []domain.CanonicalNutrient `json:"nutrients"`
}

// ScanRequest carries a base64 meal photo, optionally as a data URL
type ScanRequest struct {
	ImageBase64 string `json:"image_base64"`
}

// ScanResponse lists the ingredients found in a photo
type ScanResponse struct {
	Items []domain.ScanItem `json:"items"`
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	foods   FoodLookup
	scanner MealScanner
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler. A nil scanner makes the scan
// endpoint answer not-configured.
func NewHandler(foods FoodLookup, scanner MealScanner, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		foods:   foods,
		scanner: scanner,
		logger:  logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// SearchFoods handles GET /api/v1/foods/search?q=&page=
func (h *Handler) SearchFoods(c *gin.Context) {
	if h.foods == nil {
		h.respondError(c, eris.Wrap(domain.ErrNotConfigured, "food search unavailable"))
		return
	}

	page, err := strconv.Atoi(strings.TrimSpace(c.Query("page")))
	if err != nil || page < 1 {
		page = 1
	}

	result, err := h.foods.Search(c.Request.Context(), c.Query("q"), page)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetFood handles GET /api/v1/foods/:fdcId
func (h *Handler) GetFood(c *gin.Context) {
	if h.foods == nil {
		h.respondError(c, eris.Wrap(domain.ErrNotConfigured, "food lookup unavailable"))
		return
	}

	raw := c.Param("fdcId")
	fdcID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || fdcID <= 0 {
		h.respondError(c, eris.Wrapf(domain.ErrInvalidInput, "fdcId must be a positive integer, got %q", raw))
		return
	}

	detail, err := h.foods.Detail(c.Request.Context(), fdcID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// NormalizeFood handles POST /api/v1/foods/normalize
func (h *Handler) NormalizeFood(c *gin.Context) {
	if h.foods == nil {
		h.respondError(c, eris.Wrap(domain.ErrNotConfigured, "normalizer unavailable"))
		return
	}

	var req NormalizeRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	rec, err := domain.DecodeFoodRecord(req.Detail)
	if err != nil {
		h.respondError(c, eris.Wrap(err, "detail must be a JSON object"))
		return
	}

	c.JSON(http.StatusOK, NormalizeResponse{Nutrients: h.foods.Normalize(rec)})
}

// AnalyzeScan handles POST /api/v1/scan/analyze
func (h *Handler) AnalyzeScan(c *gin.Context) {
	if h.scanner == nil {
		h.respondError(c, eris.Wrap(domain.ErrNotConfigured, "meal scanning is not configured"))
		return
	}

	var req ScanRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	items, err := h.scanner.Analyze(c.Request.Context(), req.ImageBase64)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ScanResponse{Items: items})
}

// respondError writes the error body for err and records err on the context
// so the request logger can see it.
func (h *Handler) respondError(c *gin.Context, err error) {
	kind := domain.ErrorKind(err)
	status := statusForKind(kind)

	// Upstream and internal errors may carry URLs or internals; callers get
	// a fixed message and the detail goes to the log.
	var message string
	switch kind {
	case domain.KindInvalidInput, domain.KindNotConfigured:
		message = err.Error()
	case domain.KindFetchFailed:
		message = "upstream food or vision service request failed"
	default:
		h.logger.Error("unhandled error",
			zap.String("path", c.FullPath()),
			zap.String(requestIDKey, c.GetString(requestIDKey)),
			zap.String("error", eris.ToString(err, true)),
		)
		message = "internal server error"
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: kind, Message: message})
}

func statusForKind(kind string) int {
	switch kind {
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindFetchFailed:
		return http.StatusBadGateway
	case domain.KindNotConfigured:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// bindJSON decodes a size-limited JSON body. Any decoding failure, including
// an oversized body, is invalid input.
func bindJSON(c *gin.Context, dst any) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(dst); err != nil {
		return eris.Wrapf(domain.ErrInvalidInput, "request body: %v", err)
	}
	return nil
}
