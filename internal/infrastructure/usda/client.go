package usda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/platewise/backend/internal/domain"
)

const (
	defaultTimeout         = 8 * time.Second
	defaultMaxRetries      = 2
	defaultRetryWait       = 500 * time.Millisecond
	defaultRetryMaxWait    = 2 * time.Second
	defaultRequestsPerHour = 1000
	rateLimitBurst         = 10
	maxLoggedBody          = 512
)

// Client handles communication with the USDA FoodData Central API.
// It implements domain.RecordSource.
type Client struct {
	http        *resty.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
	debug       bool

	timeout      time.Duration
	maxRetries   int
	retryWait    time.Duration
	retryMaxWait time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every request, retries excluded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxRetries sets how many times a 429, 5xx or transport failure is retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithRetryWait sets the backoff bounds between retries.
func WithRetryWait(wait, maxWait time.Duration) Option {
	return func(c *Client) {
		c.retryWait = wait
		c.retryMaxWait = maxWait
	}
}

// WithRequestsPerHour sets the client-side rate limit. FDC allows 1000/hour per key.
func WithRequestsPerHour(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.rateLimiter = rate.NewLimiter(rate.Limit(float64(n)/3600.0), rateLimitBurst)
		}
	}
}

// WithLogger sets the logger; nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a new FoodData Central API client
func NewClient(apiKey, baseURL string, opts ...Option) *Client {
	c := &Client{
		apiKey:       apiKey,
		baseURL:      baseURL,
		rateLimiter:  rate.NewLimiter(rate.Limit(float64(defaultRequestsPerHour)/3600.0), rateLimitBurst),
		logger:       zap.NewNop(),
		timeout:      defaultTimeout,
		maxRetries:   defaultMaxRetries,
		retryWait:    defaultRetryWait,
		retryMaxWait: defaultRetryMaxWait,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http = resty.New().
		SetBaseURL(baseURL).
		SetTimeout(c.timeout).
		SetRetryCount(c.maxRetries).
		SetRetryWaitTime(c.retryWait).
		SetRetryMaxWaitTime(c.retryMaxWait).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "Platewise/1.0").
		SetLogger(&redactingLogger{sugar: c.logger.Sugar(), apiKey: c.apiKey}).
		AddRetryCondition(shouldRetry).
		AddRetryHook(func(resp *resty.Response, err error) {
			fields := []zap.Field{zap.Error(redactAPIKey(err, c.apiKey))}
			if resp != nil {
				fields = append(fields, zap.Int("status", resp.StatusCode()))
				if resp.Request != nil {
					fields = append(fields, zap.String("url", redactKey(resp.Request.URL, c.apiKey)))
				}
			}
			c.logger.Warn("retrying FDC request", fields...)
		})

	return c
}

// SetDebug toggles request/response dumps.
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
	c.http.SetDebug(debug)
}

// shouldRetry retries transport failures, 429 and 5xx. Cancellation is final.
func shouldRetry(resp *resty.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	if resp == nil {
		return false
	}
	return resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= http.StatusInternalServerError
}

// fetchFailed wraps cause so that it matches both domain.ErrFetchFailed and cause.
func fetchFailed(cause error, msg string) error {
	return eris.Wrap(errors.Join(domain.ErrFetchFailed, cause), msg)
}

// get performs a rate-limited GET and returns the body of a 200 response.
func (c *Client) get(ctx context.Context, path string, params map[string]string, op string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fetchFailed(err, "usda: "+op+": rate limiter")
	}

	params["api_key"] = c.apiKey
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		err = redactAPIKey(err, c.apiKey)
		c.logger.Warn("FDC request failed", zap.String("op", op), zap.Error(err))
		return nil, fetchFailed(err, "usda: "+op+": send request")
	}

	if resp.StatusCode() != http.StatusOK {
		c.logger.Warn("FDC returned non-success status",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode()),
			zap.String("body", truncateBody(resp.Body(), maxLoggedBody)),
		)
		return nil, eris.Wrapf(domain.ErrFetchFailed, "usda: %s: status %d", op, resp.StatusCode())
	}
	return resp.Body(), nil
}

// searchResponse is the subset of the FDC search payload the service reads.
type searchResponse struct {
	Foods     []domain.RawFoodRecord `json:"foods"`
	TotalHits domain.Number          `json:"totalHits"`
}

// SearchRecords searches one FDC data type. An empty page is not an error.
func (c *Client) SearchRecords(ctx context.Context, query string, page int, dataType string, pageSize int) (*domain.SearchPage, error) {
	if page < 1 {
		page = 1
	}
	params := map[string]string{
		"query":      query,
		"pageNumber": strconv.Itoa(page),
		"pageSize":   strconv.Itoa(pageSize),
	}
	if dataType != "" {
		params["dataType"] = dataType
	}

	c.logger.Debug("FDC search", zap.String("query", query), zap.String("data_type", dataType), zap.Int("page", page))
	body, err := c.get(ctx, "/v1/foods/search", params, "search")
	if err != nil {
		return nil, err
	}

	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fetchFailed(err, "usda: search: failed to decode response")
	}

	total := len(decoded.Foods)
	if hits, ok := decoded.TotalHits.Float(); ok && hits >= 0 {
		total = int(hits)
	}
	c.logger.Debug("FDC search done", zap.String("query", query), zap.Int("records", len(decoded.Foods)), zap.Int("total_hits", total))

	return &domain.SearchPage{Records: decoded.Foods, TotalHits: total}, nil
}

// GetDetailRecord retrieves the full record for one FDC ID.
func (c *Client) GetDetailRecord(ctx context.Context, fdcID int64) (*domain.RawFoodRecord, error) {
	body, err := c.get(ctx, "/v1/food/"+strconv.FormatInt(fdcID, 10), map[string]string{}, "detail")
	if err != nil {
		return nil, err
	}

	rec, err := domain.DecodeFoodRecord(body)
	if err != nil {
		return nil, eris.Wrapf(domain.ErrFetchFailed, "usda: detail %d: failed to decode response", fdcID)
	}
	return rec, nil
}

// redactAPIKey strips the key from the request URL that net/http puts in
// transport errors.
func redactAPIKey(err error, apiKey string) error {
	var urlErr *url.Error
	if apiKey == "" || !errors.As(err, &urlErr) {
		return err
	}
	redacted := *urlErr
	redacted.URL = redactKey(redacted.URL, apiKey)
	return &redacted
}

// redactKey replaces apiKey in s, raw or query-escaped.
func redactKey(s, apiKey string) string {
	if apiKey == "" {
		return s
	}
	s = strings.ReplaceAll(s, url.QueryEscape(apiKey), "REDACTED")
	return strings.ReplaceAll(s, apiKey, "REDACTED")
}

// redactingLogger is the resty logger. Debug dumps and resty's own warnings
// print the request URL, so every line has the key removed before it
// reaches zap.
type redactingLogger struct {
	sugar  *zap.SugaredLogger
	apiKey string
}

func (l *redactingLogger) Errorf(format string, v ...any) {
	l.sugar.Error(redactKey(fmt.Sprintf(format, v...), l.apiKey))
}

func (l *redactingLogger) Warnf(format string, v ...any) {
	l.sugar.Warn(redactKey(fmt.Sprintf(format, v...), l.apiKey))
}

func (l *redactingLogger) Debugf(format string, v ...any) {
	l.sugar.Debug(redactKey(fmt.Sprintf(format, v...), l.apiKey))
}

// truncateBody limits upstream error bodies written to the log.
func truncateBody(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit])
}
