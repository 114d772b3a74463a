package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/platewise/backend/internal/domain"
)

const (
	DefaultModel     = "claude-sonnet-4-5-20250929"
	DefaultMaxTokens = 600
	temperature      = 0.2
)

const systemPrompt = `You are a nutrition expert analyzing a meal. Identify ALL individual ingredients visible in the image.
Return ONLY JSON: {"items":[{"name":string,"portion_desc":string,"portion_grams":number}]}

Rules:
- Identify individual ingredients, not just meal names (e.g. "chicken breast", "brown rice", "broccoli" rather than "stir fry")
- portion_grams is your best estimate in grams for each ingredient
- portion_desc is human-friendly, e.g. "1 cup", "150 g", "1 medium piece"
- Be specific with ingredient names so they can be looked up in USDA FoodData Central
- Estimate realistic portions based on what is visible
- Deduplicate by lowercased name
- 2-12 ingredients is typical for a meal
- Include cooking oils, sauces and seasonings if visible
- For mixed dishes, break the dish down into components`

const userPrompt = "Analyze this photo. Only output the strict JSON object described."

// supportedMediaTypes are the image formats the messages API accepts.
var supportedMediaTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Config holds vision model settings.
type Config struct {
	Model     string
	MaxTokens int64
}

// Client extracts meal ingredients from photos with a multimodal model.
// It implements domain.IngredientExtractor.
type Client struct {
	client    sdk.Client
	model     string
	maxTokens int64
	logger    *zap.Logger
}

// NewClient creates a vision client. Extra request options are passed to the
// SDK (base URL, retries) and are mainly useful in tests.
func NewClient(apiKey string, cfg Config, logger *zap.Logger, opts ...option.RequestOption) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		client:    sdk.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}
}

// ExtractIngredients sends the photo to the model and parses the JSON reply.
func (c *Client) ExtractIngredients(ctx context.Context, image []byte) ([]domain.ScanItem, error) {
	mediaType, err := detectMediaType(image)
	if err != nil {
		return nil, err
	}

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: sdk.Float(temperature),
		System:      []sdk.TextBlockParam{{Text: systemPrompt}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(
				sdk.NewImageBlockBase64(mediaType, base64.StdEncoding.EncodeToString(image)),
				sdk.NewTextBlock(userPrompt),
			),
		},
	})
	if err != nil {
		return nil, eris.Wrap(errors.Join(domain.ErrExtractionFailed, err), "vision: create message")
	}

	c.logger.Debug("vision reply",
		zap.String("model", string(msg.Model)),
		zap.String("stop_reason", string(msg.StopReason)),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
	)

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return parseItems(text.String())
}

func detectMediaType(image []byte) (string, error) {
	if len(image) == 0 {
		return "", eris.Wrap(domain.ErrInvalidInput, "vision: empty image")
	}
	detected := mimetype.Detect(image)
	for _, mt := range supportedMediaTypes {
		if detected.Is(mt) {
			return mt, nil
		}
	}
	return "", eris.Wrapf(domain.ErrInvalidInput, "vision: unsupported image type %s", detected.String())
}

// itemReply is one item as the model writes it. Types are lenient because
// the model occasionally quotes numbers.
type itemReply struct {
	Name         domain.Text     `json:"name"`
	PortionDesc  domain.Text     `json:"portion_desc"`
	PortionGrams domain.Quantity `json:"portion_grams"`
}

type scanReply struct {
	Items []itemReply `json:"items"`
}

// parseItems extracts the JSON object from the model reply, tolerating code
// fences and surrounding prose.
func parseItems(reply string) ([]domain.ScanItem, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return nil, eris.Wrap(domain.ErrExtractionFailed, "vision: reply contains no JSON object")
	}

	var decoded scanReply
	if err := json.Unmarshal([]byte(reply[start:end+1]), &decoded); err != nil {
		return nil, eris.Wrap(errors.Join(domain.ErrExtractionFailed, err), "vision: decode reply")
	}

	items := make([]domain.ScanItem, 0, len(decoded.Items))
	for _, it := range decoded.Items {
		grams, _ := it.PortionGrams.Float()
		if grams < 0 {
			grams = 0
		}
		items = append(items, domain.ScanItem{
			Name:         strings.TrimSpace(it.Name.String()),
			PortionDesc:  strings.TrimSpace(it.PortionDesc.String()),
			PortionGrams: grams,
		})
	}
	return items, nil
}
