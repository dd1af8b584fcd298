package openai

import (
	"context"
	"fmt"

	sdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/rs/zerolog/log"
)

// DefaultVisionModel is the model used for screenshot extraction.
const DefaultVisionModel = "gpt-4o-mini"

// Client defines the OpenAI API operations used by the pipeline.
type Client interface {
	CreateCompletion(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	ListModels(ctx context.Context) ([]ModelInfo, error)
	GetModel(ctx context.Context, name string) (*ModelInfo, error)
}

// CompletionRequest is our own request type for CreateCompletion.
// ImageDataURL, when set, attaches a base64 data-URL image to the prompt.
type CompletionRequest struct {
	Model        string
	MaxTokens    int64
	Prompt       string
	ImageDataURL string
	Temperature  *float64
}

// CompletionResponse is our own response type from CreateCompletion.
type CompletionResponse struct {
	ID      string
	Model   string
	Content string
	Usage   TokenUsage
}

// TokenUsage tracks token consumption of one call.
type TokenUsage struct {
	PromptTokens     int64
	CompletionTokens int64
}

// ModelInfo describes one available model.
type ModelInfo struct {
	ID      string
	Object  string
	Created int64
	OwnedBy string
}

// modelPricing holds per-million-token pricing for known models.
var modelPricing = map[string][2]float64{
	// model -> {input $/MTok, output $/MTok}
	"gpt-4o-mini": {0.15, 0.60},
	"gpt-4o":      {2.50, 10.00},
	"gpt-4.1":     {2.00, 8.00},
}

// EstimateCost computes an estimated cost in USD from a TokenUsage and model
// ID. Returns 0 for unknown models.
func (u TokenUsage) EstimateCost(model string) float64 {
	pricing, ok := modelPricing[model]
	if !ok {
		return 0
	}
	inCost := (float64(u.PromptTokens) / 1e6) * pricing[0]
	outCost := (float64(u.CompletionTokens) / 1e6) * pricing[1]
	return inCost + outCost
}

// LogCost logs token usage and estimated cost for one call.
func (u TokenUsage) LogCost(model, phase string) {
	log.Info().
		Str("model", model).
		Str("phase", phase).
		Int64("prompt_tokens", u.PromptTokens).
		Int64("completion_tokens", u.CompletionTokens).
		Float64("estimated_cost_usd", u.EstimateCost(model)).
		Msg("cost attribution")
}

// sdkClient implements Client using the official openai-go SDK.
type sdkClient struct {
	client sdk.Client
}

// NewClient creates a new OpenAI client backed by the SDK.
func NewClient(apiKey string) Client {
	return &sdkClient{
		client: sdk.NewClient(
			option.WithAPIKey(apiKey),
		),
	}
}

func (c *sdkClient) CreateCompletion(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	params := sdk.ChatCompletionNewParams{
		Model:    sdk.ChatModel(req.Model),
		Messages: []sdk.ChatCompletionMessageParamUnion{toUserMessage(req)},
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = sdk.Int(req.MaxTokens)
	}
	if req.Temperature != nil {
		params.Temperature = sdk.Float(*req.Temperature)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai: create completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: completion returned no choices")
	}

	return &CompletionResponse{
		ID:      resp.ID,
		Model:   resp.Model,
		Content: resp.Choices[0].Message.Content,
		Usage: TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

func (c *sdkClient) ListModels(ctx context.Context) ([]ModelInfo, error) {
	page, err := c.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("openai: list models: %w", err)
	}

	models := make([]ModelInfo, 0, len(page.Data))
	for _, m := range page.Data {
		models = append(models, ModelInfo{
			ID:      m.ID,
			Object:  string(m.Object),
			Created: m.Created,
			OwnedBy: m.OwnedBy,
		})
	}
	return models, nil
}

func (c *sdkClient) GetModel(ctx context.Context, name string) (*ModelInfo, error) {
	m, err := c.client.Models.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("openai: get model %s: %w", name, err)
	}
	return &ModelInfo{
		ID:      m.ID,
		Object:  string(m.Object),
		Created: m.Created,
		OwnedBy: m.OwnedBy,
	}, nil
}

// toUserMessage builds a user message, multimodal when an image is attached.
func toUserMessage(req CompletionRequest) sdk.ChatCompletionMessageParamUnion {
	if req.ImageDataURL == "" {
		return sdk.UserMessage(req.Prompt)
	}
	parts := []sdk.ChatCompletionContentPartUnionParam{
		sdk.TextContentPart(req.Prompt),
		sdk.ImageContentPart(sdk.ChatCompletionContentPartImageImageURLParam{
			URL: req.ImageDataURL,
		}),
	}
	return sdk.UserMessage(parts)
}
