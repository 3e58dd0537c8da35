package gateway

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiConfig holds configuration for the Gemini-backed gateway.
type GeminiConfig struct {
	APIKey          string
	Model           string
	Timeout         time.Duration
	MaxOutputTokens int
}

// DefaultGeminiConfig returns sensible defaults.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:          apiKey,
		Model:           "gemini-2.5-flash",
		Timeout:         60 * time.Second,
		MaxOutputTokens: 4096,
	}
}

// GeminiGateway implements Gateway using Google's Gemini API with JSON
// response mode.
type GeminiGateway struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	maxOut  int
	logger  *zap.Logger
}

// NewGeminiGateway creates a Gemini gateway. The API key is required; when
// it is absent, callers should fall back to the Disabled gateway instead.
func NewGeminiGateway(cfg GeminiConfig, logger *zap.Logger) (*GeminiGateway, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 4096
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiGateway{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		maxOut:  cfg.MaxOutputTokens,
		logger:  logger,
	}, nil
}

// Generate calls Gemini and maps every failure mode to the Unavailable
// outcome. The call is bounded by the configured timeout.
func (g *GeminiGateway) Generate(ctx context.Context, systemPrompt, taskPrompt string, maxOutputTokens int) Outcome {
	if maxOutputTokens <= 0 || maxOutputTokens > g.maxOut {
		maxOutputTokens = g.maxOut
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	temperature := float32(0.3)
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(taskPrompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			MaxOutputTokens:   int32(maxOutputTokens),
			Temperature:       &temperature,
			ResponseMIMEType:  "application/json",
		},
	)
	if err != nil {
		g.logger.Warn("enrichment call failed", zap.Error(err))
		return Unavailable(fmt.Sprintf("gemini call failed: %v", err))
	}

	text := resp.Text()
	if text == "" {
		g.logger.Warn("enrichment returned empty response")
		return Unavailable("empty response from enrichment service")
	}

	payload, ok := ExtractJSON(text)
	if !ok {
		g.logger.Warn("enrichment returned non-parseable output", zap.Int("chars", len(text)))
		return Unavailable("malformed structured output")
	}

	g.logger.Debug("enrichment response received", zap.Int("chars", len(text)))
	return Structured(payload)
}
