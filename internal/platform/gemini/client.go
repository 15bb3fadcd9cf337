package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/bionexus-api/internal/config"
	"github.com/phrazzld/bionexus-api/internal/generation"
	"github.com/phrazzld/bionexus-api/internal/redact"
	"google.golang.org/genai"
)

// Errors returned by NewClient.
var (
	ErrMissingAPIKey = errors.New("gemini API key is required")
	ErrMissingModel  = errors.New("gemini model name is required")
)

// Client performs single attempts against the Gemini API.
type Client struct {
	client   *genai.Client
	models   map[generation.ModelTier]string
	settings generationSettings
	timeout  time.Duration
	logger   *slog.Logger
}

// Option customizes a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
}

// WithHTTPClient replaces the HTTP client used by the SDK.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = c
	}
}

// NewClient validates cfg and creates the SDK client.
func NewClient(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(cfg.ModelName) == "" {
		return nil, ErrMissingModel
	}
	if logger == nil {
		logger = slog.Default()
	}

	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.GeminiAPIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: o.httpClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	sdk, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %s", redact.Error(err))
	}

	pro := cfg.ProModelName
	if pro == "" {
		pro = cfg.ModelName
	}
	speech := cfg.SpeechModelName
	if speech == "" {
		speech = cfg.ModelName
	}

	logger.Info("gemini client created",
		slog.String("model", cfg.ModelName),
		slog.String("pro_model", pro),
		slog.String("speech_model", speech),
	)

	return &Client{
		client: sdk,
		models: map[generation.ModelTier]string{
			generation.TierFlash:  cfg.ModelName,
			generation.TierPro:    pro,
			generation.TierSpeech: speech,
		},
		settings: generationSettings{
			temperature: float32(cfg.Temperature),
			voice:       cfg.SpeechVoice,
		},
		timeout: cfg.RequestTimeout,
		logger:  logger,
	}, nil
}

// ModelFor returns the model name used for tier.
func (c *Client) ModelFor(tier generation.ModelTier) string {
	if m, ok := c.models[tier]; ok {
		return m
	}
	return c.models[generation.TierFlash]
}

// Generate implements generation.Model. It makes exactly one remote call.
func (c *Client) Generate(ctx context.Context, req generation.PromptRequest) (generation.ModelResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	model := c.ModelFor(req.Tier())
	start := time.Now()

	resp, err := c.client.Models.GenerateContent(ctx, model, buildContents(req), buildConfig(req, c.settings))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return generation.ModelResponse{}, err
		}
		converted := convertError(err)
		c.logger.DebugContext(ctx, "gemini call failed",
			slog.String("model", model),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", redact.Error(converted)),
		)
		return generation.ModelResponse{}, converted
	}

	out, err := extractResponse(resp)
	if err != nil {
		return generation.ModelResponse{}, err
	}

	c.logger.DebugContext(ctx, "gemini call succeeded",
		slog.String("model", model),
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("text_len", len(out.Text)),
		slog.Bool("audio", out.Audio != nil),
	)
	return out, nil
}

// RetryPolicy builds the gateway retry policy from the LLM settings.
func RetryPolicy(cfg config.LLMConfig) generation.RetryPolicy {
	retryable := generation.CapacityOnly
	if cfg.RetryNetworkErrors {
		retryable = generation.CapacityAndNetwork
	}
	return generation.RetryPolicy{
		MaxAttempts:  cfg.MaxAttempts,
		InitialDelay: cfg.InitialBackoff,
		Multiplier:   cfg.BackoffMultiplier,
		Retryable:    retryable,
	}
}
