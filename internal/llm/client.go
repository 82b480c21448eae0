// Package llm wraps the generative model provider behind a small interface so
// the assistant features can be tested without network access.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/config"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/metrics"
)

var (
	ErrNotConfigured = errors.New("ai provider not configured")
	ErrUnavailable   = errors.New("ai provider unavailable")
	ErrEmptyResponse = errors.New("ai provider returned no content")
)

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one prior turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Image struct {
	MIMEType string
	Data     []byte
}

// Client is what the assistant needs from a model provider.
type Client interface {
	GenerateText(ctx context.Context, system string, history []Message, prompt string) (string, error)
	GenerateImages(ctx context.Context, prompt string, n int) ([]Image, error)
}

// modelAPI is the subset of *genai.Models used here.
type modelAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// GeminiClient calls Gemini for text and Imagen for pictures. Every call waits
// on a shared token bucket and runs through a breaker; nothing is retried.
type GeminiClient struct {
	models       modelAPI
	textModel    string
	imageModel   string
	timeout      time.Duration
	limiter      *rate.Limiter
	textBreaker  *gobreaker.CircuitBreaker[*genai.GenerateContentResponse]
	imageBreaker *gobreaker.CircuitBreaker[*genai.GenerateImagesResponse]
}

// NewGeminiClient returns ErrNotConfigured when no API key is set.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGeminiClient(client.Models, cfg), nil
}

func newGeminiClient(models modelAPI, cfg *config.Config) *GeminiClient {
	limit := rate.Limit(cfg.AIRatePerSecond)
	if cfg.AIRatePerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.AIBurst
	if burst < 1 {
		burst = 1
	}
	return &GeminiClient{
		models:       models,
		textModel:    cfg.GeminiModel,
		imageModel:   cfg.GeminiImageModel,
		timeout:      cfg.AITimeout,
		limiter:      rate.NewLimiter(limit, burst),
		textBreaker:  gobreaker.NewCircuitBreaker[*genai.GenerateContentResponse](breakerSettings("gemini-text")),
		imageBreaker: gobreaker.NewCircuitBreaker[*genai.GenerateImagesResponse](breakerSettings("gemini-image")),
	}
}

func breakerSettings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
}

func (g *GeminiClient) GenerateText(ctx context.Context, system string, history []Message, prompt string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleModel {
			role = genai.RoleModel
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(prompt, genai.RoleUser))

	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.8),
		}
	}

	resp, err := call(ctx, g, "text", g.textBreaker, func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		return g.models.GenerateContent(ctx, g.textModel, contents, cfg)
	})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (g *GeminiClient) GenerateImages(ctx context.Context, prompt string, n int) ([]Image, error) {
	if n < 1 {
		n = 1
	}
	resp, err := call(ctx, g, "image", g.imageBreaker, func(ctx context.Context) (*genai.GenerateImagesResponse, error) {
		return g.models.GenerateImages(ctx, g.imageModel, prompt, &genai.GenerateImagesConfig{
			NumberOfImages: int32(n),
			AspectRatio:    "16:9",
			OutputMIMEType: "image/jpeg",
		})
	})
	if err != nil {
		return nil, err
	}

	images := make([]Image, 0, len(resp.GeneratedImages))
	for _, gi := range resp.GeneratedImages {
		if gi == nil || gi.Image == nil || len(gi.Image.ImageBytes) == 0 {
			continue
		}
		mime := gi.Image.MIMEType
		if mime == "" {
			mime = "image/jpeg"
		}
		images = append(images, Image{MIMEType: mime, Data: gi.Image.ImageBytes})
	}
	if len(images) == 0 {
		return nil, ErrEmptyResponse
	}
	return images, nil
}

func call[T any](ctx context.Context, g *GeminiClient, kind string, breaker *gobreaker.CircuitBreaker[T], fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := g.limiter.Wait(ctx); err != nil {
		metrics.AIRequests.WithLabelValues(kind, "throttled").Inc()
		return zero, fmt.Errorf("ai %s: %w", kind, err)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := breaker.Execute(func() (T, error) { return fn(ctx) })
	metrics.AILatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.AIRequests.WithLabelValues(kind, "error").Inc()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("ai %s: %w", kind, ErrUnavailable)
		}
		return zero, fmt.Errorf("ai %s: %w", kind, err)
	}
	metrics.AIRequests.WithLabelValues(kind, "ok").Inc()
	return out, nil
}
