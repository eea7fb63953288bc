package oracle

import (
	"context"
	"errors"
	"strings"
	"sync"

	genai "google.golang.org/genai"
)

// GeminiConfig configures a GeminiSession.
type GeminiConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	TopP            float32
	TopK            float32
	MaxOutputTokens int32
}

// DefaultGeminiConfig returns the generation settings used for documentation pages.
func DefaultGeminiConfig() GeminiConfig {
	return GeminiConfig{
		Model:           "gemini-2.5-pro",
		Temperature:     0.8,
		TopP:            0.95,
		TopK:            50,
		MaxOutputTokens: 8192,
	}
}

// GeminiSession is a Session backed by the Gemini API. The conversation is
// replayed on every call, so the backend sees the full history each time.
type GeminiSession struct {
	cli   *genai.Client
	model string
	gen   *genai.GenerateContentConfig

	mu      sync.Mutex
	history []*genai.Content
}

// NewGeminiSession builds a client for cfg. An empty APIKey lets the genai
// client read GOOGLE_API_KEY / GEMINI_API_KEY from the environment.
func NewGeminiSession(ctx context.Context, cfg GeminiConfig) (*GeminiSession, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("gemini: model is required")
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiSession{cli: cli, model: cfg.Model, gen: generationConfig(cfg)}, nil
}

func generationConfig(cfg GeminiConfig) *genai.GenerateContentConfig {
	gen := &genai.GenerateContentConfig{
		MaxOutputTokens: cfg.MaxOutputTokens,
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
		},
	}
	if cfg.Temperature > 0 {
		gen.Temperature = genai.Ptr(cfg.Temperature)
	}
	if cfg.TopP > 0 {
		gen.TopP = genai.Ptr(cfg.TopP)
	}
	if cfg.TopK > 0 {
		gen.TopK = genai.Ptr(cfg.TopK)
	}
	return gen
}

// Send appends prompt to the conversation and returns the model's reply.
// A failed call leaves the history unchanged.
func (g *GeminiSession) Send(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	contents := make([]*genai.Content, 0, len(g.history)+1)
	contents = append(contents, g.history...)
	contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: []*genai.Part{{Text: prompt}}})

	resp, err := g.cli.Models.GenerateContent(ctx, g.model, contents, g.gen)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	text := resp.Text()
	g.history = append(contents, &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: text}}})
	return text, nil
}

// Reset forgets the conversation.
func (g *GeminiSession) Reset() {
	g.mu.Lock()
	g.history = nil
	g.mu.Unlock()
}

// Turns returns the number of completed prompt/reply exchanges.
func (g *GeminiSession) Turns() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.history) / 2
}
