package relay

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"lockday/internal/processing"
)

const DefaultModel = "gemini-1.5-flash"

type GeminiConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	Strict     bool
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Gemini calls generateContent on the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	strict bool
	logger zerolog.Logger
}

func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{client: client, model: cfg.Model, strict: cfg.Strict, logger: cfg.Logger}, nil
}

// GenerateText sends prompt as a single user turn. Both text and vision
// requests carry only the prompt text.
func (g *Gemini) GenerateText(ctx context.Context, prompt string, kind processing.PromptKind) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}
	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini api: %w", err)
	}
	if result.UsageMetadata != nil {
		g.logger.Debug().
			Str("type", string(kind)).
			Int("inputTokens", int(result.UsageMetadata.PromptTokenCount)).
			Int("outputTokens", int(result.UsageMetadata.CandidatesTokenCount)).
			Msg("gemini generate")
	}
	return firstText(result, g.strict)
}

// firstText extracts the first candidate's first part.
func firstText(result *genai.GenerateContentResponse, strict bool) (string, error) {
	if result != nil && len(result.Candidates) > 0 {
		c := result.Candidates[0]
		if c != nil && c.Content != nil && len(c.Content.Parts) > 0 && c.Content.Parts[0] != nil {
			if text := c.Content.Parts[0].Text; text != "" {
				return text, nil
			}
		}
	}
	if strict {
		return "", ErrMalformedResponse
	}
	return NoResponseText, nil
}
