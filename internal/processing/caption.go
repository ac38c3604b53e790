package processing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lithammer/dedent"

	"lockday/internal/domain"
)

var errEmptyCaption = errors.New("empty caption")

// PromptKind selects the relay mode.
type PromptKind string

const (
	PromptText   PromptKind = "text"
	PromptVision PromptKind = "vision"
)

// TextGenerator is the relay client as seen by the caption strategy.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, kind PromptKind) (string, error)
}

// Caption asks the relay for an Instagram caption, alt text and hashtags.
type Caption struct {
	Generator TextGenerator
}

func NewCaption(gen TextGenerator) *Caption {
	return &Caption{Generator: gen}
}

func (c *Caption) Process(ctx context.Context, req domain.ProcessingRequest) (*domain.ProcessingResult, error) {
	if req.Source == nil {
		return nil, domain.ErrNoAsset
	}
	kind := PromptText
	if req.Source.RemoteURL != "" {
		kind = PromptVision
	}
	text, err := c.Generator.Generate(ctx, CaptionPrompt(req.Source), kind)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %v", domain.ErrRelay, errEmptyCaption)
	}
	return domain.NewTextResult(text), nil
}

// CaptionPrompt renders the caption request for asset.
func CaptionPrompt(asset *domain.UploadedAsset) string {
	subject := "an image uploaded by a small business owner"
	if asset.Filename != "" {
		subject = fmt.Sprintf("an image named %q uploaded by a small business owner", asset.Filename)
	}
	prompt := dedent.Dedent(fmt.Sprintf(`
		Generate an engaging Instagram caption for %s.
		Provide:
		1. A short, catchy caption (max 2 sentences)
		2. Descriptive alt text for accessibility
		3. 5-8 relevant hashtags
	`, subject))
	if asset.RemoteURL != "" {
		prompt += "\nImage URL: " + asset.RemoteURL + "\n"
	}
	return strings.TrimLeft(prompt, "\n")
}
