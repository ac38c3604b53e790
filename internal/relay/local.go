package relay

import (
	"context"
	"fmt"

	"lockday/internal/domain"
	"lockday/internal/processing"
)

// Local serves tool sessions running in the same process as the relay. It
// skips the HTTP hop, and with it the per-client rate limit, but reports
// failures the way Client does after a 500: as domain.ErrRelay.
type Local struct {
	gen Generator
}

// NewLocal wraps gen. A nil gen fails every call with ErrMissingAPIKey.
func NewLocal(gen Generator) *Local {
	return &Local{gen: gen}
}

func (l *Local) Generate(ctx context.Context, prompt string, kind processing.PromptKind) (string, error) {
	if l.gen == nil {
		return "", fmt.Errorf("%w: %v", domain.ErrRelay, ErrMissingAPIKey)
	}
	if kind == "" {
		kind = processing.PromptText
	}
	text, err := l.gen.GenerateText(ctx, prompt, kind)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrRelay, err)
	}
	return text, nil
}

var _ processing.TextGenerator = (*Local)(nil)
