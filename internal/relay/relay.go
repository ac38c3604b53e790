// Package relay forwards prompts to the hosted generative-language model.
// The server side (Handler) keeps the API key; the client side (Client) is
// what tool sessions call.
package relay

import (
	"context"
	"errors"

	"lockday/internal/processing"
)

// NoResponseText is returned when the upstream response carries no text and
// strict mode is off.
const NoResponseText = "No response generated"

var (
	ErrMissingAPIKey     = errors.New("gemini api key not configured")
	ErrMalformedResponse = errors.New("upstream response has no text")
)

// Request is the relay's JSON body.
type Request struct {
	Prompt string `json:"prompt" validate:"required"`
	Type   string `json:"type" validate:"omitempty,oneof=text vision"`
}

// Kind resolves the discriminator, defaulting to text.
func (r Request) Kind() processing.PromptKind {
	if r.Type == "" {
		return processing.PromptText
	}
	return processing.PromptKind(r.Type)
}

type Response struct {
	GeneratedText string `json:"generatedText"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Generator produces text for a prompt.
type Generator interface {
	GenerateText(ctx context.Context, prompt string, kind processing.PromptKind) (string, error)
}
