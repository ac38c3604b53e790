package relay

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"lockday/internal/domain"
	"lockday/internal/processing"
)

const Path = "/v1/relay/gemini-ai"

// Client calls the relay endpoint. One request per call, no retry.
type Client struct {
	http *resty.Client
}

// NewClient targets the relay at baseURL. timeout of zero means none.
func NewClient(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &Client{http: c}
}

// Generate implements processing.TextGenerator. Transport failures map to
// domain.ErrNetwork, non-2xx replies to domain.ErrRelay.
func (c *Client) Generate(ctx context.Context, prompt string, kind processing.PromptKind) (string, error) {
	var ok Response
	var fail errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(Request{Prompt: prompt, Type: string(kind)}).
		SetResult(&ok).
		SetError(&fail).
		Post(Path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	if resp.IsError() || resp.StatusCode() != http.StatusOK {
		msg := fail.Error
		if msg == "" {
			msg = resp.Status()
		}
		return "", fmt.Errorf("%w: %s", domain.ErrRelay, msg)
	}
	return ok.GeneratedText, nil
}

var _ processing.TextGenerator = (*Client)(nil)
