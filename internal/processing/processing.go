// Package processing holds the per-tool transforms applied to an uploaded
// image. Each tool kind is bound to a Strategy so a real transform can be
// swapped in without touching the session controller.
package processing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lockday/internal/domain"
)

type Strategy interface {
	Process(ctx context.Context, req domain.ProcessingRequest) (*domain.ProcessingResult, error)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(ctx context.Context, req domain.ProcessingRequest) (*domain.ProcessingResult, error)

func (f StrategyFunc) Process(ctx context.Context, req domain.ProcessingRequest) (*domain.ProcessingResult, error) {
	return f(ctx, req)
}

// Registry maps tool kinds to strategies, with a fallback for unbound kinds.
type Registry struct {
	mu       sync.RWMutex
	byKind   map[domain.ToolKind]Strategy
	fallback Strategy
}

func NewRegistry(fallback Strategy) *Registry {
	return &Registry{byKind: make(map[domain.ToolKind]Strategy), fallback: fallback}
}

// NewDefaultRegistry binds every catalog tool: ai-captions to caption, the
// rest to the delayed identity transform.
func NewDefaultRegistry(catalog *domain.Catalog, echo Echo, caption *Caption) *Registry {
	r := NewRegistry(echo)
	for _, t := range catalog.Tools() {
		r.Register(t.ID, echo)
	}
	if caption != nil {
		r.Register(domain.ToolAICaptions, caption)
	}
	return r
}

func (r *Registry) Register(kind domain.ToolKind, s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKind[kind] = s
}

func (r *Registry) For(kind domain.ToolKind) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.byKind[kind]; ok {
		return s, nil
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, fmt.Errorf("%w: no strategy for %q", domain.ErrToolNotFound, kind)
}

// Echo waits Delay and returns the source image unchanged.
type Echo struct {
	Delay time.Duration
}

func (e Echo) Process(ctx context.Context, req domain.ProcessingRequest) (*domain.ProcessingResult, error) {
	if req.Source == nil {
		return nil, domain.ErrNoAsset
	}
	if e.Delay > 0 {
		timer := time.NewTimer(e.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return domain.NewImageResult(req.Source.Data, req.Source.MIMEType), nil
}
