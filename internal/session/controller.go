// Package session implements the per-tool screen: one uploaded image, one
// processing request at a time, one result.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"lockday/internal/domain"
	"lockday/internal/ledger"
	"lockday/internal/notify"
	"lockday/internal/processing"
	"lockday/internal/upload"
)

type State string

const (
	StateIdle       State = "idle"
	StateReady      State = "ready"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
)

// ErrSuperseded is returned by Upload when a clear or a newer upload landed
// while the file was being accepted.
var ErrSuperseded = errors.New("session changed before upload finished")

// Acceptor is the upload step as seen by the controller.
type Acceptor interface {
	Accept(ctx context.Context, b upload.Batch, opts upload.Options) (*domain.UploadedAsset, error)
}

type Controller struct {
	id       string
	tool     domain.Tool
	acceptor Acceptor
	strategy processing.Strategy
	exporter Exporter
	recorder ledger.Recorder
	messages *notify.Messages
	notifier notify.Notifier
	recent   *notify.Log
	locale   string
	logger   zerolog.Logger
	now      func() time.Time

	mu       sync.Mutex
	state    State
	asset    *domain.UploadedAsset
	result   *domain.ProcessingResult
	persist  bool
	epoch    uint64
	lastSeen time.Time
}

func (c *Controller) ID() string        { return c.id }
func (c *Controller) Tool() domain.Tool { return c.tool }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetPersistence toggles cloud persistence for subsequent uploads.
func (c *Controller) SetPersistence(enabled bool) {
	c.mu.Lock()
	c.persist = enabled
	c.lastSeen = c.now()
	c.mu.Unlock()
}

// Upload accepts the first file of b. On acceptance the session moves to
// Ready and any earlier result is dropped; on rejection nothing changes.
// domain.ErrUploadFailed is returned alongside an applied asset.
func (c *Controller) Upload(ctx context.Context, b upload.Batch) (*domain.UploadedAsset, error) {
	c.mu.Lock()
	if c.state == StateProcessing {
		c.mu.Unlock()
		return nil, domain.ErrBusy
	}
	c.epoch++
	epoch := c.epoch
	persist := c.persist
	c.lastSeen = c.now()
	c.mu.Unlock()

	asset, err := c.acceptor.Accept(ctx, b, upload.Options{
		Persist:  persist,
		Tool:     c.tool.ID,
		Locale:   c.locale,
		Notifier: c.notifier,
	})
	if asset == nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		c.logger.Debug().Str("session", c.id).Msg("discarding superseded upload")
		return nil, ErrSuperseded
	}
	if c.state == StateProcessing {
		// Processing started on the previous asset while this one was
		// being accepted.
		c.logger.Debug().Str("session", c.id).Msg("discarding upload that landed during processing")
		return nil, domain.ErrBusy
	}
	c.epoch++
	c.asset = asset
	c.result = nil
	c.state = StateReady
	return asset, err
}

// Process starts the tool's strategy on the current asset. The returned
// channel is closed once the request settles, whether or not its outcome
// was applied.
func (c *Controller) Process(ctx context.Context) (<-chan struct{}, error) {
	c.mu.Lock()
	switch {
	case c.asset == nil:
		c.mu.Unlock()
		return nil, domain.ErrNoAsset
	case c.state == StateProcessing:
		c.mu.Unlock()
		return nil, domain.ErrBusy
	}
	c.state = StateProcessing
	c.result = nil
	c.lastSeen = c.now()
	epoch := c.epoch
	req := domain.ProcessingRequest{Tool: c.tool.ID, Source: c.asset}
	c.mu.Unlock()

	done := make(chan struct{})
	// In-flight work outlives the request that started it.
	go c.run(context.WithoutCancel(ctx), epoch, req, done)
	return done, nil
}

func (c *Controller) run(ctx context.Context, epoch uint64, req domain.ProcessingRequest, done chan<- struct{}) {
	defer close(done)

	res, err := c.strategy.Process(ctx, req)

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		c.logger.Debug().Str("session", c.id).Str("tool", string(req.Tool)).Msg("discarding stale processing result")
		return
	}
	if err != nil {
		c.state = StateReady
		c.mu.Unlock()
		kind := notify.KindRelayError
		if errors.Is(err, domain.ErrNetwork) {
			kind = notify.KindNetworkError
		}
		c.logger.Warn().Err(err).Str("session", c.id).Str("tool", string(req.Tool)).Msg("processing failed")
		c.notifier.Notify(c.messages.Build(c.locale, kind))
		return
	}
	c.result = res
	c.state = StateCompleted
	c.mu.Unlock()

	c.notifier.Notify(c.messages.Build(c.locale, notify.KindProcessingComplete))
}

// Clear drops the asset, its remote URL and any result. In-flight work
// started before the clear is discarded when it settles.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.asset = nil
	c.result = nil
	c.state = StateIdle
	c.lastSeen = c.now()
}

// Download exports the current image result.
func (c *Controller) Download(ctx context.Context) (*Artifact, error) {
	c.mu.Lock()
	result := c.result
	c.lastSeen = c.now()
	c.mu.Unlock()

	art, err := c.exporter.Export(c.tool.ID, result, c.now())
	if err != nil {
		return nil, err
	}
	c.notifier.Notify(c.messages.Build(c.locale, notify.KindDownloadStarted))
	if err := c.recorder.Record(ctx, ledger.Activity{
		Kind:     ledger.ActivityExport,
		Tool:     string(c.tool.ID),
		MIMEType: art.MIMEType,
		Bytes:    int64(len(art.Data)),
	}); err != nil {
		c.logger.Warn().Err(err).Msg("record export activity")
	}
	return art, nil
}

func (c *Controller) idleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

func (c *Controller) touch() {
	c.mu.Lock()
	c.lastSeen = c.now()
	c.mu.Unlock()
}
