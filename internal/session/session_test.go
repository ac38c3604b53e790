package session

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lockday/internal/domain"
	"lockday/internal/ledger"
	"lockday/internal/notify"
	"lockday/internal/processing"
	"lockday/internal/upload"
)

type memStore struct {
	err error
}

func (s *memStore) Put(_ context.Context, bucket, key, _ string, _ []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "https://cdn.example/" + bucket + "/" + key, nil
}

type stubGenerator struct {
	text string
	err  error
}

func (g stubGenerator) Generate(context.Context, string, processing.PromptKind) (string, error) {
	return g.text, g.err
}

type countingRecorder struct {
	ledger.Nop
	activities []ledger.Activity
}

func (r *countingRecorder) Record(_ context.Context, a ledger.Activity) error {
	r.activities = append(r.activities, a)
	return nil
}

type harness struct {
	manager  *Manager
	recorder *countingRecorder
}

func newHarness(t *testing.T, gen processing.TextGenerator) *harness {
	t.Helper()
	if gen == nil {
		gen = stubGenerator{text: "A cozy corner cafe. #coffee"}
	}
	rec := &countingRecorder{}
	catalog := domain.DefaultCatalog()
	acceptor := upload.NewAcceptor(upload.Config{
		MaxBytes: 10 * 1024 * 1024,
		Store:    &memStore{},
		Recorder: rec,
		Logger:   zerolog.Nop(),
	})
	m := NewManager(Config{
		Catalog:  catalog,
		Acceptor: acceptor,
		Registry: processing.NewDefaultRegistry(catalog, processing.Echo{Delay: 5 * time.Millisecond}, processing.NewCaption(gen)),
		Recorder: rec,
		Hub:      notify.NewHub(),
		IdleTTL:  time.Minute,
		Logger:   zerolog.Nop(),
	})
	return &harness{manager: m, recorder: rec}
}

func (h *harness) open(t *testing.T, tool domain.ToolKind) *Controller {
	t.Helper()
	c, err := h.manager.Create(string(tool), "en")
	require.NoError(t, err)
	return c
}

func jpegOf(size int) []byte {
	data := bytes.Repeat([]byte{0xAB}, size)
	copy(data, []byte{0xff, 0xd8, 0xff, 0xe0})
	return data
}

func batchOf(name, mimeType string, data []byte) upload.Batch {
	return upload.Batch{Files: []upload.Candidate{{Name: name, MIMEType: mimeType, Size: int64(len(data)), Data: data}}}
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("processing did not settle")
	}
}

func kinds(c *Controller) []notify.Kind {
	return c.recent.Kinds()
}

func TestCompressionScenario(t *testing.T) {
	h := newHarness(t, nil)
	c := h.open(t, domain.ToolCompression)
	data := jpegOf(2 * 1024 * 1024)

	_, err := c.Upload(context.Background(), batchOf("shop.jpg", "image/jpeg", data))
	require.NoError(t, err)
	assert.Equal(t, StateReady, c.State())

	done, err := c.Process(context.Background())
	require.NoError(t, err)
	wait(t, done)

	snap := c.Snapshot()
	assert.Equal(t, StateCompleted, snap.State)
	assert.False(t, snap.Processing)
	assert.True(t, snap.Downloadable)

	art, err := c.Download(context.Background())
	require.NoError(t, err)
	assert.Equal(t, data, art.Data)
	assert.Regexp(t, regexp.MustCompile(`^lock-the-day-compression-\d+\.png$`), art.Filename)
	assert.Equal(t, []notify.Kind{notify.KindUploadSucceeded, notify.KindProcessingComplete, notify.KindDownloadStarted}, kinds(c))

	require.Len(t, h.recorder.activities, 1)
	assert.Equal(t, ledger.ActivityExport, h.recorder.activities[0].Kind)
}

func TestEchoToolsAreIdentity(t *testing.T) {
	h := newHarness(t, nil)
	data := jpegOf(4096)
	for _, tool := range domain.DefaultCatalog().Tools() {
		if tool.ID == domain.ToolAICaptions {
			continue
		}
		t.Run(string(tool.ID), func(t *testing.T) {
			c := h.open(t, tool.ID)
			_, err := c.Upload(context.Background(), batchOf("a.jpg", "image/jpeg", data))
			require.NoError(t, err)
			done, err := c.Process(context.Background())
			require.NoError(t, err)
			wait(t, done)

			c.mu.Lock()
			res := c.result
			c.mu.Unlock()
			require.NotNil(t, res)
			require.Equal(t, domain.ResultImage, res.Kind)
			assert.Equal(t, data, res.Image.Data)
		})
	}
}

func TestOversizedUploadStaysIdle(t *testing.T) {
	h := newHarness(t, nil)
	c := h.open(t, domain.ToolSmartCrop)

	data := bytes.Repeat([]byte{0x89}, 11*1024*1024)
	_, err := c.Upload(context.Background(), batchOf("big.png", "image/png", data))
	require.ErrorIs(t, err, domain.ErrFileTooLarge)
	assert.Equal(t, StateIdle, c.State())
	assert.Nil(t, c.Snapshot().Asset)
	assert.Equal(t, []notify.Kind{notify.KindFileTooLarge}, kinds(c))
}

func TestInvalidTypeStaysIdle(t *testing.T) {
	h := newHarness(t, nil)
	c := h.open(t, domain.ToolSmartCrop)

	_, err := c.Upload(context.Background(), batchOf("doc.pdf", "application/pdf", []byte("%PDF-1.7")))
	require.ErrorIs(t, err, domain.ErrInvalidType)
	assert.Equal(t, StateIdle, c.State())
}

func TestRejectedReuploadKeepsReadyState(t *testing.T) {
	h := newHarness(t, nil)
	c := h.open(t, domain.ToolEnhancement)

	_, err := c.Upload(context.Background(), batchOf("a.jpg", "image/jpeg", jpegOf(100)))
	require.NoError(t, err)
	_, err = c.Upload(context.Background(), batchOf("doc.pdf", "application/pdf", []byte("%PDF")))
	require.ErrorIs(t, err, domain.ErrInvalidType)

	snap := c.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	require.NotNil(t, snap.Asset)
	assert.Equal(t, "a.jpg", snap.Asset.Filename)
}

func TestClearIsIdempotent(t *testing.T) {
	h := newHarness(t, nil)
	c := h.open(t, domain.ToolFaceBlur)

	_, err := c.Upload(context.Background(), batchOf("a.jpg", "image/jpeg", jpegOf(100)))
	require.NoError(t, err)

	c.Clear()
	assert.Equal(t, StateIdle, c.State())
	c.Clear()
	snap := c.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Nil(t, snap.Asset)
	assert.Nil(t, snap.Result)
}

func TestProcessGuards(t *testing.T) {
	h := newHarness(t, nil)
	c := h.open(t, domain.ToolColorPalette)

	_, err := c.Process(context.Background())
	require.ErrorIs(t, err, domain.ErrNoAsset)

	_, err = c.Upload(context.Background(), batchOf("a.jpg", "image/jpeg", jpegOf(100)))
	require.NoError(t, err)

	done, err := c.Process(context.Background())
	require.NoError(t, err)
	_, err = c.Process(context.Background())
	require.ErrorIs(t, err, domain.ErrBusy)
	_, err = c.Upload(context.Background(), batchOf("b.jpg", "image/jpeg", jpegOf(100)))
	require.ErrorIs(t, err, domain.ErrBusy)
	wait(t, done)
}

func TestReuploadFromCompletedDropsResult(t *testing.T) {
	h := newHarness(t, nil)
	c := h.open(t, domain.ToolCompression)

	_, err := c.Upload(context.Background(), batchOf("a.jpg", "image/jpeg", jpegOf(100)))
	require.NoError(t, err)
	done, err := c.Process(context.Background())
	require.NoError(t, err)
	wait(t, done)
	require.Equal(t, StateCompleted, c.State())

	_, err = c.Upload(context.Background(), batchOf("b.jpg", "image/jpeg", jpegOf(200)))
	require.NoError(t, err)
	snap := c.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	assert.Nil(t, snap.Result)
	assert.False(t, snap.Downloadable)
	assert.Equal(t, "b.jpg", snap.Asset.Filename)
}

func TestClearDiscardsStaleResult(t *testing.T) {
	h := newHarness(t, nil)
	c := h.open(t, domain.ToolWatermarkRemoval)
	release := make(chan struct{})
	c.strategy = processing.StrategyFunc(func(ctx context.Context, req domain.ProcessingRequest) (*domain.ProcessingResult, error) {
		<-release
		return domain.NewImageResult(req.Source.Data, req.Source.MIMEType), nil
	})

	_, err := c.Upload(context.Background(), batchOf("a.jpg", "image/jpeg", jpegOf(100)))
	require.NoError(t, err)
	done, err := c.Process(context.Background())
	require.NoError(t, err)
	assert.True(t, c.Snapshot().Processing)

	c.Clear()
	assert.False(t, c.Snapshot().Processing)
	close(release)
	wait(t, done)

	snap := c.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Nil(t, snap.Result)
	assert.NotContains(t, kinds(c), notify.KindProcessingComplete)
}

type gatedAcceptor struct {
	inner   Acceptor
	entered chan struct{}
	release chan struct{}
}

func (g *gatedAcceptor) Accept(ctx context.Context, b upload.Batch, opts upload.Options) (*domain.UploadedAsset, error) {
	g.entered <- struct{}{}
	<-g.release
	return g.inner.Accept(ctx, b, opts)
}

func TestUploadLandingDuringProcessingIsRejected(t *testing.T) {
	h := newHarness(t, nil)
	c := h.open(t, domain.ToolEnhancement)

	var inFlight, maxInFlight int32
	var mu sync.Mutex
	finish := make(chan struct{})
	c.strategy = processing.StrategyFunc(func(ctx context.Context, req domain.ProcessingRequest) (*domain.ProcessingResult, error) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()
		<-finish
		mu.Lock()
		inFlight--
		mu.Unlock()
		return domain.NewImageResult(req.Source.Data, req.Source.MIMEType), nil
	})

	first := jpegOf(100)
	_, err := c.Upload(context.Background(), batchOf("a.jpg", "image/jpeg", first))
	require.NoError(t, err)

	gate := &gatedAcceptor{inner: c.acceptor, entered: make(chan struct{}), release: make(chan struct{})}
	c.acceptor = gate

	type outcome struct {
		asset *domain.UploadedAsset
		err   error
	}
	uploaded := make(chan outcome, 1)
	go func() {
		a, err := c.Upload(context.Background(), batchOf("b.jpg", "image/jpeg", jpegOf(200)))
		uploaded <- outcome{a, err}
	}()
	<-gate.entered

	done, err := c.Process(context.Background())
	require.NoError(t, err)
	close(gate.release)

	var got outcome
	select {
	case got = <-uploaded:
	case <-time.After(2 * time.Second):
		t.Fatal("upload did not return")
	}
	assert.ErrorIs(t, got.err, domain.ErrBusy)
	assert.Nil(t, got.asset)
	assert.Equal(t, StateProcessing, c.State())

	_, err = c.Process(context.Background())
	assert.ErrorIs(t, err, domain.ErrBusy)

	close(finish)
	wait(t, done)

	snap := c.Snapshot()
	assert.Equal(t, StateCompleted, snap.State)
	require.NotNil(t, snap.Asset)
	assert.Equal(t, "a.jpg", snap.Asset.Filename)
	mu.Lock()
	assert.Equal(t, int32(1), maxInFlight)
	mu.Unlock()
}

func TestProcessOutlivesRequestContext(t *testing.T) {
	h := newHarness(t, nil)
	c := h.open(t, domain.ToolCompression)
	_, err := c.Upload(context.Background(), batchOf("a.jpg", "image/jpeg", jpegOf(100)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done, err := c.Process(ctx)
	require.NoError(t, err)
	cancel()
	wait(t, done)
	assert.Equal(t, StateCompleted, c.State())
}

func TestCaptionSuccess(t *testing.T) {
	h := newHarness(t, stubGenerator{text: "Fresh from the oven. #bakery"})
	c := h.open(t, domain.ToolAICaptions)

	_, err := c.Upload(context.Background(), batchOf("roti.jpg", "image/jpeg", jpegOf(100)))
	require.NoError(t, err)
	done, err := c.Process(context.Background())
	require.NoError(t, err)
	wait(t, done)

	snap := c.Snapshot()
	assert.Equal(t, StateCompleted, snap.State)
	require.NotNil(t, snap.Result)
	assert.Equal(t, domain.ResultText, snap.Result.Kind)
	assert.Equal(t, "Fresh from the oven. #bakery", snap.Result.Text)
	assert.False(t, snap.Downloadable)

	_, err = c.Download(context.Background())
	require.ErrorIs(t, err, domain.ErrNotDownloadable)
}

func TestCaptionFailureReturnsToReady(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind notify.Kind
	}{
		{name: "relay", err: domain.ErrRelay, kind: notify.KindRelayError},
		{name: "network", err: domain.ErrNetwork, kind: notify.KindNetworkError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, stubGenerator{err: tc.err})
			c := h.open(t, domain.ToolAICaptions)

			_, err := c.Upload(context.Background(), batchOf("a.jpg", "image/jpeg", jpegOf(100)))
			require.NoError(t, err)
			done, err := c.Process(context.Background())
			require.NoError(t, err)
			wait(t, done)

			snap := c.Snapshot()
			assert.Equal(t, StateReady, snap.State)
			assert.Nil(t, snap.Result)
			assert.False(t, snap.Downloadable)
			assert.Contains(t, kinds(c), tc.kind)

			_, err = c.Download(context.Background())
			require.ErrorIs(t, err, domain.ErrNoResult)
		})
	}
}

func TestPersistenceToggle(t *testing.T) {
	h := newHarness(t, nil)
	c := h.open(t, domain.ToolFormatConversion)

	c.SetPersistence(true)
	asset, err := c.Upload(context.Background(), batchOf("a.png", "image/png", []byte("\x89PNG\r\n\x1a\n")))
	require.NoError(t, err)
	assert.NotEmpty(t, asset.RemoteURL)
	assert.NotEmpty(t, c.Snapshot().Asset.PreviewURL)

	c.SetPersistence(false)
	asset, err = c.Upload(context.Background(), batchOf("b.png", "image/png", []byte("\x89PNG\r\n\x1a\n")))
	require.NoError(t, err)
	assert.Empty(t, asset.RemoteURL)
	assert.NotEmpty(t, c.Snapshot().Asset.PreviewURL)
}

func TestPersistFailureStillReady(t *testing.T) {
	h := newHarness(t, nil)
	c := h.open(t, domain.ToolFormatConversion)
	c.acceptor = upload.NewAcceptor(upload.Config{Store: &memStore{err: errors.New("offline")}, Logger: zerolog.Nop()})
	c.SetPersistence(true)

	asset, err := c.Upload(context.Background(), batchOf("a.png", "image/png", []byte("\x89PNG\r\n\x1a\n")))
	require.ErrorIs(t, err, domain.ErrUploadFailed)
	require.NotNil(t, asset)
	assert.Equal(t, StateReady, c.State())
	assert.Empty(t, c.Snapshot().Asset.RemoteURL)
}

func TestExporter(t *testing.T) {
	now := time.UnixMilli(1717171717171)

	_, err := Exporter{}.Export(domain.ToolCompression, nil, now)
	require.ErrorIs(t, err, domain.ErrNoResult)

	_, err = Exporter{}.Export(domain.ToolAICaptions, domain.NewTextResult("x"), now)
	require.ErrorIs(t, err, domain.ErrNotDownloadable)

	art, err := Exporter{}.Export(domain.ToolFaceBlur, domain.NewImageResult([]byte{1}, "image/jpeg"), now)
	require.NoError(t, err)
	assert.Equal(t, "lock-the-day-face-blur-1717171717171.png", art.Filename)
	assert.Equal(t, "image/jpeg", art.MIMEType)
}
