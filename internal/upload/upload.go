// Package upload validates a dropped or picked image and optionally persists
// it to the object store.
package upload

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"lockday/internal/domain"
	"lockday/internal/ledger"
	"lockday/internal/notify"
	"lockday/internal/storage"
)

// RejectCode is the reason a client-side dropzone already refused a file.
type RejectCode string

const (
	RejectTooLarge    RejectCode = "file-too-large"
	RejectInvalidType RejectCode = "file-invalid-type"
)

// Candidate is one file offered for upload.
type Candidate struct {
	Name     string
	MIMEType string
	Size     int64
	Data     []byte
}

type Rejection struct {
	Name string
	Code RejectCode
}

// Batch is what a single drop or pick delivers.
type Batch struct {
	Files    []Candidate
	Rejected []Rejection
}

type Options struct {
	Persist  bool
	Tool     domain.ToolKind
	Locale   string
	Notifier notify.Notifier
}

type Config struct {
	MaxBytes     int64
	AllowedTypes []string
	Bucket       string
	Store        storage.ObjectStore
	Recorder     ledger.Recorder
	Messages     *notify.Messages
	Logger       zerolog.Logger
}

type Acceptor struct {
	maxBytes int64
	allowed  map[string]struct{}
	formats  string
	bucket   string
	store    storage.ObjectStore
	recorder ledger.Recorder
	messages *notify.Messages
	logger   zerolog.Logger
	now      func() time.Time
}

func NewAcceptor(cfg Config) *Acceptor {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10 * 1024 * 1024
	}
	if len(cfg.AllowedTypes) == 0 {
		cfg.AllowedTypes = []string{"image/jpeg", "image/png", "image/webp"}
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "images"
	}
	if cfg.Recorder == nil {
		cfg.Recorder = ledger.Nop{}
	}
	if cfg.Messages == nil {
		cfg.Messages = notify.NewMessages()
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowed[strings.ToLower(t)] = struct{}{}
	}
	return &Acceptor{
		maxBytes: cfg.MaxBytes,
		allowed:  allowed,
		formats:  formatList(cfg.AllowedTypes),
		bucket:   cfg.Bucket,
		store:    cfg.Store,
		recorder: cfg.Recorder,
		messages: cfg.Messages,
		logger:   cfg.Logger,
		now:      time.Now,
	}
}

// MaxBytes is the configured size limit.
func (a *Acceptor) MaxBytes() int64 { return a.maxBytes }

// Accept validates the first candidate of b and returns the asset built from
// it. A persisted upload that fails still returns the asset together with
// domain.ErrUploadFailed; every other error returns a nil asset.
func (a *Acceptor) Accept(ctx context.Context, b Batch, opts Options) (*domain.UploadedAsset, error) {
	n := opts.Notifier
	if n == nil {
		n = notify.Discard
	}

	if len(b.Rejected) > 0 {
		rej := b.Rejected[0]
		switch rej.Code {
		case RejectTooLarge:
			n.Notify(a.messages.Build(opts.Locale, notify.KindFileTooLarge, a.maxMB()))
			return nil, fmt.Errorf("%w: %s", domain.ErrFileTooLarge, rej.Name)
		default:
			n.Notify(a.messages.Build(opts.Locale, notify.KindInvalidType, a.formats))
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidType, rej.Name)
		}
	}
	if len(b.Files) == 0 {
		return nil, domain.ErrNoFile
	}

	file := b.Files[0]
	size := file.Size
	if size <= 0 {
		size = int64(len(file.Data))
	}
	if size > a.maxBytes {
		n.Notify(a.messages.Build(opts.Locale, notify.KindFileTooLarge, a.maxMB()))
		return nil, fmt.Errorf("%w: %s is %d bytes", domain.ErrFileTooLarge, file.Name, size)
	}

	mimeType := contentType(file)
	if _, ok := a.allowed[mimeType]; !ok {
		n.Notify(a.messages.Build(opts.Locale, notify.KindInvalidType, a.formats))
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidType, mimeType)
	}

	asset := &domain.UploadedAsset{
		Data:       append([]byte(nil), file.Data...),
		Filename:   file.Name,
		MIMEType:   mimeType,
		Size:       size,
		UploadedAt: a.now().UTC(),
	}

	if opts.Persist {
		url, err := a.persist(ctx, asset)
		if err != nil {
			a.logger.Warn().Err(err).Str("filename", file.Name).Msg("cloud upload failed")
			n.Notify(a.messages.Build(opts.Locale, notify.KindUploadFailed, file.Name))
			return asset, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
		}
		asset.RemoteURL = url
		if err := a.recorder.Record(ctx, ledger.Activity{
			Kind:      ledger.ActivityUpload,
			Tool:      string(opts.Tool),
			MIMEType:  mimeType,
			Bytes:     size,
			RemoteURL: url,
		}); err != nil {
			a.logger.Warn().Err(err).Msg("record upload activity")
		}
	}

	n.Notify(a.messages.Build(opts.Locale, notify.KindUploadSucceeded, file.Name))
	return asset, nil
}

func (a *Acceptor) persist(ctx context.Context, asset *domain.UploadedAsset) (string, error) {
	if a.store == nil {
		return "", errors.New("no object store configured")
	}
	key := storage.NewUploadKey(asset.Filename, asset.MIMEType)
	return a.store.Put(ctx, a.bucket, key, asset.MIMEType, asset.Data)
}

func (a *Acceptor) maxMB() int64 {
	return max(a.maxBytes/(1024*1024), 1)
}

func contentType(c Candidate) string {
	declared := strings.ToLower(strings.TrimSpace(c.MIMEType))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if len(c.Data) == 0 {
		return declared
	}
	sniffed := http.DetectContentType(c.Data)
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	return sniffed
}

// formatList renders image/jpeg, image/png as "JPG, PNG".
func formatList(types []string) string {
	names := make([]string, 0, len(types))
	for _, t := range types {
		name := strings.ToUpper(strings.TrimPrefix(strings.ToLower(t), "image/"))
		switch name {
		case "JPEG":
			name = "JPG"
		case "WEBP":
			name = "WebP"
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}
