// Package ledger records upload and export activity so the landing page can
// show live counters.
package ledger

import (
	"context"
	"time"
)

// ActivityKind distinguishes what the ledger recorded.
type ActivityKind string

const (
	ActivityUpload ActivityKind = "upload"
	ActivityExport ActivityKind = "export"
)

type Activity struct {
	Kind      ActivityKind
	Tool      string
	MIMEType  string
	Bytes     int64
	RemoteURL string
	At        time.Time
}

type Summary struct {
	Uploads        int64 `json:"uploads"`
	Exports        int64 `json:"exports"`
	ExportsLast24h int64 `json:"exports_last_24h"`
}

// Recorder persists activity and summarizes it.
type Recorder interface {
	Record(ctx context.Context, a Activity) error
	Summary(ctx context.Context) (Summary, error)
}

// Nop discards activity; used when no database is configured.
type Nop struct{}

func (Nop) Record(context.Context, Activity) error   { return nil }
func (Nop) Summary(context.Context) (Summary, error) { return Summary{}, nil }

func stamp(a Activity) Activity {
	if a.At.IsZero() {
		a.At = time.Now()
	}
	a.At = a.At.UTC()
	return a
}
