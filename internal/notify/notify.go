// Package notify carries user-visible notifications from tool sessions to
// whoever displays them. Components receive a Notifier instead of reaching
// for a shared channel.
package notify

import (
	"sync"
	"time"
)

// Kind identifies what happened.
type Kind string

const (
	KindUploadSucceeded    Kind = "upload_succeeded"
	KindFileTooLarge       Kind = "file_too_large"
	KindInvalidType        Kind = "invalid_type"
	KindUploadFailed       Kind = "upload_failed"
	KindProcessingComplete Kind = "processing_complete"
	KindRelayError         Kind = "relay_error"
	KindNetworkError       Kind = "network_error"
	KindDownloadStarted    Kind = "download_started"
	KindToolNotFound       Kind = "tool_not_found"
)

// Variant mirrors the toast style on the client.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

type Notification struct {
	Kind        Kind      `json:"kind"`
	Variant     Variant   `json:"variant"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	At          time.Time `json:"at"`
}

// Notifier receives notifications. Implementations must not block.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(Notification) {})

// Multi fans a notification out to every non-nil notifier.
func Multi(notifiers ...Notifier) Notifier {
	var targets []Notifier
	for _, n := range notifiers {
		if n != nil {
			targets = append(targets, n)
		}
	}
	return NotifierFunc(func(n Notification) {
		for _, t := range targets {
			t.Notify(n)
		}
	})
}

// Log keeps the most recent notifications in memory.
type Log struct {
	mu    sync.Mutex
	max   int
	items []Notification
}

func NewLog(max int) *Log {
	if max <= 0 {
		max = 20
	}
	return &Log{max: max}
}

func (l *Log) Notify(n Notification) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, n)
	if over := len(l.items) - l.max; over > 0 {
		l.items = append(l.items[:0], l.items[over:]...)
	}
}

// Recent returns a copy, oldest first.
func (l *Log) Recent() []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Notification(nil), l.items...)
}

// Kinds lists the kinds of the recorded notifications, oldest first.
func (l *Log) Kinds() []Kind {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Kind, len(l.items))
	for i, n := range l.items {
		out[i] = n.Kind
	}
	return out
}
