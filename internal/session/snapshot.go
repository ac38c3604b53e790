package session

import (
	"time"

	"lockday/internal/domain"
	"lockday/internal/notify"
)

// Snapshot is the screen as the client renders it.
type Snapshot struct {
	ID            string                `json:"id"`
	Tool          domain.Tool           `json:"tool"`
	UploadPrompt  string                `json:"upload_prompt"`
	ActionLabel   string                `json:"action_label"`
	State         State                 `json:"state"`
	Processing    bool                  `json:"processing"`
	Persist       bool                  `json:"persist"`
	Asset         *AssetView            `json:"asset,omitempty"`
	Result        *ResultView           `json:"result,omitempty"`
	Downloadable  bool                  `json:"downloadable"`
	Notifications []notify.Notification `json:"notifications"`
}

type AssetView struct {
	Filename   string    `json:"filename"`
	MIMEType   string    `json:"mime_type"`
	Size       int64     `json:"size"`
	PreviewURL string    `json:"preview_url"`
	RemoteURL  string    `json:"remote_url,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type ResultView struct {
	Kind     domain.ResultKind `json:"kind"`
	ImageURL string            `json:"image_url,omitempty"`
	Text     string            `json:"text,omitempty"`
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		ID:            c.id,
		Tool:          c.tool,
		UploadPrompt:  c.tool.UploadPrompt(),
		ActionLabel:   c.tool.ActionLabel(),
		State:         c.state,
		Processing:    c.state == StateProcessing,
		Persist:       c.persist,
		Notifications: c.recent.Recent(),
	}
	if a := c.asset; a != nil {
		s.Asset = &AssetView{
			Filename:   a.Filename,
			MIMEType:   a.MIMEType,
			Size:       a.Size,
			PreviewURL: a.PreviewDataURL(),
			RemoteURL:  a.RemoteURL,
			UploadedAt: a.UploadedAt,
		}
	}
	if r := c.result; r != nil {
		view := &ResultView{Kind: r.Kind}
		switch r.Kind {
		case domain.ResultImage:
			view.ImageURL = domain.DataURL(r.Image.MIMEType, r.Image.Data)
			s.Downloadable = true
		case domain.ResultText:
			view.Text = r.Text.Text
		}
		s.Result = view
	}
	return s
}
