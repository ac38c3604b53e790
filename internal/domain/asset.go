package domain

import (
	"encoding/base64"
	"time"
)

// UploadedAsset is the single image held by a tool session.
type UploadedAsset struct {
	Data       []byte
	RemoteURL  string
	Filename   string
	MIMEType   string
	Size       int64
	UploadedAt time.Time
}

// PreviewDataURL encodes the asset for in-memory display.
func (a *UploadedAsset) PreviewDataURL() string {
	if a == nil {
		return ""
	}
	return DataURL(a.MIMEType, a.Data)
}

// ProcessingRequest is built when processing starts and dropped once a
// result lands.
type ProcessingRequest struct {
	Tool   ToolKind
	Source *UploadedAsset
}

// ResultKind tags a ProcessingResult.
type ResultKind string

const (
	ResultImage ResultKind = "image"
	ResultText  ResultKind = "text"
)

// ProcessingResult holds exactly one of Image or Text, matching Kind.
type ProcessingResult struct {
	Kind  ResultKind
	Image *ImageResult
	Text  *TextResult
}

type ImageResult struct {
	Data     []byte
	MIMEType string
}

type TextResult struct {
	Text string
}

func NewImageResult(data []byte, mimeType string) *ProcessingResult {
	return &ProcessingResult{
		Kind:  ResultImage,
		Image: &ImageResult{Data: append([]byte(nil), data...), MIMEType: mimeType},
	}
}

func NewTextResult(text string) *ProcessingResult {
	return &ProcessingResult{Kind: ResultText, Text: &TextResult{Text: text}}
}

// DataURL renders data as an RFC 2397 base64 data URL.
func DataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
