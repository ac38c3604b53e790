package session

import (
	"fmt"
	"time"

	"lockday/internal/domain"
)

const exportPrefix = "lock-the-day"

// Artifact is a file handed to the browser for saving.
type Artifact struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Exporter turns an image result into a downloadable artifact. Text results
// are displayed, not downloaded.
type Exporter struct{}

func (Exporter) Export(tool domain.ToolKind, result *domain.ProcessingResult, now time.Time) (*Artifact, error) {
	if result == nil {
		return nil, domain.ErrNoResult
	}
	if result.Kind != domain.ResultImage || result.Image == nil {
		return nil, domain.ErrNotDownloadable
	}
	mimeType := result.Image.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	return &Artifact{
		Filename: ExportFilename(tool, now),
		MIMEType: mimeType,
		Data:     append([]byte(nil), result.Image.Data...),
	}, nil
}

// ExportFilename is lock-the-day-<tool>-<unix ms>.png.
func ExportFilename(tool domain.ToolKind, now time.Time) string {
	return fmt.Sprintf("%s-%s-%d.png", exportPrefix, tool, now.UnixMilli())
}
