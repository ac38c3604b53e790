package domain

import "errors"

var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrInvalidType     = errors.New("invalid file type")
	ErrUploadFailed    = errors.New("upload failed")
	ErrRelay           = errors.New("relay error")
	ErrNetwork         = errors.New("network error")
	ErrToolNotFound    = errors.New("tool not found")
	ErrNoFile          = errors.New("no file provided")
	ErrNoAsset         = errors.New("no image uploaded")
	ErrBusy            = errors.New("processing already in progress")
	ErrNoResult        = errors.New("no result available")
	ErrNotDownloadable = errors.New("result is not downloadable")
	ErrSessionNotFound = errors.New("session not found")
)
