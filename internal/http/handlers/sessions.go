package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"lockday/internal/domain"
	"lockday/internal/middleware"
	"lockday/internal/session"
	"lockday/internal/upload"
)

const multipartMemory = 32 << 20

type persistenceRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

func (a *App) CreateSession(w http.ResponseWriter, r *http.Request) {
	c, err := a.Sessions.Create(chi.URLParam(r, "tool"), middleware.LocaleFromContext(r.Context()))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/sessions/"+c.ID())
	a.json(w, http.StatusCreated, c.Snapshot())
}

func (a *App) session(w http.ResponseWriter, r *http.Request) (*session.Controller, bool) {
	c, err := a.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return nil, false
	}
	return c, true
}

func (a *App) GetSession(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, c.Snapshot())
}

func (a *App) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if !a.Sessions.Remove(chi.URLParam(r, "id")) {
		a.fail(w, r, domain.ErrSessionNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) SetPersistence(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	var req persistenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "enabled is required")
		return
	}
	c.SetPersistence(*req.Enabled)
	a.json(w, http.StatusOK, c.Snapshot())
}

// Upload takes multipart field "file". Repeated "rejected" fields carry
// "<name>:<code>" entries refused by the client dropzone.
func (a *App) Upload(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}

	batch, err := a.readBatch(w, r)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}

	_, err = c.Upload(r.Context(), batch)
	if err != nil && !errors.Is(err, domain.ErrUploadFailed) {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, c.Snapshot())
}

func (a *App) readBatch(w http.ResponseWriter, r *http.Request) (upload.Batch, error) {
	var batch upload.Batch
	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			batch.Rejected = append(batch.Rejected, upload.Rejection{Code: upload.RejectTooLarge})
			return batch, nil
		}
		return batch, err
	}
	defer r.MultipartForm.RemoveAll()

	for _, entry := range r.MultipartForm.Value["rejected"] {
		batch.Rejected = append(batch.Rejected, parseRejection(entry))
	}
	for i, fh := range r.MultipartForm.File["file"] {
		cand := upload.Candidate{Name: fh.Filename, MIMEType: fh.Header.Get("Content-Type"), Size: fh.Size}
		// Only the first file is ever accepted.
		if i == 0 && fh.Size <= a.MaxUploadBytes {
			data, err := readPart(fh)
			if err != nil {
				return batch, err
			}
			cand.Data = data
		}
		batch.Files = append(batch.Files, cand)
	}
	return batch, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open part %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func parseRejection(entry string) upload.Rejection {
	i := strings.LastIndex(entry, ":")
	if i < 0 {
		return upload.Rejection{Name: entry, Code: upload.RejectInvalidType}
	}
	code := upload.RejectCode(strings.TrimSpace(entry[i+1:]))
	if code != upload.RejectTooLarge {
		code = upload.RejectInvalidType
	}
	return upload.Rejection{Name: strings.TrimSpace(entry[:i]), Code: code}
}

func (a *App) ClearAsset(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	c.Clear()
	a.json(w, http.StatusOK, c.Snapshot())
}

func (a *App) Process(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	if _, err := c.Process(r.Context()); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusAccepted, c.Snapshot())
}

func (a *App) Download(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	art, err := c.Download(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", art.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, art.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Data)
}

func (a *App) Events(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	// Streams outlive the server's write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})
	a.Hub.ServeSSE(w, r, c.ID())
}
