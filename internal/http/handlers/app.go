package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"lockday/internal/domain"
	"lockday/internal/ledger"
	"lockday/internal/middleware"
	"lockday/internal/notify"
	"lockday/internal/session"
)

type App struct {
	Catalog        *domain.Catalog
	Landing        domain.Landing
	Sessions       *session.Manager
	Hub            *notify.Hub
	Ledger         ledger.Recorder
	Messages       *notify.Messages
	MaxUploadBytes int64
	Logger         zerolog.Logger

	validate *validator.Validate
}

func NewApp(catalog *domain.Catalog, sessions *session.Manager, hub *notify.Hub, rec ledger.Recorder, maxUpload int64, logger zerolog.Logger) *App {
	if rec == nil {
		rec = ledger.Nop{}
	}
	return &App{
		Catalog:        catalog,
		Landing:        domain.DefaultLanding(),
		Sessions:       sessions,
		Hub:            hub,
		Ledger:         rec,
		Messages:       notify.NewMessages(),
		MaxUploadBytes: maxUpload,
		Logger:         logger,
		validate:       validator.New(),
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]errorBody{"error": {Code: errCode, Message: message}})
}

// fail maps domain errors onto HTTP statuses.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrToolNotFound):
		n := a.Messages.Build(middleware.LocaleFromContext(r.Context()), notify.KindToolNotFound)
		a.error(w, http.StatusNotFound, "tool_not_found", n.Description)
	case errors.Is(err, domain.ErrSessionNotFound):
		a.error(w, http.StatusNotFound, "not_found", "session not found")
	case errors.Is(err, domain.ErrFileTooLarge):
		a.error(w, http.StatusRequestEntityTooLarge, "file_too_large", err.Error())
	case errors.Is(err, domain.ErrInvalidType):
		a.error(w, http.StatusUnsupportedMediaType, "invalid_type", err.Error())
	case errors.Is(err, domain.ErrNoFile):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrNoAsset):
		a.error(w, http.StatusConflict, "no_asset", err.Error())
	case errors.Is(err, domain.ErrBusy):
		a.error(w, http.StatusConflict, "busy", err.Error())
	case errors.Is(err, domain.ErrNoResult):
		a.error(w, http.StatusConflict, "no_result", err.Error())
	case errors.Is(err, domain.ErrNotDownloadable):
		a.error(w, http.StatusConflict, "not_downloadable", err.Error())
	case errors.Is(err, session.ErrSuperseded):
		a.error(w, http.StatusConflict, "superseded", err.Error())
	default:
		a.Logger.Error().Err(err).Str("request_id", middleware.RequestIDFromContext(r.Context())).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
