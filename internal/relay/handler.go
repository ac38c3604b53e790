package relay

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const maxRequestBytes = 1 << 20

// CORS headers the relay answers with, on preflight and on every response.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
}

// Handler serves POST /v1/relay/gemini-ai. Every failure is a 500 with an
// {error} body.
type Handler struct {
	gen      Generator
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewHandler accepts a nil generator; requests then fail with
// ErrMissingAPIKey.
func NewHandler(gen Generator, logger zerolog.Logger) *Handler {
	return &Handler{gen: gen, validate: validator.New(), logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for k, v := range corsHeaders {
		w.Header().Set(k, v)
	}
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		h.fail(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.fail(w, err)
		return
	}
	if h.gen == nil {
		h.fail(w, ErrMissingAPIKey)
		return
	}

	text, err := h.gen.GenerateText(r.Context(), req.Prompt, req.Kind())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{GeneratedText: text})
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	h.logger.Error().Err(err).Msg("Error in gemini-ai relay")
	msg := err.Error()
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		msg = "invalid request: " + verrs[0].Field() + " failed " + verrs[0].Tag()
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
