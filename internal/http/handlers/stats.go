package handlers

import (
	"net/http"

	"lockday/internal/domain"
	"lockday/internal/ledger"
)

func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	s, err := a.Ledger.Summary(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("load activity summary")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	a.json(w, http.StatusOK, s)
}

type landingResponse struct {
	domain.Landing
	Live *ledger.Summary `json:"live,omitempty"`
}

// LandingPage serves the marketing content. Live counters are attached when the
// ledger answers; the static content is served regardless.
func (a *App) LandingPage(w http.ResponseWriter, r *http.Request) {
	resp := landingResponse{Landing: a.Landing}
	if s, err := a.Ledger.Summary(r.Context()); err == nil {
		resp.Live = &s
	} else {
		a.Logger.Warn().Err(err).Msg("landing without live stats")
	}
	a.json(w, http.StatusOK, resp)
}
