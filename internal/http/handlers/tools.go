package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lockday/internal/domain"
)

type toolView struct {
	domain.Tool
	UploadPrompt string `json:"upload_prompt"`
	ActionLabel  string `json:"action_label"`
}

func viewOf(t domain.Tool) toolView {
	return toolView{Tool: t, UploadPrompt: t.UploadPrompt(), ActionLabel: t.ActionLabel()}
}

func (a *App) ListTools(w http.ResponseWriter, r *http.Request) {
	tools := a.Catalog.Tools()
	items := make([]toolView, 0, len(tools))
	for _, t := range tools {
		items = append(items, viewOf(t))
	}
	a.json(w, http.StatusOK, map[string]any{
		"items":      items,
		"categories": a.Catalog.Categories(),
	})
}

func (a *App) GetTool(w http.ResponseWriter, r *http.Request) {
	tool, err := a.Catalog.Lookup(chi.URLParam(r, "tool"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, viewOf(tool))
}
