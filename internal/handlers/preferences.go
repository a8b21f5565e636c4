package handlers

import (
	"net/http"
)

type preferencesRequest struct {
	Theme         *string `json:"theme,omitempty"`
	ShowShortcuts *bool   `json:"showShortcuts,omitempty"`
}

// HandlePreferencesGet returns the UI preferences.
func (h *Handler) HandlePreferencesGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.app.Preferences(), "preferences")
}

// HandlePreferencesUpdate changes the fields present in the body.
func (h *Handler) HandlePreferencesUpdate(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if err := decodeRequest(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Theme != nil {
		if err := h.app.SetTheme(r.Context(), *req.Theme); err != nil {
			writeError(w, err, "save theme")
			return
		}
	}
	if req.ShowShortcuts != nil {
		if err := h.app.SetShowShortcuts(r.Context(), *req.ShowShortcuts); err != nil {
			writeError(w, err, "save preferences")
			return
		}
	}
	writeJSON(w, h.app.Preferences(), "preferences")
}
