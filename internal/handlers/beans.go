package handlers

import (
	"net/http"

	"dialin/internal/models"
)

// HandleBeanList returns every bean profile with its freshness.
func (h *Handler) HandleBeanList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.app.Beans(), "beans")
}

// HandleBeanGet returns one bean profile.
func (h *Handler) HandleBeanGet(w http.ResponseWriter, r *http.Request) {
	bean, err := h.app.Bean(r.PathValue("id"))
	if err != nil {
		writeError(w, err, "fetch bean")
		return
	}
	writeJSON(w, bean, "bean")
}

// HandleBeanCreate adds a bean profile.
func (h *Handler) HandleBeanCreate(w http.ResponseWriter, r *http.Request) {
	var req models.BeanProfileRequest
	if err := decodeRequest(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	bean, err := h.app.AddBean(r.Context(), &req)
	if err != nil {
		writeError(w, err, "create bean")
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, bean, "bean")
}

// HandleBeanUpdate edits a bean profile.
func (h *Handler) HandleBeanUpdate(w http.ResponseWriter, r *http.Request) {
	var req models.BeanProfileRequest
	if err := decodeRequest(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	bean, err := h.app.UpdateBean(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		writeError(w, err, "update bean")
		return
	}
	writeJSON(w, bean, "bean")
}

// HandleBeanDelete deletes a bean profile.
func (h *Handler) HandleBeanDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.app.DeleteBean(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err, "delete bean")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleBeanActive toggles whether a bean is in rotation.
func (h *Handler) HandleBeanActive(w http.ResponseWriter, r *http.Request) {
	active, err := h.app.ToggleBeanActive(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "update bean")
		return
	}
	writeJSON(w, map[string]bool{"isActive": active}, "bean")
}
