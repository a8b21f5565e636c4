package handlers

import (
	"math"
	"net/http"

	"dialin/internal/models"

	"github.com/rs/zerolog/log"
)

// ShotView is a shot as listed in the history.
type ShotView struct {
	*models.ShotLog
	IsFavorite bool `json:"isFavorite"`
}

type createShotRequest struct {
	models.CreateShotRequest
	// UseTimer records the stopwatch reading as the extraction time and
	// resets the stopwatch.
	UseTimer bool `json:"useTimer,omitempty"`
}

// HandleShotList returns the history, optionally filtered by ?q= and ?rating=.
func (h *Handler) HandleShotList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	var rating *models.Rating
	if v := r.URL.Query().Get("rating"); v != "" {
		rt := models.Rating(v)
		if !rt.Valid() {
			http.Error(w, models.ErrInvalidRating.Error(), http.StatusBadRequest)
			return
		}
		rating = &rt
	}

	shots := h.app.Search(query, rating)
	favorites := h.app.Favorites()
	views := make([]ShotView, 0, len(shots))
	for _, s := range shots {
		views = append(views, ShotView{ShotLog: s, IsFavorite: favorites[models.FavoriteKey(s.BeanName)] == s.ID})
	}
	writeJSON(w, views, "shots")
}

// HandleShotCreate logs a new shot.
func (h *Handler) HandleShotCreate(w http.ResponseWriter, r *http.Request) {
	var req createShotRequest
	if err := decodeRequest(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.UseTimer && h.stopwatch != nil && req.ExtractionTime == nil {
		h.stopwatch.Stop()
		secs := math.Round(h.stopwatch.Seconds()*10) / 10
		if secs > 0 {
			req.ExtractionTime = &secs
		}
	}

	shot, err := h.app.LogShot(r.Context(), &req.CreateShotRequest)
	if err != nil {
		writeError(w, err, "save shot")
		return
	}
	if req.UseTimer && h.stopwatch != nil {
		h.stopwatch.Reset()
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, shot, "shot")
}

// HandleShotGet returns one shot.
func (h *Handler) HandleShotGet(w http.ResponseWriter, r *http.Request) {
	shot, err := h.app.Shot(r.PathValue("id"))
	if err != nil {
		writeError(w, err, "fetch shot")
		return
	}
	writeJSON(w, ShotView{ShotLog: shot, IsFavorite: h.app.IsFavorite(shot.ID)}, "shot")
}

// HandleShotDelete deletes a shot.
func (h *Handler) HandleShotDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.app.DeleteShot(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err, "delete shot")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleShotDuplicate returns a shot form pre-filled from an existing shot.
func (h *Handler) HandleShotDuplicate(w http.ResponseWriter, r *http.Request) {
	req, err := h.app.DuplicateShot(r.PathValue("id"))
	if err != nil {
		writeError(w, err, "duplicate shot")
		return
	}
	writeJSON(w, req, "shot form")
}

// HandleFavoriteToggle stars or unstars a shot.
func (h *Handler) HandleFavoriteToggle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	favorite, err := h.app.ToggleFavorite(r.Context(), id)
	if err != nil {
		writeError(w, err, "update favorite")
		return
	}
	log.Debug().Str("id", id).Bool("favorite", favorite).Msg("Toggled favorite")
	writeJSON(w, map[string]bool{"isFavorite": favorite}, "favorite")
}

// HandleInsight returns the tip and suggestion for ?bean=. The body is
// JSON null when the bean has no shots.
func (h *Handler) HandleInsight(w http.ResponseWriter, r *http.Request) {
	bean := r.URL.Query().Get("bean")
	if bean == "" {
		http.Error(w, models.ErrBeanNameRequired.Error(), http.StatusBadRequest)
		return
	}
	insight, err := h.app.Insight(bean)
	if err != nil {
		writeError(w, err, "compute insight")
		return
	}
	writeJSON(w, insight, "insight")
}

// HandleStats returns the dashboard statistics.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.app.Stats(), "stats")
}

// HandleCaffeine returns the caffeine estimate.
func (h *Handler) HandleCaffeine(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.app.Caffeine(), "caffeine")
}

// HandleAutocomplete returns bean name candidates for ?q=.
func (h *Handler) HandleAutocomplete(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.app.Autocomplete(r.URL.Query().Get("q")), "autocomplete")
}
