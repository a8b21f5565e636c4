package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"dialin/internal/dialin"
	"dialin/internal/export"
	"dialin/internal/models"
	"dialin/internal/timer"

	"github.com/rs/zerolog/log"
)

// maxImportSize caps the size of an uploaded backup file.
const maxImportSize = 10 << 20

// Handler contains all HTTP handler methods and their dependencies.
// Dependencies are injected via the constructor for better testability.
type Handler struct {
	app       *dialin.App
	stopwatch *timer.Stopwatch
}

// NewHandler creates a new Handler with all required dependencies.
func NewHandler(app *dialin.App, stopwatch *timer.Stopwatch) *Handler {
	return &Handler{
		app:       app,
		stopwatch: stopwatch,
	}
}

// isJSONRequest checks if the request Content-Type is JSON
func isJSONRequest(r *http.Request) bool {
	contentType := r.Header.Get("Content-Type")
	return contentType == "" || strings.Contains(contentType, "application/json")
}

// decodeRequest decodes a JSON request body into target.
func decodeRequest(r *http.Request, target any) error {
	if !isJSONRequest(r) {
		return errUnsupportedContentType
	}
	return json.NewDecoder(r.Body).Decode(target)
}

var errUnsupportedContentType = errors.New("content type must be application/json")

// writeJSON encodes and writes a JSON response
func writeJSON(w http.ResponseWriter, v any, entityName string) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode " + entityName + " response")
	}
}

// validationErrors are reported to the client verbatim with a 400.
var validationErrors = []error{
	models.ErrBeanNameRequired,
	models.ErrNameRequired,
	models.ErrNameTooLong,
	models.ErrNotesTooLong,
	models.ErrInvalidBrewType,
	models.ErrInvalidBasket,
	models.ErrGrindOutOfRange,
	models.ErrInvalidTemperature,
	models.ErrInvalidStrength,
	models.ErrInvalidRating,
	models.ErrInvalidMilk,
	models.ErrInvalidRoastLevel,
	models.ErrInvalidProcess,
	models.ErrInvalidRoastDate,
	dialin.ErrInvalidTheme,
	export.ErrInvalidBackup,
	export.ErrMissingShots,
}

func isValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// writeError maps controller errors to status codes. Storage failures are
// logged and reported with action as the message.
func writeError(w http.ResponseWriter, err error, action string) {
	switch {
	case isValidationError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, dialin.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "Failed to "+action, http.StatusInternalServerError)
		log.Error().Err(err).Msg("Failed to " + action)
	}
}

// HandleOptions returns the choices offered by the forms.
func (h *Handler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"ratings":        models.Ratings,
		"ratingColors":   models.RatingColors,
		"brewTypes":      models.BrewTypes,
		"baskets":        models.Baskets,
		"temperatures":   models.Temperatures,
		"strengths":      models.Strengths,
		"milkTypes":      models.MilkTypes,
		"milkStyles":     models.MilkStyles,
		"roastLevels":    models.RoastLevels,
		"processMethods": models.ProcessMethods,
		"themes":         models.Themes,
		"defaults":       models.DefaultBrewSettings(),
	}, "options")
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"}, "health")
}
