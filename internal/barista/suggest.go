package barista

import (
	"fmt"

	"dialin/internal/models"
)

// Suggestion is the recommended setting change for the next shot.
type Suggestion struct {
	GrindSize int `json:"grindSize"`
	// GrindDelta is GrindSize minus the source shot's grind size.
	GrindDelta int `json:"grindDelta"`
	// Temperature is nil for cold brew types.
	Temperature        *models.Temperature `json:"temperature,omitempty"`
	TemperatureChanged bool                `json:"temperatureChanged"`
}

// DeltaLabel formats the grind change for display, e.g. "(+2)".
func (s *Suggestion) DeltaLabel() string {
	return fmt.Sprintf("(%+d)", s.GrindDelta)
}

// Suggest computes the next grind size and temperature from a prior shot.
// It returns nil when there is nothing to change: no shot, a Balanced
// shot, or a rating off the scale.
func Suggest(shot *models.ShotLog) *Suggestion {
	if shot == nil {
		return nil
	}

	var step int
	var warmer, cooler bool
	switch shot.Rating {
	case models.RatingVerySour:
		step, warmer = -3, true
	case models.RatingSour:
		step = -1
	case models.RatingBitter:
		step = 1
	case models.RatingVeryBitter:
		step, cooler = 3, true
	default:
		return nil
	}

	grind := clampGrind(shot.GrindSize + step)
	s := &Suggestion{
		GrindSize:  grind,
		GrindDelta: grind - shot.GrindSize,
	}

	if shot.BrewType.IsCold() {
		return s
	}

	current := models.TempMed
	if shot.Temperature != nil && shot.Temperature.Valid() {
		current = *shot.Temperature
	}
	next := current
	switch {
	case warmer:
		next = current.Warmer()
	case cooler:
		next = current.Cooler()
	}
	s.Temperature = &next
	s.TemperatureChanged = next != current

	return s
}

func clampGrind(g int) int {
	return max(models.MinGrindSize, min(models.MaxGrindSize, g))
}
