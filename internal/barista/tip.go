// Package barista holds the pure calculators behind the dial-in dashboard:
// tips, next-shot suggestions, bean freshness, statistics and the selection
// rules that decide which prior shot a tip is based on.
//
// Nothing in this package performs I/O. Functions that depend on the
// current time take it as a parameter.
package barista

import (
	"errors"
	"fmt"

	"dialin/internal/models"
)

// ErrUnknownRating is returned for a rating outside the 5-point scale.
// Callers validate ratings at the boundary, so seeing it is a bug.
var ErrUnknownRating = errors.New("unknown rating")

// Adjustment classifies how far the next shot should move.
type Adjustment string

const (
	AdjustNone  Adjustment = "none"
	AdjustSmall Adjustment = "small"
	AdjustLarge Adjustment = "large"
)

// TipResult is the advice shown for a rating.
type TipResult struct {
	Message    string     `json:"message"`
	Adjustment Adjustment `json:"adjustment"`
}

// Tip returns the barista advice for a rating.
func Tip(r models.Rating) (TipResult, error) {
	switch r {
	case models.RatingVerySour:
		return TipResult{
			Message:    "Heavily under-extracted. Grind significantly finer (2-3 steps) or increase temperature.",
			Adjustment: AdjustLarge,
		}, nil
	case models.RatingSour:
		return TipResult{
			Message:    "Slightly under-extracted. Grind a bit finer (1 step) or try a higher temperature.",
			Adjustment: AdjustSmall,
		}, nil
	case models.RatingBalanced:
		return TipResult{
			Message:    "Perfect extraction! Save these settings for this bean.",
			Adjustment: AdjustNone,
		}, nil
	case models.RatingBitter:
		return TipResult{
			Message:    "Slightly over-extracted. Grind a bit coarser (1 step) or try a lower temperature.",
			Adjustment: AdjustSmall,
		}, nil
	case models.RatingVeryBitter:
		return TipResult{
			Message:    "Heavily over-extracted. Grind significantly coarser (2-3 steps) or decrease temperature.",
			Adjustment: AdjustLarge,
		}, nil
	}
	return TipResult{}, fmt.Errorf("%w: %q", ErrUnknownRating, r)
}
