package barista

import (
	"time"

	"dialin/internal/models"
)

// FreshnessStatus is a roast-age band.
type FreshnessStatus struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var (
	FreshnessUnknown = FreshnessStatus{Label: "Unknown", Color: "#888"}
	FreshnessResting = FreshnessStatus{Label: "Resting", Color: "#E8A045"}
	FreshnessPeak    = FreshnessStatus{Label: "Peak", Color: "#7A9E6D"}
	FreshnessFading  = FreshnessStatus{Label: "Fading", Color: "#D4915C"}
	FreshnessStale   = FreshnessStatus{Label: "Stale", Color: "#C04545"}
)

// DaysSinceRoast returns the number of calendar days between the roast date
// and now's date, or nil when no date is recorded or it does not parse.
func DaysSinceRoast(roastDate *string, now time.Time) *int {
	if roastDate == nil || *roastDate == "" {
		return nil
	}
	roast, err := time.Parse(models.RoastDateLayout, *roastDate)
	if err != nil {
		return nil
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	days := int(today.Sub(roast).Hours() / 24)
	return &days
}

// Freshness maps days since roast to its band. Lower bounds are inclusive:
// under 7 is Resting, 7–21 Peak, 22–35 Fading, over 35 Stale.
func Freshness(days *int) FreshnessStatus {
	switch {
	case days == nil:
		return FreshnessUnknown
	case *days < 7:
		return FreshnessResting
	case *days <= 21:
		return FreshnessPeak
	case *days <= 35:
		return FreshnessFading
	default:
		return FreshnessStale
	}
}

// BeanFreshness combines DaysSinceRoast and Freshness for a profile.
func BeanFreshness(bean *models.BeanProfile, now time.Time) (FreshnessStatus, *int) {
	days := DaysSinceRoast(bean.RoastDate, now)
	return Freshness(days), days
}
