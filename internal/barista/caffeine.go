package barista

import (
	"time"

	"dialin/internal/models"
)

// Estimated caffeine per shot by basket, in milligrams.
const (
	CaffeineDoubleMG = 126
	CaffeineLuxeMG   = 189
)

// CaffeineSummary is the caffeine estimate for today and the past week.
type CaffeineSummary struct {
	TodayMG      int     `json:"todayMg"`
	TodayShots   int     `json:"todayShots"`
	WeekTotalMG  int     `json:"weekTotalMg"`
	DailyAverage float64 `json:"dailyAverageMg"`
}

// CaffeinePerShot returns the estimate for one shot. Unknown baskets count
// as the smaller Double basket.
func CaffeinePerShot(b models.Basket) int {
	if b == models.BasketLuxe {
		return CaffeineLuxeMG
	}
	return CaffeineDoubleMG
}

// Caffeine totals shots pulled on now's calendar day and over the trailing
// seven days. The average always divides by seven.
func Caffeine(shots []*models.ShotLog, now time.Time) CaffeineSummary {
	var sum CaffeineSummary
	today := startOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	for _, s := range shots {
		mg := CaffeinePerShot(s.Basket)
		ts := s.Timestamp.In(now.Location())
		if !ts.Before(today) && ts.Before(tomorrow) {
			sum.TodayMG += mg
			sum.TodayShots++
		}
		if ts.After(weekAgo) && !ts.After(now) {
			sum.WeekTotalMG += mg
		}
	}

	sum.DailyAverage = float64(sum.WeekTotalMG) / 7
	return sum
}
