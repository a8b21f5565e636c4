package barista

import (
	"math"
	"time"

	"dialin/internal/models"
)

// TopBeansLimit caps the bean leaderboard.
const TopBeansLimit = 5

// TrendDays is the length of the daily trend, today included.
const TrendDays = 7

// BeanCount is one entry of the bean leaderboard.
type BeanCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DayTrend is the shot tally for one calendar day.
type DayTrend struct {
	Date     time.Time `json:"date"`
	Label    string    `json:"label"`
	Total    int       `json:"total"`
	Balanced int       `json:"balanced"`
}

// Stats is the dashboard summary of the shot log.
type Stats struct {
	TotalShots   int                   `json:"totalShots"`
	RatingCounts map[models.Rating]int `json:"ratingCounts"`
	TopBeans     []BeanCount           `json:"topBeans"`
	// AvgBalancedGrind is nil when no shot was rated Balanced.
	AvgBalancedGrind *float64   `json:"avgBalancedGrind,omitempty"`
	BalancedRate     int        `json:"balancedRate"`
	ShotsThisWeek    int        `json:"shotsThisWeek"`
	Trend            []DayTrend `json:"trend"`
}

// ComputeStats summarizes shots as of now.
func ComputeStats(shots []*models.ShotLog, now time.Time) Stats {
	stats := Stats{
		TotalShots:   len(shots),
		RatingCounts: make(map[models.Rating]int, len(models.Ratings)),
		TopBeans:     []BeanCount{},
	}
	for _, r := range models.Ratings {
		stats.RatingCounts[r] = 0
	}

	weekAgo := now.Add(-7 * 24 * time.Hour)
	beanIndex := make(map[string]int)
	var balanced, balancedGrindSum int

	for _, s := range shots {
		if _, ok := stats.RatingCounts[s.Rating]; ok {
			stats.RatingCounts[s.Rating]++
		}

		if i, ok := beanIndex[s.BeanName]; ok {
			stats.TopBeans[i].Count++
		} else {
			beanIndex[s.BeanName] = len(stats.TopBeans)
			stats.TopBeans = append(stats.TopBeans, BeanCount{Name: s.BeanName, Count: 1})
		}

		if s.Rating == models.RatingBalanced {
			balanced++
			balancedGrindSum += s.GrindSize
		}

		if s.Timestamp.After(weekAgo) && !s.Timestamp.After(now) {
			stats.ShotsThisWeek++
		}
	}

	stats.TopBeans = topBeans(stats.TopBeans)

	if balanced > 0 {
		avg := float64(balancedGrindSum) / float64(balanced)
		stats.AvgBalancedGrind = &avg
	}
	if len(shots) > 0 {
		stats.BalancedRate = int(math.Round(float64(balanced) * 100 / float64(len(shots))))
	}

	stats.Trend = dailyTrend(shots, now)
	return stats
}

// topBeans orders by count descending, keeping first-seen order on ties.
func topBeans(counts []BeanCount) []BeanCount {
	sorted := make([]BeanCount, len(counts))
	copy(sorted, counts)
	// insertion sort is stable and the list is short
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Count > sorted[j-1].Count; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	if len(sorted) > TopBeansLimit {
		sorted = sorted[:TopBeansLimit]
	}
	return sorted
}

func dailyTrend(shots []*models.ShotLog, now time.Time) []DayTrend {
	today := startOfDay(now)
	trend := make([]DayTrend, TrendDays)
	for i := range trend {
		day := today.AddDate(0, 0, i-(TrendDays-1))
		trend[i] = DayTrend{Date: day, Label: day.Format("Mon")}
	}

	for _, s := range shots {
		day := startOfDay(s.Timestamp.In(now.Location()))
		for i := range trend {
			if trend[i].Date.Equal(day) {
				trend[i].Total++
				if s.Rating == models.RatingBalanced {
					trend[i].Balanced++
				}
				break
			}
		}
	}
	return trend
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
