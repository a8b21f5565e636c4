package barista

import (
	"testing"
	"time"

	"dialin/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCaffeinePerShot(t *testing.T) {
	assert.Equal(t, CaffeineDoubleMG, CaffeinePerShot(models.BasketDouble))
	assert.Equal(t, CaffeineLuxeMG, CaffeinePerShot(models.BasketLuxe))
	assert.Equal(t, CaffeineDoubleMG, CaffeinePerShot(models.BasketLegacySingle))
	assert.Equal(t, CaffeineDoubleMG, CaffeinePerShot(""))
}

func TestCaffeine(t *testing.T) {
	now := time.Date(2025, 3, 22, 15, 0, 0, 0, time.UTC)
	luxe := loggedShot("Kenya", models.RatingBalanced, 12, now.Add(-2*time.Hour))
	luxe.Basket = models.BasketLuxe

	shots := []*models.ShotLog{
		luxe,
		loggedShot("Kenya", models.RatingSour, 12, time.Date(2025, 3, 22, 0, 5, 0, 0, time.UTC)),
		loggedShot("Kenya", models.RatingSour, 12, time.Date(2025, 3, 21, 23, 55, 0, 0, time.UTC)),
		loggedShot("Kenya", models.RatingSour, 12, now.Add(-8*24*time.Hour)),
	}

	sum := Caffeine(shots, now)
	assert.Equal(t, 2, sum.TodayShots)
	assert.Equal(t, CaffeineLuxeMG+CaffeineDoubleMG, sum.TodayMG)
	assert.Equal(t, CaffeineLuxeMG+2*CaffeineDoubleMG, sum.WeekTotalMG)
	assert.InDelta(t, float64(CaffeineLuxeMG+2*CaffeineDoubleMG)/7, sum.DailyAverage, 0.0001)
}

func TestCaffeine_Empty(t *testing.T) {
	sum := Caffeine(nil, time.Now())
	assert.Equal(t, CaffeineSummary{}, sum)
}
