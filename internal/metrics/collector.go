package metrics

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// StatsSource provides functions to retrieve current counts for gauge metrics.
// Nil functions are skipped.
type StatsSource struct {
	ShotCount       func() int
	FavoriteCount   func() int
	RecipeCount     func() int
	ActiveBeanCount func() int
	BalancedRate    func() int
	TimerRunning    func() bool

	// Set only for the bolt backend
	StorageFreePages  func() int
	StorageOpenReadTx func() int
}

// StartCollector launches a goroutine that periodically updates gauge metrics.
// It runs every interval until the context is cancelled.
func StartCollector(ctx context.Context, src StatsSource, interval time.Duration) {
	// Do an initial collection immediately
	collect(src)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				collect(src)
			}
		}
	}()

	log.Info().Dur("interval", interval).Msg("Metrics collector started")
}

func collect(src StatsSource) {
	if src.ShotCount != nil {
		ShotsTotal.Set(float64(src.ShotCount()))
	}
	if src.FavoriteCount != nil {
		FavoritesTotal.Set(float64(src.FavoriteCount()))
	}
	if src.RecipeCount != nil {
		RecipesTotal.Set(float64(src.RecipeCount()))
	}
	if src.ActiveBeanCount != nil {
		ActiveBeansTotal.Set(float64(src.ActiveBeanCount()))
	}
	if src.BalancedRate != nil {
		BalancedRate.Set(float64(src.BalancedRate()))
	}
	if src.StorageFreePages != nil {
		StorageFreePages.Set(float64(src.StorageFreePages()))
	}
	if src.StorageOpenReadTx != nil {
		StorageOpenReadTx.Set(float64(src.StorageOpenReadTx()))
	}
	if src.TimerRunning != nil {
		if src.TimerRunning() {
			TimerRunning.Set(1)
		} else {
			TimerRunning.Set(0)
		}
	}
}
