package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Static assets
		{"/static/css/output.css", "/static/*"},
		{"/icons/icon-192.svg", "/icons/*"},

		// Exact routes (no normalization needed)
		{"/", "/"},
		{"/metrics", "/metrics"},
		{"/api/shots", "/api/shots"},
		{"/api/stats", "/api/stats"},
		{"/api/export/csv", "/api/export/csv"},

		// Records with IDs
		{"/api/shots/abc123", "/api/shots/:id"},
		{"/api/recipes/abc123", "/api/recipes/:id"},
		{"/api/beans/abc123", "/api/beans/:id"},

		// Record actions
		{"/api/shots/abc123/favorite", "/api/shots/:id/favorite"},
		{"/api/shots/abc123/duplicate", "/api/shots/:id/duplicate"},
		{"/api/recipes/abc123/pin", "/api/recipes/:id/pin"},
		{"/api/beans/abc123/active", "/api/beans/:id/active"},

		// Timer routes are fixed
		{"/api/timer/start", "/api/timer/start"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePath(tt.input))
		})
	}
}

func getGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, g.Write(m))
	return m.GetGauge().GetValue()
}

func TestCollect(t *testing.T) {
	collect(StatsSource{
		ShotCount:       func() int { return 12 },
		FavoriteCount:   func() int { return 2 },
		RecipeCount:     func() int { return 3 },
		ActiveBeanCount: func() int { return 1 },
		BalancedRate:    func() int { return 67 },
		TimerRunning:    func() bool { return true },

		StorageFreePages:  func() int { return 4 },
		StorageOpenReadTx: func() int { return 1 },
	})

	assert.Equal(t, 12.0, getGaugeValue(t, ShotsTotal))
	assert.Equal(t, 2.0, getGaugeValue(t, FavoritesTotal))
	assert.Equal(t, 3.0, getGaugeValue(t, RecipesTotal))
	assert.Equal(t, 1.0, getGaugeValue(t, ActiveBeansTotal))
	assert.Equal(t, 67.0, getGaugeValue(t, BalancedRate))
	assert.Equal(t, 1.0, getGaugeValue(t, TimerRunning))
	assert.Equal(t, 4.0, getGaugeValue(t, StorageFreePages))
	assert.Equal(t, 1.0, getGaugeValue(t, StorageOpenReadTx))

	// Nil sources leave gauges alone
	collect(StatsSource{TimerRunning: func() bool { return false }})
	assert.Equal(t, 12.0, getGaugeValue(t, ShotsTotal))
	assert.Equal(t, 0.0, getGaugeValue(t, TimerRunning))
}
