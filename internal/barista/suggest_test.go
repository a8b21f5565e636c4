package barista

import (
	"testing"

	"dialin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shotWith(rating models.Rating, grind int, temp *models.Temperature) *models.ShotLog {
	return &models.ShotLog{
		BeanName:    "Kenya",
		BrewType:    models.BrewEspresso,
		Basket:      models.BasketDouble,
		GrindSize:   grind,
		Temperature: temp,
		Strength:    2,
		Rating:      rating,
	}
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		name      string
		shot      *models.ShotLog
		wantGrind int
		wantDelta int
		wantTemp  models.Temperature
		changed   bool
	}{
		{"sour finer by one", shotWith(models.RatingSour, 12, models.Ptr(models.TempMed)), 11, -1, models.TempMed, false},
		{"very sour finer by three and warmer", shotWith(models.RatingVerySour, 12, models.Ptr(models.TempMed)), 9, -3, models.TempHigh, true},
		{"very sour already high", shotWith(models.RatingVerySour, 12, models.Ptr(models.TempHigh)), 9, -3, models.TempHigh, false},
		{"bitter coarser by one", shotWith(models.RatingBitter, 12, models.Ptr(models.TempLow)), 13, 1, models.TempLow, false},
		{"very bitter coarser by three and cooler", shotWith(models.RatingVeryBitter, 12, models.Ptr(models.TempHigh)), 15, 3, models.TempMed, true},
		{"very bitter already low", shotWith(models.RatingVeryBitter, 12, models.Ptr(models.TempLow)), 15, 3, models.TempLow, false},
		{"missing temperature treated as med", shotWith(models.RatingVerySour, 10, nil), 7, -3, models.TempHigh, true},
		{"clamped at finest", shotWith(models.RatingVerySour, 2, models.Ptr(models.TempMed)), 1, -1, models.TempHigh, true},
		{"clamped at coarsest", shotWith(models.RatingVeryBitter, 24, models.Ptr(models.TempMed)), 25, 1, models.TempLow, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Suggest(tt.shot)
			require.NotNil(t, s)
			assert.Equal(t, tt.wantGrind, s.GrindSize)
			assert.Equal(t, tt.wantDelta, s.GrindDelta)
			require.NotNil(t, s.Temperature)
			assert.Equal(t, tt.wantTemp, *s.Temperature)
			assert.Equal(t, tt.changed, s.TemperatureChanged)
		})
	}
}

func TestSuggest_BalancedIsNil(t *testing.T) {
	for grind := models.MinGrindSize; grind <= models.MaxGrindSize; grind++ {
		for _, temp := range []*models.Temperature{nil, models.Ptr(models.TempLow), models.Ptr(models.TempHigh)} {
			assert.Nil(t, Suggest(shotWith(models.RatingBalanced, grind, temp)))
		}
	}
}

func TestSuggest_NilShot(t *testing.T) {
	assert.Nil(t, Suggest(nil))
}

func TestSuggest_StaysInRange(t *testing.T) {
	for grind := models.MinGrindSize; grind <= models.MaxGrindSize; grind++ {
		for _, r := range models.Ratings {
			s := Suggest(shotWith(r, grind, nil))
			if s == nil {
				continue
			}
			assert.GreaterOrEqual(t, s.GrindSize, models.MinGrindSize)
			assert.LessOrEqual(t, s.GrindSize, models.MaxGrindSize)
			assert.Equal(t, s.GrindSize-grind, s.GrindDelta)
		}
	}
}

func TestSuggest_ColdBrewHasNoTemperature(t *testing.T) {
	shot := shotWith(models.RatingVerySour, 18, models.Ptr(models.TempLow))
	shot.BrewType = models.BrewColdBrew

	s := Suggest(shot)
	require.NotNil(t, s)
	assert.Equal(t, 15, s.GrindSize)
	assert.Nil(t, s.Temperature)
	assert.False(t, s.TemperatureChanged)
}

func TestSuggestion_DeltaLabel(t *testing.T) {
	assert.Equal(t, "(+2)", (&Suggestion{GrindDelta: 2}).DeltaLabel())
	assert.Equal(t, "(-3)", (&Suggestion{GrindDelta: -3}).DeltaLabel())
	assert.Equal(t, "(+0)", (&Suggestion{}).DeltaLabel())
}
