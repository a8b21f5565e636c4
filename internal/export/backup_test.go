package export

import (
	"bytes"
	"testing"
	"time"

	"dialin/internal/models"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureShots() []*models.ShotLog {
	ts := time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)
	return []*models.ShotLog{
		{
			ID:          "shot-1",
			BeanName:    "Kenya AA",
			BrewType:    models.BrewEspresso,
			Basket:      models.BasketDouble,
			GrindSize:   11,
			Temperature: models.Ptr(models.TempHigh),
			Strength:    2,
			Rating:      models.RatingSour,
			Notes:       `he said "too tart", retry`,
			Timestamp:   ts,
		},
		{
			ID:        "shot-2",
			BeanName:  "Brazil",
			BrewType:  models.BrewColdBrew,
			Basket:    models.BasketLuxe,
			GrindSize: 20,
			Strength:  3,
			Rating:    models.RatingBalanced,
			Milk:      &models.MilkSettings{Type: models.MilkPlant, Style: models.MilkColdFoam},
			Timestamp: ts.Add(time.Hour),
		},
	}
}

func TestBackup_RoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	recipes := []*models.SavedRecipe{{ID: "r1", Name: "Morning", BeanName: "Kenya AA", BrewType: models.BrewEspresso, Basket: models.BasketDouble, GrindSize: 10, Strength: 2, CreatedAt: now}}
	beans := []*models.BeanProfile{{ID: "b1", Name: "Kenya AA", RoastDate: models.Ptr("2025-02-20"), IsActive: true, CreatedAt: now}}
	favorites := models.FavoritesMap{"kenya aa": "shot-1"}

	data, err := NewBackup(fixtureShots(), favorites, recipes, beans, now).Encode()
	require.NoError(t, err)

	b, err := DecodeBackup(data)
	require.NoError(t, err)
	assert.Equal(t, BackupVersion, b.Version)
	assert.True(t, now.Equal(b.ExportedAt))
	assert.Equal(t, fixtureShots(), b.Shots)
	assert.Equal(t, favorites, b.Favorites)
	assert.Equal(t, recipes, b.Recipes)
	assert.Equal(t, beans, b.Beans)
}

func TestNewBackup_NilCollectionsAreEmpty(t *testing.T) {
	data, err := NewBackup(nil, nil, nil, nil, time.Now()).Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"shots": []`)
	assert.Contains(t, string(data), `"favorites": {}`)
}

func TestDecodeBackup_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty object", `{}`, ErrMissingShots},
		{"shots not an array", `{"shots":{"a":1}}`, ErrMissingShots},
		{"shots null", `{"shots":null}`, ErrMissingShots},
		{"not json", `shots,beans`, ErrInvalidBackup},
		{"json array", `[1,2,3]`, ErrInvalidBackup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := DecodeBackup([]byte(tt.input))
			assert.Nil(t, b)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecodeBackup_MissingShotsMessage(t *testing.T) {
	_, err := DecodeBackup([]byte(`{}`))
	require.Error(t, err)
	assert.Equal(t, "invalid backup file: missing shots array", err.Error())
}

func TestDecodeBackup_OptionalCollections(t *testing.T) {
	b, err := DecodeBackup([]byte(`{"shots":[],"recipes":"nope","beans":[]}`))
	require.NoError(t, err)
	assert.NotNil(t, b.Shots)
	assert.Empty(t, b.Shots)
	assert.Nil(t, b.Favorites, "absent favorites are left alone")
	assert.Nil(t, b.Recipes, "wrong kind is ignored")
	assert.NotNil(t, b.Beans)
}

func TestDecodeBackup_DropsBadRecords(t *testing.T) {
	input := `{"shots":[
		{"id":"ok","beanName":"Kenya","brewType":"Espresso","basket":"Double","grindSize":10,"strength":2,"rating":"Sour","timestamp":"2025-03-01T08:30:00Z"},
		{"id":"bad","timestamp":"not a date"}
	]}`
	b, err := DecodeBackup([]byte(input))
	require.NoError(t, err)
	require.Len(t, b.Shots, 1)
	assert.Equal(t, "ok", b.Shots[0].ID)
	assert.Equal(t, time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC), b.Shots[0].Timestamp.UTC())
}

func TestDecodeBackup_MalformedMetadataIsLogged(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	b, err := DecodeBackup([]byte(`{"version":"one","exportedAt":"last tuesday","shots":[]}`))
	require.NoError(t, err, "bad metadata does not reject the file")
	assert.Zero(t, b.Version)
	assert.True(t, b.ExportedAt.IsZero())

	out := buf.String()
	assert.Contains(t, out, "Ignoring malformed backup metadata")
	assert.Contains(t, out, `"field":"version"`)
	assert.Contains(t, out, `"field":"exportedAt"`)
}

func TestFilenames(t *testing.T) {
	now := time.Date(2025, 7, 4, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "espresso-backup-2025-07-04.json", BackupFilename(now))
	assert.Equal(t, "espresso-shots-2025-07-04.csv", CSVFilename(now))
}
