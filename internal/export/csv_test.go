package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"dialin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, fixtureShots()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, CSVHeader, rows[0])
	for _, row := range rows {
		assert.Len(t, row, len(CSVHeader))
	}

	assert.Equal(t, []string{
		"2025-03-01T08:30:00Z", "Kenya AA", "Espresso", "Double", "11", "High",
		"2", "Sour", "", "", `he said "too tart", retry`,
	}, rows[1])

	// cold brew has no temperature column value
	assert.Equal(t, "", rows[2][5])
	assert.Equal(t, "Plant", rows[2][8])
	assert.Equal(t, "Cold Foam", rows[2][9])
}

func TestWriteCSV_QuotesAreDoubled(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, fixtureShots()[:1]))
	assert.Contains(t, buf.String(), `"he said ""too tart"", retry"`)
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []*models.ShotLog{}))
	assert.Equal(t, "Date,Bean,Brew Type,Basket,Grind,Temperature,Strength,Rating,Milk Type,Milk Style,Notes\n", buf.String())
}
