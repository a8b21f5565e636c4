package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"dialin/internal/models"
)

// CSVHeader is the first row of a CSV export.
var CSVHeader = []string{
	"Date", "Bean", "Brew Type", "Basket", "Grind", "Temperature",
	"Strength", "Rating", "Milk Type", "Milk Style", "Notes",
}

// WriteCSV writes one row per shot, in the order given.
func WriteCSV(w io.Writer, shots []*models.ShotLog) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, s := range shots {
		if err := cw.Write(csvRow(s)); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", s.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func csvRow(s *models.ShotLog) []string {
	var temp, milkType, milkStyle string
	if t := s.EffectiveTemperature(); t != nil {
		temp = string(*t)
	}
	if s.Milk != nil {
		milkType = string(s.Milk.Type)
		milkStyle = string(s.Milk.Style)
	}
	return []string{
		s.Timestamp.UTC().Format(time.RFC3339),
		s.BeanName,
		string(s.BrewType),
		string(s.Basket),
		strconv.Itoa(s.GrindSize),
		temp,
		strconv.Itoa(int(s.Strength)),
		string(s.Rating),
		milkType,
		milkStyle,
		s.Notes,
	}
}
