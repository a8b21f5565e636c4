// Package export reads and writes the portable backup and CSV formats.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dialin/internal/database"
	"dialin/internal/metrics"
	"dialin/internal/models"

	"github.com/rs/zerolog/log"
)

// BackupVersion is written into every backup file.
const BackupVersion = 1

var (
	ErrInvalidBackup = errors.New("invalid backup file")
	ErrMissingShots  = errors.New("invalid backup file: missing shots array")
)

// Backup is a full snapshot of the four collections.
//
// After DecodeBackup a nil Favorites, Recipes or Beans means the file did not
// carry that collection and the current one should be kept.
type Backup struct {
	Version    int                   `json:"version"`
	ExportedAt time.Time             `json:"exportedAt"`
	Shots      []*models.ShotLog     `json:"shots"`
	Favorites  models.FavoritesMap   `json:"favorites"`
	Recipes    []*models.SavedRecipe `json:"recipes"`
	Beans      []*models.BeanProfile `json:"beans"`
}

// NewBackup assembles a snapshot. Nil collections are written as empty.
func NewBackup(shots []*models.ShotLog, favorites models.FavoritesMap, recipes []*models.SavedRecipe, beans []*models.BeanProfile, now time.Time) *Backup {
	b := &Backup{
		Version:    BackupVersion,
		ExportedAt: now,
		Shots:      shots,
		Favorites:  favorites,
		Recipes:    recipes,
		Beans:      beans,
	}
	if b.Shots == nil {
		b.Shots = []*models.ShotLog{}
	}
	if b.Favorites == nil {
		b.Favorites = models.FavoritesMap{}
	}
	if b.Recipes == nil {
		b.Recipes = []*models.SavedRecipe{}
	}
	if b.Beans == nil {
		b.Beans = []*models.BeanProfile{}
	}
	return b
}

// Encode renders the backup as indented JSON.
func (b *Backup) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return data, nil
}

// DecodeBackup parses and validates a backup file. The shots array is
// required. The other collections are taken only when present with the
// right JSON kind. Records are decoded one at a time the same way stored
// collections are, so a single bad record is dropped rather than failing
// the import.
func DecodeBackup(data []byte) (*Backup, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	shots, ok := raw["shots"]
	if !ok || !isKind(shots, '[') {
		return nil, ErrMissingShots
	}

	b := &Backup{
		Shots: database.DecodeList[models.ShotLog]("backup.shots", shots),
	}

	if v, ok := raw["version"]; ok {
		var version int
		if err := json.Unmarshal(v, &version); err != nil {
			warnMetadata("version", err)
		} else {
			b.Version = version
		}
	}
	if v, ok := raw["exportedAt"]; ok {
		var exportedAt time.Time
		if err := json.Unmarshal(v, &exportedAt); err != nil {
			warnMetadata("exportedAt", err)
		} else {
			b.ExportedAt = exportedAt
		}
	}
	if v, ok := raw["favorites"]; ok && isKind(v, '{') {
		b.Favorites = database.DecodeFavorites("backup.favorites", v)
	}
	if v, ok := raw["recipes"]; ok && isKind(v, '[') {
		b.Recipes = database.DecodeList[models.SavedRecipe]("backup.recipes", v)
	}
	if v, ok := raw["beans"]; ok && isKind(v, '[') {
		b.Beans = database.DecodeList[models.BeanProfile]("backup.beans", v)
	}

	return b, nil
}

// warnMetadata records a backup header field that did not parse. The
// collections are still imported.
func warnMetadata(field string, err error) {
	log.Warn().Err(err).Str("field", field).Msg("Ignoring malformed backup metadata")
	metrics.StorageDroppedRecordsTotal.WithLabelValues("backup." + field).Inc()
}

// isKind reports whether the JSON value starts with the given delimiter.
func isKind(v json.RawMessage, delim byte) bool {
	v = bytes.TrimSpace(v)
	return len(v) > 0 && v[0] == delim
}

// BackupFilename is the download name for a backup taken at now.
func BackupFilename(now time.Time) string {
	return "espresso-backup-" + now.Format("2006-01-02") + ".json"
}

// CSVFilename is the download name for a CSV export taken at now.
func CSVFilename(now time.Time) string {
	return "espresso-shots-" + now.Format("2006-01-02") + ".csv"
}
