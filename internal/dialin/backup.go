package dialin

import (
	"context"
	"io"
	"maps"
	"slices"

	"dialin/internal/barista"
	"dialin/internal/export"
	"dialin/internal/metrics"
	"dialin/internal/tracing"

	"github.com/rs/zerolog/log"
)

// ExportBackup snapshots all four collections.
func (a *App) ExportBackup() *export.Backup {
	a.mu.Lock()
	defer a.mu.Unlock()
	return export.NewBackup(slices.Clone(a.shots), maps.Clone(a.favorites), slices.Clone(a.recipes), slices.Clone(a.beans), a.now())
}

// ImportBackup replaces the collections carried by data. The file is
// validated before anything changes: on error the current state is left
// untouched.
func (a *App) ImportBackup(ctx context.Context, data []byte) (*export.Backup, error) {
	ctx, span := tracing.AppSpan(ctx, "import_backup")
	defer span.End()

	b, err := export.DecodeBackup(data)
	if err != nil {
		metrics.ImportsTotal.WithLabelValues("rejected").Inc()
		log.Warn().Err(err).Msg("Rejected backup import")
		tracing.EndWithError(span, err)
		return nil, err
	}

	MigrateShots(b.Shots)
	MigrateRecipes(b.Recipes)
	sortNewestFirst(b.Shots)

	a.mu.Lock()
	defer a.mu.Unlock()

	// The returned backup must not alias live state
	a.shots = slices.Clone(b.Shots)
	if b.Favorites != nil {
		a.favorites = maps.Clone(b.Favorites)
	}
	if b.Recipes != nil {
		a.recipes = slices.Clone(b.Recipes)
	}
	if b.Beans != nil {
		a.beans = slices.Clone(b.Beans)
	}

	log.Info().
		Int("version", b.Version).
		Int("shots", len(b.Shots)).
		Int("favorites", len(b.Favorites)).
		Int("recipes", len(b.Recipes)).
		Int("beans", len(b.Beans)).
		Msg("Imported backup")

	if err := a.saveAllLocked(ctx, b); err != nil {
		metrics.ImportsTotal.WithLabelValues("save_failed").Inc()
		tracing.EndWithError(span, err)
		return b, err
	}
	metrics.ImportsTotal.WithLabelValues("ok").Inc()
	return b, nil
}

func (a *App) saveAllLocked(ctx context.Context, b *export.Backup) error {
	if err := a.store.SaveShots(ctx, a.shots); err != nil {
		return err
	}
	if b.Favorites != nil {
		if err := a.store.SaveFavorites(ctx, a.favorites); err != nil {
			return err
		}
	}
	if b.Recipes != nil {
		if err := a.store.SaveRecipes(ctx, a.recipes); err != nil {
			return err
		}
	}
	if b.Beans != nil {
		if err := a.store.SaveBeans(ctx, a.beans); err != nil {
			return err
		}
	}
	return nil
}

// ExportCSV writes the shot log as CSV in history order.
func (a *App) ExportCSV(w io.Writer) error {
	a.mu.Lock()
	shots := barista.SortHistory(a.shots, a.favorites)
	a.mu.Unlock()
	return export.WriteCSV(w, shots)
}
