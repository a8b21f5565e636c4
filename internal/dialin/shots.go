package dialin

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"dialin/internal/barista"
	"dialin/internal/metrics"
	"dialin/internal/models"
	"dialin/internal/tracing"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// LogShot validates req and records a new shot at the current time.
func (a *App) LogShot(ctx context.Context, req *models.CreateShotRequest) (*models.ShotLog, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracing.AppSpan(ctx, "log_shot", attribute.String("shot.rating", string(req.Rating)))
	defer span.End()

	a.mu.Lock()
	defer a.mu.Unlock()

	shot := req.ToShot(a.newID(), a.now())
	a.shots = slices.Insert(a.shots, 0, shot)
	metrics.ShotsLoggedTotal.WithLabelValues(string(shot.Rating)).Inc()

	log.Info().
		Str("id", shot.ID).
		Str("bean", shot.BeanName).
		Int("grind", shot.GrindSize).
		Str("rating", string(shot.Rating)).
		Msg("Logged shot")

	if err := a.store.SaveShots(ctx, a.shots); err != nil {
		tracing.EndWithError(span, err)
		return shot, err
	}
	return shot, nil
}

// DeleteShot removes a shot. A favorite pointing at it is cleared as well.
func (a *App) DeleteShot(ctx context.Context, id string) error {
	ctx, span := tracing.AppSpan(ctx, "delete_shot", attribute.String("shot.id", id))
	defer span.End()

	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.shotIndexLocked(id)
	if i < 0 {
		return ErrShotNotFound
	}
	shot := a.shots[i]
	a.shots = slices.Delete(a.shots, i, i+1)

	if err := a.store.SaveShots(ctx, a.shots); err != nil {
		tracing.EndWithError(span, err)
		return err
	}

	key := models.FavoriteKey(shot.BeanName)
	if a.favorites[key] == id {
		delete(a.favorites, key)
		if err := a.store.SaveFavorites(ctx, a.favorites); err != nil {
			tracing.EndWithError(span, err)
			return err
		}
	}

	log.Info().Str("id", id).Str("bean", shot.BeanName).Msg("Deleted shot")
	return nil
}

// DuplicateShot returns a shot form pre-filled from an existing shot.
// Nothing is stored until the form is submitted through LogShot.
func (a *App) DuplicateShot(id string) (*models.CreateShotRequest, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.shotIndexLocked(id)
	if i < 0 {
		return nil, ErrShotNotFound
	}
	req := models.ShotRequestFrom(a.shots[i])
	return &req, nil
}

// Shot returns the shot with id.
func (a *App) Shot(id string) (*models.ShotLog, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.shotIndexLocked(id)
	if i < 0 {
		return nil, ErrShotNotFound
	}
	return a.shots[i], nil
}

// History returns all shots in display order: favorites first, then newest.
func (a *App) History() []*models.ShotLog {
	a.mu.Lock()
	defer a.mu.Unlock()
	return barista.SortHistory(a.shots, a.favorites)
}

// Search filters the history by text and optional rating, keeping the
// display order.
func (a *App) Search(query string, rating *models.Rating) []*models.ShotLog {
	a.mu.Lock()
	defer a.mu.Unlock()
	return barista.FilterShots(barista.SortHistory(a.shots, a.favorites), query, rating)
}

// ShotBeans returns the distinct bean names in the shot log.
func (a *App) ShotBeans() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return barista.UniqueBeans(a.shots)
}

// ToggleFavorite stars or unstars a shot as the target for its bean. Starring
// replaces any earlier favorite for the same bean. It returns whether the
// shot is a favorite afterwards.
func (a *App) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	ctx, span := tracing.AppSpan(ctx, "toggle_favorite", attribute.String("shot.id", id))
	defer span.End()

	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.shotIndexLocked(id)
	if i < 0 {
		return false, ErrShotNotFound
	}
	shot := a.shots[i]
	key := models.FavoriteKey(shot.BeanName)

	var favorite bool
	if a.favorites[key] == id {
		delete(a.favorites, key)
		metrics.FavoritesToggledTotal.WithLabelValues("remove").Inc()
	} else {
		if prev, ok := a.favorites[key]; ok {
			log.Debug().Str("bean", key).Str("previous", prev).Msg("Replacing favorite")
		}
		a.favorites[key] = id
		favorite = true
		metrics.FavoritesToggledTotal.WithLabelValues("set").Inc()
	}

	if err := a.store.SaveFavorites(ctx, a.favorites); err != nil {
		tracing.EndWithError(span, err)
		return favorite, err
	}
	return favorite, nil
}

// IsFavorite reports whether the shot with id is its bean's favorite.
func (a *App) IsFavorite(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.shotIndexLocked(id)
	if i < 0 {
		return false
	}
	return barista.IsFavorite(a.shots[i], a.favorites)
}

// FavoriteFor returns the favorite shot for bean, or nil.
func (a *App) FavoriteFor(bean string) *models.ShotLog {
	a.mu.Lock()
	defer a.mu.Unlock()
	return barista.FavoriteShot(a.shots, a.favorites, bean)
}

// Favorites returns a copy of the favorites map.
func (a *App) Favorites() models.FavoritesMap {
	a.mu.Lock()
	defer a.mu.Unlock()
	return maps.Clone(a.favorites)
}

// Insight is what the side panel shows for the bean being dialed in.
type Insight struct {
	Shot       *models.ShotLog     `json:"shot"`
	IsFavorite bool                `json:"isFavorite"`
	Tip        barista.TipResult   `json:"tip"`
	Suggestion *barista.Suggestion `json:"suggestion,omitempty"`
}

// Insight returns the tip and suggested settings for bean, based on its
// favorite or latest shot. It returns nil when the bean has no shots.
func (a *App) Insight(bean string) (*Insight, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	shot := barista.RelevantShot(a.shots, a.favorites, bean)
	if shot == nil {
		return nil, nil
	}
	tip, err := barista.Tip(shot.Rating)
	if err != nil {
		return nil, fmt.Errorf("shot %s: %w", shot.ID, err)
	}
	return &Insight{
		Shot:       shot,
		IsFavorite: barista.IsFavorite(shot, a.favorites),
		Tip:        tip,
		Suggestion: barista.Suggest(shot),
	}, nil
}

// Stats summarizes the shot log as of now.
func (a *App) Stats() barista.Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return barista.ComputeStats(a.shots, a.now())
}

// Caffeine estimates today's and this week's caffeine intake.
func (a *App) Caffeine() barista.CaffeineSummary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return barista.Caffeine(a.shots, a.now())
}

// Autocomplete returns bean name candidates for input.
func (a *App) Autocomplete(input string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return barista.Autocomplete(a.beans, a.shots, input)
}

func (a *App) shotIndexLocked(id string) int {
	return slices.IndexFunc(a.shots, func(s *models.ShotLog) bool { return s.ID == id })
}

func sortNewestFirst(shots []*models.ShotLog) {
	slices.SortStableFunc(shots, func(x, y *models.ShotLog) int {
		return y.Timestamp.Compare(x.Timestamp)
	})
}
