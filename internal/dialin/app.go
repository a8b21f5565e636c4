// Package dialin is the application controller. App owns the in-memory
// collections, feeds them to the calculators in package barista and writes
// every mutation back through database.Collections.
package dialin

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dialin/internal/database"
	"dialin/internal/models"
	"dialin/internal/tracing"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Lookup errors returned by App. All of them wrap ErrNotFound.
var (
	ErrNotFound       = errors.New("not found")
	ErrShotNotFound   = fmt.Errorf("shot %w", ErrNotFound)
	ErrRecipeNotFound = fmt.Errorf("recipe %w", ErrNotFound)
	ErrBeanNotFound   = fmt.Errorf("bean profile %w", ErrNotFound)
)

// DefaultTheme is used until a theme is saved.
const DefaultTheme = "dark"

// App is the single writer of the log. Every exported method is safe for
// concurrent use; calls are serialized on one mutex.
//
// A failed write is returned to the caller but the in-memory change is kept,
// so the next successful save of that collection persists it.
type App struct {
	store *database.Collections
	now   func() time.Time
	newID func() string

	mu            sync.Mutex
	shots         []*models.ShotLog // newest first
	favorites     models.FavoritesMap
	recipes       []*models.SavedRecipe
	beans         []*models.BeanProfile
	pinned        []string
	theme         string
	showShortcuts bool
}

// Option configures an App.
type Option func(*App)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithIDGenerator overrides the UUID generator for new records.
func WithIDGenerator(newID func() string) Option {
	return func(a *App) { a.newID = newID }
}

// New creates an empty App over store. Call Load to read persisted state.
func New(store *database.Collections, opts ...Option) *App {
	a := &App{
		store:         store,
		now:           time.Now,
		newID:         uuid.NewString,
		shots:         []*models.ShotLog{},
		favorites:     models.FavoritesMap{},
		recipes:       []*models.SavedRecipe{},
		beans:         []*models.BeanProfile{},
		pinned:        []string{},
		theme:         DefaultTheme,
		showShortcuts: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load reads every collection from storage, replacing in-memory state, and
// runs the legacy migration.
func (a *App) Load(ctx context.Context) error {
	ctx, span := tracing.AppSpan(ctx, "load")
	defer span.End()

	var (
		shots         []*models.ShotLog
		favorites     models.FavoritesMap
		recipes       []*models.SavedRecipe
		beans         []*models.BeanProfile
		pinned        []string
		theme         string
		showShortcuts bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		shots, err = a.store.LoadShots(gctx)
		return err
	})
	g.Go(func() (err error) {
		favorites, err = a.store.LoadFavorites(gctx)
		return err
	})
	g.Go(func() (err error) {
		recipes, err = a.store.LoadRecipes(gctx)
		return err
	})
	g.Go(func() (err error) {
		beans, err = a.store.LoadBeans(gctx)
		return err
	})
	g.Go(func() (err error) {
		pinned, err = a.store.LoadPinnedRecipes(gctx)
		return err
	})
	g.Go(func() (err error) {
		theme, err = a.store.LoadTheme(gctx)
		return err
	})
	g.Go(func() (err error) {
		showShortcuts, err = a.store.LoadShowShortcuts(gctx, true)
		return err
	})
	if err := g.Wait(); err != nil {
		tracing.EndWithError(span, err)
		return fmt.Errorf("failed to load collections: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.shots = shots
	sortNewestFirst(a.shots)
	a.favorites = favorites
	a.recipes = recipes
	a.beans = beans
	a.pinned = pinned
	a.theme = DefaultTheme
	if isTheme(theme) {
		a.theme = theme
	}
	a.showShortcuts = showShortcuts

	if err := a.migrateLocked(ctx); err != nil {
		tracing.EndWithError(span, err)
		return err
	}

	log.Info().
		Int("shots", len(a.shots)).
		Int("favorites", len(a.favorites)).
		Int("recipes", len(a.recipes)).
		Int("beans", len(a.beans)).
		Msg("Loaded dial-in log")
	return nil
}

// migrateLocked rewrites records from older schema revisions and saves the
// affected collections once.
func (a *App) migrateLocked(ctx context.Context) error {
	shots := MigrateShots(a.shots)
	recipes := MigrateRecipes(a.recipes)
	if shots == 0 && recipes == 0 {
		return nil
	}

	log.Info().Int("shots", shots).Int("recipes", recipes).Msg("Migrated legacy basket sizes")

	if shots > 0 {
		if err := a.store.SaveShots(ctx, a.shots); err != nil {
			return err
		}
	}
	if recipes > 0 {
		if err := a.store.SaveRecipes(ctx, a.recipes); err != nil {
			return err
		}
	}
	return nil
}

// MigrateShots rewrites the retired Single basket to Double in place and
// returns how many shots changed. Ratings from the old 3-point scale are
// already members of the 5-point scale and need no rewrite.
func MigrateShots(shots []*models.ShotLog) int {
	n := 0
	for _, s := range shots {
		if s.Basket == models.BasketLegacySingle {
			s.Basket = models.BasketDouble
			n++
		}
	}
	return n
}

// MigrateRecipes is MigrateShots for saved recipes.
func MigrateRecipes(recipes []*models.SavedRecipe) int {
	n := 0
	for _, r := range recipes {
		if r.Basket == models.BasketLegacySingle {
			r.Basket = models.BasketDouble
			n++
		}
	}
	return n
}

// Counts for the metrics collector.

func (a *App) ShotCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.shots)
}

func (a *App) FavoriteCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.favorites)
}

func (a *App) RecipeCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.recipes)
}

func (a *App) ActiveBeanCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, b := range a.beans {
		if b.IsActive {
			n++
		}
	}
	return n
}
