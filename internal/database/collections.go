package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dialin/internal/metrics"
	"dialin/internal/models"
	"dialin/internal/tracing"

	"github.com/rs/zerolog/log"
)

// Storage keys. Each collection is stored whole under its own key.
const (
	KeyShots         = "espresso-shots"
	KeyFavorites     = "espresso-favorites"
	KeyRecipes       = "espresso-recipes"
	KeyBeans         = "espresso-beans"
	KeyTheme         = "espresso-theme"
	KeyPinnedRecipes = "espresso-pinned-recipes"
	KeyShowShortcuts = "espresso-show-shortcuts"
)

// Collections is the persistence layer: one load/save pair per collection.
//
// Loads never fail because of bad data. A missing key yields an empty
// collection, an unparseable value is logged and yields an empty collection,
// and a single unparseable record is logged and skipped. Only a failure of
// the underlying Store is returned as an error.
//
// Saves serialize the full collection and overwrite the key.
type Collections struct {
	store Store
}

// NewCollections creates a persistence layer over store.
func NewCollections(store Store) *Collections {
	return &Collections{store: store}
}

// Store returns the underlying key/value store.
func (c *Collections) Store() Store {
	return c.store
}

func (c *Collections) read(ctx context.Context, key string) ([]byte, error) {
	ctx, span := tracing.StorageSpan(ctx, "get", key)
	defer span.End()

	data, err := c.store.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		metrics.StorageOpsTotal.WithLabelValues("get", key, "miss").Inc()
		return nil, nil
	case err != nil:
		metrics.StorageOpsTotal.WithLabelValues("get", key, "error").Inc()
		tracing.EndWithError(span, err)
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	metrics.StorageOpsTotal.WithLabelValues("get", key, "ok").Inc()
	return data, nil
}

func (c *Collections) write(ctx context.Context, key string, v any) error {
	ctx, span := tracing.StorageSpan(ctx, "put", key)
	defer span.End()

	data, err := json.Marshal(v)
	if err != nil {
		tracing.EndWithError(span, err)
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	if err := c.store.Put(ctx, key, data); err != nil {
		metrics.StorageOpsTotal.WithLabelValues("put", key, "error").Inc()
		tracing.EndWithError(span, err)
		return fmt.Errorf("failed to save %s: %w", key, err)
	}

	metrics.StorageOpsTotal.WithLabelValues("put", key, "ok").Inc()
	log.Debug().Str("key", key).Int("bytes", len(data)).Msg("Saved collection")
	return nil
}

// loadList decodes a JSON array one element at a time so that a bad record
// only costs that record.
func loadList[T any](ctx context.Context, c *Collections, key string) ([]*T, error) {
	data, err := c.read(ctx, key)
	if err != nil {
		return []*T{}, err
	}
	if data == nil {
		return []*T{}, nil
	}
	return DecodeList[T](key, data), nil
}

// DecodeList parses a JSON array of records, skipping elements that do not
// parse. A value that is not a JSON array yields an empty list. Both cases
// are logged under source.
func DecodeList[T any](source string, data []byte) []*T {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warn().Err(err).Str("key", source).Msg("Failed to parse stored collection, starting empty")
		metrics.StorageDroppedRecordsTotal.WithLabelValues(source).Inc()
		return []*T{}
	}

	out := make([]*T, 0, len(raw))
	for i, elem := range raw {
		if string(elem) == "null" {
			continue
		}
		item := new(T)
		if err := json.Unmarshal(elem, item); err != nil {
			log.Warn().Err(err).Str("key", source).Int("index", i).Msg("Skipping unparseable record")
			metrics.StorageDroppedRecordsTotal.WithLabelValues(source).Inc()
			continue
		}
		out = append(out, item)
	}
	return out
}

func saveList[T any](ctx context.Context, c *Collections, key string, items []*T) error {
	if items == nil {
		items = []*T{}
	}
	return c.write(ctx, key, items)
}

// LoadShots reads the shot log.
func (c *Collections) LoadShots(ctx context.Context) ([]*models.ShotLog, error) {
	return loadList[models.ShotLog](ctx, c, KeyShots)
}

// SaveShots overwrites the shot log.
func (c *Collections) SaveShots(ctx context.Context, shots []*models.ShotLog) error {
	return saveList(ctx, c, KeyShots, shots)
}

// LoadRecipes reads the saved recipes.
func (c *Collections) LoadRecipes(ctx context.Context) ([]*models.SavedRecipe, error) {
	return loadList[models.SavedRecipe](ctx, c, KeyRecipes)
}

// SaveRecipes overwrites the saved recipes.
func (c *Collections) SaveRecipes(ctx context.Context, recipes []*models.SavedRecipe) error {
	return saveList(ctx, c, KeyRecipes, recipes)
}

// LoadBeans reads the bean profiles.
func (c *Collections) LoadBeans(ctx context.Context) ([]*models.BeanProfile, error) {
	return loadList[models.BeanProfile](ctx, c, KeyBeans)
}

// SaveBeans overwrites the bean profiles.
func (c *Collections) SaveBeans(ctx context.Context, beans []*models.BeanProfile) error {
	return saveList(ctx, c, KeyBeans, beans)
}

// LoadFavorites reads the bean → shot id map.
func (c *Collections) LoadFavorites(ctx context.Context) (models.FavoritesMap, error) {
	data, err := c.read(ctx, KeyFavorites)
	if err != nil {
		return models.FavoritesMap{}, err
	}
	if data == nil {
		return models.FavoritesMap{}, nil
	}
	return DecodeFavorites(KeyFavorites, data), nil
}

// DecodeFavorites parses a favorites object. Non-string values are skipped
// and keys are lowercased.
func DecodeFavorites(source string, data []byte) models.FavoritesMap {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warn().Err(err).Str("key", source).Msg("Failed to parse stored favorites, starting empty")
		metrics.StorageDroppedRecordsTotal.WithLabelValues(source).Inc()
		return models.FavoritesMap{}
	}

	favorites := make(models.FavoritesMap, len(raw))
	for bean, v := range raw {
		var id string
		if err := json.Unmarshal(v, &id); err != nil || id == "" {
			log.Warn().Str("key", source).Str("bean", bean).Msg("Skipping malformed favorite")
			metrics.StorageDroppedRecordsTotal.WithLabelValues(source).Inc()
			continue
		}
		favorites[models.FavoriteKey(bean)] = id
	}
	return favorites
}

// SaveFavorites overwrites the favorites map.
func (c *Collections) SaveFavorites(ctx context.Context, favorites models.FavoritesMap) error {
	if favorites == nil {
		favorites = models.FavoritesMap{}
	}
	return c.write(ctx, KeyFavorites, favorites)
}

// LoadTheme returns the saved theme name, or "" when none was saved.
func (c *Collections) LoadTheme(ctx context.Context) (string, error) {
	data, err := c.read(ctx, KeyTheme)
	if err != nil || data == nil {
		return "", err
	}
	var theme string
	if err := json.Unmarshal(data, &theme); err != nil {
		// Older clients stored the bare string
		return string(data), nil
	}
	return theme, nil
}

// SaveTheme stores the theme name.
func (c *Collections) SaveTheme(ctx context.Context, theme string) error {
	return c.write(ctx, KeyTheme, theme)
}

// LoadPinnedRecipes returns the ids of pinned recipes.
func (c *Collections) LoadPinnedRecipes(ctx context.Context) ([]string, error) {
	data, err := c.read(ctx, KeyPinnedRecipes)
	if err != nil || data == nil {
		return []string{}, err
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		log.Warn().Err(err).Str("key", KeyPinnedRecipes).Msg("Failed to parse pinned recipes, starting empty")
		return []string{}, nil
	}
	return ids, nil
}

// SavePinnedRecipes stores the ids of pinned recipes.
func (c *Collections) SavePinnedRecipes(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	return c.write(ctx, KeyPinnedRecipes, ids)
}

// LoadShowShortcuts returns the shortcut panel visibility, or def when unset.
func (c *Collections) LoadShowShortcuts(ctx context.Context, def bool) (bool, error) {
	data, err := c.read(ctx, KeyShowShortcuts)
	if err != nil || data == nil {
		return def, err
	}
	var show bool
	if err := json.Unmarshal(data, &show); err != nil {
		log.Warn().Err(err).Str("key", KeyShowShortcuts).Msg("Failed to parse shortcut visibility")
		return def, nil
	}
	return show, nil
}

// SaveShowShortcuts stores the shortcut panel visibility.
func (c *Collections) SaveShowShortcuts(ctx context.Context, show bool) error {
	return c.write(ctx, KeyShowShortcuts, show)
}
