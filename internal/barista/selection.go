package barista

import (
	"slices"
	"strings"

	"dialin/internal/models"
)

// FavoriteShot returns the target shot for bean, or nil when the bean has no
// favorite or the favorite points at a shot that no longer exists.
func FavoriteShot(shots []*models.ShotLog, favorites models.FavoritesMap, bean string) *models.ShotLog {
	id, ok := favorites[models.FavoriteKey(bean)]
	if !ok {
		return nil
	}
	for _, s := range shots {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// IsFavorite reports whether shot is the favorite for its own bean.
func IsFavorite(shot *models.ShotLog, favorites models.FavoritesMap) bool {
	return favorites[models.FavoriteKey(shot.BeanName)] == shot.ID
}

// RelevantShot picks the shot tips and suggestions are based on: the
// bean's favorite if there is one, else its most recent shot.
func RelevantShot(shots []*models.ShotLog, favorites models.FavoritesMap, bean string) *models.ShotLog {
	if strings.TrimSpace(bean) == "" {
		return nil
	}
	if fav := FavoriteShot(shots, favorites, bean); fav != nil {
		return fav
	}
	var latest *models.ShotLog
	for _, s := range shots {
		if !s.MatchesBean(bean) {
			continue
		}
		if latest == nil || s.Timestamp.After(latest.Timestamp) {
			latest = s
		}
	}
	return latest
}

// SortHistory returns shots with each bean's favorite first, then newest
// first within each group. The input is not modified.
func SortHistory(shots []*models.ShotLog, favorites models.FavoritesMap) []*models.ShotLog {
	sorted := slices.Clone(shots)
	slices.SortStableFunc(sorted, func(a, b *models.ShotLog) int {
		af, bf := IsFavorite(a, favorites), IsFavorite(b, favorites)
		if af != bf {
			if af {
				return -1
			}
			return 1
		}
		return b.Timestamp.Compare(a.Timestamp)
	})
	return sorted
}

// FilterShots keeps shots whose bean name or notes contain query (case
// insensitive) and, when rating is set, that have that rating.
func FilterShots(shots []*models.ShotLog, query string, rating *models.Rating) []*models.ShotLog {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]*models.ShotLog, 0, len(shots))
	for _, s := range shots {
		if rating != nil && s.Rating != *rating {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(s.BeanName), q) &&
			!strings.Contains(strings.ToLower(s.Notes), q) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// UniqueBeans returns the distinct bean names in the log, sorted.
func UniqueBeans(shots []*models.ShotLog) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, s := range shots {
		if _, ok := seen[s.BeanName]; ok {
			continue
		}
		seen[s.BeanName] = struct{}{}
		names = append(names, s.BeanName)
	}
	slices.Sort(names)
	return names
}

// Autocomplete returns bean name candidates for input: active bean profile
// names plus every bean in the shot history, deduplicated ignoring case,
// sorted alphabetically and filtered by case-insensitive substring.
func Autocomplete(beans []*models.BeanProfile, shots []*models.ShotLog, input string) []string {
	seen := make(map[string]struct{})
	candidates := []string{}
	add := func(name string) {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		candidates = append(candidates, name)
	}

	for _, b := range beans {
		if b.IsActive {
			add(b.Name)
		}
	}
	for _, s := range shots {
		add(s.BeanName)
	}

	slices.SortFunc(candidates, func(a, b string) int {
		if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	q := strings.ToLower(strings.TrimSpace(input))
	if q == "" {
		return candidates
	}
	filtered := candidates[:0]
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c), q) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// SortRecipes returns pinned recipes first, then newest first.
func SortRecipes(recipes []*models.SavedRecipe, pinned []string) []*models.SavedRecipe {
	sorted := slices.Clone(recipes)
	slices.SortStableFunc(sorted, func(a, b *models.SavedRecipe) int {
		ap, bp := slices.Contains(pinned, a.ID), slices.Contains(pinned, b.ID)
		if ap != bp {
			if ap {
				return -1
			}
			return 1
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return sorted
}
