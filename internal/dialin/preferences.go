package dialin

import (
	"context"
	"errors"
	"slices"

	"dialin/internal/models"
)

var ErrInvalidTheme = errors.New("invalid theme")

// Preferences are the UI settings kept alongside the log.
type Preferences struct {
	Theme         string `json:"theme"`
	ShowShortcuts bool   `json:"showShortcuts"`
}

func isTheme(theme string) bool {
	return slices.Contains(models.Themes, theme)
}

// Preferences returns the current settings.
func (a *App) Preferences() Preferences {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Preferences{Theme: a.theme, ShowShortcuts: a.showShortcuts}
}

// SetTheme changes and persists the theme.
func (a *App) SetTheme(ctx context.Context, theme string) error {
	if !isTheme(theme) {
		return ErrInvalidTheme
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.theme = theme
	return a.store.SaveTheme(ctx, theme)
}

// SetShowShortcuts changes and persists the shortcut panel visibility.
func (a *App) SetShowShortcuts(ctx context.Context, show bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.showShortcuts = show
	return a.store.SaveShowShortcuts(ctx, show)
}
