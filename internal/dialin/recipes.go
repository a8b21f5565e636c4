package dialin

import (
	"context"
	"slices"

	"dialin/internal/barista"
	"dialin/internal/models"
	"dialin/internal/tracing"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// SaveRecipe stores a new recipe built from the current form state.
func (a *App) SaveRecipe(ctx context.Context, req *models.RecipeRequest) (*models.SavedRecipe, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracing.AppSpan(ctx, "save_recipe")
	defer span.End()

	a.mu.Lock()
	defer a.mu.Unlock()

	recipe := &models.SavedRecipe{ID: a.newID(), CreatedAt: a.now()}
	req.Apply(recipe)
	a.recipes = append(a.recipes, recipe)

	log.Info().Str("id", recipe.ID).Str("name", recipe.Name).Msg("Saved recipe")

	if err := a.store.SaveRecipes(ctx, a.recipes); err != nil {
		tracing.EndWithError(span, err)
		return recipe, err
	}
	return recipe, nil
}

// UpdateRecipe replaces a recipe's settings, keeping its id and creation
// time. The stored record is swapped for an edited copy so recipes already
// handed to readers never change.
func (a *App) UpdateRecipe(ctx context.Context, id string, req *models.RecipeRequest) (*models.SavedRecipe, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracing.AppSpan(ctx, "update_recipe", attribute.String("recipe.id", id))
	defer span.End()

	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.recipeIndexLocked(id)
	if i < 0 {
		return nil, ErrRecipeNotFound
	}
	updated := *a.recipes[i]
	req.Apply(&updated)
	recipe := &updated
	a.recipes[i] = recipe

	if err := a.store.SaveRecipes(ctx, a.recipes); err != nil {
		tracing.EndWithError(span, err)
		return recipe, err
	}
	return recipe, nil
}

// DeleteRecipe removes a recipe and unpins it.
func (a *App) DeleteRecipe(ctx context.Context, id string) error {
	ctx, span := tracing.AppSpan(ctx, "delete_recipe", attribute.String("recipe.id", id))
	defer span.End()

	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.recipeIndexLocked(id)
	if i < 0 {
		return ErrRecipeNotFound
	}
	a.recipes = slices.Delete(a.recipes, i, i+1)

	if err := a.store.SaveRecipes(ctx, a.recipes); err != nil {
		tracing.EndWithError(span, err)
		return err
	}

	if j := slices.Index(a.pinned, id); j >= 0 {
		a.pinned = slices.Delete(a.pinned, j, j+1)
		if err := a.store.SavePinnedRecipes(ctx, a.pinned); err != nil {
			tracing.EndWithError(span, err)
			return err
		}
	}

	log.Info().Str("id", id).Msg("Deleted recipe")
	return nil
}

// TogglePin pins or unpins a recipe and returns whether it is pinned.
func (a *App) TogglePin(ctx context.Context, id string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.recipeIndexLocked(id) < 0 {
		return false, ErrRecipeNotFound
	}

	pinned := true
	if j := slices.Index(a.pinned, id); j >= 0 {
		a.pinned = slices.Delete(a.pinned, j, j+1)
		pinned = false
	} else {
		a.pinned = append(a.pinned, id)
	}

	return pinned, a.store.SavePinnedRecipes(ctx, a.pinned)
}

// Recipes returns the recipes in quick-access order: pinned first, then newest.
func (a *App) Recipes() []*models.SavedRecipe {
	a.mu.Lock()
	defer a.mu.Unlock()
	return barista.SortRecipes(a.recipes, a.pinned)
}

// Pinned returns the ids of pinned recipes.
func (a *App) Pinned() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.pinned)
}

// ApplyRecipe returns a shot form pre-filled from a recipe.
func (a *App) ApplyRecipe(id string) (*models.CreateShotRequest, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.recipeIndexLocked(id)
	if i < 0 {
		return nil, ErrRecipeNotFound
	}
	req := a.recipes[i].ShotRequest()
	return &req, nil
}

func (a *App) recipeIndexLocked(id string) int {
	return slices.IndexFunc(a.recipes, func(r *models.SavedRecipe) bool { return r.ID == id })
}
