package handlers

import (
	"net/http"
	"slices"

	"dialin/internal/models"
)

// RecipeView is a recipe as listed in the quick-access panel.
type RecipeView struct {
	*models.SavedRecipe
	Pinned bool `json:"pinned"`
}

// HandleRecipeList returns recipes, pinned first.
func (h *Handler) HandleRecipeList(w http.ResponseWriter, r *http.Request) {
	recipes := h.app.Recipes()
	pinned := h.app.Pinned()
	views := make([]RecipeView, 0, len(recipes))
	for _, rc := range recipes {
		views = append(views, RecipeView{SavedRecipe: rc, Pinned: slices.Contains(pinned, rc.ID)})
	}
	writeJSON(w, views, "recipes")
}

// HandleRecipeCreate saves a recipe.
func (h *Handler) HandleRecipeCreate(w http.ResponseWriter, r *http.Request) {
	var req models.RecipeRequest
	if err := decodeRequest(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	recipe, err := h.app.SaveRecipe(r.Context(), &req)
	if err != nil {
		writeError(w, err, "save recipe")
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, recipe, "recipe")
}

// HandleRecipeUpdate replaces a recipe's settings.
func (h *Handler) HandleRecipeUpdate(w http.ResponseWriter, r *http.Request) {
	var req models.RecipeRequest
	if err := decodeRequest(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	recipe, err := h.app.UpdateRecipe(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		writeError(w, err, "update recipe")
		return
	}
	writeJSON(w, recipe, "recipe")
}

// HandleRecipeDelete deletes a recipe.
func (h *Handler) HandleRecipeDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.app.DeleteRecipe(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err, "delete recipe")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRecipePin toggles whether a recipe is pinned.
func (h *Handler) HandleRecipePin(w http.ResponseWriter, r *http.Request) {
	pinned, err := h.app.TogglePin(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "pin recipe")
		return
	}
	writeJSON(w, map[string]bool{"pinned": pinned}, "pin")
}

// HandleRecipeApply returns a shot form pre-filled from a recipe.
func (h *Handler) HandleRecipeApply(w http.ResponseWriter, r *http.Request) {
	req, err := h.app.ApplyRecipe(r.PathValue("id"))
	if err != nil {
		writeError(w, err, "apply recipe")
		return
	}
	writeJSON(w, req, "shot form")
}
