package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dialin/internal/database"
	"dialin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHandleShotCreate_Success(t *testing.T) {
	tc := NewTestContext()

	req := NewJSONRequest("POST", "/api/shots", SampleShot("Kenya", models.RatingSour))
	rec := httptest.NewRecorder()
	tc.Handler.HandleShotCreate(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	shot := decodeBody[models.ShotLog](t, rec)
	assert.Equal(t, "id-1", shot.ID)
	assert.Equal(t, "Kenya", shot.BeanName)

	stored, err := tc.Store.Get(context.Background(), database.KeyShots)
	require.NoError(t, err)
	assert.Contains(t, string(stored), `"id":"id-1"`)
}

func TestHandleShotCreate_ValidationError(t *testing.T) {
	tc := NewTestContext()

	shot := SampleShot("Kenya", models.RatingSour)
	shot.GrindSize = 30
	rec := httptest.NewRecorder()
	tc.Handler.HandleShotCreate(rec, NewJSONRequest("POST", "/api/shots", shot))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), models.ErrGrindOutOfRange.Error())
	assert.Empty(t, tc.App.History())
}

func TestHandleShotCreate_InvalidJSON(t *testing.T) {
	tc := NewTestContext()

	rec := httptest.NewRecorder()
	tc.Handler.HandleShotCreate(rec, NewJSONRequest("POST", "/api/shots", "{broken"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid request body")
}

func TestHandleShotCreate_WrongContentType(t *testing.T) {
	tc := NewTestContext()

	req := httptest.NewRequest("POST", "/api/shots", strings.NewReader("beanName=Kenya"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	tc.Handler.HandleShotCreate(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleShotCreate_UseTimer(t *testing.T) {
	tc := NewTestContext()
	defer tc.Stopwatch.Close()

	tc.Stopwatch.Start()
	require.Eventually(t, func() bool { return tc.Stopwatch.Elapsed() >= 150*time.Millisecond }, 2*time.Second, time.Millisecond)

	body := map[string]any{
		"beanName":    "Kenya",
		"brewType":    "Espresso",
		"basket":      "Double",
		"grindSize":   12,
		"temperature": "Med",
		"strength":    2,
		"rating":      "Balanced",
		"useTimer":    true,
	}
	rec := httptest.NewRecorder()
	tc.Handler.HandleShotCreate(rec, NewJSONRequest("POST", "/api/shots", body))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	shot := decodeBody[models.ShotLog](t, rec)
	require.NotNil(t, shot.ExtractionTime)
	assert.Greater(t, *shot.ExtractionTime, 0.0)
	assert.False(t, tc.Stopwatch.Running())
	assert.Zero(t, tc.Stopwatch.Elapsed())
}

func TestHandleShotList(t *testing.T) {
	tc := NewTestContext()
	ctx := context.Background()

	kenya, err := tc.App.LogShot(ctx, SampleShot("Kenya", models.RatingBalanced))
	require.NoError(t, err)
	_, err = tc.App.LogShot(ctx, SampleShot("Brazil", models.RatingSour))
	require.NoError(t, err)
	_, err = tc.App.ToggleFavorite(ctx, kenya.ID)
	require.NoError(t, err)

	t.Run("all shots favorites first", func(t *testing.T) {
		rec := httptest.NewRecorder()
		tc.Handler.HandleShotList(rec, httptest.NewRequest("GET", "/api/shots", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		shots := decodeBody[[]ShotView](t, rec)
		require.Len(t, shots, 2)
		assert.Equal(t, kenya.ID, shots[0].ID)
		assert.True(t, shots[0].IsFavorite)
		assert.False(t, shots[1].IsFavorite)
	})

	t.Run("filter by rating", func(t *testing.T) {
		rec := httptest.NewRecorder()
		tc.Handler.HandleShotList(rec, httptest.NewRequest("GET", "/api/shots?rating=Sour", nil))
		shots := decodeBody[[]ShotView](t, rec)
		require.Len(t, shots, 1)
		assert.Equal(t, "Brazil", shots[0].BeanName)
	})

	t.Run("invalid rating", func(t *testing.T) {
		rec := httptest.NewRecorder()
		tc.Handler.HandleShotList(rec, httptest.NewRequest("GET", "/api/shots?rating=Meh", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		rec := httptest.NewRecorder()
		tc.Handler.HandleShotList(rec, httptest.NewRequest("GET", "/api/shots?q=sumatra", nil))
		assert.JSONEq(t, "[]", rec.Body.String())
	})
}

func TestHandleShotGetAndDelete(t *testing.T) {
	tc := NewTestContext()
	shot, err := tc.App.LogShot(context.Background(), SampleShot("Kenya", models.RatingSour))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/shots/"+shot.ID, nil)
	req.SetPathValue("id", shot.ID)
	rec := httptest.NewRecorder()
	tc.Handler.HandleShotGet(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest("DELETE", "/api/shots/"+shot.ID, nil)
	req.SetPathValue("id", shot.ID)
	rec = httptest.NewRecorder()
	tc.Handler.HandleShotDelete(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	tc.Handler.HandleShotDelete(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "shot not found")
}

func TestHandleShotDuplicate(t *testing.T) {
	tc := NewTestContext()
	shot, err := tc.App.LogShot(context.Background(), SampleShot("Kenya", models.RatingBitter))
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/shots/"+shot.ID+"/duplicate", nil)
	req.SetPathValue("id", shot.ID)
	rec := httptest.NewRecorder()
	tc.Handler.HandleShotDuplicate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	form := decodeBody[models.CreateShotRequest](t, rec)
	assert.Equal(t, "Kenya", form.BeanName)
	assert.Len(t, tc.App.History(), 1)
}

func TestHandleFavoriteToggle(t *testing.T) {
	tc := NewTestContext()
	shot, err := tc.App.LogShot(context.Background(), SampleShot("Kenya", models.RatingBalanced))
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/shots/"+shot.ID+"/favorite", nil)
	req.SetPathValue("id", shot.ID)

	rec := httptest.NewRecorder()
	tc.Handler.HandleFavoriteToggle(rec, req)
	assert.JSONEq(t, `{"isFavorite":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	tc.Handler.HandleFavoriteToggle(rec, req)
	assert.JSONEq(t, `{"isFavorite":false}`, rec.Body.String())

	missing := httptest.NewRequest("POST", "/api/shots/nope/favorite", nil)
	missing.SetPathValue("id", "nope")
	rec = httptest.NewRecorder()
	tc.Handler.HandleFavoriteToggle(rec, missing)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleInsight(t *testing.T) {
	tc := NewTestContext()

	rec := httptest.NewRecorder()
	tc.Handler.HandleInsight(rec, httptest.NewRequest("GET", "/api/insight", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	tc.Handler.HandleInsight(rec, httptest.NewRequest("GET", "/api/insight?bean=Kenya", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))

	_, err := tc.App.LogShot(context.Background(), SampleShot("Kenya", models.RatingSour))
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	tc.Handler.HandleInsight(rec, httptest.NewRequest("GET", "/api/insight?bean=kenya", nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "small", body["tip"].(map[string]any)["adjustment"])
	assert.EqualValues(t, 11, body["suggestion"].(map[string]any)["grindSize"])
}

func TestHandleStatsAndCaffeine(t *testing.T) {
	tc := NewTestContext()
	_, err := tc.App.LogShot(context.Background(), SampleShot("Kenya", models.RatingBalanced))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	tc.Handler.HandleStats(rec, httptest.NewRequest("GET", "/api/stats", nil))
	var stats map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.EqualValues(t, 1, stats["totalShots"])
	assert.EqualValues(t, 100, stats["balancedRate"])

	rec = httptest.NewRecorder()
	tc.Handler.HandleCaffeine(rec, httptest.NewRequest("GET", "/api/caffeine", nil))
	var caffeine map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &caffeine))
	assert.EqualValues(t, 126, caffeine["todayMg"])
}

func TestHandleRecipes(t *testing.T) {
	tc := NewTestContext()

	body := &models.RecipeRequest{Name: "House", BrewSettings: SampleShot("Kenya", models.RatingBalanced).BrewSettings}
	rec := httptest.NewRecorder()
	tc.Handler.HandleRecipeCreate(rec, NewJSONRequest("POST", "/api/recipes", body))
	require.Equal(t, http.StatusCreated, rec.Code)
	recipe := decodeBody[models.SavedRecipe](t, rec)

	pin := httptest.NewRequest("POST", "/api/recipes/"+recipe.ID+"/pin", nil)
	pin.SetPathValue("id", recipe.ID)
	rec = httptest.NewRecorder()
	tc.Handler.HandleRecipePin(rec, pin)
	assert.JSONEq(t, `{"pinned":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	tc.Handler.HandleRecipeList(rec, httptest.NewRequest("GET", "/api/recipes", nil))
	list := decodeBody[[]RecipeView](t, rec)
	require.Len(t, list, 1)
	assert.True(t, list[0].Pinned)

	body.Name = ""
	update := NewJSONRequest("PUT", "/api/recipes/"+recipe.ID, body)
	update.SetPathValue("id", recipe.ID)
	rec = httptest.NewRecorder()
	tc.Handler.HandleRecipeUpdate(rec, update)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	apply := httptest.NewRequest("POST", "/api/recipes/"+recipe.ID+"/apply", nil)
	apply.SetPathValue("id", recipe.ID)
	rec = httptest.NewRecorder()
	tc.Handler.HandleRecipeApply(rec, apply)
	assert.Equal(t, http.StatusOK, rec.Code)

	del := httptest.NewRequest("DELETE", "/api/recipes/"+recipe.ID, nil)
	del.SetPathValue("id", recipe.ID)
	rec = httptest.NewRecorder()
	tc.Handler.HandleRecipeDelete(rec, del)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, tc.App.Recipes())
}

func TestHandleBeans(t *testing.T) {
	tc := NewTestContext()

	rec := httptest.NewRecorder()
	tc.Handler.HandleBeanCreate(rec, NewJSONRequest("POST", "/api/beans", map[string]any{
		"name":      "Gesha",
		"roastDate": "2025-03-20",
	}))
	require.Equal(t, http.StatusCreated, rec.Code)
	bean := decodeBody[models.BeanProfile](t, rec)
	assert.True(t, bean.IsActive)

	rec = httptest.NewRecorder()
	tc.Handler.HandleBeanList(rec, httptest.NewRequest("GET", "/api/beans", nil))
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Resting", list[0]["freshness"].(map[string]any)["label"])
	assert.EqualValues(t, 2, list[0]["daysSinceRoast"])

	active := httptest.NewRequest("POST", "/api/beans/"+bean.ID+"/active", nil)
	active.SetPathValue("id", bean.ID)
	rec = httptest.NewRecorder()
	tc.Handler.HandleBeanActive(rec, active)
	assert.JSONEq(t, `{"isActive":false}`, rec.Body.String())

	rec = httptest.NewRecorder()
	tc.Handler.HandleBeanCreate(rec, NewJSONRequest("POST", "/api/beans", map[string]any{
		"name":      "Bad date",
		"roastDate": "20/03/2025",
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	del := httptest.NewRequest("DELETE", "/api/beans/"+bean.ID, nil)
	del.SetPathValue("id", bean.ID)
	rec = httptest.NewRecorder()
	tc.Handler.HandleBeanDelete(rec, del)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandleAutocomplete(t *testing.T) {
	tc := NewTestContext()
	_, err := tc.App.LogShot(context.Background(), SampleShot("Kenya AA", models.RatingSour))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	tc.Handler.HandleAutocomplete(rec, httptest.NewRequest("GET", "/api/autocomplete?q=ken", nil))
	assert.JSONEq(t, `["Kenya AA"]`, rec.Body.String())
}

func TestHandlePreferences(t *testing.T) {
	tc := NewTestContext()

	rec := httptest.NewRecorder()
	tc.Handler.HandlePreferencesUpdate(rec, NewJSONRequest("PUT", "/api/preferences", `{"theme":"light"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"theme":"light","showShortcuts":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	tc.Handler.HandlePreferencesUpdate(rec, NewJSONRequest("PUT", "/api/preferences", `{"theme":"neon"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	tc.Handler.HandlePreferencesGet(rec, httptest.NewRequest("GET", "/api/preferences", nil))
	assert.JSONEq(t, `{"theme":"light","showShortcuts":true}`, rec.Body.String())
}

func TestHandleExportAndImport(t *testing.T) {
	tc := NewTestContext()
	_, err := tc.App.LogShot(context.Background(), SampleShot("Kenya", models.RatingSour))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	tc.Handler.HandleExportBackup(rec, httptest.NewRequest("GET", "/api/export/backup", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=espresso-backup-2025-03-22.json", rec.Header().Get("Content-Disposition"))
	backup := rec.Body.String()

	other := NewTestContext()
	rec = httptest.NewRecorder()
	other.Handler.HandleImport(rec, NewJSONRequest("POST", "/api/import", backup))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"shots":1,"favorites":0,"recipes":0,"beans":0}`, rec.Body.String())
	assert.Len(t, other.App.History(), 1)
}

func TestHandleImport_RejectsMissingShots(t *testing.T) {
	tc := NewTestContext()
	_, err := tc.App.LogShot(context.Background(), SampleShot("Kenya", models.RatingSour))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	tc.Handler.HandleImport(rec, NewJSONRequest("POST", "/api/import", `{}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid backup file: missing shots array")
	assert.Len(t, tc.App.History(), 1)
}

func TestHandleExportCSV(t *testing.T) {
	tc := NewTestContext()
	shot := SampleShot("Kenya", models.RatingSour)
	shot.Notes = `a "bright" one`
	_, err := tc.App.LogShot(context.Background(), shot)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	tc.Handler.HandleExportCSV(rec, httptest.NewRequest("GET", "/api/export/csv", nil))
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"a ""bright"" one"`)
}

func TestHandleTimer(t *testing.T) {
	tc := NewTestContext()
	defer tc.Stopwatch.Close()

	rec := httptest.NewRecorder()
	tc.Handler.HandleTimerStart(rec, httptest.NewRequest("POST", "/api/timer/start", nil))
	assert.True(t, decodeBody[TimerState](t, rec).Running)

	require.Eventually(t, func() bool { return tc.Stopwatch.Elapsed() > 0 }, time.Second, time.Millisecond)

	rec = httptest.NewRecorder()
	tc.Handler.HandleTimerStop(rec, httptest.NewRequest("POST", "/api/timer/stop", nil))
	state := decodeBody[TimerState](t, rec)
	assert.False(t, state.Running)
	assert.Greater(t, state.Seconds, 0.0)

	rec = httptest.NewRecorder()
	tc.Handler.HandleTimerReset(rec, httptest.NewRequest("POST", "/api/timer/reset", nil))
	assert.Equal(t, TimerState{}, decodeBody[TimerState](t, rec))
}

func TestHandleOptions(t *testing.T) {
	tc := NewTestContext()
	rec := httptest.NewRecorder()
	tc.Handler.HandleOptions(rec, httptest.NewRequest("GET", "/api/options", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body["ratings"], 5)
	assert.Contains(t, body, "defaults")
}
