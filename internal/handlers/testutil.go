package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"dialin/internal/database"
	"dialin/internal/dialin"
	"dialin/internal/models"
	"dialin/internal/timer"
)

// TestContext holds a handler wired to an in-memory log.
type TestContext struct {
	Handler   *Handler
	App       *dialin.App
	Store     *database.MemoryStore
	Stopwatch *timer.Stopwatch
	Now       time.Time
}

// NewTestContext creates a handler over an empty in-memory store with a
// fixed clock and sequential ids.
func NewTestContext() *TestContext {
	now := time.Date(2025, 3, 22, 9, 0, 0, 0, time.UTC)
	store := database.NewMemoryStore()
	n := 0
	app := dialin.New(database.NewCollections(store),
		dialin.WithClock(func() time.Time { return now }),
		dialin.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
	if err := app.Load(context.Background()); err != nil {
		panic(err)
	}
	sw := timer.New(5 * time.Millisecond)

	return &TestContext{
		Handler:   NewHandler(app, sw),
		App:       app,
		Store:     store,
		Stopwatch: sw,
		Now:       now,
	}
}

// NewJSONRequest builds a request with v encoded as the JSON body.
func NewJSONRequest(method, target string, v any) *http.Request {
	var body io.Reader
	switch b := v.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			panic(err)
		}
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// SampleShot returns a valid shot form.
func SampleShot(bean string, rating models.Rating) *models.CreateShotRequest {
	return &models.CreateShotRequest{
		BrewSettings: models.BrewSettings{
			BeanName:    bean,
			BrewType:    models.BrewEspresso,
			Basket:      models.BasketDouble,
			GrindSize:   12,
			Temperature: models.Ptr(models.TempMed),
			Strength:    2,
		},
		Rating: rating,
	}
}
