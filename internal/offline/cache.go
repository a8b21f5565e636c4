// Package offline serves static assets through a persistent cache with
// stale-while-revalidate semantics, so the app shell keeps loading when the
// asset source is unreachable.
package offline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"dialin/internal/database"
	"dialin/internal/metrics"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// CacheName is the current cache generation. Entries stored under any other
// generation are purged by Activate.
const CacheName = "luxe-cafe-v1"

// StaticAssets is the app shell pre-fetched by Install.
var StaticAssets = []string{
	"/",
	"/index.html",
	"/manifest.json",
	"/icons/icon-192.svg",
	"/icons/icon-512.svg",
}

const keyPrefix = "offline:"

// revalidateTimeout bounds a background refresh.
const revalidateTimeout = 30 * time.Second

// Entry is a cached response.
type Entry struct {
	Status   int               `json:"status"`
	Header   map[string]string `json:"header,omitempty"`
	Body     []byte            `json:"-"`
	StoredAt time.Time         `json:"storedAt"`
}

// stored is the persisted form of an Entry. The body is zstd-compressed.
type stored struct {
	Entry
	Compressed []byte `json:"body"`
}

// Cache is a persistent asset cache in front of a Fetcher.
type Cache struct {
	store   database.Store
	fetcher Fetcher
	name    string

	enc *zstd.Encoder
	dec *zstd.Decoder

	group singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a cache for the current generation.
func New(store database.Store, fetcher Fetcher) (*Cache, error) {
	return NewNamed(store, fetcher, CacheName)
}

// NewNamed creates a cache for the given generation.
func NewNamed(store database.Store, fetcher Fetcher, name string) (*Cache, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		store:   store,
		fetcher: fetcher,
		name:    name,
		enc:     enc,
		dec:     dec,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Close cancels background revalidations, waits for them and releases the
// codecs.
func (c *Cache) Close() {
	c.cancel()
	c.wg.Wait()
	c.enc.Close()
	c.dec.Close()
}

// Wait blocks until in-flight background revalidations finish.
func (c *Cache) Wait() {
	c.wg.Wait()
}

func (c *Cache) key(path string) string {
	return keyPrefix + c.name + ":" + path
}

// Install pre-fetches every static asset. It fails if any asset cannot be
// fetched or does not return 200.
func (c *Cache) Install(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, path := range StaticAssets {
		g.Go(func() error {
			entry, err := c.fetcher.Fetch(gctx, path)
			if err != nil {
				return err
			}
			if entry.Status != http.StatusOK {
				return fmt.Errorf("failed to install %s: status %d", path, entry.Status)
			}
			return c.Put(gctx, path, entry)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("offline cache install: %w", err)
	}
	log.Info().Str("cache", c.name).Int("assets", len(StaticAssets)).Msg("Offline cache installed")
	return nil
}

// Activate deletes entries left by other cache generations.
func (c *Cache) Activate(ctx context.Context) error {
	keys, err := c.store.Keys(ctx, keyPrefix)
	if err != nil {
		return fmt.Errorf("failed to list cache entries: %w", err)
	}
	current := c.key("")
	purged := 0
	for _, k := range keys {
		if strings.HasPrefix(k, current) {
			continue
		}
		if err := c.store.Delete(ctx, k); err != nil {
			return fmt.Errorf("failed to purge %s: %w", k, err)
		}
		purged++
	}
	if purged > 0 {
		log.Info().Str("cache", c.name).Int("purged", purged).Msg("Purged old offline cache entries")
	}
	return nil
}

// Get returns the cached entry for path, or nil when there is none. A
// corrupt entry counts as a miss.
func (c *Cache) Get(ctx context.Context, path string) (*Entry, error) {
	data, err := c.store.Get(ctx, c.key(path))
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry %s: %w", path, err)
	}

	var s stored
	if err := json.Unmarshal(data, &s); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Discarding corrupt cache entry")
		return nil, nil
	}
	body, err := c.dec.DecodeAll(s.Compressed, nil)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Discarding undecodable cache entry")
		return nil, nil
	}
	entry := s.Entry
	entry.Body = body
	return &entry, nil
}

// Put stores entry for path.
func (c *Cache) Put(ctx context.Context, path string, entry *Entry) error {
	s := stored{Entry: *entry, Compressed: c.enc.EncodeAll(entry.Body, nil)}
	if s.StoredAt.IsZero() {
		s.StoredAt = time.Now()
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", path, err)
	}
	if err := c.store.Put(ctx, c.key(path), data); err != nil {
		return fmt.Errorf("failed to store cache entry %s: %w", path, err)
	}
	return nil
}

// fetch retrieves path once per concurrent burst and stores a 200 response.
func (c *Cache) fetch(ctx context.Context, path string) (*Entry, error) {
	v, err, _ := c.group.Do(path, func() (any, error) {
		entry, err := c.fetcher.Fetch(ctx, path)
		if err != nil {
			return nil, err
		}
		if entry.Status == http.StatusOK {
			if err := c.Put(ctx, path, entry); err != nil {
				log.Warn().Err(err).Str("path", path).Msg("Failed to cache asset")
			}
		}
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Entry), nil
}

func (c *Cache) revalidate(path string) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(c.ctx, revalidateTimeout)
		defer cancel()

		if _, err := c.fetch(ctx, path); err != nil {
			metrics.OfflineRevalidationsTotal.WithLabelValues("error").Inc()
			log.Debug().Err(err).Str("path", path).Msg("Background revalidation failed")
			return
		}
		metrics.OfflineRevalidationsTotal.WithLabelValues("ok").Inc()
	}()
}

// Middleware serves GET requests from the cache. A cached copy is returned
// immediately and refreshed in the background. Without a cached copy the
// asset is fetched and cached on success. When the fetch fails, navigation
// requests fall back to the cached root document and everything else gets
// 503. Other methods and schemes go straight to next.
func (c *Cache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || !isHTTPScheme(r) {
			next.ServeHTTP(w, r)
			return
		}

		// Static files ignore the query string, so neither does the key
		ctx := r.Context()
		path := r.URL.Path

		cached, err := c.Get(ctx, path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Offline cache read failed")
		}
		if cached != nil {
			metrics.OfflineCacheHitsTotal.Inc()
			writeEntry(w, cached)
			c.revalidate(path)
			return
		}

		metrics.OfflineCacheMissesTotal.Inc()
		fresh, err := c.fetch(ctx, path)
		if err == nil {
			writeEntry(w, fresh)
			return
		}

		log.Warn().Err(err).Str("path", path).Msg("Asset fetch failed")
		if isNavigation(r) {
			if root, _ := c.Get(ctx, "/"); root != nil {
				writeEntry(w, root)
				return
			}
		}
		http.Error(w, "Offline", http.StatusServiceUnavailable)
	})
}

func writeEntry(w http.ResponseWriter, e *Entry) {
	for k, v := range e.Header {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(e.Body)))
	w.WriteHeader(e.Status)
	w.Write(e.Body)
}

func isHTTPScheme(r *http.Request) bool {
	switch r.URL.Scheme {
	case "", "http", "https":
		return true
	}
	return false
}

// isNavigation reports whether r loads a page rather than a subresource.
func isNavigation(r *http.Request) bool {
	if r.Header.Get("Sec-Fetch-Mode") == "navigate" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
