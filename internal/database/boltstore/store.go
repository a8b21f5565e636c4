// Package boltstore provides persistent storage using BoltDB (bbolt).
// It implements database.Store on a single bucket so the persistence layer
// can keep each collection under its own key.
package boltstore

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dialin/internal/database"

	bolt "go.etcd.io/bbolt"
)

// Bucket names for organizing data
var (
	// BucketLocalStorage holds every collection and preference, keyed by
	// storage key (e.g. "espresso-shots")
	BucketLocalStorage = []byte("local_storage")
)

// Store wraps a BoltDB database.
type Store struct {
	db *bolt.DB
}

// Options configures the BoltDB store.
type Options struct {
	// Path to the database file. Parent directories will be created if needed.
	Path string

	// Timeout for obtaining a file lock on the database.
	// If zero, a default of 5 seconds is used.
	Timeout time.Duration

	// FileMode for creating the database file.
	// If zero, 0600 is used.
	FileMode os.FileMode
}

// Open creates or opens a BoltDB database at the specified path.
// It creates all necessary buckets if they don't exist.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		opts.Path = "dialin.db"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.FileMode == 0 {
		opts.FileMode = 0600
	}

	// Ensure parent directory exists
	dir := filepath.Dir(opts.Path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Open the database
	db, err := bolt.Open(opts.Path, opts.FileMode, &bolt.Options{
		Timeout: opts.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create buckets if they don't exist
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(BucketLocalStorage); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", BucketLocalStorage, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Stats returns database statistics. The metrics collector reads the free
// page count, which grows as whole collections are rewritten.
func (s *Store) Stats() bolt.Stats {
	return s.db.Stats()
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketLocalStorage)
		if bucket == nil {
			return database.ErrNotFound
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return database.ErrNotFound
		}

		// Bolt values are only valid for the life of the transaction
		value = make([]byte, len(data))
		copy(value, data)
		return nil
	})

	return value, err
}

// Put replaces the value stored under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketLocalStorage)
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", BucketLocalStorage)
		}
		return bucket.Put([]byte(key), value)
	})
}

// Delete removes key. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketLocalStorage)
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(key))
	})
}

// Keys lists keys with the given prefix using a cursor seek.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketLocalStorage)
		if bucket == nil {
			return nil
		}

		p := []byte(prefix)
		c := bucket.Cursor()
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})

	return keys, err
}

var _ database.Store = (*Store)(nil)
