package database

import (
	"context"
)

// MockStore is a mock implementation of the Store interface for testing.
// Uses function fields to allow tests to inject custom behavior.
type MockStore struct {
	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	PutFunc    func(ctx context.Context, key string, value []byte) error
	DeleteFunc func(ctx context.Context, key string) error
	KeysFunc   func(ctx context.Context, prefix string) ([]string, error)
	CloseFunc  func() error
}

// Get calls the mock function or returns ErrNotFound if not set
func (m *MockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return nil, ErrNotFound
}

// Put calls the mock function or returns nil if not set
func (m *MockStore) Put(ctx context.Context, key string, value []byte) error {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, key, value)
	}
	return nil
}

// Delete calls the mock function or returns nil if not set
func (m *MockStore) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	return nil
}

// Keys calls the mock function or returns nil if not set
func (m *MockStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	if m.KeysFunc != nil {
		return m.KeysFunc(ctx, prefix)
	}
	return nil, nil
}

// Close calls the mock function or returns nil if not set
func (m *MockStore) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

var _ Store = (*MockStore)(nil)
