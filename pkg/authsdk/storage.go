package authsdk

import (
	"context"
	"sync"
)

// Default keys under which a Manager persists its token pair.
const (
	DefaultAccessKey  = "accessToken"
	DefaultRefreshKey = "refreshToken"
)

// Storage is the durable side-store that lets a token pair survive a process
// restart. Get returns an empty string and a nil error for a missing key.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// StorageKeys names the two entries a Manager writes to its Storage.
type StorageKeys struct {
	Access  string
	Refresh string
}

// DefaultStorageKeys returns the keys used when none are configured.
func DefaultStorageKeys() StorageKeys {
	return StorageKeys{Access: DefaultAccessKey, Refresh: DefaultRefreshKey}
}

// MemoryStorage is a process-local Storage. It is mostly useful in tests and
// for deployments that accept logging in again after every restart.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (s *MemoryStorage) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key], nil
}

func (s *MemoryStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
