package dataset

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

// Store is a write-once, read-many dataset cache keyed by file path
// and modification time. Entries are never invalidated mid-session; a
// changed file simply produces a new key on the next stat.
type Store struct {
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string]*Dataset
}

// NewStore creates an empty dataset cache.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		logger: logger,
		cache:  make(map[string]*Dataset),
	}
}

// GetOrLoad returns the cached dataset for path, loading and caching
// it on first use. The returned dataset is shared read-only across
// callers.
func (s *Store) GetOrLoad(path string) (*Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingDataSource, path)
	}
	key := fmt.Sprintf("%s|%d", path, info.ModTime().UnixNano())

	s.mu.RLock()
	ds, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return ds, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ds, ok := s.cache[key]; ok {
		return ds, nil
	}

	ds, err = Load(s.logger, path)
	if err != nil {
		return nil, err
	}
	s.cache[key] = ds
	s.logger.Debug("dataset cached",
		zap.String("op", "dataset.GetOrLoad"),
		zap.String("key", key),
	)
	return ds, nil
}
