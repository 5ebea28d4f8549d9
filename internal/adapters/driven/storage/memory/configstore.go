package memory

import (
	"slices"
	"sync"
	"time"

	"github.com/custodia-labs/pelagia/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map. Nothing is ever written to disk,
// which makes it the store of choice for tests and for runs with no
// config file.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore returns an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: map[string]any{}}
}

// Get returns the raw value stored under key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *ConfigStore) GetString(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

func (s *ConfigStore) GetInt(key string) int {
	n, _ := s.number(key)
	return int(n)
}

func (s *ConfigStore) GetFloat(key string) float64 {
	n, _ := s.number(key)
	return n
}

func (s *ConfigStore) GetBool(key string) bool {
	v, _ := s.Get(key)
	b, _ := v.(bool)
	return b
}

// GetDuration accepts a time.Duration or a string such as "45s".
func (s *ConfigStore) GetDuration(key string) time.Duration {
	v, _ := s.Get(key)
	if d, ok := v.(time.Duration); ok {
		return d
	}
	str, _ := v.(string)
	d, err := time.ParseDuration(str)
	if err != nil {
		return 0
	}
	return d
}

// number widens any numeric value to float64.
func (s *ConfigStore) number(key string) (float64, bool) {
	v, _ := s.Get(key)
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Keys lists the stored keys in sorted order.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

// Save and Load are no-ops.
func (s *ConfigStore) Save() error { return nil }

func (s *ConfigStore) Load() error { return nil }

// Path returns a placeholder since there is no backing file.
func (s *ConfigStore) Path() string { return ":memory:" }
