package game

import "sync"

// Config is the target/tolerance pair a round is judged against.
type Config struct {
	TargetMs    int64
	ToleranceMs int64
}

// ConfigStore holds the current Config. Set replaces it wholesale and performs
// no validation.
type ConfigStore struct {
	mu      sync.RWMutex
	current Config
	watch   latest[Config]
}

// NewConfigStore returns a store holding initial.
func NewConfigStore(initial Config) *ConfigStore {
	return &ConfigStore{current: initial}
}

// Get returns the current configuration.
func (s *ConfigStore) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set replaces the current configuration and notifies subscribers.
func (s *ConfigStore) Set(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = cfg
	s.watch.publish(cfg)
}

// Subscribe returns a channel that always yields the newest configuration.
// The current value is delivered immediately.
func (s *ConfigStore) Subscribe() <-chan Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.watch.subscribe(s.current)
}
