package store

import (
	"path/filepath"
	"sync"

	"github.com/surya9634/Work-Flow-zen/internal/core"
)

// AnalyticsStore persists per-channel message counters in analytics.json
type AnalyticsStore struct {
	path string
	mu   sync.Mutex
	data *core.Analytics
}

// NewAnalyticsStore loads the counters, initializing them to zero when absent
func NewAnalyticsStore(dataDir string) *AnalyticsStore {
	s := &AnalyticsStore{
		path: filepath.Join(dataDir, "analytics.json"),
		data: core.NewAnalytics(),
	}
	readJSONFile(s.path, s.data)
	if s.data.Counters == nil {
		s.data = core.NewAnalytics()
	}
	return s
}

// Bump increments the counter for a channel plus the running total
func (s *AnalyticsStore) Bump(channel core.Channel, direction core.Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{string(channel), "total"} {
		c := s.data.Counters[key]
		if c == nil {
			c = &core.Counter{}
			s.data.Counters[key] = c
		}
		switch direction {
		case core.DirectionSent:
			c.Sent++
		case core.DirectionReceived:
			c.Received++
		}
	}
	return writeJSONFile(s.path, s.data)
}

// Snapshot returns a copy of the current counters
func (s *AnalyticsStore) Snapshot() *core.Analytics {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := &core.Analytics{Counters: make(map[string]*core.Counter, len(s.data.Counters))}
	for k, v := range s.data.Counters {
		cp := *v
		out.Counters[k] = &cp
	}
	return out
}
