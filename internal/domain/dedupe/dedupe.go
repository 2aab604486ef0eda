// Package dedupe tracks identifiers already seen within one table.
package dedupe

import (
	"sync"
)

// Tracker records seen identifiers with the line that introduced them.
type Tracker interface {
	// SeenAndRecord checks whether id was seen and records it if not.
	// When id is a duplicate it returns the line of the first occurrence
	// and true; otherwise it records line and returns (line, false).
	SeenAndRecord(id string, line int) (int, bool)

	// Size is the number of distinct identifiers recorded.
	Size() int

	// Duplicates is the number of SeenAndRecord calls that hit an existing id.
	Duplicates() int
}

// inMemoryTracker implements Tracker with a map. Safe for concurrent use.
type inMemoryTracker struct {
	mu         sync.Mutex
	seen       map[string]int // id -> first line
	duplicates int
	normalize  func(string) string
}

// NewTracker creates a tracker with configuration options.
func NewTracker(opts ...Option) Tracker {
	t := &inMemoryTracker{}
	cfg := options{capacity: 0}
	for _, opt := range opts {
		opt(&cfg)
	}
	t.seen = make(map[string]int, cfg.capacity)
	t.normalize = cfg.normalize
	return t
}

func (t *inMemoryTracker) SeenAndRecord(id string, line int) (int, bool) {
	if t.normalize != nil {
		id = t.normalize(id)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if first, exists := t.seen[id]; exists {
		t.duplicates++
		return first, true
	}
	t.seen[id] = line
	return line, false
}

func (t *inMemoryTracker) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}

func (t *inMemoryTracker) Duplicates() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.duplicates
}
