package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/okian/ecoscore/internal/domain/model"
)

const defaultMaxLimit = 1000

// snapshot is an immutable view of one build's records.
type snapshot struct {
	ranked []Entry        // score desc, id asc
	byID   map[string]int // id -> index in ranked
	folded []string       // lowercased "id name", aligned with ranked
}

// MemoryStore is an in-memory Store. Readers see a consistent snapshot;
// Load swaps in a new one atomically.
type MemoryStore struct {
	maxLimit int
	snap     atomic.Pointer[snapshot]
}

// NewMemoryStore creates a MemoryStore over records.
func NewMemoryStore(records []model.ScoredRecord, opts ...Option) *MemoryStore {
	s := &MemoryStore{maxLimit: defaultMaxLimit}
	for _, opt := range opts {
		opt(s)
	}
	s.Load(records)
	return s
}

// Load replaces the catalog with records.
func (s *MemoryStore) Load(records []model.ScoredRecord) {
	ranked := make([]Entry, len(records))
	for i, r := range records {
		ranked[i] = Entry{Record: r}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].Record, ranked[j].Record
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.ID < b.ID
	})

	snap := &snapshot{
		ranked: ranked,
		byID:   make(map[string]int, len(ranked)),
		folded: make([]string, len(ranked)),
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
		snap.byID[ranked[i].Record.ID] = i
		snap.folded[i] = strings.ToLower(ranked[i].Record.ID + " " + ranked[i].Record.Name)
	}
	s.snap.Store(snap)
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (model.ScoredRecord, error) {
	e, err := s.Rank(ctx, id)
	return e.Record, err
}

// Rank implements Store.
func (s *MemoryStore) Rank(_ context.Context, id string) (Entry, error) {
	snap := s.snap.Load()
	i, ok := snap.byID[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return snap.ranked[i], nil
}

// TopN implements Store.
func (s *MemoryStore) TopN(_ context.Context, n int) ([]Entry, error) {
	if err := s.checkLimit(n); err != nil {
		return nil, err
	}
	snap := s.snap.Load()
	n = min(n, len(snap.ranked))
	out := make([]Entry, n)
	copy(out, snap.ranked[:n])
	return out, nil
}

// Search implements Store.
func (s *MemoryStore) Search(_ context.Context, q string, limit int) ([]Entry, error) {
	if err := s.checkLimit(limit); err != nil {
		return nil, err
	}
	q = strings.ToLower(strings.TrimSpace(q))
	snap := s.snap.Load()
	var out []Entry
	for i, f := range snap.folded {
		if len(out) == limit {
			break
		}
		if strings.Contains(f, q) {
			out = append(out, snap.ranked[i])
		}
	}
	return out, nil
}

// Count implements Store.
func (s *MemoryStore) Count(context.Context) int {
	return len(s.snap.Load().ranked)
}

func (s *MemoryStore) checkLimit(n int) error {
	if n <= 0 || n > s.maxLimit {
		return fmt.Errorf("%w: %d (max %d)", ErrInvalidLimit, n, s.maxLimit)
	}
	return nil
}
