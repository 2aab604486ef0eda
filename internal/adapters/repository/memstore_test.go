package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/okian/ecoscore/internal/domain/model"
)

func records() []model.ScoredRecord {
	return []model.ScoredRecord{
		{ID: "2", Name: "Miel", Score: 53.3, Grade: "C"},
		{ID: "1", Name: "Confiture d'abricot", Score: 91.3, Grade: "A"},
		{ID: "3", Name: "Confiture de fraise", Score: 53.3, Grade: "C"},
	}
}

func TestMemoryStore_Ranking(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(records())

	if count := store.Count(ctx); count != 3 {
		t.Fatalf("expected count 3, got %d", count)
	}

	entries, err := store.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"1", "2", "3"}
	for i, e := range entries {
		if e.Record.ID != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], e.Record.ID)
		}
		if e.Rank != i+1 {
			t.Errorf("position %d: expected rank %d, got %d", i, i+1, e.Rank)
		}
	}

	// Ties break on id.
	entry, err := store.Rank(ctx, "3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Rank != 3 {
		t.Errorf("expected rank 3, got %d", entry.Rank)
	}
}

func TestMemoryStore_Get(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(records())

	rec, err := store.Get(ctx, "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Name != "Miel" {
		t.Errorf("expected Miel, got %s", rec.Name)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_Search(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(records())

	tests := []struct {
		q     string
		limit int
		want  []string
	}{
		{"confiture", 10, []string{"1", "3"}},
		{"CONFITURE", 1, []string{"1"}},
		{"", 10, []string{"1", "2", "3"}},
		{"2", 10, []string{"2"}},
		{"chocolat", 10, nil},
	}
	for _, tt := range tests {
		got, err := store.Search(ctx, tt.q, tt.limit)
		if err != nil {
			t.Fatalf("search %q: unexpected error: %v", tt.q, err)
		}
		if len(got) != len(tt.want) {
			t.Errorf("search %q: expected %d entries, got %d", tt.q, len(tt.want), len(got))
			continue
		}
		for i := range got {
			if got[i].Record.ID != tt.want[i] {
				t.Errorf("search %q: position %d expected %s, got %s", tt.q, i, tt.want[i], got[i].Record.ID)
			}
		}
	}
}

func TestMemoryStore_Limits(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(records(), WithMaxLimit(2))

	for _, n := range []int{0, -1, 3} {
		if _, err := store.TopN(ctx, n); !errors.Is(err, ErrInvalidLimit) {
			t.Errorf("TopN(%d): expected ErrInvalidLimit, got %v", n, err)
		}
	}
	if _, err := store.Search(ctx, "", 3); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}

	entries, err := store.TopN(ctx, 2)
	if err != nil || len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d (%v)", len(entries), err)
	}
}

func TestMemoryStore_LoadWhileReading(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(records())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				entries, err := store.TopN(ctx, 10)
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				if n := len(entries); n != 1 && n != 3 {
					t.Errorf("torn snapshot: %d entries", n)
					return
				}
			}
		}()
	}
	for j := 0; j < 50; j++ {
		if j%2 == 0 {
			store.Load(records()[:1])
		} else {
			store.Load(records())
		}
	}
	wg.Wait()
}
