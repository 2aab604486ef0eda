// Package repository holds the read-only catalog of scored products served
// by the preview server.
package repository

import (
	"context"

	"github.com/okian/ecoscore/internal/domain/model"
)

// Entry is a catalog row: a scored record and its position in the ranking.
type Entry struct {
	Rank   int                `json:"rank"`
	Record model.ScoredRecord `json:"record"`
}

// Store provides read access to the records of one build.
type Store interface {
	// Get returns the record of a product. Returns ErrNotFound if unknown.
	Get(ctx context.Context, id string) (model.ScoredRecord, error)

	// Rank returns the product's position ordered by score desc, id asc.
	// Returns ErrNotFound if the product is unknown.
	Rank(ctx context.Context, id string) (Entry, error)

	// TopN returns the n best entries.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Search returns up to limit entries whose id or name contains q,
	// case-insensitively, in ranking order. An empty q matches everything.
	Search(ctx context.Context, q string, limit int) ([]Entry, error)

	// Count returns the number of products in the catalog.
	Count(ctx context.Context) int
}
