// Package repository serves the latest computed standings for reads.
//
// The snapshot is replaced division-by-division after every recompute;
// readers never see a half-updated division.
package repository

import (
	"context"

	"github.com/scorekeep/scorekeep/internal/domain/standings"
)

// Store provides read/write access to the current standings snapshot.
type Store interface {
	// Update replaces the stored standings for each given division.
	Update(ctx context.Context, divs []standings.DivisionStanding) error

	// Division returns one division's standings. Returns ErrNotFound
	// for unknown divisions.
	Division(ctx context.Context, id string) (standings.DivisionStanding, error)

	// All returns every division's standings in first-seen order.
	All(ctx context.Context) ([]standings.DivisionStanding, error)

	// Count returns the number of divisions tracked.
	Count(ctx context.Context) int
}
