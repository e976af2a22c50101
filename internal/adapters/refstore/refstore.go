// Package refstore provides read-only reference data access: an
// in-memory refdata.Reader populated from a YAML file or directly by
// tests.
package refstore

import (
	"context"

	"github.com/scorekeep/scorekeep/internal/domain/refdata"
)

// Memory implements refdata.Reader over a fixed division list.
type Memory struct {
	divisions []refdata.Division
	byID      map[string]refdata.Division
}

// NewMemory creates a reader over the given divisions, kept in the
// given order.
func NewMemory(divisions ...refdata.Division) *Memory {
	m := &Memory{
		divisions: divisions,
		byID:      make(map[string]refdata.Division, len(divisions)),
	}
	for _, div := range divisions {
		m.byID[div.ID] = div
	}
	return m
}

// Division implements refdata.Reader.
func (m *Memory) Division(ctx context.Context, id string) (refdata.Division, bool, error) {
	if err := ctx.Err(); err != nil {
		return refdata.Division{}, false, err
	}
	div, ok := m.byID[id]
	return div, ok, nil
}

// Divisions implements refdata.Reader.
func (m *Memory) Divisions(ctx context.Context) ([]refdata.Division, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]refdata.Division, len(m.divisions))
	copy(out, m.divisions)
	return out, nil
}
