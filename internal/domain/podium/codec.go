package podium

import (
	"encoding/json"
	"sort"
)

// wire is the plain nested-map representation adjustments round-trip
// through for persistence and transport:
//
//	{"removed": {divisionId: {categoryId: [playerId, ...]}}}
//
// The shape is part of the contract with the surrounding system and
// must stay bit-compatible.
type wire struct {
	Removed map[string]map[string][]string `json:"removed"`
}

// MarshalJSON encodes the projection into the wire shape. Player lists
// are sorted for a stable representation.
func (a *Adjustments) MarshalJSON() ([]byte, error) {
	w := wire{Removed: make(map[string]map[string][]string, len(a.removed))}
	for divID, division := range a.removed {
		categories := make(map[string][]string, len(division))
		for catID, category := range division {
			if len(category) == 0 {
				continue
			}
			players := make([]string, 0, len(category))
			for playerID := range category {
				players = append(players, playerID)
			}
			sort.Strings(players)
			categories[catID] = players
		}
		if len(categories) > 0 {
			w.Removed[divID] = categories
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the wire shape. Malformed input yields an
// error; use Decode for the lenient absent-or-malformed-means-empty
// behavior.
func (a *Adjustments) UnmarshalJSON(data []byte) error {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	a.removed = make(map[string]map[string]map[string]struct{}, len(w.Removed))
	for divID, categories := range w.Removed {
		for catID, players := range categories {
			for _, playerID := range players {
				a.Apply(Event{Type: TypeRemovePlayer, DivisionID: divID, CategoryID: catID, PlayerID: playerID})
			}
		}
	}
	return nil
}

// Decode deserializes adjustments from the wire shape. Absent or
// malformed input yields empty adjustments rather than failing, so a
// missing persisted blob never blocks a podium ceremony.
func Decode(data []byte) *Adjustments {
	a := NewAdjustments()
	if len(data) == 0 {
		return a
	}
	if err := json.Unmarshal(data, a); err != nil {
		return NewAdjustments()
	}
	return a
}
