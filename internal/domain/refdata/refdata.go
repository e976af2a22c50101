// Package refdata holds the read-only competition reference data:
// categories, divisions, and their links. This core never writes
// reference data; it is maintained by the surrounding system.
package refdata

import "context"

// Direction controls how a category ranks scores.
type Direction string

const (
	// Ascending means lower scores win (times, penalties).
	Ascending Direction = "ascending"
	// Descending means higher scores win (points, distances).
	Descending Direction = "descending"
)

// Category is a scored grouping of metrics with a ranking direction and
// an ordered list of standing rule names applied to every candidate.
type Category struct {
	ID        string
	Name      string
	Direction Direction
	// MetricIDs is the ordered set of metrics summed into the category
	// total.
	MetricIDs []string
	// Rules names the standing rules run, in order, against each
	// candidate row.
	Rules []string
}

// CategoryLink attaches a category to a division with podium depth and
// display order.
type CategoryLink struct {
	Category Category
	// Depth caps the podium list for this category; 0 falls back to the
	// service-wide default.
	Depth int
	Order int
}

// Division is a named grouping of categories plus an eligible-player
// roster. An empty roster means every player is eligible.
type Division struct {
	ID              string
	Name            string
	Categories      []CategoryLink
	EligiblePlayers []string
}

// Eligible reports whether playerID may appear in this division's
// standings.
func (d Division) Eligible(playerID string) bool {
	if len(d.EligiblePlayers) == 0 {
		return true
	}
	for _, id := range d.EligiblePlayers {
		if id == playerID {
			return true
		}
	}
	return false
}

// Reader provides read-only access to divisions and their category
// links.
type Reader interface {
	// Division returns one division by id. The second result is false
	// when the division is unknown.
	Division(ctx context.Context, id string) (Division, bool, error)
	// Divisions returns every division in configured order.
	Divisions(ctx context.Context) ([]Division, error)
}
