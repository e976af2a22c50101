// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/scorekeep/scorekeep/internal/adapters/repository"
	"github.com/scorekeep/scorekeep/internal/domain/event"
	"github.com/scorekeep/scorekeep/internal/domain/podium"
	"github.com/scorekeep/scorekeep/internal/domain/results"
	"github.com/scorekeep/scorekeep/internal/domain/standings"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Submit folds a batch of scoring events into the projection and
	// returns per-event rejections.
	Submit(ctx context.Context, batch []event.Event) ([]results.Rejection, error)

	// Adjust appends podium adjustment events.
	Adjust(ctx context.Context, events []podium.Event) error

	// Read operations expose standings data.
	Standings(ctx context.Context) ([]standings.DivisionStanding, error)
	DivisionStandings(ctx context.Context, divisionID string) (standings.DivisionStanding, error)
	PodiumStandings(ctx context.Context) ([]standings.DivisionStanding, error)
	Adjustments(ctx context.Context) (*podium.Adjustments, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	eventsHandler    *EventsHandler
	standingsHandler *StandingsHandler
	podiumHandler    *PodiumHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		eventsHandler:    NewEventsHandler(deps),
		standingsHandler: NewStandingsHandler(deps),
		podiumHandler:    NewPodiumHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandlePostEvents, "events"))
	mux.HandleFunc("/standings", MetricsMiddleware(s.standingsHandler.HandleGetStandings, "standings"))
	mux.HandleFunc("/standings/", MetricsMiddleware(s.standingsHandler.HandleGetDivision, "standings_division"))
	mux.HandleFunc("/podium", MetricsMiddleware(s.podiumHandler.HandleGetPodium, "podium"))
	mux.HandleFunc("/podium/events", MetricsMiddleware(s.podiumHandler.HandlePostAdjustments, "podium_events"))
	mux.HandleFunc("/podium/adjustments", MetricsMiddleware(s.podiumHandler.HandleGetAdjustments, "podium_adjustments"))
}

// eventRequest mirrors the wire envelope for POST /events.
type eventRequest struct {
	Kind         string   `json:"kind"`
	ID           string   `json:"id"`
	TS           string   `json:"ts"`
	PlayerID     string   `json:"player_id"`
	MetricID     string   `json:"metric_id"`
	State        string   `json:"state"`
	Value        *float64 `json:"value"`
	PriorEventID string   `json:"prior_event_id"`
	Note         string   `json:"note"`
}

// toEvent validates the request and converts it into a domain event.
func (e eventRequest) toEvent() (event.Event, error) {
	if e.ID == "" {
		return nil, errors.New("missing id")
	}
	if e.PlayerID == "" {
		return nil, errors.New("missing player_id")
	}
	ts, err := time.Parse(time.RFC3339Nano, e.TS)
	if err != nil {
		return nil, errors.New("invalid ts; must be RFC3339")
	}
	switch e.Kind {
	case event.KindItemStateChanged:
		if e.MetricID == "" {
			return nil, errors.New("missing metric_id")
		}
		state := event.ItemState(e.State)
		switch state {
		case event.StateValue:
			if e.Value == nil {
				return nil, errors.New("missing value for state \"value\"")
			}
		case event.StateEmpty:
			if e.Value != nil {
				return nil, errors.New("value not allowed for state \"empty\"")
			}
		default:
			return nil, errors.New("invalid state; must be \"value\" or \"empty\"")
		}
		evt := event.ItemStateChanged{
			ID:           event.ID(e.ID),
			TS:           ts,
			PlayerID:     e.PlayerID,
			MetricID:     e.MetricID,
			State:        state,
			PriorEventID: event.ID(e.PriorEventID),
			Note:         e.Note,
		}
		if e.Value != nil {
			evt.Value = *e.Value
		}
		return evt, nil
	case event.KindScorecardVoided:
		return event.ScorecardVoided{
			ID:       event.ID(e.ID),
			TS:       ts,
			PlayerID: e.PlayerID,
			Note:     e.Note,
		}, nil
	default:
		return nil, errors.New("unknown kind")
	}
}

// rejectionResponse is the per-event validation feedback in the submit ack.
type rejectionResponse struct {
	EventID string `json:"event_id"`
	Reason  string `json:"reason"`
}

type submitResponse struct {
	Applied   int                 `json:"applied"`
	Rejected  []rejectionResponse `json:"rejected"`
	Submitted int                 `json:"submitted"`
}

// Read-side shapes. Domain standings types carry no wire tags; the API
// owns the JSON contract.
type entryResponse struct {
	PlayerID  string  `json:"player_id"`
	Rank      int     `json:"rank"`
	Score     float64 `json:"score"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"item_count"`
	TS        string  `json:"ts"`
}

type categoryResponse struct {
	CategoryID string          `json:"category_id"`
	Name       string          `json:"name"`
	Entries    []entryResponse `json:"entries"`
}

type divisionResponse struct {
	DivisionID string             `json:"division_id"`
	Name       string             `json:"name"`
	Categories []categoryResponse `json:"categories"`
}

func toDivisionResponse(div standings.DivisionStanding) divisionResponse {
	out := divisionResponse{
		DivisionID: div.DivisionID,
		Name:       div.Name,
		Categories: make([]categoryResponse, 0, len(div.Categories)),
	}
	for _, cat := range div.Categories {
		cr := categoryResponse{
			CategoryID: cat.CategoryID,
			Name:       cat.Name,
			Entries:    make([]entryResponse, 0, len(cat.Entries)),
		}
		for _, entry := range cat.Entries {
			cr.Entries = append(cr.Entries, entryResponse{
				PlayerID:  entry.PlayerID,
				Rank:      entry.Rank,
				Score:     entry.Score,
				Total:     entry.Total,
				ItemCount: entry.ItemCount,
				TS:        entry.TS.UTC().Format(time.RFC3339Nano),
			})
		}
		out.Categories = append(out.Categories, cr)
	}
	return out
}

func toDivisionResponses(divs []standings.DivisionStanding) []divisionResponse {
	out := make([]divisionResponse, 0, len(divs))
	for _, div := range divs {
		out = append(out, toDivisionResponse(div))
	}
	return out
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
