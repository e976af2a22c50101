// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/scorekeep/scorekeep/internal/domain/event"
	"github.com/scorekeep/scorekeep/internal/domain/podium"
	"github.com/scorekeep/scorekeep/internal/domain/standings"
)

// PodiumDependencies defines the interface for podium operations.
type PodiumDependencies interface {
	Adjust(ctx context.Context, events []podium.Event) error
	PodiumStandings(ctx context.Context) ([]standings.DivisionStanding, error)
	Adjustments(ctx context.Context) (*podium.Adjustments, error)
}

// PodiumHandler handles podium curation requests.
type PodiumHandler struct {
	deps PodiumDependencies
}

// NewPodiumHandler creates a new podium handler.
func NewPodiumHandler(deps PodiumDependencies) *PodiumHandler {
	return &PodiumHandler{deps: deps}
}

// adjustmentRequest mirrors the wire shape for POST /podium/events.
type adjustmentRequest struct {
	ID         string `json:"id"`
	TS         string `json:"ts"`
	Type       string `json:"type"`
	DivisionID string `json:"division_id"`
	CategoryID string `json:"category_id"`
	PlayerID   string `json:"player_id"`
}

func (a adjustmentRequest) toEvent() (podium.Event, error) {
	if a.ID == "" {
		return podium.Event{}, errors.New("missing id")
	}
	if a.DivisionID == "" || a.CategoryID == "" || a.PlayerID == "" {
		return podium.Event{}, errors.New("missing division_id, category_id, or player_id")
	}
	ts, err := time.Parse(time.RFC3339Nano, a.TS)
	if err != nil {
		return podium.Event{}, errors.New("invalid ts; must be RFC3339")
	}
	evtType := podium.EventType(a.Type)
	switch evtType {
	case podium.TypeRemovePlayer, podium.TypeRestorePlayer:
	default:
		return podium.Event{}, errors.New("invalid type; must be \"remove-player\" or \"restore-player\"")
	}
	return podium.Event{
		ID:         event.ID(a.ID),
		TS:         ts,
		Type:       evtType,
		DivisionID: a.DivisionID,
		CategoryID: a.CategoryID,
		PlayerID:   a.PlayerID,
	}, nil
}

// HandlePostAdjustments handles POST /podium/events requests.
func (h *PodiumHandler) HandlePostAdjustments(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_podium_events"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var reqs []adjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(reqs) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	events := make([]podium.Event, 0, len(reqs))
	for _, req := range reqs {
		evt, err := req.toEvent()
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		events = append(events, evt)
	}
	if err := h.deps.Adjust(r.Context(), events); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "applied", "count": len(events)})
}

// HandleGetPodium handles GET /podium requests: the curated standings
// view with removals applied, ranks recomputed, and entries truncated
// to the podium depth.
func (h *PodiumHandler) HandleGetPodium(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_podium"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	divs, err := h.deps.PodiumStandings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, toDivisionResponses(divs))
}

// HandleGetAdjustments handles GET /podium/adjustments requests,
// exposing the current removal sets for audit.
func (h *PodiumHandler) HandleGetAdjustments(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_podium_adjustments"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	adj, err := h.deps.Adjustments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, adj)
}
