// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/scorekeep/scorekeep/internal/domain/event"
	"github.com/scorekeep/scorekeep/internal/domain/results"
)

// EventDependencies defines the interface for event submission.
type EventDependencies interface {
	Submit(ctx context.Context, batch []event.Event) ([]results.Rejection, error)
}

// EventsHandler handles scoring event submissions.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// HandlePostEvents handles POST /events requests. The body is a JSON
// array of event envelopes; the whole batch is folded in one call and
// the ack reports which events were rejected and why. Rejections are
// not an HTTP error: the rest of the batch is applied.
func (h *EventsHandler) HandlePostEvents(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_events"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var reqs []eventRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(reqs) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	batch := make([]event.Event, 0, len(reqs))
	for _, req := range reqs {
		evt, err := req.toEvent()
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		batch = append(batch, evt)
	}

	rejections, err := h.deps.Submit(r.Context(), batch)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	resp := submitResponse{
		Submitted: len(batch),
		Applied:   len(batch) - len(rejections),
		Rejected:  make([]rejectionResponse, 0, len(rejections)),
	}
	for _, rej := range rejections {
		resp.Rejected = append(resp.Rejected, rejectionResponse{
			EventID: string(rej.Event.EventID()),
			Reason:  rej.Message,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
