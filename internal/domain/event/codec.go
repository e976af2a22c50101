package event

import (
	"encoding/json"
	"fmt"
	"time"
)

// Wire kinds for the JSON envelope. The same envelope is used by the
// HTTP layer and the durable event stores.
const (
	KindItemStateChanged = "item_state_changed"
	KindScorecardVoided  = "scorecard_voided"
)

// envelope is the flat JSON shape shared by both event kinds.
type envelope struct {
	Kind         string   `json:"kind"`
	ID           string   `json:"id"`
	TS           string   `json:"ts"`
	PlayerID     string   `json:"player_id"`
	MetricID     string   `json:"metric_id,omitempty"`
	State        string   `json:"state,omitempty"`
	Value        *float64 `json:"value,omitempty"`
	PriorEventID string   `json:"prior_event_id,omitempty"`
	Note         string   `json:"note,omitempty"`
}

// Marshal encodes an event into its JSON envelope.
func Marshal(e Event) ([]byte, error) {
	var env envelope
	switch evt := e.(type) {
	case ItemStateChanged:
		env = envelope{
			Kind:         KindItemStateChanged,
			ID:           string(evt.ID),
			TS:           evt.TS.UTC().Format(time.RFC3339Nano),
			PlayerID:     evt.PlayerID,
			MetricID:     evt.MetricID,
			State:        string(evt.State),
			PriorEventID: string(evt.PriorEventID),
			Note:         evt.Note,
		}
		if evt.State == StateValue {
			v := evt.Value
			env.Value = &v
		}
	case ScorecardVoided:
		env = envelope{
			Kind:     KindScorecardVoided,
			ID:       string(evt.ID),
			TS:       evt.TS.UTC().Format(time.RFC3339Nano),
			PlayerID: evt.PlayerID,
			Note:     evt.Note,
		}
	default:
		return nil, fmt.Errorf("marshal event: unknown kind %T", e)
	}
	b, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal event %s: %w", e.EventID(), err)
	}
	return b, nil
}

// Unmarshal decodes a JSON envelope back into an event. Unknown kinds
// fail decoding; the log never holds entries this package cannot read.
func Unmarshal(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, env.TS)
	if err != nil {
		return nil, fmt.Errorf("unmarshal event %s: bad ts: %w", env.ID, err)
	}
	switch env.Kind {
	case KindItemStateChanged:
		evt := ItemStateChanged{
			ID:           ID(env.ID),
			TS:           ts,
			PlayerID:     env.PlayerID,
			MetricID:     env.MetricID,
			State:        ItemState(env.State),
			PriorEventID: ID(env.PriorEventID),
			Note:         env.Note,
		}
		if env.Value != nil {
			evt.Value = *env.Value
		}
		return evt, nil
	case KindScorecardVoided:
		return ScorecardVoided{
			ID:       ID(env.ID),
			TS:       ts,
			PlayerID: env.PlayerID,
			Note:     env.Note,
		}, nil
	default:
		return nil, fmt.Errorf("unmarshal event %s: unknown kind %q", env.ID, env.Kind)
	}
}
