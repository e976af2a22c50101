// Package simulate drives a running scorekeep instance with a
// synthetic tournament: generated players, scorecard events including
// corrections and voids, and read-back verification of the standings
// endpoints.
package simulate

import "time"

// Config holds configuration for the simulation run.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumPlayers int           // Number of players to generate
	Metrics    []string      // Metric ids to score per player
	BatchSize  int           // Events per POST /events call
	Workers    int           // Number of concurrent submitters
	Timeout    time.Duration // HTTP request timeout
	Verbose    bool          // Enable verbose logging
}

// wireEvent mirrors the POST /events envelope.
type wireEvent struct {
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

// submitAck mirrors the POST /events response.
type submitAck struct {
	Submitted int `json:"submitted"`
	Applied   int `json:"applied"`
	Rejected  []struct {
		EventID string `json:"event_id"`
		Reason  string `json:"reason"`
	} `json:"rejected"`
}

// wireEntry mirrors a standings entry in read responses.
type wireEntry struct {
	PlayerID  string  `json:"player_id"`
	Rank      int     `json:"rank"`
	Score     float64 `json:"score"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"item_count"`
}

type wireCategory struct {
	CategoryID string      `json:"category_id"`
	Name       string      `json:"name"`
	Entries    []wireEntry `json:"entries"`
}

type wireDivision struct {
	DivisionID string         `json:"division_id"`
	Name       string         `json:"name"`
	Categories []wireCategory `json:"categories"`
}

// Stats holds simulation statistics.
type Stats struct {
	EventsGenerated int
	EventsSubmitted int
	EventsApplied   int
	EventsRejected  int
	BatchesFailed   int
	DivisionsRead   int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
