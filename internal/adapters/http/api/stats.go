// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
)

// StatsProvider exposes runtime counters from the scoring service for
// the stats endpoint: projection sizes, configuration, started state.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves the service's runtime counters.
type StatsHandler struct {
	stats StatsProvider
}

// NewStatsHandler creates a stats handler backed by the given provider.
func NewStatsHandler(stats StatsProvider) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(h.stats.GetStats())
}
