package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/expiryguard/expiryguard/internal/httpserver/deps"
)

type componentStatus struct {
	OK       bool   `json:"ok"`
	Mode     string `json:"mode,omitempty"`
	Schedule string `json:"schedule,omitempty"`
	Timezone string `json:"timezone,omitempty"`
	Error    string `json:"error,omitempty"`
}

type lastRunStatus struct {
	Ran        bool   `json:"ran"`
	Started    string `json:"started,omitempty"`
	Candidates int    `json:"candidates,omitempty"`
	Sent       int    `json:"sent,omitempty"`
	UrgentHits int    `json:"urgent_hits,omitempty"`
	TookMs     int64  `json:"took_ms,omitempty"`
	Error      string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
	LastRun    lastRunStatus              `json:"last_run"`
}

// Infra reports component health: store reachability, channel
// configuration, schedule state, and the outcome of the last
// reconciliation run.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		components := map[string]componentStatus{
			"store":     checkStore(d),
			"notify":    checkChannels(d),
			"scheduler": checkScheduler(d),
		}

		response := infraResponse{
			Mode:       determineMode(components),
			Components: components,
			LastRun:    lastRun(d),
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// determineMode collapses component health into a single word for
// dashboards: critical when the store is down, degraded when no channel
// can deliver, nominal otherwise.
func determineMode(components map[string]componentStatus) string {
	if store, exists := components["store"]; exists && !store.OK {
		return "critical"
	}
	if n, exists := components["notify"]; exists && !n.OK {
		return "degraded"
	}
	return "nominal"
}

func checkStore(d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{OK: true, Mode: "memory"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{OK: false, Mode: "redis", Error: "unreachable"}
	}
	return componentStatus{OK: true, Mode: "redis"}
}

func checkChannels(d deps.Deps) componentStatus {
	if d.Dispatcher == nil || !d.Dispatcher.Configured() {
		return componentStatus{OK: false, Error: "no notification channel configured"}
	}
	return componentStatus{OK: true}
}

func checkScheduler(d deps.Deps) componentStatus {
	if d.Job == nil || !d.Job.Enabled() {
		return componentStatus{OK: true, Mode: "manual-only"}
	}
	return componentStatus{
		OK:       true,
		Mode:     "cron",
		Schedule: d.ScheduleCron,
		Timezone: d.ScheduleTZ,
	}
}

func lastRun(d deps.Deps) lastRunStatus {
	if d.Job == nil {
		return lastRunStatus{}
	}

	st := d.Job.Status()
	if !st.HasRun {
		return lastRunStatus{Ran: false}
	}

	out := lastRunStatus{
		Ran:        true,
		Started:    st.Summary.Started.Format(time.RFC3339),
		Candidates: st.Summary.Candidates,
		Sent:       st.Summary.Sent,
		UrgentHits: len(st.Summary.Urgent),
		TookMs:     st.Summary.Took.Milliseconds(),
	}
	if st.Err != nil {
		out.Error = st.Err.Error()
	}
	return out
}
