package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/expiryguard/expiryguard/internal/httpserver/deps"
	"github.com/expiryguard/expiryguard/internal/logger"
)

type notifyTestRequest struct {
	To string `json:"to,omitempty"` // email recipient; empty skips the email channel
}

type notifyTestResponse struct {
	Channels []channelResult `json:"channels"`
}

type channelResult struct {
	Channel string `json:"channel"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// NotifyTest fires a test message at every configured channel so an
// operator can verify delivery before trusting the schedule.
func NotifyTest(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Dispatcher == nil || !d.Dispatcher.Configured() {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no notification channel configured"})
			return
		}

		var req notifyTestRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
				return
			}
		}

		outcomes := d.Dispatcher.SendTest(r.Context(), req.To)

		resp := notifyTestResponse{Channels: make([]channelResult, 0, len(outcomes))}
		failed := 0
		for _, o := range outcomes {
			cr := channelResult{Channel: o.Channel, OK: o.Err == nil}
			if o.Err != nil {
				cr.Error = o.Err.Error()
				failed++
			}
			resp.Channels = append(resp.Channels, cr)
		}

		d.Logger.Info("test notification dispatched",
			logger.Int("channels", len(outcomes)),
			logger.Int("failed", failed))

		status := http.StatusOK
		if failed == len(outcomes) && len(outcomes) > 0 {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, resp)
	}
}
