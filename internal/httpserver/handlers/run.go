package handlers

import (
	"net/http"

	"github.com/expiryguard/expiryguard/internal/httpserver/deps"
	"github.com/expiryguard/expiryguard/internal/logger"
)

// Run triggers a manual reconciliation pass. When seeding is enabled the
// seed file is re-imported first so the run sees a fresh inventory. The
// trigger channels are non-blocking: a run already pending answers 429.
func Run(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.SeedReloadTrigger != nil {
			select {
			case d.SeedReloadTrigger <- struct{}{}:
				d.Logger.Info("manual seed reload triggered via endpoint",
					logger.String("remote_ip", r.RemoteAddr))
			default:
				d.Logger.Warn("seed reload already in progress",
					logger.String("remote_ip", r.RemoteAddr))
			}
		}

		select {
		case d.RunTrigger <- struct{}{}:
			d.Logger.Info("manual reconciliation triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusAccepted)
			if _, err := w.Write([]byte("reconciliation run triggered\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
		default:
			d.Logger.Warn("reconciliation run already pending",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusTooManyRequests)
			if _, err := w.Write([]byte("a run is already pending, please wait\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
		}
	}
}
