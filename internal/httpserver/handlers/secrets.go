package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/expiryguard/expiryguard/internal/domain"
	"github.com/expiryguard/expiryguard/internal/httpserver/deps"
	"github.com/expiryguard/expiryguard/internal/logger"
)

const dateLayout = "2006-01-02"

type secretResponse struct {
	*domain.Secret
	DaysRemaining int `json:"days_remaining"`
}

type createSecretRequest struct {
	Name       string `json:"name"`
	OwnerEmail string `json:"owner_email"`
	ExpiryDate string `json:"expiry_date"` // "2006-01-02"
	Notes      string `json:"notes,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListSecrets returns active secrets ordered by expiry, soonest first.
func ListSecrets(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := d.Store.List(r.Context())
		if err != nil {
			d.Logger.Error("failed to list secrets", logger.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "store unavailable"})
			return
		}

		today := domain.DateUTC(d.Now())
		out := make([]secretResponse, 0, len(all))
		for _, s := range all {
			if !s.Active {
				continue
			}
			out = append(out, secretResponse{Secret: s, DaysRemaining: s.DaysRemaining(today)})
		}
		sort.Slice(out, func(i, j int) bool {
			return out[i].ExpiryDate.Before(out[j].ExpiryDate)
		})

		writeJSON(w, http.StatusOK, out)
	}
}

// GetSecret returns one secret by ID.
func GetSecret(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		s, err := d.Store.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, errorResponse{Error: "secret not found"})
				return
			}
			d.Logger.Error("failed to get secret", logger.String("id", id), logger.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "store unavailable"})
			return
		}

		today := domain.DateUTC(d.Now())
		writeJSON(w, http.StatusOK, secretResponse{Secret: s, DaysRemaining: s.DaysRemaining(today)})
	}
}

// CreateSecret registers a new secret to monitor.
func CreateSecret(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSecretRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
			return
		}

		name := strings.TrimSpace(req.Name)
		owner := strings.TrimSpace(req.OwnerEmail)
		if name == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
			return
		}
		if owner == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "owner_email is required"})
			return
		}
		expiry, err := time.ParseInLocation(dateLayout, strings.TrimSpace(req.ExpiryDate), time.UTC)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "expiry_date must be formatted as " + dateLayout})
			return
		}

		now := d.Now().UTC()
		secret := &domain.Secret{
			ID:         uuid.NewString(),
			OwnerEmail: owner,
			Name:       name,
			ExpiryDate: expiry,
			Notes:      req.Notes,
			Active:     true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if err := d.Store.Save(r.Context(), secret); err != nil {
			d.Logger.Error("failed to save secret", logger.String("name", name), logger.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "store unavailable"})
			return
		}

		d.Logger.Info("secret registered",
			logger.String("id", secret.ID),
			logger.String("name", secret.Name))

		today := domain.DateUTC(now)
		writeJSON(w, http.StatusCreated, secretResponse{Secret: secret, DaysRemaining: secret.DaysRemaining(today)})
	}
}

// DeleteSecret deactivates a secret. The entry stays in the store with
// its notification history; it simply stops being reconciled.
func DeleteSecret(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		s, err := d.Store.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, errorResponse{Error: "secret not found"})
				return
			}
			d.Logger.Error("failed to get secret", logger.String("id", id), logger.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "store unavailable"})
			return
		}

		s.Active = false
		s.UpdatedAt = d.Now().UTC()
		if err := d.Store.Save(r.Context(), s); err != nil {
			d.Logger.Error("failed to deactivate secret", logger.String("id", id), logger.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "store unavailable"})
			return
		}

		d.Logger.Info("secret deactivated",
			logger.String("id", s.ID),
			logger.String("name", s.Name))

		w.WriteHeader(http.StatusNoContent)
	}
}
