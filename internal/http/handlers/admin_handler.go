package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/covenantconf/registration-api/internal/domain"
	"github.com/covenantconf/registration-api/internal/http/response"
	"github.com/covenantconf/registration-api/internal/platform/auth"
	mw "github.com/covenantconf/registration-api/pkg/middleware"
	"github.com/covenantconf/registration-api/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies the admin credentials and sets the session cookie.
// Attempts are rate-limited per client address.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.Configured() {
		response.InternalError(w, "Admin sessions are not configured.")
		return
	}

	ip := mw.RealIP(r)
	// A limiter store failure is logged and the attempt falls through
	// to credential verification, which still gates the login.
	blocked, err := h.limiter.Blocked(r.Context(), ip)
	if err != nil {
		logger.WarnContext(r.Context(), "Login limiter check failed", "error", err)
	}
	if blocked {
		response.RateLimit(w, "Too many attempts. Try again later.")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	if !domain.ValidEmail(strings.TrimSpace(req.Email)) || req.Password == "" {
		response.BadRequest(w, "Valid email and password are required.")
		return
	}

	if !h.credentials.Verify(req.Email, req.Password) {
		if err := h.limiter.RecordFailure(r.Context(), ip); err != nil {
			logger.WarnContext(r.Context(), "Failed to record login failure", "error", err)
		}
		response.Unauthorized(w, "Invalid credentials.")
		return
	}

	if err := h.limiter.Clear(r.Context(), ip); err != nil {
		logger.WarnContext(r.Context(), "Failed to clear login attempts", "error", err)
	}

	token, err := h.sessions.Issue(time.Now())
	if err != nil {
		response.InternalError(w, "Admin session could not be created.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.secureCookies,
		MaxAge:   int(h.sessions.Duration().Seconds()),
	})

	response.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Logout clears the session cookie.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.secureCookies,
		MaxAge:   -1,
	})

	response.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// GetSettings returns the admission-control record.
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.registrations.GetSettings(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, settings)
}

type settingsRequest struct {
	Enabled     *bool      `json:"enabled"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
	MaxCapacity *int       `json:"maxCapacity"`
}

// UpdateSettings replaces the admission-control record. The enabled,
// startsAt and endsAt keys must all be present so a partial body can
// never zero out fields the caller did not mention.
func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	for _, key := range []string{"enabled", "startsAt", "endsAt"} {
		if _, ok := raw[key]; !ok {
			response.BadRequest(w, "Invalid settings.")
			return
		}
	}

	var req settingsRequest
	if err := json.Unmarshal(body, &req); err != nil || req.Enabled == nil {
		response.BadRequest(w, "Invalid settings.")
		return
	}

	settings := domain.Settings{
		Enabled:     *req.Enabled,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		MaxCapacity: req.MaxCapacity,
	}

	updated, err := h.registrations.UpdateSettings(r.Context(), settings)
	if errors.Is(err, domain.ErrEndBeforeStart) {
		response.ValidationFailed(w, map[string][]string{
			"endsAt": {"End date must be after start date."},
		})
		return
	}
	if errors.Is(err, domain.ErrInvalidCapacity) {
		response.ValidationFailed(w, map[string][]string{
			"maxCapacity": {"Max capacity must be a positive number."},
		})
		return
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, updated)
}
