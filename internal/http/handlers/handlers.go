package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/covenantconf/registration-api/internal/domain"
	"github.com/covenantconf/registration-api/internal/http/response"
	"github.com/covenantconf/registration-api/internal/platform/auth"
	"github.com/covenantconf/registration-api/internal/service"
	"github.com/covenantconf/registration-api/pkg/logger"
)

type Handlers struct {
	registrations service.RegistrationService
	sessions      *auth.SessionAuthority
	credentials   *auth.Credentials
	limiter       auth.LoginLimiter
	secureCookies bool
}

func New(
	registrations service.RegistrationService,
	sessions *auth.SessionAuthority,
	credentials *auth.Credentials,
	limiter auth.LoginLimiter,
	secureCookies bool,
) *Handlers {
	return &Handlers{
		registrations: registrations,
		sessions:      sessions,
		credentials:   credentials,
		limiter:       limiter,
		secureCookies: secureCookies,
	}
}

// RequireAdmin gates a route behind a valid admin session cookie.
func (h *Handlers) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(auth.SessionCookie)
		if err != nil {
			response.Unauthorized(w, "Unauthorized.")
			return
		}
		if err := h.sessions.Verify(cookie.Value, time.Now()); err != nil {
			response.Unauthorized(w, "Unauthorized.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// gateRejectionBody is the client-facing 403 payload when the
// admission gate is closed.
type gateRejectionBody struct {
	Message      string            `json:"message"`
	Reason       domain.GateReason `json:"reason"`
	CurrentCount int               `json:"currentCount"`
	MaxCapacity  *int              `json:"maxCapacity"`
}

// writeServiceError maps the service error taxonomy onto HTTP. Unknown
// errors are logged and reported as an opaque 500.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		response.ValidationFailed(w, validationErr.Fields)
		return
	}

	var rejection *domain.GateRejection
	if errors.As(err, &rejection) {
		response.WriteJSON(w, http.StatusForbidden, gateRejectionBody{
			Message:      rejection.Status.Message,
			Reason:       rejection.Status.Reason,
			CurrentCount: rejection.CurrentCount,
			MaxCapacity:  rejection.Status.MaxCapacity,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrDuplicate):
		response.Conflict(w, "Duplicate registration detected for the same name and contact number.")
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, "Registration not found.")
	case errors.Is(err, domain.ErrTimeout):
		response.Timeout(w, "The request took too long. Please try again.")
	default:
		logger.ErrorContext(r.Context(), "Unexpected service error", "error", err, "path", r.URL.Path)
		response.InternalError(w, "Unexpected server error.")
	}
}
