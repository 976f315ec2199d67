package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"starsystem-server/internal/auth"
	"starsystem-server/internal/shared/errors"
	"starsystem-server/internal/shared/response"

	"github.com/google/uuid"
)

// RequireOwner admits requests whose bearer token was issued for the system
// named by the {id} path value.
func RequireOwner(tokens *auth.TokenIssuer, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.With(
			"middleware", "owner",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)
		logger.Debug("Processing owner authentication")

		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			response.Error(w, r, logger, errors.Unauthorized("owner token required"))
			return
		}

		claims, err := tokens.Validate(strings.TrimSpace(raw))
		if err != nil {
			response.Error(w, r, logger, errors.Unauthorized("invalid token"))
			return
		}

		systemID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid system ID format", err))
			return
		}
		if claims.SystemID != systemID {
			response.Error(w, r, logger, errors.Forbidden("token does not own this star system"))
			return
		}

		logger.Debug("Owner authentication successful", "system_id", claims.SystemID)
		next.ServeHTTP(w, r)
	})
}
