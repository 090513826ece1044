package middleware

import (
	"net/http"

	"github.com/angelmondragon/rocketcart/api/validators"
	"github.com/angelmondragon/rocketcart/internal/session"
	"github.com/angelmondragon/rocketcart/pkg/logger"
)

// SessionHeader carries the cart session id in both directions.
const SessionHeader = "X-Cart-Session"

// Session binds every request to a cart session, issuing a new id when the
// client sends none or an unrecognised one.
func Session(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := validators.SanitizeString(r.Header.Get(SessionHeader), 64)
			issued := !session.Valid(sessionID)
			if issued {
				sessionID = session.NewID()
			}

			w.Header().Set(SessionHeader, sessionID)

			ctx := WithSessionID(r.Context(), sessionID)
			if issued {
				ctx = withSessionIssued(ctx)
			}
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
