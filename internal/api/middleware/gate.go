package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sessionlab/gatekeeper/internal/api/metrics"
	"github.com/sessionlab/gatekeeper/internal/core/domain"
)

// SessionCookieName is the cookie carrying the session reference for browser
// clients. API clients send the same reference as a bearer token.
const SessionCookieName = "gk_session"

// sessionContextKey is where the gate stores the validated session for
// downstream handlers.
const sessionContextKey = "gk.session"

// SessionValidator is the single authoritative check the gate consults. Both
// the API path and any page-rendering path go through it, so the two can
// never disagree about the same reference.
type SessionValidator interface {
	Session(ctx context.Context, reference string) (*domain.Session, time.Duration, error)
}

// Gate admits or denies access to protected resources. Each request walks the
// same path: no decision yet, validate the presented reference, then granted
// (session stored in context, handler runs) or denied. Denials redirect
// browser requests to loginURL and answer API requests with a generic 401;
// only store unavailability escapes as a server error.
func Gate(validator SessionValidator, loginURL string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reference := SessionReference(c)
			if reference == "" {
				return deny(c, loginURL)
			}

			sess, _, err := validator.Session(c.Request().Context(), reference)
			if err != nil {
				if errors.Is(err, domain.ErrSessionInvalid) {
					metrics.SessionValidationsTotal.WithLabelValues("invalid").Inc()
					return deny(c, loginURL)
				}
				metrics.SessionValidationsTotal.WithLabelValues("error").Inc()
				return err
			}

			metrics.SessionValidationsTotal.WithLabelValues("valid").Inc()
			metrics.GateDecisionsTotal.WithLabelValues("granted").Inc()
			c.Set(sessionContextKey, sess)
			return next(c)
		}
	}
}

func deny(c echo.Context, loginURL string) error {
	metrics.GateDecisionsTotal.WithLabelValues("denied").Inc()
	if loginURL != "" && wantsHTML(c) {
		return c.Redirect(http.StatusFound, loginURL)
	}
	return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
}

// SessionReference extracts the presented session reference: the
// Authorization bearer token when present, otherwise the session cookie.
// Returns "" when neither is presented.
func SessionReference(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// SessionFrom returns the session the gate stored for this request, or nil
// when the route is not behind the gate.
func SessionFrom(c echo.Context) *domain.Session {
	sess, _ := c.Get(sessionContextKey).(*domain.Session)
	return sess
}

func wantsHTML(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get("Accept"), echo.MIMETextHTML)
}
