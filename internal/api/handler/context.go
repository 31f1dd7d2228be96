package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sessionlab/gatekeeper/internal/api/middleware"
	"github.com/sessionlab/gatekeeper/internal/core/domain"
)

// ctxSession extracts the session the gate stored for this request and
// fast-fails before any handler logic runs. A nil session on a gated route
// means the route was wired without the middleware; refuse with 401 rather
// than serve ungated.
func ctxSession(c echo.Context) (*domain.Session, error) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return sess, nil
}
