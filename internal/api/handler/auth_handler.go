package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sessionlab/gatekeeper/internal/api/metrics"
	"github.com/sessionlab/gatekeeper/internal/api/middleware"
	"github.com/sessionlab/gatekeeper/internal/core/domain"
	"github.com/sessionlab/gatekeeper/internal/core/ports"
)

type AuthHandler struct {
	authService  ports.AuthService
	secureCookie bool
}

// NewAuthHandler builds the auth endpoints. secureCookie marks the session
// cookie Secure; set it whenever the service runs behind TLS.
func NewAuthHandler(authService ports.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookie: secureCookie}
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string                 `json:"token,omitempty"`
	User  *domain.PublicIdentity `json:"user,omitempty"`
}

type sessionResponse struct {
	LoggedIn  bool                   `json:"logged_in"`
	User      *domain.PublicIdentity `json:"user,omitempty"`
	ExpiresAt *time.Time             `json:"expires_at,omitempty"`
}

// Signup registers a new identity.
//
// @Summary      Register a new identity
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Signup credentials"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	identity, err := h.authService.Signup(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrIdentityExists):
			// The one deliberate deviation from generic auth errors:
			// signup conflicts are reported specifically.
			metrics.SignupsTotal.WithLabelValues("conflict").Inc()
			return c.JSON(http.StatusConflict, map[string]string{"error": "identity already exists"})
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.SignupsTotal.WithLabelValues("invalid").Inc()
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing fields"})
		default:
			metrics.SignupsTotal.WithLabelValues("error").Inc()
			return err
		}
	}

	metrics.SignupsTotal.WithLabelValues("created").Inc()
	pub := identity.Public()
	return c.JSON(http.StatusCreated, authResponse{User: &pub})
}

// Login verifies credentials and issues a session. The reference is returned
// both as a bearer token in the body and as an HttpOnly cookie; every
// authentication failure is the same generic 401.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.LoginDuration.Observe(time.Since(start).Seconds())
	}()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	reference, identity, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.setSessionCookie(c, reference)
	pub := identity.Public()
	return c.JSON(http.StatusOK, authResponse{Token: reference, User: &pub})
}

// Logout revokes the presented session and clears the cookie. Idempotent:
// calling it with no active session still returns 204.
//
// @Summary      Logout
// @Tags         auth
// @Success      204  "no content"
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	reference := middleware.SessionReference(c)
	if err := h.authService.Logout(c.Request().Context(), reference); err != nil {
		metrics.LogoutsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.LogoutsTotal.WithLabelValues("ok").Inc()
	h.clearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}

// Session is the current-session query backing client-side UI state: it
// reports whether the presented reference is currently valid and for whom.
// Display purposes only; protected resources go through the gate.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	reference := middleware.SessionReference(c)
	sess, _, err := h.authService.Session(c.Request().Context(), reference)
	if err != nil {
		if errors.Is(err, domain.ErrSessionInvalid) {
			return c.JSON(http.StatusOK, sessionResponse{LoggedIn: false})
		}
		return err
	}

	resp := sessionResponse{LoggedIn: true}
	subject := sess.Subject()
	resp.User = &subject
	if !sess.ExpiresAt.IsZero() {
		resp.ExpiresAt = &sess.ExpiresAt
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) setSessionCookie(c echo.Context, reference string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    reference,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
