package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sessionlab/gatekeeper/internal/api/middleware"
	"github.com/sessionlab/gatekeeper/internal/core/domain"
)

type stubAuthService struct {
	signupFn  func(ctx context.Context, email, password string) (*domain.Identity, error)
	loginFn   func(ctx context.Context, email, password string) (string, *domain.Identity, error)
	logoutFn  func(ctx context.Context, reference string) error
	sessionFn func(ctx context.Context, reference string) (*domain.Session, time.Duration, error)
}

func (s *stubAuthService) Signup(ctx context.Context, email, password string) (*domain.Identity, error) {
	return s.signupFn(ctx, email, password)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.Identity, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Logout(ctx context.Context, reference string) error {
	return s.logoutFn(ctx, reference)
}

func (s *stubAuthService) Session(ctx context.Context, reference string) (*domain.Session, time.Duration, error) {
	return s.sessionFn(ctx, reference)
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, email, password string) (*domain.Identity, error) {
			if email != "a@x.com" || password != "Secret123!" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &domain.Identity{ID: "id-1", Email: email, PasswordHash: "should-not-leak"}, nil
		},
	}
	h := NewAuthHandler(stub, false)

	c, rec := newTestContext(t, http.MethodPost, "/auth/signup", `{"email":"a@x.com","password":"Secret123!"}`)
	if err := h.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "should-not-leak") {
		t.Fatalf("password hash leaked in response: %s", rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if user["email"] != "a@x.com" || user["id"] != "id-1" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
}

func TestAuthHandler_Signup_Conflict(t *testing.T) {
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, email, password string) (*domain.Identity, error) {
			return nil, domain.ErrIdentityExists
		},
	}
	h := NewAuthHandler(stub, false)

	c, rec := newTestContext(t, http.MethodPost, "/auth/signup", `{"email":"a@x.com","password":"Secret123!"}`)
	_ = h.Signup(c)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAuthHandler_Signup_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, email, password string) (*domain.Identity, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub, false)

	c, rec := newTestContext(t, http.MethodPost, "/auth/signup", "not-json")
	_ = h.Signup(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	// Well-formed but failing validation: bad email, short password.
	c, rec = newTestContext(t, http.MethodPost, "/auth/signup", `{"email":"nope","password":"short"}`)
	_ = h.Signup(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.Identity, error) {
			return "ref-123", &domain.Identity{ID: "id-1", Email: email}, nil
		},
	}
	h := NewAuthHandler(stub, false)

	c, rec := newTestContext(t, http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"Secret123!"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "ref-123" {
		t.Fatalf("expected token in response, got %+v", resp)
	}

	cookies := rec.Result().Cookies()
	var found bool
	for _, ck := range cookies {
		if ck.Name == middleware.SessionCookieName {
			found = true
			if ck.Value != "ref-123" || !ck.HttpOnly {
				t.Fatalf("unexpected session cookie: %+v", ck)
			}
		}
	}
	if !found {
		t.Fatalf("session cookie not set")
	}
}

// Wrong password or unknown email, the response is the same generic 401.
func TestAuthHandler_Login_GenericFailure(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.Identity, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, false)

	c, rec := newTestContext(t, http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"wrong"}`)
	_ = h.Login(c)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["error"] != "invalid credentials" {
		t.Fatalf("expected generic message, got %q", resp["error"])
	}
}

func TestAuthHandler_Logout_Idempotent(t *testing.T) {
	var gotRef string
	stub := &stubAuthService{
		logoutFn: func(ctx context.Context, reference string) error {
			gotRef = reference
			return nil
		},
	}
	h := NewAuthHandler(stub, false)

	// No session at all: still 204.
	c, rec := newTestContext(t, http.MethodPost, "/auth/logout", "")
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	// With a bearer reference: revoked and cookie cleared.
	c, rec = newTestContext(t, http.MethodPost, "/auth/logout", "")
	c.Request().Header.Set("Authorization", "Bearer ref-123")
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if gotRef != "ref-123" {
		t.Fatalf("expected reference passed to service, got %q", gotRef)
	}

	var cleared bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.SessionCookieName && ck.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("session cookie not cleared")
	}
}

func TestAuthHandler_Session(t *testing.T) {
	expiry := time.Now().Add(time.Hour).UTC()
	stub := &stubAuthService{
		sessionFn: func(ctx context.Context, reference string) (*domain.Session, time.Duration, error) {
			if reference == "good-ref" {
				return &domain.Session{ID: "s1", SubjectID: "id-1", Email: "a@x.com", ExpiresAt: expiry}, time.Hour, nil
			}
			return nil, 0, domain.ErrSessionInvalid
		},
	}
	h := NewAuthHandler(stub, false)

	// Logged in.
	c, rec := newTestContext(t, http.MethodGet, "/auth/session", "")
	c.Request().Header.Set("Authorization", "Bearer good-ref")
	if err := h.Session(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["logged_in"] != true {
		t.Fatalf("expected logged_in true, got %+v", resp)
	}

	// Not logged in: a 200 with logged_in=false, never an error.
	c, rec = newTestContext(t, http.MethodGet, "/auth/session", "")
	if err := h.Session(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["logged_in"] != false {
		t.Fatalf("expected logged_in false, got %+v", resp)
	}
}
