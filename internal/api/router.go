package api

import (
	"fmt"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sessionlab/gatekeeper/internal/api/handler"
	"github.com/sessionlab/gatekeeper/internal/api/middleware"
	"github.com/sessionlab/gatekeeper/internal/core/ports"
	"github.com/sessionlab/gatekeeper/internal/core/service"
	"github.com/sessionlab/gatekeeper/internal/infrastructure/config"
	mongodb "github.com/sessionlab/gatekeeper/internal/infrastructure/db/mongo"
	redisdb "github.com/sessionlab/gatekeeper/internal/infrastructure/db/redis"
	"github.com/sessionlab/gatekeeper/internal/infrastructure/session"
	"github.com/sessionlab/gatekeeper/internal/infrastructure/token"
)

// LoginPath is where denied browser requests are redirected. Serving the
// page itself is the UI's concern; the gate only needs the entry point.
const LoginPath = "/login"

// NewRouter builds the Echo instance with all routes registered. rdb may be
// nil when the configured session backend does not need Redis.
func NewRouter(db *mongo.Database, rdb *goredis.Client, cfg *config.Config, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("gatekeeper"))

	// --- Dependencies ---
	sessions, err := newSessionManager(cfg, rdb)
	if err != nil {
		return nil, err
	}
	identityRepo := mongodb.NewIdentityRepository(db)
	hasher := service.NewHasher(cfg.BcryptCost, cfg.HashWorkers)
	authService := service.NewAuthService(identityRepo, sessions, hasher)
	authHandler := handler.NewAuthHandler(authService, cfg.Env == "production")
	gate := middleware.Gate(authService, LoginPath)

	// --- Auth routes ---
	e.POST("/auth/signup", authHandler.Signup)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/session", authHandler.Session)

	// --- Protected resource ---
	secretHandler := handler.NewSecretHandler()
	e.GET("/secret", secretHandler.Show, gate)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandler())

	return e, nil
}

// newSessionManager selects the session backend from configuration. The gate
// and the auth service are identical regardless of which one is returned.
func newSessionManager(cfg *config.Config, rdb *goredis.Client) (ports.SessionManager, error) {
	switch cfg.Session.Backend {
	case config.BackendMemory:
		return session.NewMemoryStore(), nil
	case config.BackendRedis:
		if rdb == nil {
			return nil, fmt.Errorf("session backend %q requires redis", cfg.Session.Backend)
		}
		return redisdb.NewSessionStore(rdb, cfg.Session.TTL), nil
	case config.BackendToken:
		var denylist token.Revoker
		if cfg.Session.Denylist {
			if rdb == nil {
				return nil, fmt.Errorf("session denylist requires redis")
			}
			denylist = redisdb.NewDenylist(rdb)
		}
		return token.NewManager(cfg.Session.Secret, cfg.Session.TTL, denylist)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
