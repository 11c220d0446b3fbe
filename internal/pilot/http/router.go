package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/todopilot/pilot/internal/pilot/service"
	"github.com/todopilot/pilot/internal/pilot/store"
	"github.com/todopilot/pilot/pkg/httpx"
	"github.com/todopilot/pilot/pkg/slogx"

	_ "github.com/todopilot/pilot/api/pilot" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// DefaultMaxUploadBytes bounds a multipart todo request.
const DefaultMaxUploadBytes = 10 << 20

// Limits are the rate limit tiers applied per route group.
type Limits struct {
	Strict   httpx.RateLimitConfig
	Moderate httpx.RateLimitConfig
	Lenient  httpx.RateLimitConfig
}

// DefaultLimits returns the httpx tiers with RATELIMIT_* overrides applied.
func DefaultLimits() Limits {
	return Limits{
		Strict:   httpx.ParseRateLimitFromEnv("STRICT", httpx.StrictLimit),
		Moderate: httpx.ParseRateLimitFromEnv("MODERATE", httpx.ModerateLimit),
		Lenient:  httpx.ParseRateLimitFromEnv("LENIENT", httpx.LenientLimit),
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	// Limiters builds the rate limiter of each route group. Defaults to
	// in-process buckets.
	Limiters httpx.LimiterFactory
	Limits   Limits

	MaxUploadBytes int64

	AuthService    *service.AuthService
	TodoService    *service.TodoService
	TeamService    *service.TeamService
	InvitationFlow *service.InvitationFlow
}

func NewRouter(
	buildVersion string,
	st store.Store,
	allowedOrigins []string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:            http.NewServeMux(),
		buildVersion:   buildVersion,
		startTime:      time.Now(),
		store:          st,
		logger:         logger,
		Limiters:       httpx.MemoryLimiters(),
		Limits:         DefaultLimits(),
		MaxUploadBytes: DefaultMaxUploadBytes,
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", slogx.RequestIDHeader},
		ExposedHeaders:   []string{slogx.RequestIDHeader, "Retry-After"},
		AllowCredentials: true,
	})

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		c.Handler,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerTodos()
	r.registerTeams()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())

	// The web client calls everything under /api.
	r.Mux.Handle("/api/", http.StripPrefix("/api", r.Mux))
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			TODO PILOT API
//	@version		0.1.0
//	@description	Personal and team todo lists with email verified accounts.
//	@description
//	@description				Every route is also served under the /api prefix.
//
//	@contact.name				TODO PILOT
//	@contact.url				https://github.com/todopilot/pilot
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:5000
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token from login or email verification. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// limit builds the rate limit middleware of one route group.
func (r *Router) limit(name string, cfg httpx.RateLimitConfig, keyOf httpx.KeyExtractor) httpx.Middleware {
	return httpx.RateLimit(r.Limiters(name, cfg), cfg, keyOf)
}

// secured chains the auth gate in front of a per-user rate limit.
func (r *Router) secured(h http.Handler, name string, cfg httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		RequireUser(r.AuthService),
		r.limit(name, cfg, httpx.UserIDKeyExtractor),
	)
}

func (r *Router) registerAuth() {
	byIPAndEmail := httpx.CompositeKeyExtractor(":",
		httpx.IPKeyExtractor,
		httpx.JSONFieldKeyExtractor("email"),
	)

	// Credential endpoints - strict rate limit by IP + email to slow down
	// guessing and mail flooding
	r.Mux.Handle("POST /auth/signup",
		httpx.Chain(&SignupHandler{AuthService: r.AuthService},
			r.limit("signup", r.Limits.Strict, byIPAndEmail),
		),
	)
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(&LoginHandler{AuthService: r.AuthService},
			r.limit("login", r.Limits.Strict, byIPAndEmail),
		),
	)
	r.Mux.Handle("POST /auth/resend-verification",
		httpx.Chain(&ResendVerificationHandler{AuthService: r.AuthService},
			r.limit("resend", r.Limits.Strict, byIPAndEmail),
		),
	)

	// GET /auth/verify/{token} - moderate by IP, the token itself is the secret
	r.Mux.Handle("GET /auth/verify/{token}",
		httpx.Chain(&VerifyEmailHandler{AuthService: r.AuthService},
			r.limit("verify", r.Limits.Moderate, httpx.IPKeyExtractor),
		),
	)

	r.Mux.Handle("GET /auth/me", r.secured(&MeHandler{}, "me", r.Limits.Lenient))
}

func (r *Router) registerTodos() {
	h := &TodosHandler{
		TodoService:    r.TodoService,
		MaxUploadBytes: r.MaxUploadBytes,
	}

	r.Mux.Handle("GET /todos", r.secured(http.HandlerFunc(h.HandleList), "todos-read", r.Limits.Lenient))
	r.Mux.Handle("POST /todos", r.secured(http.HandlerFunc(h.HandleCreate), "todos-write", r.Limits.Moderate))
	r.Mux.Handle("PUT /todos/{id}", r.secured(http.HandlerFunc(h.HandleUpdate), "todos-write", r.Limits.Moderate))
	r.Mux.Handle("DELETE /todos/{id}", r.secured(http.HandlerFunc(h.HandleDelete), "todos-write", r.Limits.Moderate))
}

func (r *Router) registerTeams() {
	teams := &TeamsHandler{
		TeamService:    r.TeamService,
		InvitationFlow: r.InvitationFlow,
	}
	todos := &TeamTodosHandler{TeamService: r.TeamService}

	r.Mux.Handle("GET /teams", r.secured(http.HandlerFunc(teams.HandleList), "teams-read", r.Limits.Lenient))
	r.Mux.Handle("POST /teams", r.secured(http.HandlerFunc(teams.HandleCreate), "teams-write", r.Limits.Moderate))

	// POST /teams/join/{token} and POST /teams/{teamName}/todos overlap, so
	// one pattern dispatches on the first segment. "join" is a reserved
	// team name.
	r.Mux.Handle("POST /teams/{first}/{second}", r.secured(
		http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.PathValue("first") == "join" {
				req.SetPathValue("token", req.PathValue("second"))
				teams.HandleJoin(w, req)
				return
			}
			if req.PathValue("second") == "todos" {
				req.SetPathValue("teamName", req.PathValue("first"))
				todos.HandleCreate(w, req)
				return
			}
			http.NotFound(w, req)
		}),
		"teams-write", r.Limits.Moderate,
	))

	// Legacy join adapter; the team name in the path is ignored
	r.Mux.Handle("POST /teams/{teamName}/join/{token}",
		r.secured(http.HandlerFunc(teams.HandleJoin), "teams-write", r.Limits.Moderate))

	r.Mux.Handle("GET /teams/{teamName}/todos",
		r.secured(http.HandlerFunc(todos.HandleList), "teams-read", r.Limits.Lenient))
	r.Mux.Handle("PUT /teams/{teamName}/todos/{id}",
		r.secured(http.HandlerFunc(todos.HandleUpdate), "teams-write", r.Limits.Moderate))
	r.Mux.Handle("DELETE /teams/{teamName}/todos/{id}",
		r.secured(http.HandlerFunc(todos.HandleDelete), "teams-write", r.Limits.Moderate))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			r.limit("health", r.Limits.Lenient, httpx.IPKeyExtractor),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			r.limit("health", r.Limits.Lenient, httpx.IPKeyExtractor),
		),
	)
}
