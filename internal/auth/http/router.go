package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/bormonoff/Auth-Service/internal/auth/revocation"
	"github.com/bormonoff/Auth-Service/internal/auth/service"
	"github.com/bormonoff/Auth-Service/internal/auth/store"
	"github.com/bormonoff/Auth-Service/pkg/httpx"
	"github.com/bormonoff/Auth-Service/pkg/slogx"

	_ "github.com/bormonoff/Auth-Service/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	limits       httpx.RateLimitProfiles
	adminRole    string

	store store.Store
	cache revocation.Cache

	SessionService *service.SessionService
	UserService    *service.UserService
	RolesService   *service.RolesService
	AccessService  *service.AccessService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	cache revocation.Cache,
	logger *slog.Logger,
	limits httpx.RateLimitProfiles,
	adminRole string,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		limits:       limits,
		adminRole:    adminRole,
		store:        st,
		cache:        cache,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// ApplyRoutes registers every endpoint. The service fields must be set first.
func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerProfile()
	r.registerRoles()
	r.registerAccess()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Auth Service API
//	@version		0.1.0
//	@description	Registration, login and role based access control with device bound token pairs.
//	@description
//	@description				Tokens are HMAC-SHA256 signed. Logging out denylists the access token until it expires.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authn requires a valid, unrevoked access token carrying one of roles.
func (r *Router) authn(roles ...string) httpx.Middleware {
	return httpx.AuthnMiddleware(r.SessionService, writeServiceError, roles...)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{Sessions: r.SessionService}

	// POST /login - strict rate limit by IP + username to slow down password guessing
	r.Mux.Handle("POST /api/v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndFormField(r.limits.Strict, "username"),
		),
	)

	r.Mux.Handle("POST /api/v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(r.limits.Moderate),
		),
	)

	// Logout checks the bearer token itself and skips the denylist.
	r.Mux.Handle("POST /api/v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(r.limits.Moderate),
		),
	)
}

func (r *Router) registerProfile() {
	h := &ProfileHandler{Users: r.UserService, Sessions: r.SessionService}

	r.Mux.Handle("POST /api/v1/profile/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(r.limits.Strict),
		),
	)

	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			r.authn(),
			httpx.RateLimitBySubject(r.limits.Lenient),
		)
	}
	r.Mux.Handle("GET /api/v1/profile/personal", secured(h.HandleGet))
	r.Mux.Handle("PATCH /api/v1/profile/personal", secured(h.HandleUpdate))
	r.Mux.Handle("DELETE /api/v1/profile/personal", secured(h.HandleDelete))
}

func (r *Router) registerRoles() {
	h := &RolesHandler{Roles: r.RolesService}

	admin := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			r.authn(r.adminRole),
			httpx.RateLimitBySubject(r.limits.Lenient),
		)
	}
	r.Mux.Handle("GET /api/v1/roles", admin(h.HandleList))
	r.Mux.Handle("POST /api/v1/roles", admin(h.HandleCreate))
	r.Mux.Handle("GET /api/v1/roles/{title}", admin(h.HandleGet))
	r.Mux.Handle("PATCH /api/v1/roles/{title}", admin(h.HandleUpdate))
	r.Mux.Handle("DELETE /api/v1/roles/{title}", admin(h.HandleDelete))
}

func (r *Router) registerAccess() {
	h := &AccessHandler{Access: r.AccessService}

	admin := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			r.authn(r.adminRole),
			httpx.RateLimitBySubject(r.limits.Lenient),
		)
	}
	r.Mux.Handle("POST /api/v1/access/assign", admin(h.HandleAssign))
	r.Mux.Handle("POST /api/v1/access/remove", admin(h.HandleRemove))
	r.Mux.Handle("GET /api/v1/access/verify", admin(h.HandleVerify))
	r.Mux.Handle("GET /api/v1/access/users/{login}/roles", admin(h.HandleUserRoles))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.limits.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.cache),
			httpx.RateLimitByIP(r.limits.Lenient),
		),
	)
}
