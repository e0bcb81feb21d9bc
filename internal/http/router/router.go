// Package router arma el árbol de rutas chi con sus middlewares.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/clickauth/internal/http/controllers"
	httperrors "github.com/dropDatabas3/clickauth/internal/http/errors"
	mw "github.com/dropDatabas3/clickauth/internal/http/middlewares"
)

type Deps struct {
	Controllers *controllers.Controllers
	Auth        mw.Authenticator

	CORSAllowedOrigins []string
	// LoginLimiter cubre callbacks y login/register; ClaimLimiter el claim de handoff.
	LoginLimiter *mw.RateLimiter
	ClaimLimiter *mw.RateLimiter

	// Instrument envuelve cada request con métricas (opcional).
	Instrument mw.Middleware
	// Metrics sirve /metrics (opcional).
	Metrics http.Handler
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRequestID(), mw.WithLogging(), mw.WithRecover())
	if d.Instrument != nil {
		r.Use(d.Instrument)
	}
	r.Use(mw.WithCORS(d.CORSAllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httperrors.WriteError(w, req, httperrors.New(http.StatusNotFound, "ROUTE_NOT_FOUND", "La ruta solicitada no existe."))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httperrors.WriteError(w, req, httperrors.New(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "El método HTTP no está permitido para este recurso."))
	})

	c := d.Controllers
	loginLimit := limiter(d.LoginLimiter)
	claimLimit := limiter(d.ClaimLimiter)

	r.Get("/ping", c.Health.Health.Ping)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	// OAuth2: el usuario puede estar autenticado (vínculo) o no.
	r.Route("/login", func(r chi.Router) {
		r.Use(mw.WithNoStore(), mw.OptionalAuth(d.Auth))
		r.Get("/all", c.Social.Providers.All)
		r.With(claimLimit).Get("/external", c.Social.External.Claim)
		r.Get("/{platform}", c.Social.Providers.One)
		r.With(loginLimit).Get("/{platform}/callback", c.Social.Callback.Callback)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/users", c.Game.Profile.Users)
		r.Get("/leaderboard", c.Game.Profile.Leaderboard)

		r.Group(func(r chi.Router) {
			r.Use(mw.WithNoStore())
			r.With(loginLimit).Post("/login", c.Auth.Login.Login)
			r.With(loginLimit).Post("/register", c.Auth.Login.Register)
			r.Get("/refresh", c.Auth.Session.Refresh)
			r.Get("/logout", c.Auth.Session.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.WithNoStore(), mw.RequireAuth(d.Auth))
			r.Get("/disconnect/{platform}", c.Social.Disconnect.Disconnect)
			r.Get("/profile/me", c.Game.Profile.Me)
			r.Get("/profile/click", c.Game.Profile.Click)
		})
	})

	return r
}

func limiter(rl *mw.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Middleware()
}
