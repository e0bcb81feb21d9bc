package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/dropDatabas3/clickauth/internal/domain/account"
	"github.com/dropDatabas3/clickauth/internal/http/errors"
	"github.com/dropDatabas3/clickauth/internal/http/helpers"
	"github.com/dropDatabas3/clickauth/internal/observability/logger"
)

// Authenticator resuelve la cuenta dueña de un access token.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*account.Account, error)
}

// AccessToken toma el token del header Authorization o, si falta, de la cookie.
func AccessToken(r *http.Request) string {
	if ah := strings.TrimSpace(r.Header.Get("Authorization")); ah != "" {
		return ah
	}
	if c, err := r.Cookie(helpers.AccessCookie); err == nil {
		return c.Value
	}
	return ""
}

// OptionalAuth inyecta la cuenta si el token es válido; si no, sigue anónimo.
func OptionalAuth(auth Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := AccessToken(r)
			if tok == "" {
				next.ServeHTTP(w, r)
				return
			}
			a, err := auth.Authenticate(r.Context(), tok)
			if err != nil {
				logger.From(r.Context()).Debug("ignoring invalid access token", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(withAccountLogger(r.Context(), a)))
		})
	}
}

// RequireAuth responde 401 si no hay cuenta autenticada.
func RequireAuth(auth Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := AccessToken(r)
			if tok == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				errors.WriteError(w, r, errors.ErrTokenMissing)
				return
			}
			a, err := auth.Authenticate(r.Context(), tok)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				errors.WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withAccountLogger(r.Context(), a)))
		})
	}
}

func withAccountLogger(ctx context.Context, a *account.Account) context.Context {
	ctx = WithAccount(ctx, a)
	return logger.ToContext(ctx, logger.From(ctx).With(logger.AccountID(a.ID)))
}
