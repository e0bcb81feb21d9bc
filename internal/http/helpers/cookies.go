package helpers

import (
	"net/http"
	"time"

	jwtx "github.com/dropDatabas3/clickauth/internal/jwt"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// CookieConfig define atributos comunes de las cookies de credenciales.
type CookieConfig struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// BuildCookie arma una cookie con path "/" y SameSite=Lax.
func BuildCookie(name, value string, httpOnly, secure bool, ttl time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: httpOnly,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl > 0 {
		ck.Expires = time.Now().Add(ttl).UTC()
		ck.MaxAge = int(ttl.Seconds())
	}
	return ck
}

func BuildDeletionCookie(name string, httpOnly, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: httpOnly,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
	}
}

// SetTokens escribe ambas cookies como "Bearer <token>". El access token
// queda legible desde JS; el refresh no.
func SetTokens(w http.ResponseWriter, cfg CookieConfig, pair jwtx.Pair) {
	http.SetCookie(w, BuildCookie(AccessCookie, "Bearer "+pair.AccessToken, false, cfg.Secure, cfg.AccessTTL))
	http.SetCookie(w, BuildCookie(RefreshCookie, "Bearer "+pair.RefreshToken, true, cfg.Secure, cfg.RefreshTTL))
}

func ClearTokens(w http.ResponseWriter, cfg CookieConfig) {
	http.SetCookie(w, BuildDeletionCookie(AccessCookie, false, cfg.Secure))
	http.SetCookie(w, BuildDeletionCookie(RefreshCookie, true, cfg.Secure))
}

// RefreshToken lee la cookie refreshToken ("" si no está).
func RefreshToken(r *http.Request) string {
	c, err := r.Cookie(RefreshCookie)
	if err != nil {
		return ""
	}
	return c.Value
}
