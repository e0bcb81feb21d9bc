package auth

import (
	"net/http"

	"github.com/dropDatabas3/clickauth/internal/auth/session"
	httperrors "github.com/dropDatabas3/clickauth/internal/http/errors"
	"github.com/dropDatabas3/clickauth/internal/http/helpers"
	"github.com/dropDatabas3/clickauth/internal/observability/logger"
)

type SessionController struct {
	service session.Service
	cookies helpers.CookieConfig
}

// Refresh maneja GET /api/refresh: rota el par a partir de la cookie refreshToken.
func (c *SessionController) Refresh(w http.ResponseWriter, r *http.Request) {
	_, pair, err := c.service.Refresh(r.Context(), helpers.RefreshToken(r))
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	helpers.SetTokens(w, c.cookies, pair)
	helpers.WriteJSON(w, http.StatusOK, pair)
}

// Logout maneja GET /api/logout. Borra las cookies aunque el token sea inválido.
func (c *SessionController) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tok := helpers.RefreshToken(r)
	helpers.ClearTokens(w, c.cookies)

	if tok != "" {
		if err := c.service.Logout(ctx, tok); err != nil {
			logger.From(ctx).Debug("logout with unusable refresh token", logger.Err(err))
		}
	}
	helpers.WriteJSON(w, http.StatusOK, helpers.OK{OK: true})
}
