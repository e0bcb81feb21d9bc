package social

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/clickauth/internal/http/errors"
	"github.com/dropDatabas3/clickauth/internal/http/helpers"
	"github.com/dropDatabas3/clickauth/internal/observability/logger"
)

type CallbackController struct {
	login      LoginService
	cookies    helpers.CookieConfig
	redirectTo string
}

// Callback maneja GET /login/{platform}/callback?code=&state=
// En éxito setea las cookies de credenciales y redirige.
func (c *CallbackController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "platform")
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("CallbackController.Callback"), logger.Provider(provider))

	q := r.URL.Query()
	if idpError := strings.TrimSpace(q.Get("error")); idpError != "" {
		log.Warn("provider returned error",
			logger.String("error", idpError),
			logger.String("description", q.Get("error_description")),
		)
		httperrors.WriteError(w, r, httperrors.ErrBadRequest.WithDetail("idp_error: "+idpError))
		return
	}

	res, err := c.login.HandleCallback(ctx, provider, strings.TrimSpace(q.Get("code")), strings.TrimSpace(q.Get("state")))
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}

	helpers.SetTokens(w, c.cookies, res.Pair)
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, c.redirectTo, http.StatusFound)
}
