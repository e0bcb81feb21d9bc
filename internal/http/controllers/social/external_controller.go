package social

import (
	"net/http"

	"github.com/mssola/useragent"

	httperrors "github.com/dropDatabas3/clickauth/internal/http/errors"
	"github.com/dropDatabas3/clickauth/internal/http/helpers"
	mw "github.com/dropDatabas3/clickauth/internal/http/middlewares"
	"github.com/dropDatabas3/clickauth/internal/observability/logger"
)

// ExternalController entrega las credenciales del handoff entre dispositivos.
type ExternalController struct {
	login LoginService
}

// Claim maneja GET /login/external?session=
// No requiere autenticación: la sesión es el secreto.
func (c *ExternalController) Claim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := r.URL.Query().Get("session")

	ua := useragent.New(r.UserAgent())
	browser, _ := ua.Browser()
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Op("ExternalController.Claim"),
		logger.Session(session),
		logger.ClientIP(mw.ClientIP(r)),
		logger.String("device_os", ua.OS()),
		logger.String("device_browser", browser),
		logger.Bool("device_mobile", ua.Mobile()),
	)

	pair, err := c.login.ClaimExternalLogin(ctx, session)
	if err != nil {
		log.Debug("external claim rejected", logger.Err(err))
		httperrors.WriteError(w, r, err)
		return
	}
	log.Info("external login claimed")
	helpers.WriteJSON(w, http.StatusOK, pair)
}
