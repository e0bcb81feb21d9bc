package social

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/clickauth/internal/http/errors"
	"github.com/dropDatabas3/clickauth/internal/http/helpers"
	mw "github.com/dropDatabas3/clickauth/internal/http/middlewares"
)

// ProvidersController devuelve {name, authorizationUri} con el state firmado.
// Si el request viene autenticado el state lleva el id de la cuenta (vínculo);
// si trae ?session= lleva la sesión de handoff.
type ProvidersController struct {
	login LoginService
}

// All maneja GET /login/all
func (c *ProvidersController) All(w http.ResponseWriter, r *http.Request) {
	data := c.login.AllPublicData(mw.CurrentAccountID(r.Context()), r.URL.Query().Get("session"))
	helpers.WriteJSON(w, http.StatusOK, data)
}

// One maneja GET /login/{platform}
func (c *ProvidersController) One(w http.ResponseWriter, r *http.Request) {
	data, err := c.login.PublicData(chi.URLParam(r, "platform"), mw.CurrentAccountID(r.Context()), r.URL.Query().Get("session"))
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, data)
}
