// Package social contiene los controllers del flujo OAuth2 con proveedores
// externos: datos de autorización, callback, claim de handoff y desconexión.
package social

import (
	"context"

	"github.com/dropDatabas3/clickauth/internal/domain/repository"
	"github.com/dropDatabas3/clickauth/internal/http/helpers"
	jwtx "github.com/dropDatabas3/clickauth/internal/jwt"
	"github.com/dropDatabas3/clickauth/internal/login"
	"github.com/dropDatabas3/clickauth/internal/providers"
)

// LoginService es lo que los controllers usan del orquestador de login.
type LoginService interface {
	PublicData(provider, currentAccountID, session string) (providers.PublicData, error)
	AllPublicData(currentAccountID, session string) []providers.PublicData
	HandleCallback(ctx context.Context, provider, code, state string) (*login.Result, error)
	ClaimExternalLogin(ctx context.Context, session string) (jwtx.Pair, error)
}

type Deps struct {
	Login   LoginService
	Repo    repository.AccountRepository
	Cookies helpers.CookieConfig
	// RedirectTo es el destino tras un callback exitoso ("/" por defecto).
	RedirectTo string
}

type Controllers struct {
	Providers  *ProvidersController
	Callback   *CallbackController
	External   *ExternalController
	Disconnect *DisconnectController
}

func NewControllers(d Deps) *Controllers {
	if d.RedirectTo == "" {
		d.RedirectTo = "/"
	}
	return &Controllers{
		Providers:  &ProvidersController{login: d.Login},
		Callback:   &CallbackController{login: d.Login, cookies: d.Cookies, redirectTo: d.RedirectTo},
		External:   &ExternalController{login: d.Login},
		Disconnect: &DisconnectController{repo: d.Repo},
	}
}
