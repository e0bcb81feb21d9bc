// Package auth contiene los controllers de login estándar y de sesión.
package auth

import (
	"github.com/dropDatabas3/clickauth/internal/auth/session"
	"github.com/dropDatabas3/clickauth/internal/auth/standard"
	"github.com/dropDatabas3/clickauth/internal/http/helpers"
)

type Deps struct {
	Standard standard.Service
	Session  session.Service
	Cookies  helpers.CookieConfig
}

type Controllers struct {
	Login   *LoginController
	Session *SessionController
}

func NewControllers(d Deps) *Controllers {
	return &Controllers{
		Login:   &LoginController{service: d.Standard, cookies: d.Cookies},
		Session: &SessionController{service: d.Session, cookies: d.Cookies},
	}
}
