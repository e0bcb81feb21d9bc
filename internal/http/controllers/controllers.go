// Package controllers agrupa los controllers HTTP por dominio.
//
// Cada dominio vive en su sub-paquete con un aggregator Controllers y un
// constructor NewControllers; este paquete solo los junta para el router.
package controllers

import (
	"github.com/dropDatabas3/clickauth/internal/http/controllers/auth"
	"github.com/dropDatabas3/clickauth/internal/http/controllers/game"
	"github.com/dropDatabas3/clickauth/internal/http/controllers/health"
	"github.com/dropDatabas3/clickauth/internal/http/controllers/social"
)

type Controllers struct {
	Social *social.Controllers
	Auth   *auth.Controllers
	Game   *game.Controllers
	Health *health.Controllers
}

type Deps struct {
	Social social.Deps
	Auth   auth.Deps
	Game   game.Service
	Checks map[string]health.Checker
}

func New(d Deps) *Controllers {
	return &Controllers{
		Social: social.NewControllers(d.Social),
		Auth:   auth.NewControllers(d.Auth),
		Game:   game.NewControllers(d.Game),
		Health: health.NewControllers(d.Checks),
	}
}
