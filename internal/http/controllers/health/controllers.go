// Package health contiene el controller de liveness.
package health

import (
	"context"
	"net/http"

	"github.com/dropDatabas3/clickauth/internal/http/helpers"
)

// Checker es una dependencia que puede reportar su estado (ej. el pool de postgres).
type Checker interface {
	Ping(ctx context.Context) error
}

type Controllers struct {
	Health *HealthController
}

func NewControllers(checks map[string]Checker) *Controllers {
	return &Controllers{Health: &HealthController{checks: checks}}
}

type HealthController struct {
	checks map[string]Checker
}

type pingResponse struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Ping maneja GET /ping
func (c *HealthController) Ping(w http.ResponseWriter, r *http.Request) {
	resp := pingResponse{OK: true}
	if len(c.checks) > 0 {
		resp.Checks = make(map[string]string, len(c.checks))
		for name, chk := range c.checks {
			if err := chk.Ping(r.Context()); err != nil {
				resp.OK = false
				resp.Checks[name] = err.Error()
				continue
			}
			resp.Checks[name] = "ok"
		}
	}
	status := http.StatusOK
	if !resp.OK {
		status = http.StatusServiceUnavailable
	}
	helpers.WriteJSON(w, status, resp)
}
