// Package game contiene los controllers del perfil de juego.
package game

import (
	"context"
	"net/http"

	"github.com/dropDatabas3/clickauth/internal/domain/account"
	gamesvc "github.com/dropDatabas3/clickauth/internal/game"
	httperrors "github.com/dropDatabas3/clickauth/internal/http/errors"
	"github.com/dropDatabas3/clickauth/internal/http/helpers"
	mw "github.com/dropDatabas3/clickauth/internal/http/middlewares"
)

type Service interface {
	Leaderboard(ctx context.Context) ([]gamesvc.Entry, error)
	Users(ctx context.Context) ([]account.Public, error)
	Click(ctx context.Context, a *account.Account) (int64, error)
}

type Controllers struct {
	Profile *ProfileController
}

func NewControllers(s Service) *Controllers {
	return &Controllers{Profile: &ProfileController{service: s}}
}

type ProfileController struct {
	service Service
}

// Leaderboard maneja GET /api/leaderboard
func (c *ProfileController) Leaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := c.service.Leaderboard(r.Context())
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, board)
}

// Users maneja GET /api/users
func (c *ProfileController) Users(w http.ResponseWriter, r *http.Request) {
	users, err := c.service.Users(r.Context())
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, users)
}

type meResponse struct {
	account.Public
	ClickCounter     int64  `json:"clickCounter"`
	NicknameUpdates  int    `json:"nicknameUpdates"`
	HasStandardLogin bool   `json:"hasStandardLogin"`
	Email            string `json:"email,omitempty"`
}

// Me maneja GET /api/profile/me (requiere auth).
func (c *ProfileController) Me(w http.ResponseWriter, r *http.Request) {
	a := mw.CurrentAccount(r.Context())
	if a == nil {
		httperrors.WriteError(w, r, httperrors.ErrUnauthorized)
		return
	}
	resp := meResponse{
		Public:           a.Public(),
		ClickCounter:     a.Profile.ClickCounter,
		NicknameUpdates:  a.Profile.Nickname.TimesUpdated,
		HasStandardLogin: a.HasStandardLogin(),
	}
	if a.HasStandardLogin() {
		resp.Email = a.Credentials.Standard.Email
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Click maneja GET /api/profile/click (requiere auth).
func (c *ProfileController) Click(w http.ResponseWriter, r *http.Request) {
	a := mw.CurrentAccount(r.Context())
	if a == nil {
		httperrors.WriteError(w, r, httperrors.ErrUnauthorized)
		return
	}
	n, err := c.service.Click(r.Context(), a)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]int64{"clickCounter": n})
}
