package auth

import (
	"encoding/json"
	"net/http"

	"github.com/dropDatabas3/clickauth/internal/auth/standard"
	httperrors "github.com/dropDatabas3/clickauth/internal/http/errors"
	"github.com/dropDatabas3/clickauth/internal/http/helpers"
	"github.com/dropDatabas3/clickauth/internal/observability/logger"
)

const maxLoginBodySize = 64 * 1024

// credentialsRequest acepta cualquier JSON: un campo ausente o que no sea
// string se reporta como EmptyFields.
type credentialsRequest struct {
	Email    any `json:"email"`
	Password any `json:"password"`
}

func (r credentialsRequest) strings() (string, string, bool) {
	email, ok1 := r.Email.(string)
	pass, ok2 := r.Password.(string)
	return email, pass, ok1 && ok2
}

type LoginController struct {
	service standard.Service
	cookies helpers.CookieConfig
}

// Login maneja POST /api/login
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	email, pass, ok := c.read(w, r)
	if !ok {
		return
	}
	_, pair, err := c.service.SignIn(r.Context(), email, pass)
	if err != nil {
		logger.From(r.Context()).Debug("sign in rejected", logger.Err(err))
		httperrors.WriteError(w, r, err)
		return
	}
	helpers.SetTokens(w, c.cookies, pair)
	helpers.WriteJSON(w, http.StatusOK, pair)
}

// Register maneja POST /api/register
func (c *LoginController) Register(w http.ResponseWriter, r *http.Request) {
	email, pass, ok := c.read(w, r)
	if !ok {
		return
	}
	_, pair, err := c.service.SignUp(r.Context(), email, pass)
	if err != nil {
		logger.From(r.Context()).Debug("sign up rejected", logger.Err(err))
		httperrors.WriteError(w, r, err)
		return
	}
	helpers.SetTokens(w, c.cookies, pair)
	helpers.WriteJSON(w, http.StatusCreated, pair)
}

func (c *LoginController) read(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxLoginBodySize)
	defer r.Body.Close()

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, r, &standard.Error{Code: standard.EmptyFields})
		return "", "", false
	}
	email, pass, ok := req.strings()
	if !ok {
		httperrors.WriteError(w, r, &standard.Error{Code: standard.EmptyFields})
		return "", "", false
	}
	return email, pass, true
}
