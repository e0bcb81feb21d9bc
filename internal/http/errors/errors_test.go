package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/clickauth/internal/auth/standard"
	jwtx "github.com/dropDatabas3/clickauth/internal/jwt"
	"github.com/dropDatabas3/clickauth/internal/login"
	"github.com/dropDatabas3/clickauth/internal/providers"
)

func TestFromError_Mapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"expired", fmt.Errorf("%w: x", jwtx.ErrCredentialExpired), "TOKEN_EXPIRED", http.StatusUnauthorized},
		{"invalid", fmt.Errorf("%w: x", jwtx.ErrCredentialInvalid), "TOKEN_INVALID", http.StatusUnauthorized},
		{"standard", &standard.Error{Code: standard.SignUpUserAlreadyExists}, "SignUpUserAlreadyExists", http.StatusBadRequest},
		{"wrong password", &standard.Error{Code: standard.SignInWrongPassword}, "SignInWrongPassword", http.StatusUnauthorized},
		{"forged", &login.LoginError{Kind: login.KindStateForged}, "STATE_COMPROMISED", http.StatusBadRequest},
		{"conflict", &login.LoginError{Kind: login.KindIdentityConflict}, "IDENTITY_CONFLICT", http.StatusConflict},
		{"claim miss", login.ErrClaimNotFound, "NOT_FOUND", http.StatusNotFound},
		{"unknown", fmt.Errorf("disk on fire"), "INTERNAL_SERVER_ERROR", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FromError(tc.err)
			assert.Equal(t, tc.code, got.Code)
			assert.Equal(t, tc.status, got.HTTPStatus)
		})
	}
}

func TestWithDetailDoesNotMutateBase(t *testing.T) {
	d := ErrBadRequest.WithDetail("x")
	assert.Equal(t, "x", d.Detail)
	assert.Empty(t, ErrBadRequest.Detail)
}

func TestWriteError_ProfileShapeCarriesRaw(t *testing.T) {
	rec := httptest.NewRecorder()
	le := &login.LoginError{Kind: login.KindProfileShapeInvalid, Raw: providers.RawProfile{"id": 5.0}}
	WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), le)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "PROFILE_SHAPE_INVALID", body["code"])
	assert.Equal(t, map[string]any{"id": 5.0}, body["data"])
}
