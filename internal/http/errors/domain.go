package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/dropDatabas3/clickauth/internal/auth/session"
	"github.com/dropDatabas3/clickauth/internal/auth/standard"
	"github.com/dropDatabas3/clickauth/internal/domain/account"
	"github.com/dropDatabas3/clickauth/internal/domain/repository"
	jwtx "github.com/dropDatabas3/clickauth/internal/jwt"
	"github.com/dropDatabas3/clickauth/internal/login"
)

// fromDomain mapea los errores de los servicios; nil si no reconoce err.
func fromDomain(err error) *AppError {
	var le *login.LoginError
	if stderrors.As(err, &le) {
		return fromLogin(le)
	}

	var se *standard.Error
	if stderrors.As(err, &se) {
		// code y message llevan el nombre del enum
		status := http.StatusBadRequest
		if se.Code == standard.SignInWrongPassword || se.Code == standard.SignInNoUserWithGivenEmail {
			status = http.StatusUnauthorized
		}
		return New(status, string(se.Code), string(se.Code))
	}

	switch {
	case stderrors.Is(err, jwtx.ErrCredentialExpired):
		return ErrTokenExpired.WithCause(err)
	case stderrors.Is(err, jwtx.ErrCredentialInvalid):
		return ErrTokenInvalid.WithCause(err)
	case stderrors.Is(err, session.ErrMissingToken):
		return ErrTokenMissing
	case stderrors.Is(err, session.ErrRefreshRevoked):
		return ErrSessionRevoked
	case stderrors.Is(err, login.ErrClaimNotFound):
		return ErrNotFound
	case stderrors.Is(err, account.ErrNegativeCounter):
		return ErrNegativeCounter
	case repository.IsNotFound(err):
		return ErrAccountNotFound.WithCause(err)
	}
	return nil
}

func fromLogin(le *login.LoginError) *AppError {
	switch le.Kind {
	case login.KindStateForged:
		return ErrStateCompromised.WithCause(le)
	case login.KindProviderCommunication:
		return ErrProviderUnavailable.WithCause(le)
	case login.KindProfileShapeInvalid:
		return ErrProfileShapeInvalid.WithCause(le).WithData(le.Raw)
	case login.KindIdentityConflict:
		return ErrIdentityConflict.WithCause(le)
	case login.KindAccountMissing:
		return ErrAccountNotFound.WithCause(le)
	case login.KindUnknownProvider:
		return ErrNoPlatform
	case login.KindMissingParameter:
		return ErrMissingParam.WithDetail(le.Message)
	}
	return ErrInternalServerError.WithCause(le)
}
