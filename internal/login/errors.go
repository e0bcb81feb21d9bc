package login

import (
	"errors"
	"fmt"

	"github.com/dropDatabas3/clickauth/internal/providers"
)

// ErrorKind clasifica los rechazos de un intento de login.
type ErrorKind string

const (
	KindStateForged           ErrorKind = "StateForged"
	KindProviderCommunication ErrorKind = "ProviderCommunicationFailure"
	KindProfileShapeInvalid   ErrorKind = "ProfileShapeInvalid"
	KindIdentityConflict      ErrorKind = "IdentityConflict"
	KindAccountMissing        ErrorKind = "AccountMissing"
	KindUnknownProvider       ErrorKind = "UnknownProvider"
	KindMissingParameter      ErrorKind = "MissingParameter"
)

// LoginError es un rechazo estructurado. Raw lleva el perfil del proveedor
// cuando Kind es KindProfileShapeInvalid.
type LoginError struct {
	Kind    ErrorKind
	Message string
	Raw     providers.RawProfile
	Err     error
}

func (e *LoginError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("login %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("login %s: %s", e.Kind, e.Message)
}

func (e *LoginError) Unwrap() error { return e.Err }

func newError(kind ErrorKind, msg string, cause error) *LoginError {
	return &LoginError{Kind: kind, Message: msg, Err: cause}
}

// KindOf devuelve el Kind de err si es un *LoginError.
func KindOf(err error) (ErrorKind, bool) {
	var le *LoginError
	if errors.As(err, &le) {
		return le.Kind, true
	}
	return "", false
}

// ErrClaimNotFound: no hay credenciales pendientes para esa sesión.
var ErrClaimNotFound = errors.New("not found")
