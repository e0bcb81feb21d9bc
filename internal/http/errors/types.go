package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError es el error estándar que la capa HTTP devuelve al cliente.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // causa, solo para logs
	// Data viaja al cliente tal cual (ej. el perfil crudo rechazado).
	Data any `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// FromError convierte cualquier error en AppError. Los errores de dominio
// conocidos se mapean (ver domain.go); el resto es un 500 que conserva la causa.
func FromError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	if mapped := fromDomain(err); mapped != nil {
		return mapped
	}
	return ErrInternalServerError.WithCause(err)
}

// WithDetail devuelve una COPIA con el detalle; no muta los errores base.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause devuelve una COPIA con la causa.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// WithData devuelve una COPIA con datos extra para el cliente.
func (e *AppError) WithData(data any) *AppError {
	newErr := *e
	newErr.Data = data
	return &newErr
}

// =================================================================================
// ERRORES PREDEFINIDOS
// =================================================================================

// 400
var (
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "La solicitud contiene sintaxis inválida o parámetros faltantes.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "El cuerpo de la solicitud no es un JSON válido.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrMissingParam = &AppError{
		Code:       "MISSING_PARAM",
		Message:    "param",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrNoPlatform = &AppError{
		Code:       "NO_PLATFORM",
		Message:    "no platform",
		HTTPStatus: http.StatusNotFound,
	}

	ErrStateCompromised = &AppError{
		Code:       "STATE_COMPROMISED",
		Message:    "state compromised",
		HTTPStatus: http.StatusBadRequest,
	}
)

// 401
var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "No autorizado. Se requiere autenticación.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenExpired = &AppError{
		Code:       "TOKEN_EXPIRED",
		Message:    "El token ha expirado.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenInvalid = &AppError{
		Code:       "TOKEN_INVALID",
		Message:    "El token es inválido o está malformado.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenMissing = &AppError{
		Code:       "TOKEN_MISSING",
		Message:    "No se proporcionó token de autenticación.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrSessionRevoked = &AppError{
		Code:       "SESSION_REVOKED",
		Message:    "La sesión fue cerrada o reemplazada, inicie sesión nuevamente.",
		HTTPStatus: http.StatusUnauthorized,
	}
)

// 404 / 409 / 422
var (
	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrAccountNotFound = &AppError{
		Code:       "ACCOUNT_NOT_FOUND",
		Message:    "La cuenta especificada no existe.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrIdentityConflict = &AppError{
		Code:       "IDENTITY_CONFLICT",
		Message:    "you already connected different account to this profile",
		HTTPStatus: http.StatusConflict,
	}

	ErrNegativeCounter = &AppError{
		Code:       "NEGATIVE_COUNTER",
		Message:    "El contador no puede quedar negativo.",
		HTTPStatus: http.StatusUnprocessableEntity,
	}
)

// 429
var ErrRateLimitExceeded = &AppError{
	Code:       "RATE_LIMIT_EXCEEDED",
	Message:    "Ha excedido el límite de solicitudes. Intente más tarde.",
	HTTPStatus: http.StatusTooManyRequests,
}

// 5xx
var (
	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Ocurrió un error interno en el servidor.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrProviderUnavailable = &AppError{
		Code:       "PROVIDER_COMMUNICATION_FAILURE",
		Message:    "failed to fetch user profile",
		HTTPStatus: http.StatusBadGateway,
	}

	ErrProfileShapeInvalid = &AppError{
		Code:       "PROFILE_SHAPE_INVALID",
		Message:    "failed to validate data (probably structure was changed)",
		HTTPStatus: http.StatusBadGateway,
	}
)
