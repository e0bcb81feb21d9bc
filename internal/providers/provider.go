// Package providers define los adaptadores de proveedores de identidad.
//
// Cada proveedor es una implementación de Adapter registrada por nombre en un
// Registry cerrado (discord, google). El perfil crudo del proveedor
// (RawProfile) se valida contra un schema explícito antes de convertirse en
// campos tipados del slot de la cuenta.
package providers

import (
	"context"
	"errors"

	"golang.org/x/oauth2"

	"github.com/dropDatabas3/clickauth/internal/domain/account"
	"github.com/dropDatabas3/clickauth/internal/domain/repository"
)

// RawProfile es la respuesta del endpoint de perfil, sin validar.
type RawProfile map[string]any

var (
	// ErrProviderCommunication envuelve fallos de red o respuestas no-2xx del proveedor.
	ErrProviderCommunication = errors.New("provider communication failure")
	// ErrProfileShape indica que el perfil no cumple el schema esperado.
	ErrProfileShape = errors.New("provider profile shape invalid")
)

// Adapter es la capacidad común de todos los proveedores.
type Adapter interface {
	Name() string

	// AuthorizeURL arma la URL de autorización con el state firmado.
	AuthorizeURL(state string) string
	// Exchange canjea el code del callback por un access token del proveedor.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	// FetchProfile llama al endpoint de perfil y devuelve el payload sin validar.
	FetchProfile(ctx context.Context, token *oauth2.Token) (RawProfile, error)

	// ValidateData explica por qué raw no cumple el schema (nil si lo cumple).
	ValidateData(raw RawProfile) error
	IsDataValid(raw RawProfile) bool

	// IsDifferentAccountConnected es true si el slot ya tiene otra identidad distinta a raw.
	IsDifferentAccountConnected(a *account.Account, raw RawProfile) bool
	// AssignOrUpdateFields crea el slot o lo actualiza preservando CreatedAt.
	AssignOrUpdateFields(a *account.Account, raw RawProfile) error
	// FindAccountWithSameProviderIdentity busca la cuenta ya ligada a esta identidad.
	FindAccountWithSameProviderIdentity(ctx context.Context, repo repository.AccountRepository, raw RawProfile) (*account.Account, error)
	// DisplayName es el nombre visible que sugiere el proveedor para el nickname.
	DisplayName(raw RawProfile) string
}

// PublicData es lo que /login/all y /login/{platform} devuelven por proveedor.
type PublicData struct {
	Name             string `json:"name"`
	AuthorizationURI string `json:"authorizationUri"`
}

func Public(a Adapter, state string) PublicData {
	return PublicData{Name: a.Name(), AuthorizationURI: a.AuthorizeURL(state)}
}
