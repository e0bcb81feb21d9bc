package repository

import (
	"context"

	"github.com/dropDatabas3/clickauth/internal/domain/account"
)

// AccountRepository persiste cuentas.
//
// Los Find* devuelven ErrNotFound cuando no hay coincidencia; nunca (nil, nil).
// Save es read-modify-write sin transacción: la última escritura gana.
type AccountRepository interface {
	FindByID(ctx context.Context, id string) (*account.Account, error)

	// FindByProviderID busca la cuenta con el slot provider ligado a providerUserID.
	FindByProviderID(ctx context.Context, provider, providerUserID string) (*account.Account, error)

	// FindByEmail busca por email de login estándar (normalizado).
	FindByEmail(ctx context.Context, email string) (*account.Account, error)

	// Save inserta o reemplaza por ID y resetea el dirty flag.
	Save(ctx context.Context, a *account.Account) error

	ListAll(ctx context.Context) ([]*account.Account, error)
	DeleteAll(ctx context.Context) error
}
