// Package linker resuelve la cuenta interna a partir de un perfil de
// proveedor ya autenticado y aplica las reglas de desconexión de slots.
package linker

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/clickauth/internal/domain/account"
	"github.com/dropDatabas3/clickauth/internal/domain/repository"
	"github.com/dropDatabas3/clickauth/internal/observability/logger"
	"github.com/dropDatabas3/clickauth/internal/providers"
)

// CreateOrLinkAccount devuelve la cuenta ligada a la identidad de raw,
// actualizando su slot, o crea una nueva cuenta con el slot asignado.
// La cuenta se guarda antes de devolverse.
func CreateOrLinkAccount(ctx context.Context, repo repository.AccountRepository, p providers.Adapter, raw providers.RawProfile) (*account.Account, bool, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("linker"),
		logger.Op("CreateOrLinkAccount"),
		logger.Provider(p.Name()),
	)

	if err := p.ValidateData(raw); err != nil {
		return nil, false, err
	}

	var (
		a       *account.Account
		created bool
	)
	// Un segundo intento cubre la carrera de dos primeros logins simultáneos:
	// el Save perdedor da ErrConflict y la nueva búsqueda encuentra al ganador.
	for attempt := 0; ; attempt++ {
		var err error
		a, err = p.FindAccountWithSameProviderIdentity(ctx, repo, raw)
		created = false
		switch {
		case err == nil:
		case repository.IsNotFound(err):
			a = account.New()
			created = true
		default:
			return nil, false, fmt.Errorf("lookup provider identity: %w", err)
		}

		if err := p.AssignOrUpdateFields(a, raw); err != nil {
			return nil, false, err
		}
		ApplyProviderNickname(a, p, raw)

		err = repo.Save(ctx, a)
		if err == nil {
			break
		}
		if created && attempt == 0 && repository.IsConflict(err) {
			log.Debug("lost create race, retrying lookup", logger.Err(err))
			continue
		}
		return nil, false, fmt.Errorf("save account: %w", err)
	}
	if created {
		log.Info("account created from provider identity", logger.AccountID(a.ID))
	} else {
		log.Debug("provider identity updated", logger.AccountID(a.ID))
	}
	return a, created, nil
}

// ApplyProviderNickname reemplaza el nickname temporal por el nombre que
// reporta el proveedor, solo si el usuario nunca lo cambió.
func ApplyProviderNickname(a *account.Account, p providers.Adapter, raw providers.RawProfile) bool {
	if a.Profile.Nickname.TimesUpdated != 0 {
		return false
	}
	name := p.DisplayName(raw)
	if name == "" {
		return false
	}
	return a.UpdateNickname(name)
}

// ErrIdentityConflict: el slot ya tiene otra identidad del mismo proveedor.
var ErrIdentityConflict = errors.New("you already connected different account to this profile")

// LinkToAccount asigna la identidad de raw a una cuenta existente. Falla con
// ErrIdentityConflict sin mutar nada si el slot tiene otra identidad.
func LinkToAccount(ctx context.Context, repo repository.AccountRepository, p providers.Adapter, a *account.Account, raw providers.RawProfile) error {
	if err := p.ValidateData(raw); err != nil {
		return err
	}
	if p.IsDifferentAccountConnected(a, raw) {
		return ErrIdentityConflict
	}
	// la identidad no puede quedar ligada a dos cuentas
	if other, err := p.FindAccountWithSameProviderIdentity(ctx, repo, raw); err == nil && other.ID != a.ID {
		return ErrIdentityConflict
	} else if err != nil && !repository.IsNotFound(err) {
		return fmt.Errorf("lookup provider identity: %w", err)
	}

	if err := p.AssignOrUpdateFields(a, raw); err != nil {
		return err
	}
	ApplyProviderNickname(a, p, raw)
	if err := repo.Save(ctx, a); err != nil {
		if repository.IsConflict(err) {
			return fmt.Errorf("%w: %v", ErrIdentityConflict, err)
		}
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}
