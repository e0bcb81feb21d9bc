// Package session maneja rotación de refresh tokens, logout y resolución
// de la cuenta actual a partir de un access token.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/clickauth/internal/domain/account"
	"github.com/dropDatabas3/clickauth/internal/domain/repository"
	jwtx "github.com/dropDatabas3/clickauth/internal/jwt"
	"github.com/dropDatabas3/clickauth/internal/observability/logger"
)

var (
	// ErrRefreshRevoked: el refresh es válido pero ya no es el vigente de la cuenta.
	ErrRefreshRevoked = errors.New("refresh token revoked")
	ErrMissingToken   = errors.New("missing token")
)

type Service interface {
	Refresh(ctx context.Context, refreshToken string) (*account.Account, jwtx.Pair, error)
	Logout(ctx context.Context, refreshToken string) error
	Authenticate(ctx context.Context, accessToken string) (*account.Account, error)
}

type Deps struct {
	Repo   repository.AccountRepository
	Issuer *jwtx.Issuer
}

type service struct {
	deps Deps
}

func NewService(deps Deps) Service {
	return &service{deps: deps}
}

// StripBearer quita el prefijo "Bearer " que llevan cookies y headers.
func StripBearer(v string) string {
	v = strings.TrimSpace(v)
	if len(v) > 7 && strings.EqualFold(v[:7], "bearer ") {
		return strings.TrimSpace(v[7:])
	}
	return v
}

// Refresh rota el par: el refresh recibido debe ser el último emitido.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*account.Account, jwtx.Pair, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("auth.session"), logger.Op("Refresh"))

	a, err := s.accountFor(ctx, refreshToken, jwtx.KindRefresh)
	if err != nil {
		return nil, jwtx.Pair{}, err
	}
	if a.Credentials.RefreshToken == "" || a.Credentials.RefreshToken != StripBearer(refreshToken) {
		log.Info("refresh token reuse rejected", logger.AccountID(a.ID))
		return nil, jwtx.Pair{}, ErrRefreshRevoked
	}

	pair, err := s.deps.Issuer.GeneratePair(a.ID)
	if err != nil {
		return nil, jwtx.Pair{}, fmt.Errorf("issue pair: %w", err)
	}
	a.SetRefreshToken(pair.RefreshToken)
	if err := s.deps.Repo.Save(ctx, a); err != nil {
		return nil, jwtx.Pair{}, fmt.Errorf("save account: %w", err)
	}
	return a, pair, nil
}

// Logout invalida el refresh vigente. Un refresh ya rotado no toca la sesión
// activa y devuelve ErrRefreshRevoked.
func (s *service) Logout(ctx context.Context, refreshToken string) error {
	a, err := s.accountFor(ctx, refreshToken, jwtx.KindRefresh)
	if err != nil {
		return err
	}
	if a.Credentials.RefreshToken == "" || a.Credentials.RefreshToken != StripBearer(refreshToken) {
		return ErrRefreshRevoked
	}
	a.LogOut()
	if err := s.deps.Repo.Save(ctx, a); err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

func (s *service) Authenticate(ctx context.Context, accessToken string) (*account.Account, error) {
	return s.accountFor(ctx, accessToken, jwtx.KindAccess)
}

func (s *service) accountFor(ctx context.Context, token string, kind jwtx.Kind) (*account.Account, error) {
	token = StripBearer(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	claims, err := s.deps.Issuer.VerifyKind(token, kind)
	if err != nil {
		return nil, err
	}
	a, err := s.deps.Repo.FindByID(ctx, claims.AccountID)
	if repository.IsNotFound(err) {
		return nil, fmt.Errorf("%w: account %s not found", jwtx.ErrCredentialInvalid, claims.AccountID)
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return a, nil
}
