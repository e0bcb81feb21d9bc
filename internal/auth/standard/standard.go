// Package standard implementa el login por email + password.
package standard

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/clickauth/internal/domain/account"
	"github.com/dropDatabas3/clickauth/internal/domain/repository"
	jwtx "github.com/dropDatabas3/clickauth/internal/jwt"
	"github.com/dropDatabas3/clickauth/internal/observability/logger"
	"github.com/dropDatabas3/clickauth/internal/security/password"
)

// Code es el código de error que ve el cliente.
type Code string

const (
	SignUpInvalidEmail         Code = "SignUpInvalidEmail"
	SignUpInvalidPassword      Code = "SignUpInvalidPassword"
	SignUpUserAlreadyExists    Code = "SignUpUserAlreadyExists"
	SignInNoUserWithGivenEmail Code = "SignInNoUserWithGivenEmail"
	SignInWrongPassword        Code = "SignInWrongPassword"
	EmptyFields                Code = "EmptyFields"
)

// Error es un rechazo esperado del login estándar.
type Error struct {
	Code Code
}

func (e *Error) Error() string { return string(e.Code) }

func fail(c Code) error { return &Error{Code: c} }

// Service define las operaciones del login estándar.
type Service interface {
	SignUp(ctx context.Context, email, plain string) (*account.Account, jwtx.Pair, error)
	SignIn(ctx context.Context, email, plain string) (*account.Account, jwtx.Pair, error)
}

type Deps struct {
	Repo   repository.AccountRepository
	Issuer *jwtx.Issuer
	Params password.Params
}

type service struct {
	deps Deps
}

func NewService(deps Deps) Service {
	if deps.Params == (password.Params{}) {
		deps.Params = password.Default
	}
	return &service{deps: deps}
}

func (s *service) SignUp(ctx context.Context, email, plain string) (*account.Account, jwtx.Pair, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("auth.standard"), logger.Op("SignUp"))

	email = account.NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, jwtx.Pair{}, fail(SignUpInvalidEmail)
	}
	if plain == "" {
		return nil, jwtx.Pair{}, fail(SignUpInvalidPassword)
	}

	_, err := s.deps.Repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, jwtx.Pair{}, fail(SignUpUserAlreadyExists)
	case !repository.IsNotFound(err):
		return nil, jwtx.Pair{}, fmt.Errorf("find by email: %w", err)
	}

	hash, err := password.Hash(s.deps.Params, plain)
	if err != nil {
		return nil, jwtx.Pair{}, fmt.Errorf("hash password: %w", err)
	}
	a := account.New()
	a.SetStandard(email, hash)

	pair, err := s.issue(ctx, a)
	if err != nil {
		if repository.IsConflict(err) {
			return nil, jwtx.Pair{}, fail(SignUpUserAlreadyExists)
		}
		return nil, jwtx.Pair{}, err
	}
	log.Info("account registered", logger.AccountID(a.ID))
	return a, pair, nil
}

func (s *service) SignIn(ctx context.Context, email, plain string) (*account.Account, jwtx.Pair, error) {
	email = account.NormalizeEmail(email)
	if email == "" || plain == "" {
		return nil, jwtx.Pair{}, fail(EmptyFields)
	}
	a, err := s.deps.Repo.FindByEmail(ctx, email)
	if repository.IsNotFound(err) {
		return nil, jwtx.Pair{}, fail(SignInNoUserWithGivenEmail)
	}
	if err != nil {
		return nil, jwtx.Pair{}, fmt.Errorf("find by email: %w", err)
	}
	if !password.Verify(plain, a.Credentials.Standard.PasswordHash) {
		logger.From(ctx).Debug("wrong password", logger.AccountID(a.ID))
		return nil, jwtx.Pair{}, fail(SignInWrongPassword)
	}
	pair, err := s.issue(ctx, a)
	if err != nil {
		return nil, jwtx.Pair{}, err
	}
	return a, pair, nil
}

func (s *service) issue(ctx context.Context, a *account.Account) (jwtx.Pair, error) {
	pair, err := s.deps.Issuer.GeneratePair(a.ID)
	if err != nil {
		return jwtx.Pair{}, fmt.Errorf("issue pair: %w", err)
	}
	a.SetRefreshToken(pair.RefreshToken)
	if err := s.deps.Repo.Save(ctx, a); err != nil {
		return jwtx.Pair{}, fmt.Errorf("save account: %w", err)
	}
	return pair, nil
}
