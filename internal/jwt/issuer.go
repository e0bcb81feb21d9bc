// Package jwt emite y verifica el par de credenciales (access + refresh) HS256.
package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind distingue access de refresh dentro del claim "typ".
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

var (
	// ErrCredentialExpired es recuperable: el cliente debe refrescar o re-loguear.
	ErrCredentialExpired = errors.New("credential expired")
	// ErrCredentialInvalid cubre firma inválida, token mal formado o tipo incorrecto.
	ErrCredentialInvalid = errors.New("credential invalid")
	ErrEmptySecret       = errors.New("jwt secret is empty")
)

// Claims es lo que viaja en cada token.
type Claims struct {
	AccountID string `json:"id"`
	Kind      Kind   `json:"typ"`
	jwtv5.RegisteredClaims
}

// Pair es el par de credenciales entregado al cliente.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Issuer firma con un secreto de proceso y dos TTL (access ≪ refresh).
type Issuer struct {
	Iss        string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	secret []byte
	now    func() time.Time
}

func NewIssuer(iss, secret string, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, fmt.Errorf("jwt: ttl must be positive (access=%s refresh=%s)", accessTTL, refreshTTL)
	}
	return &Issuer{
		Iss:        iss,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
		secret:     []byte(secret),
		now:        time.Now,
	}, nil
}

func (i *Issuer) GenerateAccessToken(accountID string) (string, error) {
	return i.sign(accountID, KindAccess, i.AccessTTL)
}

func (i *Issuer) GenerateRefreshToken(accountID string) (string, error) {
	return i.sign(accountID, KindRefresh, i.RefreshTTL)
}

func (i *Issuer) GeneratePair(accountID string) (Pair, error) {
	at, err := i.GenerateAccessToken(accountID)
	if err != nil {
		return Pair{}, err
	}
	rt, err := i.GenerateRefreshToken(accountID)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: at, RefreshToken: rt}, nil
}

// sign incluye jti para que dos tokens del mismo segundo nunca coincidan.
func (i *Issuer) sign(accountID string, kind Kind, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		AccountID: accountID,
		Kind:      kind,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    i.Iss,
			Subject:   accountID,
			ID:        uuid.NewString(),
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
		},
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return tk.SignedString(i.secret)
}

// Verify valida firma y expiración. Devuelve ErrCredentialExpired o
// ErrCredentialInvalid (envolviendo la causa) según corresponda.
func (i *Issuer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwtv5.ParseWithClaims(token, claims, func(t *jwtv5.Token) (any, error) {
		return i.secret, nil
	},
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithTimeFunc(i.now),
		jwtv5.WithExpirationRequired(),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwtv5.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %v", ErrCredentialExpired, err)
	default:
		return nil, fmt.Errorf("%w: %v", ErrCredentialInvalid, err)
	}
	if claims.AccountID == "" {
		return nil, fmt.Errorf("%w: missing account id", ErrCredentialInvalid)
	}
	return claims, nil
}

// VerifyKind es Verify más el chequeo de "typ".
func (i *Issuer) VerifyKind(token string, kind Kind) (*Claims, error) {
	c, err := i.Verify(token)
	if err != nil {
		return nil, err
	}
	if c.Kind != kind {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrCredentialInvalid, kind, c.Kind)
	}
	return c, nil
}
