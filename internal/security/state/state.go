// Package state firma el parámetro state de OAuth2.
//
// Formato: base64url(payload) "." base64url(HMAC-SHA256(secret, payload)).
// El payload va codificado, así que el separador nunca colisiona con él.
package state

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

const separator = "."

var (
	ErrMalformed   = errors.New("malformed state token")
	ErrEmptySecret = errors.New("state secret is empty")
)

var enc = base64.RawURLEncoding

// Signer produce y verifica tokens de state. Es puro: sin I/O ni estado mutable.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Signer{secret: []byte(secret)}, nil
}

// Sign devuelve payload firmado.
func (s *Signer) Sign(payload string) string {
	return enc.EncodeToString([]byte(payload)) + separator + enc.EncodeToString(s.mac(payload))
}

// Verify re-firma el payload decodificado y compara contra token completo.
// Nunca hace panic: cualquier token mal formado es simplemente inválido.
func (s *Signer) Verify(token string) bool {
	payload, err := Decode(token)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(s.Sign(payload)), []byte(token))
}

// Decode extrae el payload sin verificar la firma. Llamar a Verify antes.
func Decode(token string) (string, error) {
	head, _, ok := strings.Cut(token, separator)
	if !ok {
		return "", ErrMalformed
	}
	b, err := enc.DecodeString(head)
	if err != nil {
		return "", ErrMalformed
	}
	return string(b), nil
}

// Decode es el atajo como método para quien ya tiene el Signer a mano.
func (s *Signer) Decode(token string) (string, error) { return Decode(token) }

func (s *Signer) mac(payload string) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(payload))
	return h.Sum(nil)
}
