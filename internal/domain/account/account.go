// Package account contiene el agregado Account: credenciales, slots por
// plataforma y perfil de juego.
package account

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Nombres de plataforma soportados. Cada uno es un slot fijo en Credentials.Platforms.
const (
	PlatformDiscord = "discord"
	PlatformGoogle  = "google"
)

// Platforms lista los slots conocidos en orden estable.
var Platforms = []string{PlatformDiscord, PlatformGoogle}

var (
	ErrNegativeCounter = errors.New("counter cannot become negative")
	ErrUnknownPlatform = errors.New("unknown platform")
)

// nowFunc permite fijar el reloj en tests.
var nowFunc = time.Now

// DiscordIdentity es el slot de discord.
type DiscordIdentity struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Discriminator string    `json:"discriminator"`
	Avatar        string    `json:"avatar"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// GoogleIdentity es el slot de google.
type GoogleIdentity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type PlatformSlots struct {
	Discord *DiscordIdentity `json:"discord"`
	Google  *GoogleIdentity  `json:"google"`
}

// StandardCredentials es el login por email + password (hash argon2id).
type StandardCredentials struct {
	Email        string `json:"email"`
	PasswordHash string `json:"password"`
}

type Credentials struct {
	// RefreshToken es el último refresh emitido; cualquier otro queda invalidado.
	RefreshToken string               `json:"refreshToken"`
	Standard     *StandardCredentials `json:"standard"`
	Platforms    PlatformSlots        `json:"platforms"`
}

// Nickname mantiene el valor actual y el historial append-only de valores previos.
type Nickname struct {
	Value        string   `json:"value"`
	TimesUpdated int      `json:"timesUpdated"`
	History      []string `json:"history"`
}

type Profile struct {
	Nickname     Nickname `json:"nickname"`
	Score        int64    `json:"score"`
	Experience   int64    `json:"experience"`
	ClickCounter int64    `json:"clickCounter"`
}

// Account es el agregado persistido por los repositorios.
type Account struct {
	ID          string      `json:"id"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	Credentials Credentials `json:"credentials"`
	Profile     Profile     `json:"profile"`

	// changed es el dirty flag; no se serializa.
	changed bool
}

// New crea una cuenta vacía con un nickname temporal.
func New() *Account {
	now := nowFunc().UTC()
	return &Account{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Profile: Profile{
			Nickname: Nickname{Value: TemporaryNickname(now), History: []string{}},
		},
		changed: true,
	}
}

// TemporaryNickname arma "User-xxxx" con los milisegundos de t en hex.
func TemporaryNickname(t time.Time) string {
	ms := t.Nanosecond() / int(time.Millisecond)
	return fmt.Sprintf("User-%04x", ms)
}

// IsChanged reporta si hubo mutaciones desde la carga o el último guardado.
func (a *Account) IsChanged() bool { return a.changed }

// ResetChanged la llaman los repositorios tras cargar o guardar.
func (a *Account) ResetChanged() { a.changed = false }

// Touch marca la cuenta como modificada y avanza UpdatedAt.
func (a *Account) Touch() {
	a.UpdatedAt = nowFunc().UTC()
	a.changed = true
}

// UpdateNickname devuelve false (sin tocar historial ni contador) si el valor no cambia.
func (a *Account) UpdateNickname(v string) bool {
	n := &a.Profile.Nickname
	if n.Value == v {
		return false
	}
	n.History = append(n.History, n.Value)
	n.Value = v
	n.TimesUpdated++
	a.Touch()
	return true
}

func (a *Account) AddScore(delta int64) error {
	if a.Profile.Score+delta < 0 {
		return ErrNegativeCounter
	}
	a.Profile.Score += delta
	a.Touch()
	return nil
}

func (a *Account) AddExperience(delta int64) error {
	if a.Profile.Experience+delta < 0 {
		return ErrNegativeCounter
	}
	a.Profile.Experience += delta
	a.Touch()
	return nil
}

// Click incrementa el contador de clicks y devuelve el nuevo valor.
func (a *Account) Click() int64 {
	a.Profile.ClickCounter++
	a.Touch()
	return a.Profile.ClickCounter
}

// SetRefreshToken reemplaza el refresh token vigente.
func (a *Account) SetRefreshToken(token string) {
	a.Credentials.RefreshToken = token
	a.Touch()
}

// LogOut invalida el refresh token vigente.
func (a *Account) LogOut() { a.SetRefreshToken("") }

// HasStandardLogin reporta si la cuenta tiene email + password.
func (a *Account) HasStandardLogin() bool {
	return a.Credentials.Standard != nil
}

// SetStandard asigna el login por email con un hash ya calculado.
func (a *Account) SetStandard(email, passwordHash string) {
	a.Credentials.Standard = &StandardCredentials{Email: NormalizeEmail(email), PasswordHash: passwordHash}
	a.Touch()
}

// SharesIdentityWith reporta si o, siendo otra cuenta, tiene alguna identidad
// de proveedor o email estándar que ya pertenece a a.
func (a *Account) SharesIdentityWith(o *Account) bool {
	if a.ID == o.ID {
		return false
	}
	for _, p := range Platforms {
		if id := a.PlatformID(p); id != "" && id == o.PlatformID(p) {
			return true
		}
	}
	sa, so := a.Credentials.Standard, o.Credentials.Standard
	return sa != nil && so != nil && sa.Email != "" && sa.Email == so.Email
}

// IsKnownPlatform reporta si name es uno de los slots fijos.
func IsKnownPlatform(name string) bool {
	for _, p := range Platforms {
		if p == name {
			return true
		}
	}
	return false
}

// PlatformID devuelve el id de proveedor guardado en el slot, o "" si está vacío.
func (a *Account) PlatformID(name string) string {
	switch name {
	case PlatformDiscord:
		if d := a.Credentials.Platforms.Discord; d != nil {
			return d.ID
		}
	case PlatformGoogle:
		if g := a.Credentials.Platforms.Google; g != nil {
			return g.ID
		}
	}
	return ""
}

// HasPlatform reporta si el slot name está poblado.
func (a *Account) HasPlatform(name string) bool {
	switch name {
	case PlatformDiscord:
		return a.Credentials.Platforms.Discord != nil
	case PlatformGoogle:
		return a.Credentials.Platforms.Google != nil
	}
	return false
}

// ConnectedPlatforms cuenta los slots poblados.
func (a *Account) ConnectedPlatforms() int {
	n := 0
	for _, p := range Platforms {
		if a.HasPlatform(p) {
			n++
		}
	}
	return n
}

// ClearPlatform vacía el slot name.
func (a *Account) ClearPlatform(name string) error {
	switch name {
	case PlatformDiscord:
		a.Credentials.Platforms.Discord = nil
	case PlatformGoogle:
		a.Credentials.Platforms.Google = nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownPlatform, name)
	}
	a.Touch()
	return nil
}

// NormalizeEmail baja a minúsculas y recorta espacios.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
