// Package discord implementa el proveedor OAuth2 de Discord.
package discord

import (
	"context"
	"time"

	"github.com/dropDatabas3/clickauth/internal/domain/account"
	"github.com/dropDatabas3/clickauth/internal/domain/repository"
	"github.com/dropDatabas3/clickauth/internal/providers"
)

const ProviderName = account.PlatformDiscord

// Defaults son los endpoints públicos de Discord.
var Defaults = providers.Config{
	Scopes:     []string{"identify"},
	AuthURL:    "https://discord.com/api/oauth2/authorize",
	TokenURL:   "https://discord.com/api/oauth2/token",
	ProfileURL: "https://discord.com/api/users/@me",
}

var schema = providers.StringFieldsSchema("id", "username", "discriminator", "avatar")

type profile struct {
	ID            string
	Username      string
	Discriminator string
	Avatar        string
}

// Provider adapta el perfil de Discord al slot discord de la cuenta.
type Provider struct {
	*providers.OAuthClient
	now func() time.Time
}

var _ providers.Adapter = (*Provider)(nil)

func New(cfg providers.Config) *Provider {
	return &Provider{
		OAuthClient: providers.NewOAuthClient(cfg.WithDefaults(Defaults)),
		now:         time.Now,
	}
}

func (p *Provider) Name() string { return ProviderName }

func (p *Provider) ValidateData(raw providers.RawProfile) error {
	return providers.ValidateAgainst(schema, raw)
}

func (p *Provider) IsDataValid(raw providers.RawProfile) bool {
	return p.ValidateData(raw) == nil
}

func (p *Provider) parse(raw providers.RawProfile) (profile, error) {
	if err := p.ValidateData(raw); err != nil {
		return profile{}, err
	}
	return profile{
		ID:            providers.Str(raw, "id"),
		Username:      providers.Str(raw, "username"),
		Discriminator: providers.Str(raw, "discriminator"),
		Avatar:        providers.Str(raw, "avatar"),
	}, nil
}

func (p *Provider) IsDifferentAccountConnected(a *account.Account, raw providers.RawProfile) bool {
	slot := a.Credentials.Platforms.Discord
	if slot == nil {
		return false
	}
	return slot.ID != providers.Str(raw, "id")
}

func (p *Provider) AssignOrUpdateFields(a *account.Account, raw providers.RawProfile) error {
	f, err := p.parse(raw)
	if err != nil {
		return err
	}
	now := p.now().UTC()
	slot := a.Credentials.Platforms.Discord
	if slot == nil {
		slot = &account.DiscordIdentity{CreatedAt: now}
		a.Credentials.Platforms.Discord = slot
	}
	slot.ID = f.ID
	slot.Username = f.Username
	slot.Discriminator = f.Discriminator
	slot.Avatar = f.Avatar
	slot.UpdatedAt = now
	a.Touch()
	return nil
}

func (p *Provider) FindAccountWithSameProviderIdentity(ctx context.Context, repo repository.AccountRepository, raw providers.RawProfile) (*account.Account, error) {
	return repo.FindByProviderID(ctx, ProviderName, providers.Str(raw, "id"))
}

// DisplayName es "username" o "username#discriminator" para cuentas legacy.
func (p *Provider) DisplayName(raw providers.RawProfile) string {
	name := providers.Str(raw, "username")
	if d := providers.Str(raw, "discriminator"); d != "" && d != "0" {
		return name + "#" + d
	}
	return name
}
