// Package google implementa el proveedor OAuth2 de Google (userinfo v2).
package google

import (
	"context"
	"time"

	"github.com/dropDatabas3/clickauth/internal/domain/account"
	"github.com/dropDatabas3/clickauth/internal/domain/repository"
	"github.com/dropDatabas3/clickauth/internal/providers"
)

const ProviderName = account.PlatformGoogle

var Defaults = providers.Config{
	Scopes:     []string{"profile", "email"},
	AuthURL:    "https://accounts.google.com/o/oauth2/v2/auth",
	TokenURL:   "https://www.googleapis.com/oauth2/v4/token",
	ProfileURL: "https://www.googleapis.com/oauth2/v2/userinfo",
}

var schema = providers.StringFieldsSchema("id", "email", "name", "picture")

// profile es la vista tipada de userinfo v2, ya validada contra el schema.
type profile struct {
	ID      string
	Email   string
	Name    string
	Picture string
}

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

func (p *Provider) IsDataValid(raw providers.RawProfile) bool { return p.ValidateData(raw) == nil }

func (p *Provider) parse(raw providers.RawProfile) (profile, error) {
	if err := p.ValidateData(raw); err != nil {
		return profile{}, err
	}
	return profile{
		ID:      providers.Str(raw, "id"),
		Email:   providers.Str(raw, "email"),
		Name:    providers.Str(raw, "name"),
		Picture: providers.Str(raw, "picture"),
	}, nil
}

func (p *Provider) IsDifferentAccountConnected(a *account.Account, raw providers.RawProfile) bool {
	slot := a.Credentials.Platforms.Google
	return slot != nil && slot.ID != providers.Str(raw, "id")
}

func (p *Provider) AssignOrUpdateFields(a *account.Account, raw providers.RawProfile) error {
	f, err := p.parse(raw)
	if err != nil {
		return err
	}
	now := p.now().UTC()
	slot := a.Credentials.Platforms.Google
	if slot == nil {
		slot = &account.GoogleIdentity{CreatedAt: now}
		a.Credentials.Platforms.Google = slot
	}
	slot.ID = f.ID
	slot.Email = f.Email
	slot.Name = f.Name
	slot.Picture = f.Picture
	slot.UpdatedAt = now
	a.Touch()
	return nil
}

func (p *Provider) FindAccountWithSameProviderIdentity(ctx context.Context, repo repository.AccountRepository, raw providers.RawProfile) (*account.Account, error) {
	return repo.FindByProviderID(ctx, ProviderName, providers.Str(raw, "id"))
}

func (p *Provider) DisplayName(raw providers.RawProfile) string {
	return providers.Str(raw, "name")
}
