package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// OAuthClient implementa la parte de protocolo común: URL de autorización,
// canje de code y GET al endpoint de perfil. Los adaptadores lo embeben.
type OAuthClient struct {
	conf       *oauth2.Config
	profileURL string
	http       *http.Client
}

func NewOAuthClient(cfg Config) *OAuthClient {
	return &OAuthClient{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		profileURL: cfg.ProfileURL,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

// WithHTTPClient reemplaza el cliente HTTP (tests, proxies).
func (c *OAuthClient) WithHTTPClient(hc *http.Client) *OAuthClient {
	c.http = hc
	return c
}

func (c *OAuthClient) AuthorizeURL(state string) string {
	return c.conf.AuthCodeURL(state)
}

func (c *OAuthClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	tok, err := c.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange: %v", ErrProviderCommunication, err)
	}
	return tok, nil
}

// FetchProfile manda "Authorization: <token_type> <access_token>".
func (c *OAuthClient) FetchProfile(ctx context.Context, token *oauth2.Token) (RawProfile, error) {
	if token == nil || token.AccessToken == "" {
		return nil, fmt.Errorf("%w: missing access token", ErrProviderCommunication)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.profileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderCommunication, err)
	}
	token.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: profile request: %v", ErrProviderCommunication, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read profile: %v", ErrProviderCommunication, err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%w: profile endpoint returned %d", ErrProviderCommunication, resp.StatusCode)
	}
	var raw RawProfile
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: profile is not a JSON object: %v", ErrProviderCommunication, err)
	}
	return raw, nil
}
