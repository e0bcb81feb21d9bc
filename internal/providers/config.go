package providers

// Config contiene credenciales y endpoints de una instancia de proveedor.
// Los endpoints vacíos toman el valor por defecto del proveedor.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	AuthURL    string
	TokenURL   string
	ProfileURL string
}

// WithDefaults completa los campos vacíos con def.
func (c Config) WithDefaults(def Config) Config {
	if len(c.Scopes) == 0 {
		c.Scopes = def.Scopes
	}
	if c.AuthURL == "" {
		c.AuthURL = def.AuthURL
	}
	if c.TokenURL == "" {
		c.TokenURL = def.TokenURL
	}
	if c.ProfileURL == "" {
		c.ProfileURL = def.ProfileURL
	}
	return c
}
