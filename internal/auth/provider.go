package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/Keoroanthony/go-ordertrack/configs"
)

var (
	ErrNotConfigured     = errors.New("auth: identity provider client id/secret not configured")
	ErrIncompleteProfile = errors.New("auth: profile is missing subject, email or name")
)

// Profile is what the identity provider tells us about a user.
type Profile struct {
	Subject string
	Email   string
	Name    string
}

// Provider exchanges an authorization code for the user's profile.
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (Profile, error)
}

// OIDCProvider talks to an OpenID Connect issuer: the code is exchanged for an
// access token, which is then used to read the userinfo endpoint.
type OIDCProvider struct {
	provider     *oidc.Provider
	oauth2Config *oauth2.Config
}

func NewOIDCProvider(ctx context.Context, cfg config.OAuthConfig) (*OIDCProvider, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("auth: discover %s: %w", cfg.Issuer, err)
	}

	return &OIDCProvider{
		provider: provider,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

func (p *OIDCProvider) AuthCodeURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state)
}

func (p *OIDCProvider) Exchange(ctx context.Context, code string) (Profile, error) {
	token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("auth: token exchange: %w", err)
	}

	info, err := p.provider.UserInfo(ctx, oauth2.StaticTokenSource(token))
	if err != nil {
		return Profile{}, fmt.Errorf("auth: userinfo: %w", err)
	}

	var claims struct {
		Name string `json:"name"`
	}
	if err := info.Claims(&claims); err != nil {
		return Profile{}, fmt.Errorf("auth: userinfo claims: %w", err)
	}

	profile := Profile{
		Subject: info.Subject,
		Email:   info.Email,
		Name:    claims.Name,
	}
	if profile.Subject == "" || profile.Email == "" || profile.Name == "" {
		return Profile{}, ErrIncompleteProfile
	}
	return profile, nil
}
