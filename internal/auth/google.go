package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var ErrGoogleLoginNotConfigured = errors.New("google login is not configured")

// GoogleProfile is the subset of the userinfo response the service needs to
// resolve a federated identity to a local user.
type GoogleProfile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
}

type GoogleOAuthProvider interface {
	AuthCodeURL(state string) (string, error)
	FetchProfile(ctx context.Context, code string) (*GoogleProfile, error)
}

type googleOAuth struct {
	config *oauth2.Config
}

// NewGoogleOAuth builds the provider from environment variables. A service
// without Google credentials still starts; the login endpoints report the
// provider as not configured.
func NewGoogleOAuth() GoogleOAuthProvider {
	clientID := os.Getenv("GOOGLE_OAUTH_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_OAUTH_CLIENT_SECRET")
	redirectURL := os.Getenv("GOOGLE_OAUTH_REDIRECT_URL")
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return &googleOAuth{}
	}

	return &googleOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email"},
			Endpoint:     google.Endpoint,
		},
	}
}

func (g *googleOAuth) AuthCodeURL(state string) (string, error) {
	if g.config == nil {
		return "", ErrGoogleLoginNotConfigured
	}
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

func (g *googleOAuth) FetchProfile(ctx context.Context, code string) (*GoogleProfile, error) {
	if g.config == nil {
		return nil, ErrGoogleLoginNotConfigured
	}

	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}

	resp, err := g.config.Client(ctx, token).Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("userinfo request failed with status %d", resp.StatusCode)
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if profile.ID == "" || profile.Email == "" {
		return nil, errors.New("userinfo response is missing id or email")
	}

	return &profile, nil
}
