package gmail

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
)

// LoadCredentials reads an OAuth client secret file (the credentials JSON
// downloaded from the Google Cloud console) and builds the oauth2 config for
// the read-only Gmail scope.
func LoadCredentials(path string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadCredentials: read %q: %w", path, err)
	}
	cfg, err := google.ConfigFromJSON(data, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("LoadCredentials: parse client secret: %w", err)
	}
	return cfg, nil
}

// AuthURL returns the consent URL for the one-time authorization flow.
// Offline access with forced consent so Google returns a refresh token.
func AuthURL(cfg *oauth2.Config) string {
	return cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades the pasted authorization code for a token. The refresh
// token inside it is what gets persisted in configuration.
func Exchange(ctx context.Context, cfg *oauth2.Config, code string) (*oauth2.Token, error) {
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("Exchange: %w", err)
	}
	return token, nil
}

// TokenSource builds a self-refreshing token source from a stored refresh
// token. Access tokens are minted on demand.
func TokenSource(ctx context.Context, cfg *oauth2.Config, refreshToken string) oauth2.TokenSource {
	return cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
}
