package teams

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// AppCredentials mints the bot's own app token via the client-credentials
// grant. The oauth2 token source caches and refreshes under the hood, so
// every caller just asks for the current token.
type AppCredentials struct {
	clientID string
	source   oauth2.TokenSource
}

func NewAppCredentials(clientID, clientSecret, tenantID string) *AppCredentials {
	if clientID == "" {
		// Local development against the emulator: no credentials, no token.
		return &AppCredentials{}
	}

	tenant := tenantID
	if tenant == "" {
		tenant = "botframework.com"
	}

	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", tenant),
		Scopes:       []string{"https://api.botframework.com/.default"},
	}

	return &AppCredentials{
		clientID: clientID,
		source:   cc.TokenSource(context.Background()),
	}
}

func (c *AppCredentials) ClientID() string {
	return c.clientID
}

// Token returns the current app access token, or "" when running without
// registered credentials.
func (c *AppCredentials) Token() (string, error) {
	if c.source == nil {
		return "", nil
	}
	tok, err := c.source.Token()
	if err != nil {
		return "", fmt.Errorf("acquire app token: %w", err)
	}
	return tok.AccessToken, nil
}
