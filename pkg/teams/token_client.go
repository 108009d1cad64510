package teams

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenClient fetches a user's identity token from the Bot Framework
// user-token service. Tokens are never cached here; the service itself
// caches per user, and a stale copy on our side would outlive a revocation.
type TokenClient struct {
	apiBase string
	creds   *AppCredentials

	Client *http.Client
}

func NewTokenClient(apiBase string, creds *AppCredentials) *TokenClient {
	return &TokenClient{
		apiBase: strings.TrimRight(apiBase, "/"),
		creds:   creds,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type userTokenResponse struct {
	Token          string `json:"token"`
	ConnectionName string `json:"connectionName"`
	Expiration     string `json:"expiration"`
}

// GetUserToken asks the token service for the user's token on the bot's
// OAuth connection. A 404 means the user has not consented yet: the caller
// gets an empty token and should prompt for sign-in, it is not an error.
func (c *TokenClient) GetUserToken(ctx context.Context, userID, channelID, scope string) (string, error) {
	appToken, err := c.creds.Token()
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("userId", userID)
	q.Set("connectionName", c.creds.ClientID())
	if channelID != "" {
		q.Set("channelId", channelID)
	}
	if scope != "" {
		q.Set("scope", scope)
	}

	endpoint := fmt.Sprintf("%s/api/usertoken/GetToken?%s", c.apiBase, q.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	if appToken != "" {
		req.Header.Set("Authorization", "Bearer "+appToken)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token service error: status %d", resp.StatusCode)
	}

	var parsed userTokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal token response: %w", err)
	}
	return parsed.Token, nil
}
