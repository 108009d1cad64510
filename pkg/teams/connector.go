package teams

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ConnectorClient delivers outbound activities back to the messaging front
// end. Replies go to the serviceUrl the inbound activity carried, never to a
// fixed endpoint, because each channel region hosts its own connector.
type ConnectorClient struct {
	creds *AppCredentials

	Client *http.Client
}

func NewConnectorClient(creds *AppCredentials) *ConnectorClient {
	return &ConnectorClient{
		creds:  creds,
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

// ReplyToActivity posts a reply into the conversation the inbound activity
// belongs to.
func (c *ConnectorClient) ReplyToActivity(ctx context.Context, reply *Activity) error {
	if reply.ServiceURL == "" {
		return fmt.Errorf("reply has no service URL")
	}
	if reply.Conversation == nil || reply.Conversation.ID == "" {
		return fmt.Errorf("reply has no conversation id")
	}

	endpoint := fmt.Sprintf("%s/v3/conversations/%s/activities",
		strings.TrimRight(reply.ServiceURL, "/"),
		url.PathEscape(reply.Conversation.ID))
	if reply.ReplyToID != "" {
		endpoint += "/" + url.PathEscape(reply.ReplyToID)
	}

	body, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("create reply request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	appToken, err := c.creds.Token()
	if err != nil {
		return err
	}
	if appToken != "" {
		req.Header.Set("Authorization", "Bearer "+appToken)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("connector request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		if len(respBody) > 200 {
			respBody = respBody[:200]
		}
		return fmt.Errorf("connector error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
