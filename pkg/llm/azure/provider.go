package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hr-relay-bot/pkg/llm"
)

// AzureProvider calls an Azure OpenAI deployment directly. Unlike the
// OpenAI-compatible route, the deployment name is part of the URL and the
// key travels in the api-key header.
type AzureProvider struct {
	apiKey     string
	endpoint   string
	deployment string
	apiVersion string
	client     *http.Client
}

var _ llm.Provider = &AzureProvider{}

func NewAzureProvider(apiKey, endpoint, deployment, apiVersion string) *AzureProvider {
	return &AzureProvider{
		apiKey:     apiKey,
		endpoint:   strings.TrimRight(endpoint, "/"),
		deployment: deployment,
		apiVersion: apiVersion,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type azureChatRequest struct {
	Messages    []azureMessage `json:"messages"`
	Temperature float64        `json:"temperature,omitempty"`
	MaxTokens   int            `json:"max_tokens,omitempty"`
}

type azureMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type azureChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *AzureProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := &llm.Options{
		Temperature: 0.7,
	}
	for _, o := range options {
		o(opts)
	}

	deployment := p.deployment
	if opts.Model != "" {
		deployment = opts.Model
	}

	// Map generic messages onto the wire format
	messages := make([]azureMessage, len(history))
	for i, msg := range history {
		messages[i] = azureMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	reqBody := azureChatRequest{
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		p.endpoint, deployment, p.apiVersion)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("azure openai request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("azure openai error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var chatResp azureChatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("azure openai error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("azure openai returned no choices")
	}

	return chatResp.Choices[0].Message.Content, nil
}

func (p *AzureProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}
