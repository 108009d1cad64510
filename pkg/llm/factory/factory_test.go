package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-relay-bot/internal/config"
	"hr-relay-bot/pkg/llm/azure"
	"hr-relay-bot/pkg/llm/litellm"
)

func TestNewProviderPrefersLiteLLM(t *testing.T) {
	cfg := &config.AIConfig{
		LiteLLMAPIKey:  "key",
		LiteLLMBaseURL: "http://litellm:4000",
		LiteLLMModel:   "gpt-4o",

		// Azure being configured too must not matter.
		AzureAPIKey:     "azure-key",
		AzureEndpoint:   "https://example.openai.azure.com",
		AzureDeployment: "gpt-4o",
	}

	provider, err := NewProvider(cfg)
	require.NoError(t, err)
	assert.IsType(t, &litellm.LiteLLMProvider{}, provider)
}

func TestNewProviderFallsBackToAzure(t *testing.T) {
	cfg := &config.AIConfig{
		AzureAPIKey:     "azure-key",
		AzureEndpoint:   "https://example.openai.azure.com",
		AzureDeployment: "gpt-4o",
		APIVersion:      "2024-10-21",
	}

	provider, err := NewProvider(cfg)
	require.NoError(t, err)
	assert.IsType(t, &azure.AzureProvider{}, provider)
}

func TestNewProviderPartialLiteLLMIsNotEnough(t *testing.T) {
	// Base URL missing: LiteLLM is incomplete, Azure complete, Azure wins.
	cfg := &config.AIConfig{
		LiteLLMAPIKey: "key",
		LiteLLMModel:  "gpt-4o",

		AzureAPIKey:     "azure-key",
		AzureEndpoint:   "https://example.openai.azure.com",
		AzureDeployment: "gpt-4o",
	}

	provider, err := NewProvider(cfg)
	require.NoError(t, err)
	assert.IsType(t, &azure.AzureProvider{}, provider)
}

func TestNewProviderErrorsWhenNothingConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.AIConfig
	}{
		{"all empty", config.AIConfig{}},
		{"azure missing deployment", config.AIConfig{
			AzureAPIKey:   "azure-key",
			AzureEndpoint: "https://example.openai.azure.com",
		}},
		{"azure missing key", config.AIConfig{
			AzureEndpoint:   "https://example.openai.azure.com",
			AzureDeployment: "gpt-4o",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(&tt.cfg)
			assert.Error(t, err)
			assert.Nil(t, provider)
		})
	}
}
