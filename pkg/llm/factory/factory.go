package factory

import (
	"fmt"

	"hr-relay-bot/internal/config"
	"hr-relay-bot/pkg/llm"
	"hr-relay-bot/pkg/llm/azure"
	"hr-relay-bot/pkg/llm/litellm"
)

// NewProvider resolves the chat-completion provider from config, once, at
// startup. The LiteLLM proxy wins when fully configured; otherwise a complete
// Azure OpenAI credential set is required. Neither being complete is a fatal
// configuration error and the process must not start.
func NewProvider(cfg *config.AIConfig) (llm.Provider, error) {
	if cfg.UseLiteLLM() {
		return litellm.NewLiteLLMProvider(cfg.LiteLLMAPIKey, cfg.LiteLLMBaseURL, cfg.LiteLLMModel), nil
	}

	if cfg.AzureAPIKey == "" || cfg.AzureEndpoint == "" || cfg.AzureDeployment == "" {
		return nil, fmt.Errorf(
			"incomplete inference configuration: set AZURE_OPENAI_API_KEY, AZURE_OPENAI_ENDPOINT and AZURE_OPENAI_MODEL_DEPLOYMENT_NAME, " +
				"or LITELLM_API_KEY, LITELLM_BASE_URL and LITELLM_DEFAULT_CHAT_MODEL")
	}

	return azure.NewAzureProvider(cfg.AzureAPIKey, cfg.AzureEndpoint, cfg.AzureDeployment, cfg.APIVersion), nil
}
