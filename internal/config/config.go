package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Bot     BotConfig
	Backend BackendConfig
	Ai      AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	SessionStore       string // "memory" or "redis"
	SessionTTLMinutes  int
	TurnTopic          string // internal event bus topic for handled turns
}

type BotConfig struct {
	ClientID     string
	ClientSecret string
	TenantID     string
	BotType      string // "" | "UserAssignedMsi"
	TokenAPIBase string // Bot Framework user-token service
}

type BackendConfig struct {
	URL          string // HR knowledge backend base URL; empty means local inference
	AuthEndpoint string // path for token registration
	Database     string // optional DSN for the transcript audit store
}

type AIConfig struct {
	// LiteLLM proxy (preferred when fully configured)
	LiteLLMAPIKey  string
	LiteLLMBaseURL string
	LiteLLMModel   string

	// Azure OpenAI direct (fallback)
	AzureAPIKey     string
	AzureEndpoint   string
	AzureDeployment string
	APIVersion      string
}

// DefaultPort is the bot's listen port. Port 8386 belongs to the HR backend
// and is corrected if it leaks into the bot's environment.
const (
	DefaultPort = "3978"
	backendPort = "8386"
)

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	port := getEnv("PORT", DefaultPort)
	if port == backendPort {
		log.Printf("[WARN] PORT=%s is the HR backend's port, not the bot's. Correcting to %s", backendPort, DefaultPort)
		port = DefaultPort
	}

	return &Config{
		App: AppConfig{
			Port:               port,
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/relay.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			SessionStore:       getEnv("SESSION_STORE", "memory"),
			SessionTTLMinutes:  getEnvAsInt("SESSION_TTL_MINUTES", 60),
			TurnTopic:          getEnv("TURN_EVENT_TOPIC_NAME", "CHAT_TURN_HANDLED"),
		},
		Bot: BotConfig{
			ClientID:     getEnv("CLIENT_ID", ""),
			ClientSecret: getEnv("CLIENT_SECRET", ""),
			TenantID:     getEnv("TENANT_ID", ""),
			BotType:      getEnv("BOT_TYPE", ""),
			TokenAPIBase: getEnv("TOKEN_API_BASE", "https://token.botframework.com"),
		},
		Backend: BackendConfig{
			URL:          getEnv("BACKEND_URL", ""),
			AuthEndpoint: getEnv("BACKEND_AUTH_ENDPOINT", "/api/auth/teams-token"),
			Database:     getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LiteLLMAPIKey:   getEnv("LITELLM_API_KEY", ""),
			LiteLLMBaseURL:  getEnv("LITELLM_BASE_URL", ""),
			LiteLLMModel:    getEnv("LITELLM_DEFAULT_CHAT_MODEL", ""),
			AzureAPIKey:     getEnv("AZURE_OPENAI_API_KEY", ""),
			AzureEndpoint:   getEnv("AZURE_OPENAI_ENDPOINT", ""),
			AzureDeployment: getEnv("AZURE_OPENAI_MODEL_DEPLOYMENT_NAME", ""),
			APIVersion:      getEnv("AZURE_OPENAI_API_VERSION", "2024-10-21"),
		},
	}
}

// UseLiteLLM reports whether the LiteLLM proxy is fully configured. The
// provider choice is made once at startup and never re-evaluated.
func (c *AIConfig) UseLiteLLM() bool {
	return c.LiteLLMAPIKey != "" && c.LiteLLMBaseURL != "" && c.LiteLLMModel != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
