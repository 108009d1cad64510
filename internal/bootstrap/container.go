package bootstrap

import (
	"log"
	"time"

	"hr-relay-bot/internal/config"
	"hr-relay-bot/internal/constant"
	"hr-relay-bot/internal/controller"
	"hr-relay-bot/internal/pkg/logger"
	"hr-relay-bot/internal/repository/contract"
	"hr-relay-bot/internal/repository/implementation"
	"hr-relay-bot/internal/repository/memory"
	"hr-relay-bot/internal/repository/redisstore"
	"hr-relay-bot/internal/service"
	"hr-relay-bot/pkg/backend"
	"hr-relay-bot/pkg/database"
	"hr-relay-bot/pkg/llm/factory"
	"hr-relay-bot/pkg/teams"

	pktNats "hr-relay-bot/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"hr-relay-bot/internal/model"
)

type Container struct {
	// Controllers
	MessagesController    controller.IMessagesController
	TranscriptsController controller.ITranscriptsController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Held for shutdown
	SysLogger    logger.ILogger
	OpsPublisher *pktNats.Publisher
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Inference Provider (static startup-time choice, fatal if incomplete)
	llmProvider, err := factory.NewProvider(&cfg.Ai)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	if cfg.Ai.UseLiteLLM() {
		log.Printf("[INFO] Using LLM Provider: LiteLLM proxy (%s)", cfg.Ai.LiteLLMModel)
	} else {
		log.Printf("[INFO] Using LLM Provider: Azure OpenAI direct (%s)", cfg.Ai.AzureDeployment)
	}

	// 4. Session Storage
	sessionTTL := time.Duration(cfg.App.SessionTTLMinutes) * time.Minute
	var sessionRepo contract.SessionRepository
	if cfg.App.SessionStore == "redis" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		sessionRepo = redisstore.NewSessionRepository(rdb, sessionTTL)
		log.Printf("[INFO] Using Session Store: REDIS")
	} else {
		sessionRepo = memory.NewSessionRepository(sessionTTL)
		log.Printf("[INFO] Using Session Store: MEMORY (TTL %s)", sessionTTL)
	}

	// 5. Collaborator clients
	creds := teams.NewAppCredentials(cfg.Bot.ClientID, cfg.Bot.ClientSecret, cfg.Bot.TenantID)
	tokenClient := teams.NewTokenClient(cfg.Bot.TokenAPIBase, creds)
	connectorClient := teams.NewConnectorClient(creds)
	backendClient := backend.NewClient(cfg.Backend.URL, cfg.Backend.AuthEndpoint)
	if backendClient.Configured() {
		log.Printf("[INFO] HR backend configured: %s", cfg.Backend.URL)
	} else {
		log.Printf("[INFO] No HR backend configured, queries go to local inference")
	}

	// 6. Ops infrastructure (all optional)
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		}
	}

	var transcriptRepo contract.TranscriptRepository
	if cfg.Backend.Database != "" {
		db, err := database.NewGormDBFromDSN(cfg.Backend.Database)
		if err != nil {
			log.Printf("[WARN] Transcript DB unavailable, auditing to log only: %v", err)
		} else {
			transcriptRepo = newTranscriptRepo(db)
		}
	}

	// 7. Services
	publisherService := service.NewPublisherService(cfg.App.TurnTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.TurnTopic,
		transcriptRepo,
		sysLogger,
	)

	relayService := service.NewRelayService(
		sessionRepo,
		backendClient,
		tokenClient,
		llmProvider,
		publisherService,
		natsPub,
		sysLogger,
		cfg.Bot.TenantID,
		constant.LoadInstructions(""),
	)

	// 8. Controllers
	return &Container{
		MessagesController:    controller.NewMessagesController(relayService, connectorClient, sysLogger, cfg.Bot.ClientID),
		TranscriptsController: controller.NewTranscriptsController(transcriptRepo, sysLogger),
		ConsumerService:       consumerService,
		SysLogger:             sysLogger,
		OpsPublisher:          natsPub,
	}
}

func newTranscriptRepo(db *gorm.DB) contract.TranscriptRepository {
	if err := db.AutoMigrate(&model.ChatTranscript{}); err != nil {
		log.Printf("[WARN] Transcript migration failed: %v", err)
	}
	return implementation.NewTranscriptRepository(db)
}
