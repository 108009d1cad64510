package main

import (
	"context"
	"log"

	"hr-relay-bot/internal/bootstrap"
	"hr-relay-bot/internal/config"
	"hr-relay-bot/internal/server"
	"hr-relay-bot/internal/tracer"

	"github.com/fatih/color"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)
	defer container.SysLogger.Sync()
	defer container.OpsPublisher.Close()

	// 3. Start Background Services
	go func() {
		log.Println("Background: Starting Turn Consumer...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 4. Initialize Server
	srv := server.New(cfg, container)

	color.Cyan("🤖 HR Relay Bot starting on port %s", cfg.App.Port)

	// 5. Run Server
	log.Fatal(srv.Run())
}
