package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fridge-chef/internal/chef"
	"fridge-chef/internal/config"
	"fridge-chef/internal/database"
	"fridge-chef/internal/llm"
	"fridge-chef/internal/metrics"
	"fridge-chef/internal/session"
	"fridge-chef/internal/telegram"
	"fridge-chef/internal/web"

	"github.com/google/uuid"
)

func main() {
	startedAt := time.Now()

	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. Initialize the LLM. A missing key is not fatal: recipe requests
	// report it to the user instead.
	var gen llm.JSONGenerator
	g, closer, err := llm.NewFromConfig(ctx, cfg)
	switch {
	case errors.Is(err, llm.ErrMissingAPIKey):
		log.Printf("Warning: no API key for provider %s, recipe suggestions are disabled", cfg.LLMProvider)
	case err != nil:
		log.Fatalf("Failed to create %s client: %v", cfg.LLMProvider, err)
	default:
		gen = g
		if closer != nil {
			defer closer.Close()
		}
	}

	// 3. Optional metrics database
	var recorder chef.UsageRecorder
	var metricsStore *metrics.Store
	if cfg.MetricsDBPath != "" {
		db, err := database.NewDB(cfg.MetricsDBPath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		metricsStore = metrics.NewStore(db.SQL)
		recorder = metricsStore
	}

	// 4. Sessions
	registry := session.NewRegistry(chef.New(gen, recorder), cfg.SessionTTL)
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go registry.RunSweeper(sweepCtx, time.Minute)

	// 5. Front ends
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		log.Printf("Warning: SESSION_SECRET is not set, sessions will not survive a restart")
		secret = []byte(uuid.NewString())
	}

	router := web.NewRouter()
	webServer, err := web.NewServer(registry, secret, cfg.SessionTTL, cfg.LLMTimeout)
	if err != nil {
		log.Fatalf("Failed to initialize web UI: %v", err)
	}
	webServer.RegisterHandlers(router)

	if cfg.TelegramBotToken != "" {
		bot, err := telegram.NewBot(cfg, registry, metricsStore, startedAt)
		if err != nil {
			log.Fatalf("Failed to initialize Telegram Bot: %v", err)
		}
		bot.RegisterHandlers(router)
	}

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Fridge Chef listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
