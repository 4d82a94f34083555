package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/mkarlin/chatdeck-backend/internal/clients/assistant"
	"github.com/mkarlin/chatdeck-backend/internal/config"
	"github.com/mkarlin/chatdeck-backend/internal/db"
	"github.com/mkarlin/chatdeck-backend/internal/handlers"
	"github.com/mkarlin/chatdeck-backend/internal/logger"
	"github.com/mkarlin/chatdeck-backend/internal/middleware"
	"github.com/mkarlin/chatdeck-backend/internal/realtime"
	"github.com/mkarlin/chatdeck-backend/internal/realtime/bus"
	"github.com/mkarlin/chatdeck-backend/internal/repos"
	"github.com/mkarlin/chatdeck-backend/internal/server"
	"github.com/mkarlin/chatdeck-backend/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(cfg.Postgres, log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos...")
	userRepo := repos.NewUserRepo(thePG, log)
	chatRepo := repos.NewChatRepo(thePG, log)
	messageRepo := repos.NewMessageRepo(thePG, log)
	voteRepo := repos.NewVoteRepo(thePG, log)
	documentRepo := repos.NewDocumentRepo(thePG, log)
	suggestionRepo := repos.NewSuggestionRepo(thePG, log)
	streamRepo := repos.NewStreamRepo(thePG, log)

	// Realtime
	log.Info("Setting up realtime hub...")
	hub := realtime.NewHub(log)
	var eventBus bus.Bus
	if cfg.Redis.Addr != "" {
		eventBus, err = bus.NewRedisBus(cfg.Redis, log)
		if err != nil {
			log.Fatal("Redis bus init failed", "error", err)
		}
	} else {
		log.Warn("REDIS_ADDR not set, using in-process event bus")
		eventBus = bus.NewLocalBus()
	}

	// Clients
	assistantClient, err := assistant.NewClient(cfg.OpenAI, log)
	if err != nil {
		log.Fatal("Assistant client init failed", "error", err)
	}

	// Services
	log.Info("Setting up services...")
	avatarService := services.NewAvatarService(cfg.Avatar, log)
	authService := services.NewAuthService(thePG, log, userRepo, avatarService, cfg.Auth.JWTSecretKey, cfg.Auth.AccessTokenTTL)
	assistantService := services.NewAssistantService(thePG, log, assistantClient, chatRepo, messageRepo, streamRepo, cfg.OpenAI.PollInterval, cfg.OpenAI.RunTimeout)
	chatService := services.NewChatService(thePG, log, chatRepo, messageRepo, voteRepo, streamRepo)
	documentService := services.NewDocumentService(thePG, log, documentRepo, eventBus)
	suggestionService := services.NewSuggestionService(thePG, log, suggestionRepo, documentRepo)
	voteService := services.NewVoteService(thePG, log, voteRepo, chatRepo, messageRepo)

	// Handlers
	log.Info("Setting up handlers...")
	authHandler := handlers.NewAuthHandler(authService)
	assistantHandler := handlers.NewAssistantHandler(assistantService)
	chatHandler := handlers.NewChatHandler(chatService)
	documentHandler := handlers.NewDocumentHandler(documentService)
	voteHandler := handlers.NewVoteHandler(voteService)
	suggestionHandler := handlers.NewSuggestionHandler(suggestionService)
	sseHandler := handlers.NewSSEHandler(log, hub, chatService)
	avatarHandler := handlers.NewAvatarHandler(avatarService, userRepo)

	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	router := server.NewRouter(server.RouterConfig{
		Server:            cfg.Server,
		AuthMiddleware:    authMiddleware,
		AuthHandler:       authHandler,
		AssistantHandler:  assistantHandler,
		ChatHandler:       chatHandler,
		DocumentHandler:   documentHandler,
		VoteHandler:       voteHandler,
		SuggestionHandler: suggestionHandler,
		SSEHandler:        sseHandler,
		AvatarHandler:     avatarHandler,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := eventBus.StartForwarder(ctx, hub.Broadcast); err != nil {
		log.Fatal("Event bus forwarder failed to start", "error", err)
	}
	defer eventBus.Close()

	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server listening", "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down...")
		return httpServer.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		log.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}
