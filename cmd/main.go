package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	redisclient "github.com/yungbote/roadmap-agent/internal/clients/redis"
	"github.com/yungbote/roadmap-agent/internal/config"
	"github.com/yungbote/roadmap-agent/internal/db"
	"github.com/yungbote/roadmap-agent/internal/handlers"
	"github.com/yungbote/roadmap-agent/internal/logger"
	"github.com/yungbote/roadmap-agent/internal/observability"
	"github.com/yungbote/roadmap-agent/internal/pathgen"
	"github.com/yungbote/roadmap-agent/internal/repos"
	"github.com/yungbote/roadmap-agent/internal/server"
	"github.com/yungbote/roadmap-agent/internal/services"
	"github.com/yungbote/roadmap-agent/internal/sse"
	"github.com/yungbote/roadmap-agent/internal/types"
	"github.com/yungbote/roadmap-agent/internal/utils"
)

func main() {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load(log)

	shutdownOtel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "roadmap-agent",
		Environment: utils.GetEnv("APP_ENV", "development", log),
	})
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownOtel(shutdownCtx)
	}()

	// Model client: fatal if unconfigured, no pipeline can run without it.
	aiClient, err := services.NewAIClient(log)
	if err != nil {
		log.Fatal("Could not init AIClient", "error", err)
	}

	// Redis: event bus + progress sink.
	eventBus, err := redisclient.NewEventBus(log)
	if err != nil {
		log.Fatal("Could not init event bus", "error", err)
	}
	defer eventBus.Close()

	progressStore, err := redisclient.NewProgressStore(log, cfg.ProgressTTL)
	if err != nil {
		log.Fatal("Could not init progress store", "error", err)
	}
	defer progressStore.Close()

	// Postgres is optional: without it finished paths only travel on the
	// generated event.
	var pathRepo repos.LearningPathRepo
	if cfg.PostgresEnabled {
		postgresService, err := db.NewPostgresService(log)
		if err != nil {
			log.Warn("Postgres init failed, running without persistence", "error", err)
		} else {
			if err := postgresService.AutoMigrateAll(); err != nil {
				log.Warn("Postgres auto migration failed", "error", err)
			}
			pathRepo = repos.NewLearningPathRepo(postgresService.DB(), log)
		}
	}

	emitter := &redisclient.BusEmitter{Log: log, Bus: eventBus}
	pathHandler := pathgen.NewHandler(log, aiClient, progressStore, emitter, pathRepo, cfg.EnrichConcurrency)
	subscriber := pathgen.NewSubscriber(log, eventBus, pathHandler)

	hub := sse.NewHub(log)
	if err := progressStore.StartForwarder(ctx, func(m types.ProgressMessage) {
		hub.Broadcast(m.TraceID, m.Update)
	}); err != nil {
		log.Fatal("Could not start progress forwarder", "error", err)
	}

	router := server.NewRouter(server.RouterConfig{
		LearningPathHandler: handlers.NewLearningPathHandler(log, eventBus, progressStore, pathRepo),
		SSEHandler:          handlers.NewSSEHandler(log, hub),
		AllowOrigins:        cfg.AllowOrigins,
	})

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := subscriber.Start(gCtx); err != nil {
			return fmt.Errorf("start subscriber: %w", err)
		}
		log.Info("Listening for learning path requests")
		<-gCtx.Done()
		return nil
	})
	g.Go(func() error {
		log.Info("HTTP server starting", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Service exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("Service stopped")
}
