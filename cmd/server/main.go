package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/alrehman/poultrybooks/internal/config"
	"github.com/alrehman/poultrybooks/internal/domain/models"
	"github.com/alrehman/poultrybooks/internal/repository/mongodb"
	"github.com/alrehman/poultrybooks/internal/repository/sheets"
	"github.com/alrehman/poultrybooks/internal/scheduler"
	"github.com/alrehman/poultrybooks/internal/server/handlers"
	"github.com/alrehman/poultrybooks/internal/server/router"
	commandsvc "github.com/alrehman/poultrybooks/internal/service/commands"
	ledgersvc "github.com/alrehman/poultrybooks/internal/service/ledger"
	messagingsvc "github.com/alrehman/poultrybooks/internal/service/messaging"
	reportingsvc "github.com/alrehman/poultrybooks/internal/service/reporting"
	"github.com/alrehman/poultrybooks/pkg/clients/anthropic"
	whatsappclient "github.com/alrehman/poultrybooks/pkg/clients/whatsapp"
	"github.com/alrehman/poultrybooks/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	// The books stay usable without Mongo: a failed connect or load degrades
	// to an in-memory session starting from the default state.
	var store ledgersvc.Store
	initial := models.DefaultState()
	mongoRepo, err := mongodb.NewStateRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName, baseLogger.Named("repo.mongodb"))
	if err != nil {
		baseLogger.Warn("mongodb unavailable, running in memory", zap.Error(err))
	} else {
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		loaded, err := mongoRepo.Load(context.Background())
		if err != nil {
			baseLogger.Warn("state load failed, starting from default books", zap.Error(err))
		} else {
			initial = loaded
		}
		store = mongoRepo
	}

	books := ledgersvc.NewService(initial, store, baseLogger.Named("svc.ledger"))
	reports := reportingsvc.NewService(books, baseLogger.Named("svc.reporting"))
	dispatcher := commandsvc.NewService(books, reports, baseLogger.Named("svc.commands"))

	var aiClient anthropic.Client
	if cfg.AI.AnthropicKey != "" {
		aiClient = anthropic.NewClient(cfg.AI.AnthropicKey)
		baseLogger.Info("anthropic ai client enabled")
	} else {
		baseLogger.Warn("anthropic api key missing, natural language commands disabled")
	}

	var messagingSvc messagingsvc.MessagingService
	var webhookHandler *handlers.WebhookHandler
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc = messagingsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, aiClient, dispatcher, baseLogger.Named("svc.messaging"))
		webhookHandler = handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.webhook"))
	} else {
		baseLogger.Info("whatsapp not configured, webhook routes disabled")
	}

	var mirror *sheets.StateMirror
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Warn("sheets unavailable, mirror disabled", zap.Error(err))
		} else {
			mirror = sheets.NewStateMirror(sheetsRepo, baseLogger.Named("repo.mirror"))
		}
	}

	booksHandler := handlers.NewBooksHandler(books, reports, baseLogger.Named("handlers.books"))
	engine := router.New(booksHandler, webhookHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, books, dispatcher, messagingSvc, mirror, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
