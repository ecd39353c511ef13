package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/lmeier/warehouse/internal/config"
	"github.com/lmeier/warehouse/internal/repository"
	"github.com/lmeier/warehouse/internal/repository/memory"
	"github.com/lmeier/warehouse/internal/repository/mongodb"
	"github.com/lmeier/warehouse/internal/scheduler"
	"github.com/lmeier/warehouse/internal/server/handlers"
	"github.com/lmeier/warehouse/internal/server/router"
	inventorysvc "github.com/lmeier/warehouse/internal/service/inventory"
	reordersvc "github.com/lmeier/warehouse/internal/service/reorder"
	"github.com/lmeier/warehouse/pkg/clients/eventlog"
	"github.com/lmeier/warehouse/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Logging.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	var catalog repository.Catalog
	var reorders repository.Reorders

	switch cfg.Storage.Driver {
	case config.DriverMongo:
		store, err := mongodb.NewStore(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
		}
		defer func() {
			if err := store.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		catalog = store.Catalog()
		reorders = store.Reorders()
	case config.DriverMemory:
		baseLogger.Warn("using in-memory storage, data is lost on shutdown")
		catalog = memory.NewCatalog()
		reorders = memory.NewReorders()
	}

	var publisher eventlog.Publisher
	if cfg.Events.WebhookURL != "" {
		publisher = eventlog.NewWebhookPublisher(cfg.Events.WebhookURL)
		baseLogger.Info("event webhook enabled", zap.String("url", cfg.Events.WebhookURL))
	} else {
		publisher = eventlog.NopPublisher{}
		baseLogger.Warn("no event webhook configured, events are discarded")
	}

	inventorySvc := inventorysvc.NewService(catalog, publisher, baseLogger.Named("svc.inventory"))
	reorderSvc := reordersvc.NewService(catalog, reorders, publisher, baseLogger.Named("svc.reorder"))

	articleHandler := handlers.NewArticleHandler(inventorySvc, baseLogger.Named("handlers.articles"))
	reorderHandler := handlers.NewReorderHandler(reorderSvc, baseLogger.Named("handlers.reorders"))
	engine := router.New(articleHandler, reorderHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Reorder, reorderSvc, baseLogger.Named("scheduler"))
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
