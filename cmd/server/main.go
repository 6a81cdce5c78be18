package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/mamadbah2/proporco/internal/config"
	"github.com/mamadbah2/proporco/internal/repository/mongodb"
	"github.com/mamadbah2/proporco/internal/repository/sheets"
	"github.com/mamadbah2/proporco/internal/repository/store"
	"github.com/mamadbah2/proporco/internal/scheduler"
	"github.com/mamadbah2/proporco/internal/server/handlers"
	"github.com/mamadbah2/proporco/internal/server/router"
	commandsvc "github.com/mamadbah2/proporco/internal/service/commands"
	"github.com/mamadbah2/proporco/internal/service/livestock"
	reportingsvc "github.com/mamadbah2/proporco/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/proporco/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/proporco/pkg/clients/whatsapp"
	"github.com/mamadbah2/proporco/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.Env))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)
	if cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.String("timezone", cfg.Reporting.Timezone), zap.Error(err))
	}

	db, err := store.Open(cfg.Database, baseLogger.Named("repo.store"))
	if err != nil {
		baseLogger.Fatal("failed to open record store", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			baseLogger.Error("failed to close record store", zap.Error(err))
		}
	}()
	if err := db.Migrate(context.Background()); err != nil {
		baseLogger.Fatal("failed to migrate record store", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	livestockSvc := livestock.NewService(db, baseLogger.Named("svc.livestock"),
		livestock.WithMetrics(livestock.NewMetrics(registry)))

	reportingOpts := []reportingsvc.Option{
		reportingsvc.WithLocation(loc),
		reportingsvc.WithAlertHorizon(cfg.Reporting.AlertHorizon),
	}
	if cfg.MongoDB.Enabled() {
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		reportingOpts = append(reportingOpts, reportingsvc.WithArchive(mongoRepo))
	} else {
		baseLogger.Warn("mongodb uri missing, weekly reports will not be archived")
	}
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		reportingOpts = append(reportingOpts, reportingsvc.WithExporter(sheetsRepo))
	}
	reportingSvc := reportingsvc.NewService(db, baseLogger.Named("svc.reporting"), reportingOpts...)

	routerOpts := router.Options{
		Livestock:      livestockSvc,
		Reports:        handlers.NewReportHandler(reportingSvc, baseLogger.Named("handlers.reports")),
		Ping:           db.Ping,
		JWTSecret:      cfg.Auth.JWTSecret,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Registry:       registry,
		Logger:         baseLogger.Named("router"),
	}

	// nil unless WhatsApp is configured.
	var sender scheduler.Sender
	if cfg.WhatsApp.Enabled() {
		commandDispatcher := commandsvc.NewService(livestockSvc, reportingSvc, baseLogger.Named("svc.commands"))
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, db, commandDispatcher, baseLogger.Named("svc.whatsapp"))
		routerOpts.Webhook = handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))
		sender = messagingSvc
	} else {
		baseLogger.Warn("whatsapp token missing, worker commands and digest delivery disabled")
	}

	engine := router.New(routerOpts)

	sched, err := scheduler.NewScheduler(cfg.Reporting, db, reportingSvc, sender, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
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
