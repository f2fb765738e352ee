package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/mamadbah2/herdbook/internal/config"
	"github.com/mamadbah2/herdbook/internal/metrics"
	"github.com/mamadbah2/herdbook/internal/repository/backend"
	"github.com/mamadbah2/herdbook/internal/repository/sheets"
	"github.com/mamadbah2/herdbook/internal/scheduler"
	"github.com/mamadbah2/herdbook/internal/server/handlers"
	"github.com/mamadbah2/herdbook/internal/server/router"
	authsvc "github.com/mamadbah2/herdbook/internal/service/auth"
	breedingsvc "github.com/mamadbah2/herdbook/internal/service/breeding"
	commandsvc "github.com/mamadbah2/herdbook/internal/service/commands"
	herdsvc "github.com/mamadbah2/herdbook/internal/service/herd"
	medicinesvc "github.com/mamadbah2/herdbook/internal/service/medicine"
	remindersvc "github.com/mamadbah2/herdbook/internal/service/reminders"
	reportingsvc "github.com/mamadbah2/herdbook/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/herdbook/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/herdbook/pkg/clients/whatsapp"
	"github.com/mamadbah2/herdbook/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := backend.Open(ctx, cfg, true, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to open store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close store", zap.Error(err))
		}
	}()

	var (
		recorder metrics.Recorder = metrics.Nop{}
		registry *metrics.Metrics
	)
	if cfg.Metrics.Enabled {
		registry = metrics.New()
		recorder = registry
	}

	authService, err := authsvc.NewService(store, authsvc.Options{
		Secret:   []byte(cfg.Auth.JWTSecret),
		TokenTTL: cfg.Auth.TokenTTL,
	}, recorder, baseLogger.Named("svc.auth"))
	if err != nil {
		baseLogger.Fatal("failed to init auth service", zap.Error(err))
	}

	herdService := herdsvc.NewService(store, baseLogger.Named("svc.herd"))
	breedingService := breedingsvc.NewService(store, recorder, baseLogger.Named("svc.breeding"))
	medicineService := medicinesvc.NewService(store, recorder, baseLogger.Named("svc.medicine"))
	reminderService := remindersvc.NewService(store, recorder, baseLogger.Named("svc.reminders"))
	reportingService := reportingsvc.NewService(reportingsvc.Sources{
		Herd:      herdService,
		Breeding:  breedingService,
		Medicine:  medicineService,
		Reminders: reminderService,
	}, baseLogger.Named("svc.reporting"))

	deps := router.Deps{
		Auth: handlers.NewAuthHandler(authService, os.Getenv("GIN_MODE") == "release", baseLogger.Named("handlers.auth")),
		Records: handlers.NewRecordsHandler(handlers.Services{
			Herd:      herdService,
			Breeding:  breedingService,
			Medicine:  medicineService,
			Reminders: reminderService,
			Reporting: reportingService,
		}, baseLogger.Named("handlers.records")),
		Authenticator: authService,
		Metrics:       registry,
	}

	var digestSender scheduler.DigestSender
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(whatsappclient.Options{
			BaseURL:       cfg.WhatsApp.BaseURL,
			APIVersion:    cfg.WhatsApp.APIVersion,
			AccessToken:   cfg.WhatsApp.AccessToken,
			PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
			RetryCount:    2,
		})
		dispatcher := commandsvc.NewService(reportingService, recorder, baseLogger.Named("svc.commands"))
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(
			whatsappsvc.Options{VerifyToken: cfg.WhatsApp.VerifyToken},
			whatsClient, store, dispatcher, recorder, baseLogger.Named("svc.whatsapp"))
		deps.Webhook = handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))
		digestSender = messagingSvc
		baseLogger.Info("whatsapp notifications enabled")
	} else {
		baseLogger.Warn("whatsapp token missing, webhook and daily digest disabled")
	}

	var exporter scheduler.Exporter
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets.SpreadsheetID, baseLogger.Named("repo.sheets"),
			option.WithCredentialsFile(cfg.Sheets.CredentialsPath))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		exporter = sheets.NewMilkingExporter(sheetsRepo)
	}

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}
	sched := scheduler.NewScheduler(scheduler.Options{
		DigestSchedule: cfg.Scheduler.DigestSchedule,
		ExportSchedule: cfg.Scheduler.ExportSchedule,
		Location:       location,
	}, store, reportingService, digestSender, exporter, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	engine := router.New(deps, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver))
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
