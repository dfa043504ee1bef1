package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"association-portal/backend/internal/config"
	"association-portal/backend/internal/domain/donations"
	"association-portal/backend/internal/domain/notifications"
	"association-portal/backend/internal/domain/profile"
	"association-portal/backend/internal/firebase"
	"association-portal/backend/internal/handlers"
	apihttp "association-portal/backend/internal/http"
	"association-portal/backend/internal/resource"
	"association-portal/backend/internal/store"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	clients, err := firebase.NewClients(ctx, cfg)
	if err != nil {
		logger.Fatal("firebase clients init failed", zap.Error(err))
	}
	defer clients.Close()

	rc := resource.NewFirestoreClient(clients.Firestore, logger)

	contentStore := store.New(rc, logger)
	if err := contentStore.Load(ctx); err != nil {
		// Branches that succeeded are committed; serve what we have.
		logger.Error("initial content load incomplete", zap.Error(err))
	}

	profileSvc := profile.NewService(rc, logger)
	notificationsSvc := notifications.NewService(rc, clients.Messaging, logger)
	if err := notificationsSvc.Start(ctx); err != nil {
		logger.Warn("realtime notifications disabled", zap.Error(err))
	}
	defer notificationsSvc.Stop()

	donationsSvc := donations.NewService(rc, donations.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		Currency:      cfg.DonationCurrency,
		SuccessURL:    cfg.DonationSuccessURL,
		CancelURL:     cfg.DonationCancelURL,
	}, logger)
	if donationsSvc.CardEnabled() {
		logger.Info("card donations enabled")
	} else {
		logger.Info("STRIPE_SECRET_KEY not set, card donations disabled")
	}

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Cfg:              cfg,
		Logger:           logger,
		AuthClient:       clients.Auth,
		Store:            contentStore,
		ProfileSvc:       profileSvc,
		DonationsSvc:     donationsSvc,
		NotificationsSvc: notificationsSvc,
		Uploads:          handlers.NewUploads(cfg, clients),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	go func() {
		logger.Info("API listening",
			zap.String("port", cfg.Port),
			zap.String("project", cfg.ProjectID))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down...")
	_ = srv.Shutdown(ctxShutdown)
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
