package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alamarhq/alamar/internal/blobstore"
	"github.com/alamarhq/alamar/internal/db"
	"github.com/alamarhq/alamar/internal/handlers"
	"github.com/alamarhq/alamar/internal/logger"
	"github.com/alamarhq/alamar/internal/repository/postgres"
	"github.com/alamarhq/alamar/internal/service/auth"
	"github.com/alamarhq/alamar/internal/service/notify"
	"github.com/alamarhq/alamar/internal/service/pricing"
	"github.com/alamarhq/alamar/internal/service/wallet"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Actor tokens are issued by the identity service with the same key
	tokenManager, err := auth.NewTokenManager(c.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	// Notifications are best-effort; without SMTP configured they are dropped
	var notifier wallet.Notifier = notify.NoOp{}
	if c.SMTPHost != "" {
		notifier, err = notify.NewMailer(notify.Config{
			Host:     c.SMTPHost,
			Port:     c.SMTPPort,
			Username: c.SMTPUsername,
			Password: c.SMTPPassword,
			From:     c.SMTPFrom,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("error while creating mailer. Err: %w", err)
		}
	}

	var receipts blobstore.Store = blobstore.Disabled{}
	if c.CloudinaryCloudName != "" {
		receipts, err = blobstore.NewCloudinary(blobstore.CloudinaryConfig{
			CloudName: c.CloudinaryCloudName,
			APIKey:    c.CloudinaryAPIKey,
			APISecret: c.CloudinaryAPISecret,
			Folder:    "alamar",
		})
		if err != nil {
			return nil, fmt.Errorf("error while creating blob store. Err: %w", err)
		}
	}

	// Initialize services
	pricingService := pricing.NewService(storage.Settings(), logger)
	walletService := wallet.NewService(
		wallet.Config{FinanceEmail: c.FinanceEmail},
		storage,
		notifier,
		logger,
	)

	mux := handlers.NewRouter(
		pricingService,
		walletService,
		receipts,
		tokenManager,
		logger,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
