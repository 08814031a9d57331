package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/AnshRaj112/feedback-backend/internal/config"
	"github.com/AnshRaj112/feedback-backend/internal/database"
	"github.com/AnshRaj112/feedback-backend/internal/handlers"
	"github.com/AnshRaj112/feedback-backend/internal/notify"
	"github.com/AnshRaj112/feedback-backend/internal/routes"
	"github.com/AnshRaj112/feedback-backend/internal/store"
	"github.com/AnshRaj112/feedback-backend/pkg/logger"
	"github.com/AnshRaj112/feedback-backend/pkg/metrics"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logg *zap.Logger) error {
	feedbackStore, closeStore, err := openStore(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer closeStore()

	sender, err := newSender(cfg, logg)
	if err != nil {
		return err
	}
	notifier := notify.NewNotifier(sender, notify.NewComposer(cfg.Operator(), cfg.Location()), cfg.EmailTimeout)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	router := routes.NewRouter(routes.Deps{
		Feedback:       handlers.NewFeedbackHandler(feedbackStore, notifier, m, logg, cfg.StoreTimeout),
		Metrics:        m,
		MetricsHandler: metrics.Handler(reg),
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logg,
		Production:     cfg.IsProduction(),
		AllowedHost:    cfg.AllowedHost,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		logg.Info("feedback backend running",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Environment),
			zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config, logg *zap.Logger) (store.FeedbackStore, func(), error) {
	validator := store.NewValidator(cfg.Categories)

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.ConnectPostgres(ctx, cfg.PostgresURI, logg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		closeFn := func() {
			if err := db.Close(); err != nil {
				logg.Warn("failed to close PostgreSQL", zap.Error(err))
			}
		}
		return store.NewPostgresStore(db, validator), closeFn, nil

	default:
		mongoConn, err := database.Connect(ctx, cfg.MongoURI, logg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		closeFn := func() {
			if err := mongoConn.Close(context.Background()); err != nil {
				logg.Warn("failed to disconnect MongoDB", zap.Error(err))
			}
		}
		if err := store.EnsureFeedbackCollection(ctx, mongoConn.DB); err != nil {
			logg.Warn("failed to ensure feedback collection schema", zap.Error(err))
		}
		return store.NewMongoStore(mongoConn.DB, validator), closeFn, nil
	}
}

func newSender(cfg *config.Config, logg *zap.Logger) (notify.Sender, error) {
	if !cfg.EmailEnabled() {
		logg.Warn("EMAIL_USER not set; notification emails are disabled")
		return notify.Disabled{}, nil
	}
	sender, err := notify.NewSMTPSender(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.EmailUser,
		Password: cfg.EmailPass,
		From:     cfg.EmailFrom,
		Timeout:  cfg.EmailTimeout,
	})
	if err != nil {
		return nil, err
	}
	logg.Info("SMTP sender configured", zap.String("host", cfg.SMTPHost), zap.Int("port", cfg.SMTPPort))
	return sender, nil
}
