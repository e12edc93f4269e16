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

	"blood-donor-registry/pkg/database"
	"blood-donor-registry/pkg/middleware"
	"blood-donor-registry/pkg/queue"
	"blood-donor-registry/services/registry-service/config"
	"blood-donor-registry/services/registry-service/handlers"
	"blood-donor-registry/services/registry-service/notifier"
	"blood-donor-registry/services/registry-service/store"
	"blood-donor-registry/services/registry-service/workflow"

	"go.uber.org/zap"
)

type closableStore interface {
	store.Store
	Close(ctx context.Context) error
}

type nopCloser struct{ *store.MemoryStore }

func (nopCloser) Close(context.Context) error { return nil }

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[ERROR] Invalid configuration: %v", err)
	}

	logger, err := middleware.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("[ERROR] Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open record store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Close(closeCtx); err != nil {
			logger.Warn("failed to close record store", zap.Error(err))
		}
	}()

	mailer := notifier.NewMailer(notifier.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.SMTPFrom,
	}, logger.Named("mailer"))
	if !mailer.Enabled() {
		logger.Warn("SMTP_HOST not set, welcome emails are disabled")
	}

	var publisher workflow.EventPublisher
	if cfg.RabbitMQURL != "" {
		p, err := queue.NewPublisher(cfg.RabbitMQURL, cfg.EventsQueue)
		if err != nil {
			logger.Fatal("failed to connect to rabbitmq", zap.Error(err))
		}
		defer p.Close()
		publisher = p
		logger.Info("publishing registration events", zap.String("queue", cfg.EventsQueue))
	}

	ids := workflow.NewHospitalIDGenerator(s, cfg.HospitalIDMaxAttempts)
	registrar := workflow.NewRegistrar(s, ids, mailer, publisher, logger.Named("register"), workflow.RegistrarConfig{
		MailTimeout: cfg.MailTimeout,
	})
	auth := workflow.NewAuthenticator(s, logger.Named("login"))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handlers.NewRouter(handlers.New(registrar, auth, s, logger), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("registry service listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg config.App, logger *zap.Logger) (closableStore, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		s := store.NewMongoStore(db, cfg.StoreTimeout)
		if err := s.EnsureIndexes(ctx); err != nil {
			s.Close(context.Background())
			return nil, err
		}
		logger.Info("connected to mongodb", zap.String("database", cfg.MongoDB))
		return s, nil

	case config.DriverPostgres:
		db, err := database.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		s := store.NewPostgresStore(db, cfg.StoreTimeout)
		if err := s.EnsureSchema(ctx); err != nil {
			s.Close(context.Background())
			return nil, err
		}
		logger.Info("connected to postgres")
		return s, nil

	case config.DriverMemory:
		logger.Warn("using in-memory record store, data is lost on restart")
		return nopCloser{store.NewMemoryStore()}, nil

	default:
		return nil, errors.New("unknown store driver " + cfg.StoreDriver)
	}
}
