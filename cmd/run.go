package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"layledger/api"
	"layledger/application"
	"layledger/config"
	"layledger/database"
	"layledger/events"
	"layledger/infrastructure"
	"layledger/observability"
	"layledger/repository"
	"layledger/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// SetupLogging configures logrus from the environment
func SetupLogging(cfg *config.Config) {
	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// Connect opens the database pool configured in cfg
func Connect(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	databaseURL, err := cfg.GetDatabaseURL()
	if err != nil {
		return nil, err
	}

	db, err := database.NewConnection(ctx, databaseURL, cfg.DBLockTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// NewServices wires the ledger services to db and bus
func NewServices(db *database.DB, bus *events.Bus) api.Services {
	uowFactory := repository.NewUnitOfWorkFactory(db, bus)
	return api.Services{
		Bets:     service.NewBetService(uowFactory, nil),
		Deposits: service.NewDepositService(uowFactory),
		Withdraw: service.NewWithdrawService(uowFactory),
		Rollover: service.NewRolloverService(uowFactory, repository.NewRolloverRunRepository(db), bus, nil),
		Accounts: service.NewAccountService(uowFactory),
	}
}

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	SetupLogging(cfg)
	log.WithField("environment", cfg.Environment).Info("Starting lay ledger")

	if err := cfg.RequireJWTSecret(); err != nil {
		return err
	}

	db, err := Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("Database connection established")

	eventBus := events.NewBus()
	services := NewServices(db, eventBus)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)
	metrics.Attach(eventBus)

	meterProvider, err := observability.NewMeterProvider(ctx, observability.OTelConfig{
		ExporterType:   cfg.OTelExporterType,
		Endpoint:       cfg.OTelOTLPEndpoint,
		ServiceName:    cfg.OTelServiceName,
		Environment:    cfg.Environment,
		ExportInterval: cfg.OTelExportInterval,
	})
	if err != nil {
		return err
	}
	if meterProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := meterProvider.Shutdown(shutdownCtx); err != nil {
				log.WithError(err).Error("Error flushing OpenTelemetry metrics")
			}
		}()

		recorder, err := observability.NewOTelRecorder(meterProvider.Meter("layledger"))
		if err != nil {
			return err
		}
		recorder.Attach(eventBus)
	}

	var idempotency api.IdempotencyStore
	if cfg.RedisAddr != "" {
		redisClient, err := infrastructure.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		idempotency = infrastructure.NewRedisIdempotencyStore(redisClient, cfg.IdempotencyTTL)
		log.WithField("addr", cfg.RedisAddr).Info("Idempotency keys enabled")
	}

	if cfg.NATSServers != "" {
		natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := natsClient.Connect(connectCtx)
		cancel()
		if err != nil {
			return err
		}
		defer func() {
			if err := natsClient.Close(); err != nil {
				log.WithError(err).Error("Error closing NATS connection")
			}
		}()

		mapper := infrastructure.NewEventSubjectMapper()
		if err := natsClient.EnsureStream(infrastructure.StreamName, mapper.GetAllSubjects()); err != nil {
			return err
		}
		infrastructure.NewNATSEventPublisher(natsClient, mapper).Attach(eventBus)
		log.WithField("servers", cfg.NATSServers).Info("Event forwarding to NATS enabled")
	}

	verifier, err := api.NewTokenVerifier(cfg.JWTSecret)
	if err != nil {
		return err
	}
	handler := api.NewHandler(services, service.SystemClock)
	router := api.NewRouter(api.RouterConfig{
		Handler:     handler,
		Verifier:    verifier,
		Idempotency: idempotency,
		Metrics:     metrics.Middleware,
	})

	apiServer := api.NewServer(cfg.HTTPAddr, router)
	metricsServer := observability.NewServer(cfg.MetricsAddr, registry, db.Ping)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return serve(apiServer, "api") })
	g.Go(func() error { return serve(metricsServer, "metrics") })
	if cfg.RolloverEnabled {
		worker := application.NewRolloverWorker(services.Rollover, cfg.RolloverHour, cfg.RolloverMinute)
		g.Go(func() error { return worker.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down lay ledger")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(apiServer.Shutdown(shutdownCtx), metricsServer.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("Shutdown completed")
	return nil
}

func serve(server *http.Server, name string) error {
	log.WithFields(log.Fields{"server": name, "addr": server.Addr}).Info("Listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}
