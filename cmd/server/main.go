// Command server assembles the protocol dispatch platform: stores, module
// handlers, workflow and SLA services, and the HTTP surface. Without a
// database URL it runs fully in memory, which suits local development.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"civicdesk/internal/audit"
	"civicdesk/internal/dispatch"
	"civicdesk/internal/dispatch/custom"
	"civicdesk/internal/dispatch/handlers"
	"civicdesk/internal/platform/config"
	"civicdesk/internal/platform/httpserver"
	"civicdesk/internal/platform/kafka"
	"civicdesk/internal/platform/logger"
	"civicdesk/internal/platform/metrics"
	"civicdesk/internal/platform/middleware"
	"civicdesk/internal/platform/postgres"
	"civicdesk/internal/platform/redis"
	protocolhandler "civicdesk/internal/protocol/handler"
	"civicdesk/internal/protocol/sequence"
	protocolservice "civicdesk/internal/protocol/service"
	protocolstore "civicdesk/internal/protocol/store"
	slahandler "civicdesk/internal/sla/handler"
	slaservice "civicdesk/internal/sla/service"
	slastore "civicdesk/internal/sla/store"
	workflowhandler "civicdesk/internal/workflow/handler"
	workflowservice "civicdesk/internal/workflow/service"
	workflowstore "civicdesk/internal/workflow/store"
	"civicdesk/pkg/platform/tx"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		if err := postgres.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	} else {
		log.Warn("no database configured, running with in-memory stores")
	}

	var cache *redis.Client
	if cfg.Redis.URL != "" {
		var err error
		cache, err = redis.New(cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer cache.Close()
	}

	producer, err := kafka.NewProducer(ctx, cfg.KafkaBrokers, cfg.AuditTopic)
	if err != nil {
		return fmt.Errorf("connect kafka: %w", err)
	}
	var publisher audit.Publisher
	if producer != nil {
		defer producer.Close()
		publisher = audit.NewKafkaPublisher(producer, log, m)
	} else {
		publisher = audit.NewLogPublisher(log)
	}

	// Module stores double as entity activators: a protocol decision
	// propagates to the records each module created at dispatch time.
	var (
		educationStore handlers.EducationStore
		healthStore    handlers.HealthStore
		customDefs     custom.DefinitionStore
		customRecords  custom.RecordStore
		activators     []protocolservice.EntityActivator
	)
	if db != nil {
		edu := handlers.NewPostgresEducationStore(db)
		health := handlers.NewPostgresHealthStore(db)
		records := custom.NewPostgresRecordStore(db)
		educationStore, healthStore = edu, health
		customDefs, customRecords = custom.NewPostgresDefinitionStore(db), records
		activators = []protocolservice.EntityActivator{edu, health, records}
	} else {
		edu := handlers.NewMemoryEducationStore()
		health := handlers.NewMemoryHealthStore()
		records := custom.NewMemoryRecordStore()
		educationStore, healthStore = edu, health
		customDefs, customRecords = custom.NewMemoryDefinitionStore(), records
		activators = []protocolservice.EntityActivator{edu, health, records}
	}

	registry := dispatch.NewRegistry()
	registry.Register(handlers.NewEducation(educationStore))
	registry.Register(handlers.NewHealth(healthStore))
	registry.SetFallback(custom.NewHandler(customDefs, customRecords))

	var (
		seq        protocolservice.SequenceGenerator
		protocols  protocolstore.ProtocolStore
		history    protocolstore.HistoryStore
		runTx      protocolservice.TxRunner
		wfDefs     workflowstore.DefinitionStore
		wfStages   workflowstore.StageStore
		wfDocs     workflowstore.DocumentStore
		wfActions  workflowstore.ActionStore
		slaBacking slastore.Store
	)
	if db != nil {
		seq = sequence.NewPostgres(db, cfg.LockWaitBudget)
		protocols = protocolstore.NewPostgresProtocolStore(db)
		history = protocolstore.NewPostgresHistoryStore(db)
		runTx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return tx.Run(ctx, db, fn)
		}
		wfDefs = workflowstore.NewPostgresDefinitionStore(db)
		wfStages = workflowstore.NewPostgresStageStore(db)
		wfDocs = workflowstore.NewPostgresDocumentStore(db)
		wfActions = workflowstore.NewPostgresActionStore(db)
		slaBacking = slastore.NewPostgres(db)
	} else {
		seq = sequence.NewInMemory()
		protocols = protocolstore.NewMemoryProtocolStore()
		history = protocolstore.NewMemoryHistoryStore()
		runTx = protocolservice.Passthrough
		wfDefs = workflowstore.NewMemoryDefinitionStore()
		wfStages = workflowstore.NewMemoryStageStore()
		wfDocs = workflowstore.NewMemoryDocumentStore()
		wfActions = workflowstore.NewMemoryActionStore()
		slaBacking = slastore.NewMemory()
	}
	if cache != nil {
		wfDefs = workflowstore.NewCachedDefinitionStore(wfDefs, cache, cfg.WorkflowCacheTTL, log)
	}

	workflows := workflowservice.NewService(wfDefs, wfStages, wfDocs, wfActions,
		workflowservice.WithLogger(log),
		workflowservice.WithMetrics(m),
	)
	slas := slaservice.NewService(slaBacking,
		slaservice.WithLogger(log),
		slaservice.WithMetrics(m),
		slaservice.WithAuditPublisher(publisher),
	)
	slas.StartRefresher(ctx, cfg.SLARefreshInterval)

	coordinator := protocolservice.NewService(seq, protocols, history, registry, runTx,
		protocolservice.WithLogger(log),
		protocolservice.WithMetrics(m),
		protocolservice.WithAuditPublisher(publisher),
		protocolservice.WithWorkflows(workflows),
		protocolservice.WithSLAs(slas),
		protocolservice.WithActivators(activators...),
		protocolservice.WithDispatchBudget(cfg.DispatchBudget),
	)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(middleware.NewHMACValidator(cfg.JWTSigningKey), log))
		r.Use(middleware.ContentTypeJSON)
		protocolhandler.New(coordinator, log).Register(r)
		workflowhandler.New(workflows, log).Register(r)
		slahandler.New(slas, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting civicdesk", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
