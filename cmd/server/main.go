package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	payapp "github.com/payflow-labs/payflow/internal/application/payment"
	"github.com/payflow-labs/payflow/internal/application/worker"
	"github.com/payflow-labs/payflow/internal/domain/payment"
	"github.com/payflow-labs/payflow/internal/infra/config"
	"github.com/payflow-labs/payflow/internal/infra/logging"
	"github.com/payflow-labs/payflow/internal/infra/metrics"
	"github.com/payflow-labs/payflow/internal/infrastructure/archive"
	"github.com/payflow-labs/payflow/internal/infrastructure/eventbus"
	httpapi "github.com/payflow-labs/payflow/internal/infrastructure/http"
	"github.com/payflow-labs/payflow/internal/infrastructure/persistence/inmemory"
	"github.com/payflow-labs/payflow/internal/infrastructure/persistence/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := &logging.StdoutLogger{}
	counters := &metrics.Counters{}

	bus := eventbus.New(eventbus.Options{
		HistoryEnabled:    cfg.HistoryEnabled,
		MaxHistorySize:    cfg.MaxHistorySize,
		RetryAttempts:     cfg.RetryAttempts,
		RetryBaseDelay:    cfg.RetryBaseDelay,
		SimulateConsumers: cfg.SimulateConsumers,
		Logger:            logger,
		Metrics:           counters,
	})

	var repo payment.Repository
	if cfg.Storage == "sqlite" {
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			log.Fatal(err)
		}
		if err := sqlite.RunMigrations(db); err != nil {
			log.Fatal(err)
		}
		repo = sqlite.NewPaymentRepository(db)

		archiveRepo := archive.NewSQLiteRepository(db)
		recorder := &archive.Recorder{Repo: archiveRepo}
		recorder.SubscribeAll(bus)

		exporter := &archive.Exporter{
			Repo:         archiveRepo,
			Sink:         &archive.LogSink{Logger: logger},
			PollInterval: 5 * time.Second,
			BatchSize:    50,
			Logger:       logger,
		}
		go exporter.Run(context.Background())
	} else {
		repo = inmemory.NewPaymentRepository()
	}

	ceiling, err := decimal.NewFromString(cfg.AmountCeiling)
	if err != nil {
		log.Fatalf("invalid amount ceiling %q: %v", cfg.AmountCeiling, err)
	}

	service := &payapp.Service{
		Repo:    repo,
		Bus:     bus,
		Logger:  logger,
		Metrics: counters,
		Ceiling: ceiling,
	}

	if !cfg.DisableSettlement {
		service.Settlement = worker.NewSimulator(service, logger, nil)
	}

	handler := &httpapi.PaymentHandler{
		Service: service,
		Events:  bus,
	}

	router := httpapi.NewRouter(handler)

	log.Printf("HTTP server running on %s", cfg.HTTPAddr)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, router))
}
