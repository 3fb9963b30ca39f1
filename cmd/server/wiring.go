package main

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/rpattn/standards/internal/config"
	"github.com/rpattn/standards/internal/db"
	"github.com/rpattn/standards/internal/detection"
	"github.com/rpattn/standards/internal/enrichment"
	"github.com/rpattn/standards/internal/events"
	"github.com/rpattn/standards/internal/logger"
	"github.com/rpattn/standards/internal/repository"
	"github.com/rpattn/standards/internal/repository/memstore"
	"github.com/rpattn/standards/internal/standards"
)

type stores struct {
	standards repository.StandardRepository
	versions  repository.StandardVersionRepository
	rules     repository.RuleRepository
	examples  repository.RuleExampleRepository
	jobs      repository.EnrichmentJobRepository
	close     func()
}

func openStores(ctx context.Context, cfg config.Config, inMemory bool, log *logger.Logger) (*stores, error) {
	if inMemory {
		log.Warn("using in-memory store, data is lost on exit")
		store := memstore.New()
		return &stores{
			standards: store.Standards(),
			versions:  store.Versions(),
			rules:     store.Rules(),
			examples:  store.Examples(),
			jobs:      store.EnrichmentJobs(),
			close:     func() {},
		}, nil
	}

	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return &stores{
		standards: repository.NewStandardRepository(conn.Pool),
		versions:  repository.NewStandardVersionRepository(conn.Pool),
		rules:     repository.NewRuleRepository(conn.Pool),
		examples:  repository.NewRuleExampleRepository(conn.Pool),
		jobs:      repository.NewEnrichmentJobRepository(conn.Pool),
		close:     conn.Close,
	}, nil
}

// app holds everything a command needs to drive the standards service.
type app struct {
	log      *logger.Logger
	stores   *stores
	service  *standards.Service
	queue    *enrichment.Queue
	natsConn *nats.Conn
}

func (a *app) Close() {
	if a.natsConn != nil {
		a.natsConn.Close()
	}
	a.stores.close()
}

func buildApp(ctx context.Context, cfg config.Config, inMemory bool, log *logger.Logger) (*app, error) {
	st, err := openStores(ctx, cfg, inMemory, log)
	if err != nil {
		return nil, err
	}
	a := &app{log: log, stores: st}

	sinks := events.Multi{events.NewLogSink(log)}
	opts := []standards.Option{
		standards.WithLogger(log),
		standards.WithAssessmentValidation(cfg.ValidateAssessments),
	}

	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name("standards"))
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		a.natsConn = nc

		js, err := jetstream.New(nc)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open JetStream: %w", err)
		}
		sink := events.NewJetStreamSink(js, cfg.NATS.SubjectPrefix)
		if err := sink.EnsureStream(ctx, cfg.NATS.Stream); err != nil {
			a.Close()
			return nil, err
		}
		sinks = append(sinks, sink)
		opts = append(opts, standards.WithDetectionPort(
			detection.NewNATSClient(nc, cfg.Detection.SubjectPrefix, cfg.Detection.Timeout),
		))
	} else {
		log.Info("NATS disabled, events are only logged and rule artifacts are not migrated")
	}
	opts = append(opts, standards.WithEventSink(sinks))

	if cfg.OpenAI.APIKey != "" {
		summarizer := enrichment.NewOpenAISummarizer(
			enrichment.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL),
			cfg.OpenAI.Model,
			log,
		)
		a.queue = enrichment.NewQueue(st.jobs, summarizer,
			enrichment.NewSummaryListener(st.versions, log),
			enrichment.WithWorkers(cfg.Enrichment.Workers),
			enrichment.WithBuffer(cfg.Enrichment.Buffer),
			enrichment.WithJobTimeout(cfg.Enrichment.JobTimeout),
			enrichment.WithQueueLogger(log),
		)
		opts = append(opts, standards.WithSummaryQueue(a.queue))
	} else {
		log.Info("OpenAI key not configured, version summaries are disabled")
	}

	a.service = standards.NewService(st.standards, st.versions, st.rules, st.examples, opts...)
	return a, nil
}
