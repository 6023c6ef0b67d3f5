package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"callguard/internal/callfilter/adapters/identity"
	kafkasink "callguard/internal/callfilter/adapters/kafka"
	"callguard/internal/callfilter/adapters/webhook"
	"callguard/internal/callfilter/handler"
	"callguard/internal/callfilter/metrics"
	"callguard/internal/callfilter/ports"
	"callguard/internal/callfilter/service/blocklist"
	"callguard/internal/callfilter/service/blockstatus"
	"callguard/internal/callfilter/service/orchestrator"
	"callguard/internal/callfilter/service/pipeline"
	"callguard/internal/callfilter/service/voicemail"
	blockstore "callguard/internal/callfilter/store/blocklist"
	contactstore "callguard/internal/callfilter/store/contacts"
	"callguard/internal/platform/config"
	"callguard/internal/platform/kafka/producer"
	platformmetrics "callguard/internal/platform/metrics"
	"callguard/internal/platform/postgres"
	"callguard/internal/platform/redis"
	"callguard/pkg/platform/audit"
	"callguard/pkg/platform/audit/publisher"
	auditmemory "callguard/pkg/platform/audit/store/memory"
	auditpostgres "callguard/pkg/platform/audit/store/postgres"
	"callguard/pkg/platform/middleware/auth"
	"callguard/pkg/platform/middleware/request"
	"callguard/pkg/platform/middleware/requesttime"
)

const auditBufferSize = 1024

type app struct {
	router  http.Handler
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type contactStore interface {
	ports.ContactLookup
	handler.ContactManager
}

type healthCheck struct {
	name  string
	check func(ctx context.Context) error
}

func build(ctx context.Context, cfg config.Server, log *slog.Logger) (*app, error) {
	a := &app{}
	m := metrics.New()
	var checks []healthCheck

	// ----- Storage -----
	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	var (
		auditStore audit.Store
		blocks     blockstatus.Store
		transactor blockstatus.Transactor
	)
	if db != nil {
		a.closers = append(a.closers, func() { _ = db.Close() })
		if err := postgres.ApplySchema(ctx, db); err != nil {
			return nil, err
		}
		auditStore = auditpostgres.New(db)
		blocks = blockstore.NewPostgres(db)
		transactor = newBlockPostgresTx(db).Run
		checks = append(checks, healthCheck{"postgres", db.PingContext})
		log.Info("using postgres block list and audit store")
	} else {
		auditStore = auditmemory.NewInMemoryStore()
		blocks = blockstore.NewInMemory()
		log.Info("using in-memory block list and audit store")
	}

	// Audit rows must share the block list transaction, so Postgres audits
	// are written inline.
	pubOpts := []publisher.Option{publisher.WithLogger(log)}
	if db == nil {
		pubOpts = append(pubOpts, publisher.WithAsyncBuffer(auditBufferSize))
	}
	auditPublisher := publisher.NewPublisher(auditStore, pubOpts...)
	a.closers = append(a.closers, auditPublisher.Close)

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	var contacts contactStore
	if redisClient != nil {
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
		contacts = contactstore.NewRedis(redisClient.Client)
		checks = append(checks, healthCheck{"redis", redisClient.Health})
	} else {
		contacts = contactstore.NewInMemory()
	}

	// ----- Screeners -----
	identities := identity.Empty()
	if cfg.Identities != "" {
		identities, err = identity.Load(cfg.Identities)
		if err != nil {
			return nil, err
		}
	}

	var validator auth.TokenValidator
	if cfg.ServiceTokenKey != "" {
		validator = auth.NewHS256Validator(cfg.ServiceTokenKey, auth.ServiceAudience)
	} else {
		log.Warn("SERVICE_TOKEN_SIGNING_KEY not set, /v1 routes are unauthenticated")
	}
	binderOpts := []webhook.Option{webhook.WithLogger(log)}
	if cfg.ScreenerTokenKey != "" {
		binderOpts = append(binderOpts, webhook.WithTokenIssuer(auth.NewHS256Signer(cfg.ScreenerTokenKey, auth.ServiceAudience)))
	}
	binder := webhook.NewBinder(binderOpts...)

	// ----- Filters -----
	blockService, err := blockstatus.New(blocks,
		blockstatus.WithLogger(log),
		blockstatus.WithAuditPublisher(auditPublisher),
		blockstatus.WithEnhancedPolicies(cfg.Screening.EnhancedCallBlocking),
		blockstatus.WithTransactor(transactor),
	)
	if err != nil {
		return nil, err
	}
	blockFilter, err := blocklist.New(blockService, contacts,
		blocklist.WithLogger(log),
		blocklist.WithMetrics(m),
		blocklist.WithAuditPublisher(auditPublisher),
		blocklist.WithEnhancedBlocking(cfg.Screening.EnhancedCallBlocking),
	)
	if err != nil {
		return nil, err
	}
	voicemailFilter, err := voicemail.New(contacts, voicemail.WithLogger(log), voicemail.WithMetrics(m))
	if err != nil {
		return nil, err
	}
	screening, err := orchestrator.New(binder, identities, contacts,
		orchestrator.WithLogger(log),
		orchestrator.WithMetrics(m),
		orchestrator.WithAuditPublisher(auditPublisher),
		orchestrator.WithTimeouts(cfg.Screening.CarrierTimeout, cfg.Screening.Deadline),
	)
	if err != nil {
		return nil, err
	}

	// ----- Delivery -----
	var sinks []ports.DecisionSink
	prod, err := producer.New(cfg.Kafka, producer.WithLogger(log))
	if err != nil {
		return nil, err
	}
	if prod != nil {
		a.closers = append(a.closers, prod.Close)
		if err := prod.EnsureTopics(ctx, 3, cfg.Kafka.DecisionsTopic); err != nil {
			log.Warn("could not ensure decisions topic", "topic", cfg.Kafka.DecisionsTopic, "error", err)
		}
		sink, err := kafkasink.NewSink(prod, cfg.Kafka.DecisionsTopic)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
		checks = append(checks, healthCheck{"kafka", prod.Health})
	}

	filters, err := pipeline.New(
		[]pipeline.Filter{blockFilter, voicemailFilter, screening},
		pipeline.WithLogger(log),
		pipeline.WithMetrics(m),
		pipeline.WithAuditPublisher(auditPublisher),
		pipeline.WithTimeout(cfg.Screening.PipelineTimeout),
		pipeline.WithSinks(sinks...),
	)
	if err != nil {
		return nil, err
	}

	// ----- HTTP -----
	httpMetrics := platformmetrics.NewHTTP()
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(httpMetrics.Middleware)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", healthHandler(checks))
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireServiceToken(validator, log))
		handler.New(filters, blockService, contacts, log).Register(r)
	})

	a.router = r
	return a, nil
}

func healthHandler(checks []healthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for _, c := range checks {
			if err := c.check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[c.name] = fmt.Sprintf("unhealthy: %v", err)
				continue
			}
			body[c.name] = "ok"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

