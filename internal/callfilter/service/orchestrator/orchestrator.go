// Package orchestrator sequences the remote screeners for a call: carrier
// first, then a contact check, then the default handler and the user-chosen
// screener side by side, all under a carrier stage timeout and an overall
// deadline.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"callguard/internal/callfilter/metrics"
	"callguard/internal/callfilter/models"
	"callguard/internal/callfilter/ports"
)

const (
	DefaultCarrierTimeout = 2000 * time.Millisecond
	DefaultDeadline       = 4500 * time.Millisecond
)

// Orchestrator is safe for concurrent use; each Filter call runs its own
// independent coordinator.
type Orchestrator struct {
	binder     ports.Binder
	identities ports.IdentityResolver
	contacts   ports.ContactLookup

	carrierTimeout time.Duration
	deadline       time.Duration

	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher ports.AuditPublisher
	tracer         trace.Tracer
	now            func() time.Time
}

type Option func(*Orchestrator)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func WithAuditPublisher(p ports.AuditPublisher) Option {
	return func(o *Orchestrator) {
		o.auditPublisher = p
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithTimeouts overrides the carrier stage timeout and the overall deadline.
// Non-positive values keep the defaults.
func WithTimeouts(carrier, deadline time.Duration) Option {
	return func(o *Orchestrator) {
		if carrier > 0 {
			o.carrierTimeout = carrier
		}
		if deadline > 0 {
			o.deadline = deadline
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates an orchestrator. A nil contacts lookup treats every caller as
// unknown.
func New(binder ports.Binder, identities ports.IdentityResolver, contacts ports.ContactLookup, opts ...Option) (*Orchestrator, error) {
	if binder == nil {
		return nil, fmt.Errorf("binder is required")
	}
	if identities == nil {
		return nil, fmt.Errorf("identity resolver is required")
	}
	o := &Orchestrator{
		binder:         binder,
		identities:     identities,
		contacts:       contacts,
		carrierTimeout: DefaultCarrierTimeout,
		deadline:       DefaultDeadline,
		logger:         slog.Default(),
		tracer:         otel.Tracer("callguard/screening"),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.deadline <= o.carrierTimeout {
		return nil, fmt.Errorf("deadline %s must exceed carrier timeout %s", o.deadline, o.carrierTimeout)
	}
	return o, nil
}

// Name implements the pipeline filter contract.
func (o *Orchestrator) Name() string { return "screening" }

// Filter screens call and returns the merged result. It returns within the
// overall deadline, or earlier if ctx ends.
func (o *Orchestrator) Filter(ctx context.Context, call *models.Call) models.FilterResult {
	ctx, span := o.tracer.Start(ctx, "screening.orchestrate")
	defer span.End()

	r := newRun(o, ctx, call, span)
	return r.loop()
}
