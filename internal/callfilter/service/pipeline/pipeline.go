// Package pipeline runs every top-level filter for a call concurrently,
// merges their results and hands the final decision to downstream sinks.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"callguard/internal/callfilter/metrics"
	"callguard/internal/callfilter/models"
	"callguard/internal/callfilter/observability"
	"callguard/internal/callfilter/ports"
	"callguard/pkg/platform/audit"
	"callguard/pkg/platform/privacy"
)

const (
	DefaultTimeout     = 5000 * time.Millisecond
	DefaultSinkTimeout = 2 * time.Second
)

// Filter produces exactly one result per call. Implementations must not
// block past ctx.
type Filter interface {
	Name() string
	Filter(ctx context.Context, call *models.Call) models.FilterResult
}

// Decision is the pipeline's answer for one call.
type Decision struct {
	Result   models.FilterResult
	Duration time.Duration
	// Pending names filters that had not answered when the timeout fired.
	Pending []string
}

func (d Decision) TimedOut() bool { return len(d.Pending) > 0 }

type Pipeline struct {
	filters     []Filter
	sinks       []ports.DecisionSink
	timeout     time.Duration
	sinkTimeout time.Duration

	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher ports.AuditPublisher
	tracer         trace.Tracer
}

type Option func(*Pipeline)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

func WithAuditPublisher(pub ports.AuditPublisher) Option {
	return func(p *Pipeline) {
		p.auditPublisher = pub
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) {
		if t != nil {
			p.tracer = t
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func WithSinks(sinks ...ports.DecisionSink) Option {
	return func(p *Pipeline) {
		for _, s := range sinks {
			if s != nil {
				p.sinks = append(p.sinks, s)
			}
		}
	}
}

func WithSinkTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.sinkTimeout = d
		}
	}
}

func New(filters []Filter, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		timeout:     DefaultTimeout,
		sinkTimeout: DefaultSinkTimeout,
		logger:      slog.Default(),
		tracer:      otel.Tracer("callguard/pipeline"),
	}
	for _, f := range filters {
		if f == nil {
			return nil, fmt.Errorf("nil filter")
		}
		p.filters = append(p.filters, f)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

type named struct {
	name   string
	result models.FilterResult
}

// FilterCall returns the merged result of all filters. When the timeout
// fires first, the result merged so far is returned and late answers are
// dropped.
func (p *Pipeline) FilterCall(ctx context.Context, call *models.Call) Decision {
	ctx, span := p.tracer.Start(ctx, "pipeline.filter_call", trace.WithAttributes(
		attribute.String("call_id", call.ID.String()),
		attribute.Int("filters", len(p.filters)),
	))
	defer span.End()

	start := time.Now()
	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	results := make(chan named, len(p.filters))
	g, gctx := errgroup.WithContext(runCtx)
	for _, f := range p.filters {
		g.Go(func() error {
			results <- named{name: f.Name(), result: f.Filter(gctx, call)}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(results)
	}()

	pending := make(map[string]struct{}, len(p.filters))
	for _, f := range p.filters {
		pending[f.Name()] = struct{}{}
	}

	acc := models.DefaultResult()
collect:
	for {
		select {
		case r, ok := <-results:
			if !ok {
				break collect
			}
			delete(pending, r.name)
			acc = models.Merge(r.result, acc)
			span.AddEvent("filter_done", trace.WithAttributes(
				attribute.String("filter", r.name),
				attribute.String("block_reason", r.result.BlockReason.String()),
			))
		case <-runCtx.Done():
			break collect
		}
	}

	d := Decision{Result: acc, Duration: time.Since(start)}
	for _, f := range p.filters {
		if _, ok := pending[f.Name()]; ok {
			d.Pending = append(d.Pending, f.Name())
		}
	}
	if d.TimedOut() && ctx.Err() == nil {
		p.metrics.IncrementPipelineTimeout()
		p.logger.WarnContext(ctx, "filter pipeline timed out",
			"call_id", call.ID.String(),
			"pending", d.Pending,
			"timeout_ms", p.timeout.Milliseconds(),
		)
	}

	p.metrics.ObserveFilterDuration(d.Duration)
	p.metrics.IncrementFilterDecision(acc.Outcome(), acc.BlockReason.String())
	span.SetAttributes(
		attribute.String("decision", acc.Outcome()),
		attribute.String("block_reason", acc.BlockReason.String()),
		attribute.Bool("timed_out", d.TimedOut()),
	)
	observability.LogAudit(ctx, p.logger, p.auditPublisher, audit.EventFilteringDecided,
		"call_id", call.ID.String(),
		"profile_id", call.ProfileID.String(),
		"subject_hash", privacy.HashHandle(call.Handle),
		"decision", acc.Outcome(),
		"reason", acc.BlockReason.String(),
		"component", acc.AttributingComponentID,
		"duration_ms", d.Duration.Milliseconds(),
	)

	p.deliver(ctx, call, acc)
	return d
}

// deliver hands the decision to every sink concurrently. Sink failures are
// logged and counted only.
func (p *Pipeline) deliver(ctx context.Context, call *models.Call, result models.FilterResult) {
	if len(p.sinks) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.sinkTimeout)
	defer cancel()

	var g errgroup.Group
	for _, sink := range p.sinks {
		g.Go(func() error {
			if err := sink.Deliver(ctx, call, result); err != nil {
				p.metrics.IncrementSinkFailure(sink.Name())
				p.logger.WarnContext(ctx, "decision delivery failed",
					"call_id", call.ID.String(),
					"sink", sink.Name(),
					"error", err,
				)
			}
			return nil
		})
	}
	_ = g.Wait()
}
