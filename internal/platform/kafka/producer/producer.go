// Package producer wraps a franz-go client for synchronous record delivery.
package producer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"callguard/internal/platform/config"
)

// Message is a single record to produce.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Producer is safe for concurrent use.
type Producer struct {
	client *kgo.Client
	admin  *kadm.Client
	logger *slog.Logger
}

type Option func(*options)

type options struct {
	logger *slog.Logger
	linger time.Duration
	extra  []kgo.Opt
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLinger sets how long the client waits to batch records.
func WithLinger(d time.Duration) Option {
	return func(o *options) {
		o.linger = d
	}
}

// WithClientOpts passes raw franz-go options through.
func WithClientOpts(opts ...kgo.Opt) Option {
	return func(o *options) {
		o.extra = append(o.extra, opts...)
	}
}

// New creates a producer. Returns nil, nil if no brokers are configured.
func New(cfg config.KafkaConfig, opts ...Option) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	o := options{logger: slog.Default(), linger: 5 * time.Millisecond}
	for _, opt := range opts {
		opt(&o)
	}

	kopts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(o.linger),
		kgo.RecordRetries(3),
	}
	if cfg.DecisionsTopic != "" {
		kopts = append(kopts, kgo.DefaultProduceTopic(cfg.DecisionsTopic))
	}
	kopts = append(kopts, o.extra...)

	client, err := kgo.NewClient(kopts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Producer{
		client: client,
		admin:  kadm.NewClient(client),
		logger: o.logger,
	}, nil
}

// EnsureTopics creates the topics if they are missing. Existing topics are
// left untouched.
func (p *Producer) EnsureTopics(ctx context.Context, partitions int32, topics ...string) error {
	resps, err := p.admin.CreateTopics(ctx, partitions, -1, nil, topics...)
	if err != nil {
		return fmt.Errorf("create topics: %w", err)
	}
	var errs []error
	for _, r := range resps {
		if r.Err == nil || errors.Is(r.Err, kerr.TopicAlreadyExists) {
			continue
		}
		errs = append(errs, fmt.Errorf("topic %s: %w", r.Topic, r.Err))
	}
	return errors.Join(errs...)
}

// Produce writes msg and waits for the broker acknowledgement.
func (p *Producer) Produce(ctx context.Context, msg Message) error {
	rec := &kgo.Record{
		Topic: msg.Topic,
		Key:   msg.Key,
		Value: msg.Value,
	}
	for k, v := range msg.Headers {
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", rec.Topic, err)
	}
	return nil
}

// Health pings the cluster.
func (p *Producer) Health(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// Close flushes buffered records and closes the client.
func (p *Producer) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.client.Flush(ctx); err != nil {
		p.logger.Warn("kafka flush on close failed", "error", err)
	}
	p.client.Close()
}
