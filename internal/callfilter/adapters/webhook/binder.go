// Package webhook reaches remote screeners over HTTP. Each screening request
// is one POST to the identity's endpoint; the JSON response is the verdict.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"callguard/internal/callfilter/models"
	"callguard/internal/callfilter/ports"
	id "callguard/pkg/domain"
	"callguard/pkg/platform/circuit"
)

const (
	defaultRequestTimeout = 4 * time.Second
	maxResponseBytes      = 16 << 10
)

// TokenIssuer signs outbound requests. The audience is the screener's
// component reference.
type TokenIssuer interface {
	IssueToken(audience string, ttl time.Duration) (string, error)
}

// Binder is safe for concurrent use. It keeps one circuit breaker per
// endpoint so a failing screener stops being dialed for a cooldown.
type Binder struct {
	client      *http.Client
	issuer      TokenIssuer
	breakerOpts []circuit.Option
	logger      *slog.Logger

	mu       sync.Mutex
	breakers map[string]*circuit.Breaker
}

type Option func(*Binder)

func WithHTTPClient(c *http.Client) Option {
	return func(b *Binder) {
		if c != nil {
			b.client = c
		}
	}
}

func WithTokenIssuer(i TokenIssuer) Option {
	return func(b *Binder) {
		b.issuer = i
	}
}

func WithBreakerOptions(opts ...circuit.Option) Option {
	return func(b *Binder) {
		b.breakerOpts = append(b.breakerOpts, opts...)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *Binder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

func NewBinder(opts ...Option) *Binder {
	b := &Binder{
		client:   &http.Client{Timeout: defaultRequestTimeout},
		logger:   slog.Default(),
		breakers: make(map[string]*circuit.Breaker),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Binder) breaker(endpoint string) *circuit.Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	br, ok := b.breakers[endpoint]
	if !ok {
		br = circuit.New(endpoint, b.breakerOpts...)
		b.breakers[endpoint] = br
	}
	return br
}

// Bind never dials: HTTP screeners are stateless, so the connection is
// established as soon as the breaker lets the attempt through.
func (b *Binder) Bind(ctx context.Context, identity models.ScreeningIdentity, listener ports.SessionListener) (ports.Connection, error) {
	if identity.Endpoint == "" {
		return nil, fmt.Errorf("%w: %s has no endpoint", ports.ErrBindFailed, identity.Component)
	}
	br := b.breaker(identity.Endpoint)
	if !br.Allow() {
		return nil, fmt.Errorf("%w: %s", ports.ErrCircuitOpen, identity.Endpoint)
	}

	connCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c := &conn{
		binder:   b,
		identity: identity,
		listener: listener,
		breaker:  br,
		ctx:      connCtx,
		cancel:   cancel,
	}
	go listener.OnConnected(c)
	return c, nil
}

type conn struct {
	binder   *Binder
	identity models.ScreeningIdentity
	listener ports.SessionListener
	breaker  *circuit.Breaker
	ctx      context.Context
	cancel   context.CancelFunc

	mu       sync.Mutex
	screened bool
	released bool
}

// Screen posts the request in the background. The verdict or a disconnect
// is reported through the listener.
func (c *conn) Screen(_ context.Context, req models.ScreeningRequest) error {
	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return ports.ErrReleased
	}
	if c.screened {
		c.mu.Unlock()
		return fmt.Errorf("screening request already sent")
	}
	c.screened = true
	c.mu.Unlock()

	body, err := json.Marshal(toWireRequest(req))
	if err != nil {
		return fmt.Errorf("encode screening request: %w", err)
	}
	go c.post(body)
	return nil
}

func (c *conn) post(body []byte) {
	callID, verdict, err := c.roundTrip(body)
	if err != nil {
		if c.ctx.Err() != nil {
			// released before the screener answered
			return
		}
		if _, change := c.breaker.RecordFailure(); change.Opened {
			c.binder.logger.Warn("screener circuit opened",
				"component", c.identity.Component,
				"endpoint", c.identity.Endpoint,
			)
		}
		c.binder.logger.Warn("screener request failed",
			"component", c.identity.Component,
			"error", err,
		)
		c.listener.OnDisconnected()
		return
	}
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.binder.logger.Info("screener circuit closed", "component", c.identity.Component)
	}
	c.listener.OnVerdict(callID, verdict)
}

func (c *conn) roundTrip(body []byte) (id.CallID, models.Verdict, error) {
	httpReq, err := http.NewRequestWithContext(c.ctx, http.MethodPost, c.identity.Endpoint, bytes.NewReader(body))
	if err != nil {
		return id.CallID{}, nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.binder.issuer != nil {
		token, err := c.binder.issuer.IssueToken(c.identity.Component, time.Minute)
		if err != nil {
			return id.CallID{}, nil, fmt.Errorf("issue token: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.binder.client.Do(httpReq)
	if err != nil {
		return id.CallID{}, nil, fmt.Errorf("post screening request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return id.CallID{}, nil, fmt.Errorf("screener returned status %d", resp.StatusCode)
	}

	var wire wireVerdict
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&wire); err != nil {
		return id.CallID{}, nil, fmt.Errorf("decode verdict: %w", err)
	}
	return wire.toVerdict()
}

func (c *conn) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return ports.ErrReleased
	}
	c.released = true
	c.cancel()
	return nil
}
