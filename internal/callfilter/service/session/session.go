// Package session runs one remote screening exchange for one call: bind the
// screener, send a single request, take at most one verdict, release.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"callguard/internal/callfilter/metrics"
	"callguard/internal/callfilter/models"
	"callguard/internal/callfilter/ports"
	id "callguard/pkg/domain"
	"callguard/pkg/platform/privacy"
)

// State is the session lifecycle position.
type State int

const (
	StateNotStarted State = iota
	StateBinding
	StateBound
	StateAwaitingVerdict
	StateBindFailed
	StateDisconnected
	StateCompleted
)

var stateNames = map[State]string{
	StateNotStarted:      "not_started",
	StateBinding:         "binding",
	StateBound:           "bound",
	StateAwaitingVerdict: "awaiting_verdict",
	StateBindFailed:      "bind_failed",
	StateDisconnected:    "disconnected",
	StateCompleted:       "completed",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Outcome records how a session reached Completed.
type Outcome string

const (
	OutcomeAllow        Outcome = "allow"
	OutcomeDisallow     Outcome = "disallow"
	OutcomeSilence      Outcome = "silence"
	OutcomeWrongCall    Outcome = "wrong_call_id"
	OutcomeBindFailed   Outcome = "bind_failed"
	OutcomeScreenFailed Outcome = "screen_failed"
	OutcomeDisconnected Outcome = "disconnected"
	OutcomeClosed       Outcome = "closed"
)

// Callback receives the session's single result.
type Callback func(result models.FilterResult, identity models.ScreeningIdentity)

// Session is safe for concurrent use. The callback runs exactly once, on
// whichever goroutine completes the session, and never under the session lock.
type Session struct {
	binder   ports.Binder
	call     *models.Call
	identity models.ScreeningIdentity
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time

	mu        sync.Mutex
	state     State
	via       State
	outcome   Outcome
	pending   models.FilterResult
	conn      ports.Connection
	released  bool
	ctx       context.Context
	callback  Callback
	startedAt time.Time
}

type Option func(*Session)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a session for one call and one screener.
func New(binder ports.Binder, call *models.Call, identity models.ScreeningIdentity, opts ...Option) (*Session, error) {
	if binder == nil {
		return nil, fmt.Errorf("binder is required")
	}
	if call == nil {
		return nil, fmt.Errorf("call is required")
	}
	s := &Session{
		binder:   binder,
		call:     call,
		identity: identity,
		logger:   slog.Default(),
		now:      time.Now,
		state:    StateNotStarted,
		pending:  models.DefaultResult(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Session) Identity() models.ScreeningIdentity { return s.identity }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Outcome is empty until the session completes.
func (s *Session) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// CompletedVia is the state the session passed through on its way to
// Completed: BindFailed, Disconnected, or Completed itself for verdicts and
// Close.
func (s *Session) CompletedVia() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.via
}

// Start binds the screener. It returns once the bind was requested; the
// callback fires later. Calling Start more than once has no effect.
func (s *Session) Start(ctx context.Context, cb Callback) {
	s.mu.Lock()
	if s.state != StateNotStarted {
		s.mu.Unlock()
		return
	}
	s.state = StateBinding
	s.ctx = ctx
	s.callback = cb
	s.startedAt = s.now()
	s.mu.Unlock()

	conn, err := s.binder.Bind(ctx, s.identity, s)
	if err != nil {
		s.logger.WarnContext(ctx, "screener bind failed",
			"call_id", s.call.ID.String(),
			"role", string(s.identity.Role),
			"component", s.identity.Component,
			"error", err,
		)
		s.finish(StateBindFailed, OutcomeBindFailed, nil)
		return
	}

	s.mu.Lock()
	if s.conn == nil {
		s.conn = conn
	}
	stale := s.takeConnIfCompletedLocked()
	s.mu.Unlock()
	release(stale)
}

// Close completes the session with its pending result, as if the screener
// never answered. No effect once the session has completed.
func (s *Session) Close() {
	s.finish(StateCompleted, OutcomeClosed, nil)
}

// OnConnected implements ports.SessionListener.
func (s *Session) OnConnected(conn ports.Connection) {
	s.mu.Lock()
	if s.conn == nil {
		s.conn = conn
	}
	if s.state != StateBinding {
		stale := s.takeConnIfCompletedLocked()
		s.mu.Unlock()
		release(stale)
		return
	}
	s.state = StateBound
	req := s.projectLocked()
	ctx := s.ctx
	target := s.conn
	s.state = StateAwaitingVerdict
	s.mu.Unlock()

	if err := target.Screen(ctx, req); err != nil {
		s.logger.WarnContext(ctx, "screening request failed",
			"call_id", s.call.ID.String(),
			"role", string(s.identity.Role),
			"error", err,
		)
		s.finish(StateDisconnected, OutcomeScreenFailed, nil)
	}
}

// OnVerdict implements ports.SessionListener.
func (s *Session) OnVerdict(callID id.CallID, verdict models.Verdict) {
	if s.State() == StateCompleted {
		s.logger.Debug("ignoring verdict after completion",
			"call_id", s.call.ID.String(),
			"verdict_call_id", callID.String(),
			"role", string(s.identity.Role),
		)
		return
	}
	if callID != s.call.ID {
		s.logger.Warn("verdict for unknown call id",
			"call_id", s.call.ID.String(),
			"verdict_call_id", callID.String(),
			"role", string(s.identity.Role),
		)
		neutral := models.DefaultResult()
		s.finish(StateCompleted, OutcomeWrongCall, &neutral)
		return
	}
	result, outcome := s.resultFor(verdict)
	s.finish(StateCompleted, outcome, &result)
}

// OnDisconnected implements ports.SessionListener.
func (s *Session) OnDisconnected() {
	s.finish(StateDisconnected, OutcomeDisconnected, nil)
}

// resultFor maps a verdict to a result for this session's screener.
func (s *Session) resultFor(v models.Verdict) (models.FilterResult, Outcome) {
	switch v := v.(type) {
	case models.Allow:
		return models.DefaultResult(), OutcomeAllow
	case models.Silence:
		r := models.DefaultResult()
		r.Silence = true
		return r, OutcomeSilence
	case models.Disallow:
		component := v.Component
		if component == "" {
			component = s.identity.Component
		}
		addToLog := v.AddToCallLog
		if !s.identity.Role.MayHideFromCallLog() {
			addToLog = true
		}
		return models.FilterResult{
			AllowCall:              false,
			Reject:                 v.Reject,
			Silence:                false,
			AddToCallLog:           addToLog,
			ShowNotification:       v.ShowNotification,
			BlockReason:            models.BlockReasonScreeningService,
			AttributingAppName:     s.identity.Label,
			AttributingComponentID: component,
		}, OutcomeDisallow
	default:
		return models.DefaultResult(), OutcomeDisconnected
	}
}

func (s *Session) projectLocked() models.ScreeningRequest {
	req := models.ScreeningRequest{
		CallID:          s.call.ID,
		Handle:          s.call.Handle,
		Presentation:    s.call.Presentation,
		IsSystemHandler: s.identity.Role == models.RoleSystemHandler,
	}
	if req.IsSystemHandler && len(s.call.Extras) > 0 {
		req.Extras = maps.Clone(s.call.Extras)
	}
	return req
}

// finish moves the session to Completed exactly once. via records the path
// taken (BindFailed, Disconnected or Completed directly). A nil result keeps
// the pending neutral result.
func (s *Session) finish(via State, outcome Outcome, result *models.FilterResult) {
	s.mu.Lock()
	if s.state == StateCompleted {
		s.mu.Unlock()
		return
	}
	s.via = via
	if result != nil {
		s.pending = *result
	}
	s.state = StateCompleted
	s.outcome = outcome
	final := s.pending
	cb := s.callback
	ctx := s.ctx
	started := s.startedAt
	conn := s.takeConnIfCompletedLocked()
	s.mu.Unlock()

	release(conn)

	if ctx == nil {
		ctx = context.Background()
	}
	elapsed := time.Duration(0)
	if !started.IsZero() {
		elapsed = s.now().Sub(started)
	}
	s.metrics.IncrementSessionOutcome(string(s.identity.Role), string(outcome))
	s.metrics.ObserveSessionDuration(string(s.identity.Role), elapsed)
	s.logger.InfoContext(ctx, "screening session completed",
		"call_id", s.call.ID.String(),
		"handle_hash", privacy.ShortHash(s.call.Handle),
		"role", string(s.identity.Role),
		"component", s.identity.Component,
		"outcome", string(outcome),
		"reject", final.Reject,
		"duration_ms", elapsed.Milliseconds(),
	)

	if cb != nil {
		cb(final, s.identity)
	}
}

// takeConnIfCompletedLocked hands out the connection for release once the
// session has completed. Each connection is handed out at most once.
func (s *Session) takeConnIfCompletedLocked() ports.Connection {
	if s.state != StateCompleted || s.released || s.conn == nil {
		return nil
	}
	s.released = true
	return s.conn
}

func release(conn ports.Connection) {
	if conn == nil {
		return
	}
	if err := conn.Release(); err != nil {
		slog.Debug("screener release failed", "error", err)
	}
}
