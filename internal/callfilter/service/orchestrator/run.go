package orchestrator

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"callguard/internal/callfilter/models"
	"callguard/internal/callfilter/observability"
	"callguard/internal/callfilter/service/session"
	"callguard/pkg/platform/audit"
	"callguard/pkg/platform/privacy"
	"callguard/pkg/platform/sentinel"
)

type stage int

const (
	stageInit stage = iota
	stageCarrierPending
	stageContactGate
	stageFanOut
	stageFinished
)

func (s stage) String() string {
	switch s {
	case stageInit:
		return "init"
	case stageCarrierPending:
		return "carrier_pending"
	case stageContactGate:
		return "contact_gate"
	case stageFanOut:
		return "fan_out"
	default:
		return "finished"
	}
}

type eventKind int

const (
	evSessionDone eventKind = iota
	evCarrierTimeout
	evContactResolved
	evDeadline
)

type event struct {
	kind      eventKind
	role      models.Role
	result    models.FilterResult
	isContact bool
}

// eventBuffer holds every event one run can produce: three session
// completions, two timers and one contact answer.
const eventBuffer = 8

// run is the coordinator for one call. All state below is owned by the loop
// goroutine; other goroutines only post events.
type run struct {
	o      *Orchestrator
	ctx    context.Context
	cancel context.CancelFunc
	call   *models.Call
	span   trace.Span

	events chan event
	done   chan struct{}

	stage          stage
	result         models.FilterResult
	defaultDone    bool
	userChosenDone bool
	sessions       []*session.Session
	carrierTimer   *time.Timer
	deadlineTimer  *time.Timer
	startedAt      time.Time
	finishReason   string
}

func newRun(o *Orchestrator, ctx context.Context, call *models.Call, span trace.Span) *run {
	ctx, cancel := context.WithCancel(ctx)
	return &run{
		o:      o,
		ctx:    ctx,
		cancel: cancel,
		call:   call,
		span:   span,
		events: make(chan event, eventBuffer),
		done:   make(chan struct{}),
		stage:  stageInit,
		result: models.DefaultResult(),
	}
}

// post delivers ev to the loop, or drops it once the run has finished.
func (r *run) post(ev event) {
	select {
	case r.events <- ev:
	case <-r.done:
	}
}

func (r *run) loop() models.FilterResult {
	r.startedAt = r.o.now()
	r.deadlineTimer = time.AfterFunc(r.o.deadline, func() { r.post(event{kind: evDeadline}) })
	r.startCarrier()

	for r.stage != stageFinished {
		select {
		case ev := <-r.events:
			r.handle(ev)
		case <-r.ctx.Done():
			r.finish("canceled")
		}
	}
	return r.result
}

func (r *run) handle(ev event) {
	switch ev.kind {
	case evDeadline:
		r.o.metrics.IncrementScreeningTimeout("deadline")
		r.finish("deadline")

	case evCarrierTimeout:
		if r.stage != stageCarrierPending {
			return
		}
		r.o.metrics.IncrementScreeningTimeout("carrier")
		r.o.logger.InfoContext(r.ctx, "carrier screening timed out",
			"call_id", r.call.ID.String(),
			"timeout_ms", r.o.carrierTimeout.Milliseconds(),
		)
		r.span.AddEvent("carrier_timeout")
		r.checkContact()

	case evContactResolved:
		if r.stage != stageContactGate {
			return
		}
		if ev.isContact {
			r.finish("known_contact")
			return
		}
		r.startFanOut()

	case evSessionDone:
		r.onSessionDone(ev.role, ev.result)
	}
}

func (r *run) onSessionDone(role models.Role, incoming models.FilterResult) {
	switch role {
	case models.RoleCarrier:
		if r.stage != stageCarrierPending {
			r.o.logger.DebugContext(r.ctx, "ignoring late carrier result",
				"call_id", r.call.ID.String(),
				"stage", r.stage.String(),
			)
			return
		}
		r.carrierTimer.Stop()
		r.result = models.Merge(incoming, r.result)
		if incoming.IsScreeningBlock() {
			r.finish("carrier_blocked")
			return
		}
		r.checkContact()

	case models.RoleDefaultHandler, models.RoleSystemHandler, models.RoleUserChosen:
		if r.stage != stageFanOut {
			return
		}
		if role == models.RoleUserChosen {
			r.userChosenDone = true
		} else {
			r.defaultDone = true
		}
		r.result = models.Merge(incoming, r.result)
		if incoming.IsScreeningRejection() {
			r.finish(string(role) + "_rejected")
			return
		}
		if r.defaultDone && r.userChosenDone {
			r.finish("complete")
		}
	}
}

func (r *run) startCarrier() {
	identity, ok := r.o.identities.ResolveCarrier(r.ctx, r.call.ProfileID)
	if !ok {
		r.checkContact()
		return
	}
	r.stage = stageCarrierPending
	r.carrierTimer = time.AfterFunc(r.o.carrierTimeout, func() { r.post(event{kind: evCarrierTimeout}) })
	r.startSession(identity.WithRole(models.RoleCarrier))
}

// checkContact looks the caller up off the loop goroutine. Lookup failures
// count as "not a contact".
func (r *run) checkContact() {
	r.stage = stageContactGate
	r.span.AddEvent("contact_gate")

	if r.o.contacts == nil || r.call.Handle.IsEmpty() {
		r.post(event{kind: evContactResolved})
		return
	}
	ctx, profileID, handle := r.ctx, r.call.ProfileID, r.call.Handle
	go func() {
		contact, err := r.o.contacts.Lookup(ctx, profileID, handle)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) && ctx.Err() == nil {
			r.o.metrics.IncrementLookupFailure("contacts")
			r.o.logger.WarnContext(ctx, "contact lookup failed, treating caller as unknown",
				"call_id", r.call.ID.String(),
				"error", err,
			)
		}
		r.post(event{kind: evContactResolved, isContact: err == nil && contact != nil})
	}()
}

func (r *run) startFanOut() {
	r.stage = stageFanOut
	r.span.AddEvent("fan_out")

	profileID := r.call.ProfileID
	dflt, hasDefault := r.o.identities.ResolveDefaultHandler(r.ctx, profileID)
	user, hasUser := r.o.identities.ResolveUserChosen(r.ctx, profileID)

	if hasDefault {
		role := models.RoleDefaultHandler
		if sys, ok := r.o.identities.ResolveSystemHandler(r.ctx, profileID); ok && sys.SameScreener(dflt) {
			role = models.RoleSystemHandler
		}
		r.startSession(dflt.WithRole(role))
	} else {
		r.defaultDone = true
	}

	if hasUser {
		r.startSession(user.WithRole(models.RoleUserChosen))
	} else {
		r.userChosenDone = true
	}

	if r.defaultDone && r.userChosenDone {
		r.finish("no_screeners")
	}
}

func (r *run) startSession(identity models.ScreeningIdentity) {
	sess, err := session.New(r.o.binder, r.call, identity,
		session.WithLogger(r.o.logger),
		session.WithMetrics(r.o.metrics),
	)
	if err != nil {
		// unreachable with validated collaborators; report the neutral result
		r.post(event{kind: evSessionDone, role: identity.Role, result: models.DefaultResult()})
		return
	}
	r.sessions = append(r.sessions, sess)
	r.span.AddEvent("session_started", trace.WithAttributes(attribute.String("role", string(identity.Role))))

	role := identity.Role
	sess.Start(r.ctx, func(result models.FilterResult, _ models.ScreeningIdentity) {
		r.post(event{kind: evSessionDone, role: role, result: result})
	})
}

// finish is terminal. Sessions are closed after done is closed so their
// callbacks, which may run on this goroutine, never block on post.
func (r *run) finish(reason string) {
	if r.stage == stageFinished {
		return
	}
	r.stage = stageFinished
	r.finishReason = reason
	close(r.done)

	r.deadlineTimer.Stop()
	if r.carrierTimer != nil {
		r.carrierTimer.Stop()
	}
	for _, s := range r.sessions {
		s.Close()
	}
	r.cancel()

	elapsed := r.o.now().Sub(r.startedAt)
	r.o.metrics.ObserveScreeningDuration(elapsed)
	r.span.SetAttributes(
		attribute.String("screening.finish_reason", reason),
		attribute.String("screening.block_reason", r.result.BlockReason.String()),
		attribute.Int("screening.sessions", len(r.sessions)),
	)

	observability.LogAudit(context.WithoutCancel(r.ctx), r.o.logger, r.o.auditPublisher, audit.EventScreeningFinished,
		"call_id", r.call.ID.String(),
		"profile_id", r.call.ProfileID.String(),
		"subject_hash", privacy.HashHandle(r.call.Handle),
		"reason", reason,
		"decision", r.result.Outcome(),
		"component", r.result.AttributingComponentID,
		"duration_ms", elapsed.Milliseconds(),
	)
}
