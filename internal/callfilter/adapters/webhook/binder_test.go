package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"callguard/internal/callfilter/models"
	"callguard/internal/callfilter/ports"
	"callguard/internal/callfilter/service/session"
	id "callguard/pkg/domain"
	"callguard/pkg/platform/circuit"
	"callguard/pkg/platform/middleware/auth"
)

type listenerEvent struct {
	kind    string
	callID  id.CallID
	verdict models.Verdict
}

// recorder forwards listener calls to a channel and screens on connect.
type recorder struct {
	req    models.ScreeningRequest
	events chan listenerEvent
	conn   chan ports.Connection
}

func newRecorder(req models.ScreeningRequest) *recorder {
	return &recorder{req: req, events: make(chan listenerEvent, 4), conn: make(chan ports.Connection, 1)}
}

func (r *recorder) OnConnected(conn ports.Connection) {
	if err := conn.Screen(context.Background(), r.req); err != nil {
		r.events <- listenerEvent{kind: "screen_error"}
	}
	r.conn <- conn
}

func (r *recorder) OnVerdict(callID id.CallID, v models.Verdict) {
	r.events <- listenerEvent{kind: "verdict", callID: callID, verdict: v}
}

func (r *recorder) OnDisconnected() {
	r.events <- listenerEvent{kind: "disconnected"}
}

func (r *recorder) next(s *BinderSuite) listenerEvent {
	select {
	case ev := <-r.events:
		return ev
	case <-time.After(2 * time.Second):
		s.FailNow("no listener event")
		return listenerEvent{}
	}
}

type BinderSuite struct {
	suite.Suite
	callID id.CallID
	req    models.ScreeningRequest
}

func TestBinderSuite(t *testing.T) {
	suite.Run(t, new(BinderSuite))
}

func (s *BinderSuite) SetupTest() {
	s.callID = id.NewCallID()
	s.req = models.ScreeningRequest{
		CallID:       s.callID,
		Handle:       "+15550102000",
		Presentation: models.PresentationAllowed,
	}
}

func (s *BinderSuite) server(handler http.HandlerFunc) *httptest.Server {
	srv := httptest.NewServer(handler)
	s.T().Cleanup(srv.Close)
	return srv
}

func (s *BinderSuite) identity(endpoint string) models.ScreeningIdentity {
	return models.ScreeningIdentity{Role: models.RoleUserChosen, Component: "com.user/.Screener", Label: "Blocker", Endpoint: endpoint}
}

func (s *BinderSuite) respond(w http.ResponseWriter, v wireVerdict) {
	w.Header().Set("Content-Type", "application/json")
	s.Require().NoError(json.NewEncoder(w).Encode(v))
}

// -----------------------------------------------------------------------------
// Verdicts
// -----------------------------------------------------------------------------

func (s *BinderSuite) TestDisallowVerdict() {
	var got wireRequest
	srv := s.server(func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&got))
		s.respond(w, wireVerdict{
			CallID: s.callID.String(), Verdict: "disallow",
			Reject: true, AddToCallLog: true, Component: "com.user/.Rules",
		})
	})
	rec := newRecorder(s.req)

	_, err := NewBinder().Bind(context.Background(), s.identity(srv.URL), rec)
	s.Require().NoError(err)

	ev := rec.next(s)
	s.Equal("verdict", ev.kind)
	s.Equal(s.callID, ev.callID)
	s.Equal(models.Disallow{Reject: true, AddToCallLog: true, Component: "com.user/.Rules"}, ev.verdict)
	s.Equal(s.callID.String(), got.CallID)
	s.Equal("+15550102000", got.Handle)
	s.Nil(got.Extras)
}

func (s *BinderSuite) TestAllowAndSilence() {
	for name, want := range map[string]models.Verdict{"allow": models.Allow{}, "silence": models.Silence{}} {
		s.Run(name, func() {
			srv := s.server(func(w http.ResponseWriter, _ *http.Request) {
				s.respond(w, wireVerdict{CallID: s.callID.String(), Verdict: name})
			})
			rec := newRecorder(s.req)
			_, err := NewBinder().Bind(context.Background(), s.identity(srv.URL), rec)
			s.Require().NoError(err)
			s.Equal(want, rec.next(s).verdict)
		})
	}
}

func (s *BinderSuite) TestSignsRequestsForTheScreener() {
	signer := auth.NewHS256Signer("screener-signing-key", "callguard")
	screenerSide := auth.NewHS256Validator("screener-signing-key", "com.user/.Screener")
	srv := s.server(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.Require().True(ok)
		claims, err := screenerSide.ValidateToken(token)
		s.Require().NoError(err)
		s.Equal("callguard", claims.Service)
		s.respond(w, wireVerdict{CallID: s.callID.String(), Verdict: "allow"})
	})
	rec := newRecorder(s.req)

	_, err := NewBinder(WithTokenIssuer(signer)).Bind(context.Background(), s.identity(srv.URL), rec)
	s.Require().NoError(err)
	s.Equal("verdict", rec.next(s).kind)
}

// A screener must not be able to reuse its token against the management API,
// even when both sides were configured with the same key.
func (s *BinderSuite) TestScreenerTokenIsRejectedByServiceAuth() {
	const key = "shared-signing-key"
	tokens := make(chan string, 1)
	srv := s.server(func(w http.ResponseWriter, r *http.Request) {
		tokens <- r.Header.Get("Authorization")
		s.respond(w, wireVerdict{CallID: s.callID.String(), Verdict: "allow"})
	})
	rec := newRecorder(s.req)

	_, err := NewBinder(WithTokenIssuer(auth.NewHS256Signer(key, "callguard"))).
		Bind(context.Background(), s.identity(srv.URL), rec)
	s.Require().NoError(err)
	s.Equal("verdict", rec.next(s).kind)

	var captured string
	select {
	case captured = <-tokens:
	case <-time.After(2 * time.Second):
		s.FailNow("screener saw no request")
	}

	protected := auth.RequireServiceToken(auth.NewHS256Validator(key, auth.ServiceAudience), slog.New(slog.NewTextHandler(io.Discard, nil)))(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }),
	)
	req := httptest.NewRequest(http.MethodDelete, "/v1/profiles/x/blocked-numbers/15550100", nil)
	req.Header.Set("Authorization", captured)
	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, req)

	s.Equal(http.StatusUnauthorized, rr.Code)
}

// -----------------------------------------------------------------------------
// Failures
// -----------------------------------------------------------------------------

func (s *BinderSuite) TestServerErrorDisconnects() {
	srv := s.server(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	rec := newRecorder(s.req)

	_, err := NewBinder().Bind(context.Background(), s.identity(srv.URL), rec)
	s.Require().NoError(err)
	s.Equal("disconnected", rec.next(s).kind)
}

func (s *BinderSuite) TestMalformedVerdictDisconnects() {
	srv := s.server(func(w http.ResponseWriter, _ *http.Request) {
		s.respond(w, wireVerdict{CallID: s.callID.String(), Verdict: "maybe"})
	})
	rec := newRecorder(s.req)

	_, err := NewBinder().Bind(context.Background(), s.identity(srv.URL), rec)
	s.Require().NoError(err)
	s.Equal("disconnected", rec.next(s).kind)
}

func (s *BinderSuite) TestMissingEndpointFailsBind() {
	_, err := NewBinder().Bind(context.Background(), s.identity(""), newRecorder(s.req))
	s.ErrorIs(err, ports.ErrBindFailed)
}

func (s *BinderSuite) TestBreakerOpensAfterFailures() {
	var hits atomic.Int32
	srv := s.server(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	b := NewBinder(WithBreakerOptions(circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour)))

	for range 2 {
		rec := newRecorder(s.req)
		_, err := b.Bind(context.Background(), s.identity(srv.URL), rec)
		s.Require().NoError(err)
		s.Equal("disconnected", rec.next(s).kind)
	}

	_, err := b.Bind(context.Background(), s.identity(srv.URL), newRecorder(s.req))
	s.ErrorIs(err, ports.ErrCircuitOpen)
	s.Equal(ports.FailureBind, ports.FailureKind(err))
	s.EqualValues(2, hits.Load())
}

// ----- Release -----

func (s *BinderSuite) TestReleaseCancelsInFlightRequest() {
	unblock := make(chan struct{})
	srv := s.server(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-unblock:
		}
	})
	defer close(unblock)
	rec := newRecorder(s.req)

	_, err := NewBinder().Bind(context.Background(), s.identity(srv.URL), rec)
	s.Require().NoError(err)
	conn := <-rec.conn
	s.Require().NoError(conn.Release())

	select {
	case ev := <-rec.events:
		s.Failf("unexpected listener event after release", "%s", ev.kind)
	case <-time.After(100 * time.Millisecond):
	}
	s.ErrorIs(conn.Release(), ports.ErrReleased)
	s.ErrorIs(conn.Screen(context.Background(), s.req), ports.ErrReleased)
}

// -----------------------------------------------------------------------------
// With a real session
// -----------------------------------------------------------------------------

func (s *BinderSuite) TestSessionOverWebhook() {
	srv := s.server(func(w http.ResponseWriter, r *http.Request) {
		var req wireRequest
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&req))
		s.respond(w, wireVerdict{CallID: req.CallID, Verdict: "disallow", Reject: true})
	})
	call := &models.Call{ID: s.callID, Handle: "+15550102000", Presentation: models.PresentationAllowed}

	sess, err := session.New(NewBinder(), call, s.identity(srv.URL))
	s.Require().NoError(err)

	done := make(chan models.FilterResult, 1)
	sess.Start(context.Background(), func(r models.FilterResult, _ models.ScreeningIdentity) { done <- r })

	select {
	case r := <-done:
		s.True(r.Reject)
		s.Equal(models.BlockReasonScreeningService, r.BlockReason)
		s.Equal("com.user/.Screener", r.AttributingComponentID)
		s.Equal("Blocker", r.AttributingAppName)
	case <-time.After(2 * time.Second):
		s.FailNow("session did not complete")
	}
}
