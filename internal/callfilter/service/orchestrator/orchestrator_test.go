package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"callguard/internal/callfilter/models"
	"callguard/internal/callfilter/ports/mocks"
	"callguard/internal/callfilter/service/screenertest"
	id "callguard/pkg/domain"
	"callguard/pkg/platform/sentinel"
)

const (
	carrierTimeout = 60 * time.Millisecond
	deadline       = 200 * time.Millisecond
	slack          = 150 * time.Millisecond
)

var (
	carrierID = models.ScreeningIdentity{Component: "com.carrier/.Screener", Label: "Carrier"}
	dialerID  = models.ScreeningIdentity{Component: "com.dialer/.Screener", Label: "Dialer"}
	userID    = models.ScreeningIdentity{Component: "com.user/.Screener", Label: "Blocker"}
)

type OrchestratorSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	binder     *screenertest.Binder
	identities *mocks.MockIdentityResolver
	contacts   *mocks.MockContactLookup
	call       *models.Call
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func (s *OrchestratorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.binder = screenertest.NewBinder()
	s.identities = mocks.NewMockIdentityResolver(s.ctrl)
	s.contacts = mocks.NewMockContactLookup(s.ctrl)
	s.call = &models.Call{
		ID:           id.NewCallID(),
		Handle:       id.Handle("+15550102030"),
		Presentation: models.PresentationAllowed,
		ProfileID:    id.ProfileID(uuid.New()),
	}
}

type configured struct {
	carrier, dialer, system, user *models.ScreeningIdentity
}

func ptr(i models.ScreeningIdentity) *models.ScreeningIdentity { return &i }

func (s *OrchestratorSuite) withIdentities(c configured) {
	resolve := func(i *models.ScreeningIdentity) (models.ScreeningIdentity, bool) {
		if i == nil {
			return models.ScreeningIdentity{}, false
		}
		return *i, true
	}
	ci, cok := resolve(c.carrier)
	di, dok := resolve(c.dialer)
	si, sok := resolve(c.system)
	ui, uok := resolve(c.user)
	s.identities.EXPECT().ResolveCarrier(gomock.Any(), gomock.Any()).Return(ci, cok).AnyTimes()
	s.identities.EXPECT().ResolveDefaultHandler(gomock.Any(), gomock.Any()).Return(di, dok).AnyTimes()
	s.identities.EXPECT().ResolveSystemHandler(gomock.Any(), gomock.Any()).Return(si, sok).AnyTimes()
	s.identities.EXPECT().ResolveUserChosen(gomock.Any(), gomock.Any()).Return(ui, uok).AnyTimes()
}

func (s *OrchestratorSuite) notAContact() {
	s.contacts.EXPECT().Lookup(gomock.Any(), s.call.ProfileID, s.call.Handle).
		Return(nil, fmt.Errorf("contact: %w", sentinel.ErrNotFound))
}

func (s *OrchestratorSuite) isAContact() {
	s.contacts.EXPECT().Lookup(gomock.Any(), s.call.ProfileID, s.call.Handle).
		Return(&models.Contact{ProfileID: s.call.ProfileID, Handle: s.call.Handle, DisplayName: "Mum"}, nil)
}

func (s *OrchestratorSuite) orchestrator() *Orchestrator {
	o, err := New(s.binder, s.identities, s.contacts, WithTimeouts(carrierTimeout, deadline))
	s.Require().NoError(err)
	return o
}

func (s *OrchestratorSuite) filter() (models.FilterResult, time.Duration) {
	start := time.Now()
	got := s.orchestrator().Filter(context.Background(), s.call)
	return got, time.Since(start)
}

// -----------------------------------------------------------------------------
// Scenarios
// -----------------------------------------------------------------------------

func (s *OrchestratorSuite) TestNothingConfigured() {
	s.withIdentities(configured{})
	s.notAContact()

	got, _ := s.filter()

	s.Equal(models.DefaultResult(), got)
}

func (s *OrchestratorSuite) TestCarrierRejectionIsFinal() {
	s.withIdentities(configured{carrier: &carrierID, dialer: &dialerID, user: &userID})
	s.contacts.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	s.binder.Script(carrierID.Component, screenertest.Script{Verdict: models.Disallow{
		Reject: true, AddToCallLog: false, ShowNotification: false,
	}})

	got, elapsed := s.filter()

	s.Equal(models.FilterResult{
		AllowCall:              false,
		Reject:                 true,
		AddToCallLog:           false,
		ShowNotification:       false,
		BlockReason:            models.BlockReasonScreeningService,
		AttributingAppName:     "Carrier",
		AttributingComponentID: carrierID.Component,
	}, got)
	s.Less(elapsed, carrierTimeout)
	s.Zero(s.binder.Binds(dialerID.Component))
	s.Zero(s.binder.Binds(userID.Component))
}

func (s *OrchestratorSuite) TestCarrierTimeoutThenUserChosenRejects() {
	s.withIdentities(configured{carrier: &carrierID, dialer: &dialerID, user: &userID})
	s.notAContact()
	s.binder.Script(carrierID.Component, screenertest.Script{})
	s.binder.Script(dialerID.Component, screenertest.Script{Verdict: models.Allow{}})
	s.binder.Script(userID.Component, screenertest.Script{
		Verdict: models.Disallow{Reject: true, AddToCallLog: true, Component: "X"},
		Delay:   10 * time.Millisecond,
	})

	got, _ := s.filter()

	s.False(got.AllowCall)
	s.True(got.Reject)
	s.True(got.AddToCallLog)
	s.Equal(models.BlockReasonScreeningService, got.BlockReason)
	s.Equal("X", got.AttributingComponentID)
	s.Equal("Blocker", got.AttributingAppName)
}

func (s *OrchestratorSuite) TestCarrierTimeoutKnownContactSkipsFanOut() {
	s.withIdentities(configured{carrier: &carrierID, dialer: &dialerID, user: &userID})
	s.isAContact()
	s.binder.Script(carrierID.Component, screenertest.Script{})

	got, _ := s.filter()

	s.Equal(models.DefaultResult(), got)
	s.Zero(s.binder.Binds(dialerID.Component))
	s.Zero(s.binder.Binds(userID.Component))
}

func (s *OrchestratorSuite) TestDeadlineKeepsWhatArrived() {
	s.withIdentities(configured{dialer: &dialerID, user: &userID})
	s.notAContact()
	s.binder.Script(dialerID.Component, screenertest.Script{Verdict: models.Silence{}})
	s.binder.Script(userID.Component, screenertest.Script{
		Verdict: models.Disallow{Reject: true, Component: "late"},
		Delay:   deadline + 100*time.Millisecond,
	})

	got, elapsed := s.filter()

	// the default handler's silence is merged; the user-chosen rejection is not
	s.True(got.Silence)
	s.True(got.AllowCall)
	s.False(got.Reject)
	s.Equal(models.BlockReasonNone, got.BlockReason)
	s.Empty(got.AttributingComponentID)
	s.GreaterOrEqual(elapsed, deadline-5*time.Millisecond)
	s.Less(elapsed, deadline+slack)

	// the late verdict arrives after the run finished and must go nowhere
	time.Sleep(150 * time.Millisecond)
	for _, c := range s.binder.Conns() {
		s.Equal(1, c.Releases(), c.Component())
	}
}

// -----------------------------------------------------------------------------
// Properties
// -----------------------------------------------------------------------------

func (s *OrchestratorSuite) TestSilentScreenersFinishByDeadline() {
	s.withIdentities(configured{carrier: &carrierID, dialer: &dialerID, user: &userID})
	s.notAContact()
	for _, c := range []string{carrierID.Component, dialerID.Component, userID.Component} {
		s.binder.Script(c, screenertest.Script{})
	}

	got, elapsed := s.filter()

	s.Equal(models.DefaultResult(), got)
	s.Less(elapsed, deadline+slack)
	s.Len(s.binder.Conns(), 3)
}

func (s *OrchestratorSuite) TestDefaultHandlerRejectionDoesNotWaitForUserChosen() {
	s.withIdentities(configured{dialer: &dialerID, user: &userID})
	s.notAContact()
	s.binder.Script(dialerID.Component, screenertest.Script{Verdict: models.Disallow{Reject: true}})
	s.binder.Script(userID.Component, screenertest.Script{})

	got, elapsed := s.filter()

	s.True(got.Reject)
	s.Equal(dialerID.Component, got.AttributingComponentID)
	s.Less(elapsed, deadline/2)
}

func (s *OrchestratorSuite) TestLateCarrierVerdictIgnored() {
	s.withIdentities(configured{carrier: &carrierID})
	s.notAContact()
	s.binder.Script(carrierID.Component, screenertest.Script{
		Verdict: models.Disallow{Reject: true},
		Delay:   carrierTimeout + 40*time.Millisecond,
	})

	got, elapsed := s.filter()

	s.Equal(models.DefaultResult(), got)
	s.Less(elapsed, carrierTimeout+40*time.Millisecond)
}

func (s *OrchestratorSuite) TestContactLookupFailureFailsOpen() {
	s.withIdentities(configured{user: &userID})
	s.contacts.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))
	s.binder.Script(userID.Component, screenertest.Script{Verdict: models.Silence{}})

	got, _ := s.filter()

	s.True(got.Silence)
	s.Equal(1, s.binder.Binds(userID.Component))
}

func (s *OrchestratorSuite) TestCarrierAllowStillRunsFanOut() {
	s.withIdentities(configured{carrier: &carrierID, user: &userID})
	s.notAContact()
	s.binder.Script(carrierID.Component, screenertest.Script{Verdict: models.Allow{}})
	s.binder.Script(userID.Component, screenertest.Script{Verdict: models.Disallow{Reject: false, ShowNotification: true}})

	got, _ := s.filter()

	s.False(got.AllowCall)
	s.False(got.Reject)
	s.Equal(models.BlockReasonNone, got.BlockReason, "non-rejecting screening results carry no reason")
}

func (s *OrchestratorSuite) TestDefaultHandlerThatIsSystemHandler() {
	s.withIdentities(configured{dialer: &dialerID, system: ptr(dialerID)})
	s.notAContact()
	s.binder.Script(dialerID.Component, screenertest.Script{Verdict: models.Disallow{Reject: true, AddToCallLog: false}})
	s.call.Extras = map[string]string{"sip_header": "x"}

	got, _ := s.filter()

	s.False(got.AddToCallLog, "the system handler may hide blocked calls")
	reqs := s.binder.Requests(dialerID.Component)
	s.Require().Len(reqs, 1)
	s.True(reqs[0].IsSystemHandler)
	s.Equal("x", reqs[0].Extras["sip_header"])
}

func (s *OrchestratorSuite) TestBindFailureIsNeutral() {
	s.withIdentities(configured{carrier: &carrierID, user: &userID})
	s.notAContact()
	s.binder.Script(carrierID.Component, screenertest.Script{BindErr: errors.New("no such service")})
	s.binder.Script(userID.Component, screenertest.Script{BindErr: errors.New("no such service")})

	got, elapsed := s.filter()

	s.Equal(models.DefaultResult(), got)
	s.Less(elapsed, carrierTimeout)
}

func (s *OrchestratorSuite) TestCancelledContextReturnsPromptly() {
	s.withIdentities(configured{carrier: &carrierID})
	s.binder.Script(carrierID.Component, screenertest.Script{})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	start := time.Now()
	got := s.orchestrator().Filter(ctx, s.call)

	s.Equal(models.DefaultResult(), got)
	s.Less(time.Since(start), carrierTimeout)
}

func (s *OrchestratorSuite) TestWithheldNumberSkipsContactLookup() {
	s.withIdentities(configured{user: &userID})
	s.contacts.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	s.binder.Script(userID.Component, screenertest.Script{Verdict: models.Allow{}})
	s.call.Handle = ""
	s.call.Presentation = models.PresentationRestricted

	got, _ := s.filter()

	s.Equal(models.DefaultResult(), got)
	s.Equal(1, s.binder.Binds(userID.Component))
}

func (s *OrchestratorSuite) TestConcurrentCallsAreIndependent() {
	s.withIdentities(configured{user: &userID})
	s.contacts.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, sentinel.ErrNotFound).AnyTimes()
	s.binder.Script(userID.Component, screenertest.Script{Verdict: models.Silence{}, Delay: 5 * time.Millisecond})
	o := s.orchestrator()

	results := make(chan models.FilterResult, 20)
	for range 20 {
		call := *s.call
		call.ID = id.NewCallID()
		go func() { results <- o.Filter(context.Background(), &call) }()
	}
	for range 20 {
		select {
		case r := <-results:
			s.True(r.Silence)
		case <-time.After(deadline + slack):
			s.FailNow("orchestrator did not finish")
		}
	}
}

func TestNewValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	identities := mocks.NewMockIdentityResolver(ctrl)
	binder := screenertest.NewBinder()

	if _, err := New(nil, identities, nil); err == nil {
		t.Fatal("expected error for nil binder")
	}
	if _, err := New(binder, nil, nil); err == nil {
		t.Fatal("expected error for nil identity resolver")
	}
	if _, err := New(binder, identities, nil, WithTimeouts(time.Second, time.Second)); err == nil {
		t.Fatal("expected error when deadline does not exceed the carrier timeout")
	}
	o, err := New(binder, identities, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.carrierTimeout != DefaultCarrierTimeout || o.deadline != DefaultDeadline {
		t.Fatalf("unexpected defaults: %s %s", o.carrierTimeout, o.deadline)
	}
}
