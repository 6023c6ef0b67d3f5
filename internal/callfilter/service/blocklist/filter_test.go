package blocklist

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"callguard/internal/callfilter/models"
	"callguard/internal/callfilter/ports/mocks"
	id "callguard/pkg/domain"
	"callguard/pkg/platform/audit"
	"callguard/pkg/platform/audit/publisher"
	auditmemory "callguard/pkg/platform/audit/store/memory"
	"callguard/pkg/platform/sentinel"
)

type FilterSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	checker  *mocks.MockBlockStatusChecker
	contacts *mocks.MockContactLookup
	audits   *auditmemory.InMemoryStore
	call     *models.Call
}

func TestFilterSuite(t *testing.T) {
	suite.Run(t, new(FilterSuite))
}

func (s *FilterSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.checker = mocks.NewMockBlockStatusChecker(s.ctrl)
	s.contacts = mocks.NewMockContactLookup(s.ctrl)
	s.audits = auditmemory.NewInMemoryStore()
	s.call = &models.Call{
		ID:           id.NewCallID(),
		Handle:       "+15550102000",
		Presentation: models.PresentationAllowed,
		ProfileID:    id.ProfileID(uuid.New()),
	}
}

func (s *FilterSuite) filter(enhanced bool) *Filter {
	f, err := New(s.checker, s.contacts,
		WithEnhancedBlocking(enhanced),
		WithAuditPublisher(publisher.NewPublisher(s.audits)),
	)
	s.Require().NoError(err)
	return f
}

func (s *FilterSuite) TestNotBlocked() {
	s.checker.EXPECT().
		GetBlockStatus(gomock.Any(), s.call.ProfileID, s.call.Handle, models.PresentationAllowed, false).
		Return(models.StatusNotBlocked, nil)

	got := s.filter(false).Filter(context.Background(), s.call)

	s.Equal(models.DefaultResult(), got)
}

func (s *FilterSuite) TestStatusMapsToProviderReason() {
	cases := []struct {
		status models.BlockStatus
		reason models.BlockReason
	}{
		{models.StatusBlockedInList, models.BlockReasonBlockedNumber},
		{models.StatusUnknownNumber, models.BlockReasonUnknownNumber},
		{models.StatusRestricted, models.BlockReasonRestrictedNumber},
		{models.StatusPayphone, models.BlockReasonPayphone},
		{models.StatusNotInContacts, models.BlockReasonNotInContacts},
	}
	for _, tc := range cases {
		s.Run(string(tc.status), func() {
			s.checker.EXPECT().GetBlockStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return(tc.status, nil)

			got := s.filter(false).Filter(context.Background(), s.call)

			s.Equal(models.FilterResult{
				AllowCall:        false,
				Reject:           true,
				AddToCallLog:     true,
				ShowNotification: false,
				BlockReason:      tc.reason,
			}, got)
		})
	}
}

func (s *FilterSuite) TestEnhancedModePassesContactExistence() {
	s.contacts.EXPECT().Lookup(gomock.Any(), s.call.ProfileID, s.call.Handle).
		Return(&models.Contact{DisplayName: "Ana"}, nil)
	s.checker.EXPECT().GetBlockStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), true).
		Return(models.StatusNotBlocked, nil)

	got := s.filter(true).Filter(context.Background(), s.call)

	s.Equal(models.DefaultResult(), got)
}

func (s *FilterSuite) TestEnhancedModeUnknownCaller() {
	s.contacts.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)
	s.checker.EXPECT().GetBlockStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), false).
		Return(models.StatusNotInContacts, nil)

	got := s.filter(true).Filter(context.Background(), s.call)

	s.Equal(models.BlockReasonNotInContacts, got.BlockReason)
}

func (s *FilterSuite) TestContactLookupSkippedWithoutNumber() {
	s.call.Handle = ""
	s.call.Presentation = models.PresentationRestricted
	s.contacts.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	s.checker.EXPECT().GetBlockStatus(gomock.Any(), gomock.Any(), id.Handle(""), models.PresentationRestricted, false).
		Return(models.StatusRestricted, nil)

	got := s.filter(true).Filter(context.Background(), s.call)

	s.Equal(models.BlockReasonRestrictedNumber, got.BlockReason)
}

func (s *FilterSuite) TestContactLookupSkippedWhenEnhancedDisabled() {
	s.contacts.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	s.checker.EXPECT().GetBlockStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), false).
		Return(models.StatusNotBlocked, nil)

	s.filter(false).Filter(context.Background(), s.call)
}

// ----- Fail open -----

func (s *FilterSuite) TestCheckerErrorFailsOpen() {
	s.checker.EXPECT().GetBlockStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(models.StatusBlockedInList, errors.New("db down"))

	got := s.filter(false).Filter(context.Background(), s.call)

	s.Equal(models.DefaultResult(), got)
	s.Empty(s.audits.ListByAction(context.Background(), audit.EventBlockStatusRecorded))
}

func (s *FilterSuite) TestContactErrorStillHonorsExplicitBlockList() {
	s.contacts.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))
	s.checker.EXPECT().
		GetBlockStatus(gomock.Any(), s.call.ProfileID, s.call.Handle, models.PresentationAllowed, false).
		Return(models.StatusBlockedInList, nil)

	got := s.filter(true).Filter(context.Background(), s.call)

	s.Equal(models.BlockedResult(models.BlockReasonBlockedNumber), got)
}

func (s *FilterSuite) TestContactErrorSkipsNotInContactsPolicy() {
	s.contacts.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))
	s.checker.EXPECT().
		GetBlockStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), false).
		Return(models.StatusNotInContacts, nil)

	got := s.filter(true).Filter(context.Background(), s.call)

	s.Equal(models.DefaultResult(), got)
}

func (s *FilterSuite) TestUnrecognizedStatusDoesNotBlock() {
	s.checker.EXPECT().GetBlockStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(models.BlockStatus("emergency_override"), nil)

	got := s.filter(false).Filter(context.Background(), s.call)

	s.Equal(models.DefaultResult(), got)
}

// ----- Audit -----

func (s *FilterSuite) TestStatusRecordedEvenWhenNotBlocked() {
	s.checker.EXPECT().GetBlockStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(models.StatusNotBlocked, nil)

	s.filter(false).Filter(context.Background(), s.call)

	events := s.audits.ListByAction(context.Background(), audit.EventBlockStatusRecorded)
	s.Require().Len(events, 1)
	s.Equal(string(models.StatusNotBlocked), events[0].Reason)
	s.Equal(s.call.ProfileID, events[0].ProfileID)
}

func TestNewRequiresChecker(t *testing.T) {
	if _, err := New(nil, nil); err == nil {
		t.Fatal("expected error for nil checker")
	}
}
