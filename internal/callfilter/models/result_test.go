package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

var allReasons = []BlockReason{
	BlockReasonNone,
	BlockReasonBlockedNumber,
	BlockReasonUnknownNumber,
	BlockReasonRestrictedNumber,
	BlockReasonPayphone,
	BlockReasonNotInContacts,
	BlockReasonDirectToVoicemail,
	BlockReasonScreeningService,
}

// sampleResults covers every reason with every flag combination.
func sampleResults() []FilterResult {
	var out []FilterResult
	for _, reason := range allReasons {
		for mask := 0; mask < 32; mask++ {
			r := FilterResult{
				AllowCall:        mask&1 != 0,
				Reject:           mask&2 != 0,
				Silence:          mask&4 != 0,
				AddToCallLog:     mask&8 != 0,
				ShowNotification: mask&16 != 0,
				BlockReason:      reason,
			}
			if reason == BlockReasonScreeningService {
				r.AttributingAppName = "app"
				r.AttributingComponentID = "com.example/.Screener"
			}
			out = append(out, r)
		}
	}
	return out
}

type flags struct {
	allow, reject, silence, log, notify bool
}

func flagsOf(r FilterResult) flags {
	return flags{r.AllowCall, r.Reject, r.Silence, r.AddToCallLog, r.ShowNotification}
}

type MergeSuite struct {
	suite.Suite
}

func TestMergeSuite(t *testing.T) {
	suite.Run(t, new(MergeSuite))
}

func (s *MergeSuite) TestFlagCombinators() {
	a := FilterResult{AllowCall: true, Reject: false, Silence: true, AddToCallLog: true, ShowNotification: false}
	b := FilterResult{AllowCall: false, Reject: true, Silence: false, AddToCallLog: true, ShowNotification: true}

	got := Merge(a, b)

	s.False(got.AllowCall)
	s.True(got.Reject)
	s.True(got.Silence)
	s.True(got.AddToCallLog)
	s.False(got.ShowNotification)
}

func (s *MergeSuite) TestFlagsCommutative() {
	samples := sampleResults()
	for _, a := range samples {
		for _, b := range samples {
			if flagsOf(Merge(a, b)) != flagsOf(Merge(b, a)) {
				s.Failf("flags not commutative", "a=%+v b=%+v", a, b)
				return
			}
		}
	}
}

func (s *MergeSuite) TestFlagsAssociative() {
	// every reason with a handful of flag shapes keeps the triple loop small
	var samples []FilterResult
	for i, r := range sampleResults() {
		if i%7 == 0 {
			samples = append(samples, r)
		}
	}
	for _, a := range samples {
		for _, b := range samples {
			for _, c := range samples {
				left := Merge(Merge(a, b), c)
				right := Merge(a, Merge(b, c))
				if flagsOf(left) != flagsOf(right) {
					s.Failf("flags not associative", "a=%+v b=%+v c=%+v", a, b, c)
					return
				}
			}
		}
	}
}

func (s *MergeSuite) TestProviderReasonDominates() {
	samples := sampleResults()
	for _, a := range samples {
		if !a.BlockReason.IsProviderLevel() {
			continue
		}
		for _, b := range samples {
			if b.BlockReason.IsProviderLevel() {
				continue
			}
			ab := Merge(a, b)
			ba := Merge(b, a)
			s.Equal(a.BlockReason, ab.BlockReason)
			s.Equal(a.BlockReason, ba.BlockReason)
			s.Empty(ab.AttributingAppName)
			s.Empty(ba.AttributingComponentID)
		}
	}
}

func (s *MergeSuite) TestDirectToVoicemailBeatsScreeningService() {
	vm := FilterResult{Reject: true, AddToCallLog: true, ShowNotification: true, BlockReason: BlockReasonDirectToVoicemail}
	screened := FilterResult{Reject: true, BlockReason: BlockReasonScreeningService, AttributingAppName: "x", AttributingComponentID: "x/.S"}

	for _, got := range []FilterResult{Merge(vm, screened), Merge(screened, vm)} {
		s.Equal(BlockReasonDirectToVoicemail, got.BlockReason)
		s.Empty(got.AttributingAppName)
		s.Empty(got.AttributingComponentID)
	}
}

func (s *MergeSuite) TestScreeningAttributionFirstArgumentWins() {
	first := FilterResult{Reject: true, BlockReason: BlockReasonScreeningService, AttributingAppName: "first", AttributingComponentID: "first/.S"}
	second := FilterResult{Reject: true, BlockReason: BlockReasonScreeningService, AttributingAppName: "second", AttributingComponentID: "second/.S"}

	s.Equal("first", Merge(first, second).AttributingAppName)
	s.Equal("second/.S", Merge(second, first).AttributingComponentID)
}

func (s *MergeSuite) TestNonRejectingScreeningResultCarriesNoReason() {
	// disallow without reject is an "ignore"; only rejections keep attribution
	ignored := FilterResult{BlockReason: BlockReasonScreeningService, AttributingAppName: "x", AttributingComponentID: "x/.S"}

	got := Merge(ignored, DefaultResult())

	s.Equal(BlockReasonNone, got.BlockReason)
	s.Empty(got.AttributingAppName)
	s.False(got.AllowCall)
}

func (s *MergeSuite) TestDefaultIsIdentityForNeutralInputs() {
	s.Equal(flags{allow: true, log: true, notify: true}, flagsOf(DefaultResult()))
	for _, r := range sampleResults() {
		if r.BlockReason != BlockReasonNone {
			continue
		}
		got := Merge(r, DefaultResult())
		s.Equal(flagsOf(r), flagsOf(got))
	}
}

func (s *MergeSuite) TestInputsUnchanged() {
	a := FilterResult{Reject: true, BlockReason: BlockReasonScreeningService, AttributingAppName: "a", AttributingComponentID: "a/.S"}
	b := BlockedResult(BlockReasonPayphone)
	aCopy, bCopy := a, b

	_ = Merge(a, b)

	s.Equal(aCopy, a)
	s.Equal(bCopy, b)
}

func (s *MergeSuite) TestMergeAll() {
	s.Equal(DefaultResult(), MergeAll())

	screened := FilterResult{Reject: true, AddToCallLog: true, BlockReason: BlockReasonScreeningService, AttributingAppName: "x", AttributingComponentID: "x/.S"}
	got := MergeAll(DefaultResult(), screened)

	s.False(got.AllowCall)
	s.True(got.Reject)
	s.Equal(BlockReasonScreeningService, got.BlockReason)
	s.Equal("x", got.AttributingAppName)
}

func TestFilterResultEquality(t *testing.T) {
	a := FilterResult{Reject: true, BlockReason: BlockReasonScreeningService, AttributingAppName: "x"}
	b := FilterResult{Reject: true, BlockReason: BlockReasonScreeningService, AttributingAppName: "x"}
	c := FilterResult{Reject: true, BlockReason: BlockReasonScreeningService, AttributingAppName: "y"}

	assert.Equal(t, a, b)
	assert.True(t, a == b)
	assert.False(t, a == c)
	assert.True(t, FilterResult{} == FilterResult{AttributingAppName: ""})
}

func TestBlockStatusReason(t *testing.T) {
	cases := map[BlockStatus]BlockReason{
		StatusNotBlocked:    BlockReasonNone,
		StatusBlockedInList: BlockReasonBlockedNumber,
		StatusUnknownNumber: BlockReasonUnknownNumber,
		StatusRestricted:    BlockReasonRestrictedNumber,
		StatusPayphone:      BlockReasonPayphone,
		StatusNotInContacts: BlockReasonNotInContacts,
	}
	for status, want := range cases {
		assert.Equal(t, want, status.Reason(), string(status))
	}
	assert.Equal(t, BlockReasonNone, BlockStatus("bogus").Reason())
}

func TestParsePresentation(t *testing.T) {
	p, err := ParsePresentation(" Allowed ")
	assert.NoError(t, err)
	assert.Equal(t, PresentationAllowed, p)

	_, err = ParsePresentation("")
	assert.Error(t, err)

	_, err = ParsePresentation("hidden")
	assert.Error(t, err)
}

func TestRoleMayHideFromCallLog(t *testing.T) {
	assert.True(t, RoleCarrier.MayHideFromCallLog())
	assert.True(t, RoleSystemHandler.MayHideFromCallLog())
	assert.False(t, RoleDefaultHandler.MayHideFromCallLog())
	assert.False(t, RoleUserChosen.MayHideFromCallLog())
}

func TestFilterResultOutcome(t *testing.T) {
	assert.Equal(t, "allow", DefaultResult().Outcome())
	assert.Equal(t, "reject", BlockedResult(BlockReasonPayphone).Outcome())
	assert.Equal(t, "silence", FilterResult{AllowCall: true, Silence: true}.Outcome())
	assert.Equal(t, "ignore", FilterResult{}.Outcome())
}
