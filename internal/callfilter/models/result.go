package models

// BlockReason records why a call was blocked. Provider-level reasons come
// from the local block list and number policy.
type BlockReason string

const (
	BlockReasonNone              BlockReason = "none"
	BlockReasonBlockedNumber     BlockReason = "blocked_number"
	BlockReasonUnknownNumber     BlockReason = "unknown_number"
	BlockReasonRestrictedNumber  BlockReason = "restricted_number"
	BlockReasonPayphone          BlockReason = "payphone"
	BlockReasonNotInContacts     BlockReason = "not_in_contacts"
	BlockReasonDirectToVoicemail BlockReason = "direct_to_voicemail"
	BlockReasonScreeningService  BlockReason = "screening_service"
)

// IsProviderLevel reports whether r originates from the local block list.
func (r BlockReason) IsProviderLevel() bool {
	switch r {
	case BlockReasonBlockedNumber, BlockReasonUnknownNumber, BlockReasonRestrictedNumber,
		BlockReasonPayphone, BlockReasonNotInContacts:
		return true
	}
	return false
}

func (r BlockReason) String() string {
	if r == "" {
		return string(BlockReasonNone)
	}
	return string(r)
}

// FilterResult is a filtering verdict. It is a plain value: Merge always
// returns a new result and never modifies its inputs. Two results are equal
// (==) when every flag, the reason and both attribution strings match.
type FilterResult struct {
	AllowCall        bool
	Reject           bool
	Silence          bool
	AddToCallLog     bool
	ShowNotification bool
	BlockReason      BlockReason

	// Attribution is set only when BlockReason is ScreeningService.
	AttributingAppName     string
	AttributingComponentID string
}

// DefaultResult is the neutral verdict used whenever a source does not answer.
func DefaultResult() FilterResult {
	return FilterResult{
		AllowCall:        true,
		AddToCallLog:     true,
		ShowNotification: true,
		BlockReason:      BlockReasonNone,
	}
}

// BlockedResult is the verdict for a provider-level block.
func BlockedResult(reason BlockReason) FilterResult {
	return FilterResult{
		Reject:       true,
		AddToCallLog: true,
		BlockReason:  reason,
	}
}

// IsScreeningRejection reports whether r is a rejection by a screening service.
func (r FilterResult) IsScreeningRejection() bool {
	return r.Reject && r.BlockReason == BlockReasonScreeningService
}

// Outcome names what happens to the call: reject, silence, ignore or allow.
func (r FilterResult) Outcome() string {
	switch {
	case r.Reject:
		return "reject"
	case r.Silence:
		return "silence"
	case !r.AllowCall:
		return "ignore"
	default:
		return "allow"
	}
}

// IsScreeningBlock reports whether r was disallowed by a screening service,
// with or without rejection.
func (r FilterResult) IsScreeningBlock() bool {
	return r.BlockReason == BlockReasonScreeningService
}

// Merge combines two verdicts into one at least as restrictive as either.
//
// Provider-level reasons dominate, then DirectToVoicemail, then a rejecting
// screening service. When both inputs qualify at the same level, a wins.
// Attribution therefore depends on argument order; call sites pass the newly
// arrived result first and the accumulator second.
func Merge(a, b FilterResult) FilterResult {
	out := FilterResult{
		AllowCall:        a.AllowCall && b.AllowCall,
		Reject:           a.Reject || b.Reject,
		Silence:          a.Silence || b.Silence,
		AddToCallLog:     a.AddToCallLog && b.AddToCallLog,
		ShowNotification: a.ShowNotification && b.ShowNotification,
		BlockReason:      BlockReasonNone,
	}

	switch {
	case a.BlockReason.IsProviderLevel():
		out.BlockReason = a.BlockReason
	case b.BlockReason.IsProviderLevel():
		out.BlockReason = b.BlockReason
	case a.BlockReason == BlockReasonDirectToVoicemail || b.BlockReason == BlockReasonDirectToVoicemail:
		out.BlockReason = BlockReasonDirectToVoicemail
	case a.IsScreeningRejection():
		out.BlockReason = a.BlockReason
		out.AttributingAppName = a.AttributingAppName
		out.AttributingComponentID = a.AttributingComponentID
	case b.IsScreeningRejection():
		out.BlockReason = b.BlockReason
		out.AttributingAppName = b.AttributingAppName
		out.AttributingComponentID = b.AttributingComponentID
	}
	return out
}

// MergeAll folds results left to right, each new result merged into the
// accumulator. An empty input yields DefaultResult.
func MergeAll(results ...FilterResult) FilterResult {
	acc := DefaultResult()
	for _, r := range results {
		acc = Merge(r, acc)
	}
	return acc
}
