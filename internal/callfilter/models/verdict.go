package models

import id "callguard/pkg/domain"

// ScreeningRequest is the call projection sent to a remote screener.
// Extras is populated only for the system handler.
type ScreeningRequest struct {
	CallID          id.CallID
	Handle          id.Handle
	Presentation    Presentation
	IsSystemHandler bool
	Extras          map[string]string
}

// Verdict is a remote screener's answer: Allow, Disallow or Silence. The
// unexported method closes the set to this package.
type Verdict interface {
	isVerdict()
}

type Allow struct{}

type Disallow struct {
	Reject           bool
	AddToCallLog     bool
	ShowNotification bool
	// Component optionally names the screener component for attribution.
	Component string
}

type Silence struct{}

func (Allow) isVerdict()    {}
func (Disallow) isVerdict() {}
func (Silence) isVerdict()  {}

// VerdictName is the log/metric label for v.
func VerdictName(v Verdict) string {
	switch v.(type) {
	case Allow:
		return "allow"
	case Disallow:
		return "disallow"
	case Silence:
		return "silence"
	default:
		return "unknown"
	}
}
