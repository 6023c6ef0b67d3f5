package models

import (
	"strings"
	"time"

	id "callguard/pkg/domain"
	dErrors "callguard/pkg/domain-errors"
)

// Presentation describes how the network presented the caller's number.
type Presentation string

const (
	PresentationAllowed    Presentation = "allowed"
	PresentationRestricted Presentation = "restricted"
	PresentationPayphone   Presentation = "payphone"
	PresentationUnknown    Presentation = "unknown"
)

// ParsePresentation accepts the wire names, case-insensitively.
func ParsePresentation(s string) (Presentation, error) {
	switch p := Presentation(strings.ToLower(strings.TrimSpace(s))); p {
	case PresentationAllowed, PresentationRestricted, PresentationPayphone, PresentationUnknown:
		return p, nil
	case "":
		return "", dErrors.New(dErrors.CodeValidation, "presentation is required")
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "presentation must be one of allowed, restricted, payphone, unknown")
	}
}

// Call is the inbound call being filtered. It does not change while
// filtering runs.
type Call struct {
	ID           id.CallID
	Handle       id.Handle
	Presentation Presentation
	ProfileID    id.ProfileID
	// Extras is call metadata only the system handler may see.
	Extras     map[string]string
	ReceivedAt time.Time
}

// HasNumber reports whether a real calling number was presented.
func (c *Call) HasNumber() bool {
	return c.Presentation == PresentationAllowed && !c.Handle.IsEmpty()
}
