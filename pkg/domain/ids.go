package domain

import (
	"strings"

	dErrors "callguard/pkg/domain-errors"

	"github.com/google/uuid"
)

// Typed identifiers. Distinct types keep a call id from ever being passed
// where a profile id is expected.
type (
	CallID    uuid.UUID
	ProfileID uuid.UUID
)

const maxIDLength = 64

func parseUUID(kind, s string) (uuid.UUID, error) {
	if len(s) > maxIDLength {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is too long")
	}
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" must not be nil")
	}
	return u, nil
}

// NewCallID returns a random call id.
func NewCallID() CallID { return CallID(uuid.New()) }

// ParseCallID parses external input into a CallID.
func ParseCallID(s string) (CallID, error) {
	u, err := parseUUID("call_id", s)
	if err != nil {
		return CallID{}, err
	}
	return CallID(u), nil
}

func (id CallID) String() string { return uuid.UUID(id).String() }
func (id CallID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// ParseProfileID parses external input into a ProfileID.
func ParseProfileID(s string) (ProfileID, error) {
	u, err := parseUUID("profile_id", s)
	if err != nil {
		return ProfileID{}, err
	}
	return ProfileID(u), nil
}

func (id ProfileID) String() string { return uuid.UUID(id).String() }
func (id ProfileID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
