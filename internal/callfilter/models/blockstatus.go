package models

// BlockStatus is the block-status collaborator's answer for a caller.
type BlockStatus string

const (
	StatusNotBlocked    BlockStatus = "not_blocked"
	StatusBlockedInList BlockStatus = "blocked_in_list"
	StatusUnknownNumber BlockStatus = "unknown_number"
	StatusRestricted    BlockStatus = "restricted"
	StatusPayphone      BlockStatus = "payphone"
	StatusNotInContacts BlockStatus = "not_in_contacts"
)

// Reason maps a status to its block reason. NotBlocked and unrecognized
// statuses map to None.
func (s BlockStatus) Reason() BlockReason {
	switch s {
	case StatusBlockedInList:
		return BlockReasonBlockedNumber
	case StatusUnknownNumber:
		return BlockReasonUnknownNumber
	case StatusRestricted:
		return BlockReasonRestrictedNumber
	case StatusPayphone:
		return BlockReasonPayphone
	case StatusNotInContacts:
		return BlockReasonNotInContacts
	default:
		return BlockReasonNone
	}
}

// BlockPolicy is a profile's enhanced blocking configuration.
type BlockPolicy struct {
	BlockUnknown       bool
	BlockRestricted    bool
	BlockPayphone      bool
	BlockNotInContacts bool
}
