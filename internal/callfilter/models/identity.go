package models

// Role is the position a screening identity holds for a call.
type Role string

const (
	RoleCarrier        Role = "carrier"
	RoleDefaultHandler Role = "default_handler"
	RoleSystemHandler  Role = "system_handler"
	RoleUserChosen     Role = "user_chosen"
)

// MayHideFromCallLog reports whether a screener in this role may block a
// call without it appearing in the call log.
func (r Role) MayHideFromCallLog() bool {
	return r == RoleCarrier || r == RoleSystemHandler
}

// ScreeningIdentity is a remote screener configured for a role.
type ScreeningIdentity struct {
	Role Role
	// Component is the screener's package/component reference, used for
	// attribution when the screener does not name one.
	Component string
	// Label is the human-readable app name.
	Label string
	// Endpoint locates the screener for the binder (a URL for webhooks).
	Endpoint string
}

// WithRole returns a copy of the identity in a different role.
func (i ScreeningIdentity) WithRole(r Role) ScreeningIdentity {
	i.Role = r
	return i
}

// SameScreener reports whether both identities refer to the same remote
// screener, regardless of role.
func (i ScreeningIdentity) SameScreener(other ScreeningIdentity) bool {
	return i.Component != "" && i.Component == other.Component
}
