// Package ports defines the collaborators the call filtering services depend
// on. Adapters and stores implement them; services only see these interfaces.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"callguard/internal/callfilter/models"
	id "callguard/pkg/domain"
	"callguard/pkg/platform/audit"
)

// AuditPublisher emits audit events for filtering decisions and block list
// changes.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// ContactLookup finds a profile's contact by handle. Returns an error
// wrapping sentinel.ErrNotFound when the handle is not a contact.
type ContactLookup interface {
	Lookup(ctx context.Context, profileID id.ProfileID, handle id.Handle) (*models.Contact, error)
}

// BlockStatusChecker decides whether a caller is blocked for a profile.
type BlockStatusChecker interface {
	GetBlockStatus(
		ctx context.Context,
		profileID id.ProfileID,
		handle id.Handle,
		presentation models.Presentation,
		contactExists bool,
	) (models.BlockStatus, error)
}

// IdentityResolver returns the screener configured for each role.
// ok=false means no screener is configured for that role.
type IdentityResolver interface {
	ResolveCarrier(ctx context.Context, profileID id.ProfileID) (identity models.ScreeningIdentity, ok bool)
	ResolveDefaultHandler(ctx context.Context, profileID id.ProfileID) (identity models.ScreeningIdentity, ok bool)
	ResolveSystemHandler(ctx context.Context, profileID id.ProfileID) (identity models.ScreeningIdentity, ok bool)
	ResolveUserChosen(ctx context.Context, profileID id.ProfileID) (identity models.ScreeningIdentity, ok bool)
}

// Binder connects to remote screeners.
//
// Bind starts connecting and returns the connection handle at once. A
// non-nil error means the bind failed synchronously and no listener method
// will be called. Otherwise the listener later receives OnConnected, and
// then at most one OnVerdict, or OnDisconnected at any point. Listener calls
// may arrive on any goroutine, including before Bind returns.
type Binder interface {
	Bind(ctx context.Context, identity models.ScreeningIdentity, listener SessionListener) (Connection, error)
}

// SessionListener receives events for one bound screener.
type SessionListener interface {
	OnConnected(conn Connection)
	OnVerdict(callID id.CallID, verdict models.Verdict)
	OnDisconnected()
}

// Connection is one bound screener endpoint.
type Connection interface {
	// Screen sends the screening request. The verdict arrives through the
	// listener; an error means the request could not be delivered.
	Screen(ctx context.Context, req models.ScreeningRequest) error
	// Release unbinds. Callers release each connection exactly once.
	Release() error
}

// DecisionSink receives the final decision for every filtered call.
type DecisionSink interface {
	Name() string
	Deliver(ctx context.Context, call *models.Call, result models.FilterResult) error
}
