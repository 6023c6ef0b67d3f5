// Package blocklist is the pipeline filter that applies a profile's block
// list and enhanced blocking policy to an incoming call.
package blocklist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"callguard/internal/callfilter/metrics"
	"callguard/internal/callfilter/models"
	"callguard/internal/callfilter/observability"
	"callguard/internal/callfilter/ports"
	"callguard/pkg/platform/audit"
	"callguard/pkg/platform/privacy"
	"callguard/pkg/platform/sentinel"
)

type Filter struct {
	checker  ports.BlockStatusChecker
	contacts ports.ContactLookup
	enhanced bool

	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher ports.AuditPublisher
}

type Option func(*Filter)

func WithLogger(logger *slog.Logger) Option {
	return func(f *Filter) {
		if logger != nil {
			f.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Filter) {
		f.metrics = m
	}
}

func WithAuditPublisher(p ports.AuditPublisher) Option {
	return func(f *Filter) {
		f.auditPublisher = p
	}
}

// WithEnhancedBlocking enables the contact-existence check that feeds the
// "not in contacts" policy.
func WithEnhancedBlocking(enabled bool) Option {
	return func(f *Filter) {
		f.enhanced = enabled
	}
}

// New creates the filter. contacts may be nil, in which case no caller is
// treated as a contact.
func New(checker ports.BlockStatusChecker, contacts ports.ContactLookup, opts ...Option) (*Filter, error) {
	if checker == nil {
		return nil, fmt.Errorf("block status checker is required")
	}
	f := &Filter{
		checker:  checker,
		contacts: contacts,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *Filter) Name() string { return "blocklist" }

// Filter never fails: collaborator errors resolve to the neutral result.
func (f *Filter) Filter(ctx context.Context, call *models.Call) models.FilterResult {
	start := time.Now()

	contactExists, contactKnown := false, true
	if f.enhanced && call.HasNumber() {
		exists, err := f.contactExists(ctx, call)
		if err != nil {
			f.metrics.IncrementLookupFailure("contacts")
			f.logger.WarnContext(ctx, "contact lookup failed, checking block list only",
				"call_id", call.ID.String(),
				"error", err,
			)
			contactKnown = false
		}
		contactExists = exists
	}

	status, err := f.checker.GetBlockStatus(ctx, call.ProfileID, call.Handle, call.Presentation, contactExists)
	if err != nil {
		f.metrics.IncrementLookupFailure("block_status")
		f.logger.WarnContext(ctx, "block status lookup failed, not blocking",
			"call_id", call.ID.String(),
			"error", err,
		)
		return models.DefaultResult()
	}

	f.metrics.IncrementBlockStatus(string(status))
	observability.LogAudit(ctx, f.logger, f.auditPublisher, audit.EventBlockStatusRecorded,
		"call_id", call.ID.String(),
		"profile_id", call.ProfileID.String(),
		"subject_hash", privacy.HashHandle(call.Handle),
		"reason", string(status),
		"contact_exists", contactExists,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if status == models.StatusNotBlocked {
		return models.DefaultResult()
	}
	if status == models.StatusNotInContacts && !contactKnown {
		// contact existence is unknown, so the not-in-contacts policy cannot apply
		return models.DefaultResult()
	}
	reason := status.Reason()
	if reason == models.BlockReasonNone {
		// unrecognized status codes do not block
		return models.DefaultResult()
	}
	return models.BlockedResult(reason)
}

func (f *Filter) contactExists(ctx context.Context, call *models.Call) (bool, error) {
	if f.contacts == nil {
		return false, nil
	}
	contact, err := f.contacts.Lookup(ctx, call.ProfileID, call.Handle)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return contact != nil, nil
}
