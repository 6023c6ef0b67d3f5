// Package voicemail routes calls from contacts marked "send to voicemail"
// straight to voicemail.
package voicemail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"callguard/internal/callfilter/metrics"
	"callguard/internal/callfilter/models"
	"callguard/internal/callfilter/ports"
	"callguard/pkg/platform/sentinel"
)

type Filter struct {
	contacts ports.ContactLookup
	logger   *slog.Logger
	metrics  *metrics.Metrics
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

func New(contacts ports.ContactLookup, opts ...Option) (*Filter, error) {
	if contacts == nil {
		return nil, fmt.Errorf("contact lookup is required")
	}
	f := &Filter{contacts: contacts, logger: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *Filter) Name() string { return "voicemail" }

func (f *Filter) Filter(ctx context.Context, call *models.Call) models.FilterResult {
	if !call.HasNumber() {
		return models.DefaultResult()
	}
	contact, err := f.contacts.Lookup(ctx, call.ProfileID, call.Handle)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			f.metrics.IncrementLookupFailure("contacts")
			f.logger.WarnContext(ctx, "contact lookup failed",
				"call_id", call.ID.String(),
				"error", err,
			)
		}
		return models.DefaultResult()
	}
	if contact == nil || !contact.SendToVoicemail {
		return models.DefaultResult()
	}
	return models.FilterResult{
		AllowCall:        false,
		Reject:           true,
		AddToCallLog:     true,
		ShowNotification: true,
		BlockReason:      models.BlockReasonDirectToVoicemail,
	}
}
