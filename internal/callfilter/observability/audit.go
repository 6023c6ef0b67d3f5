// Package observability provides audit logging helpers for call filtering.
package observability

import (
	"context"
	"log/slog"

	"callguard/internal/callfilter/ports"
	id "callguard/pkg/domain"
	"callguard/pkg/platform/attrs"
	"callguard/pkg/platform/audit"
	"callguard/pkg/requestcontext"
)

// LogAudit logs an audit event and emits it to the publisher when one is
// configured. Subject, reason, decision and component are read from attrList
// ("subject_hash", "reason", "decision", "component"); "profile_id" is parsed
// from its string form.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher ports.AuditPublisher, event audit.AuditEvent, attrList ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attrList = append(attrList, "request_id", requestID)
	}

	if logger != nil {
		args := append(attrList, "event", string(event), "log_type", "audit")
		logger.InfoContext(ctx, string(event), args...)
	}

	if publisher == nil {
		return
	}

	e := audit.Event{
		Category:  event.Category(),
		Action:    string(event),
		Subject:   attrs.ExtractString(attrList, "subject_hash"),
		Reason:    attrs.ExtractString(attrList, "reason"),
		Decision:  attrs.ExtractString(attrList, "decision"),
		Component: attrs.ExtractString(attrList, "component"),
		RequestID: requestID,
		ActorID:   requestcontext.ServiceSubject(ctx),
	}
	if raw := attrs.ExtractString(attrList, "profile_id"); raw != "" {
		if pid, err := id.ParseProfileID(raw); err == nil {
			e.ProfileID = pid
		}
	}
	if err := publisher.Emit(ctx, e); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event",
			"event", string(event),
			"error", err,
		)
	}
}
