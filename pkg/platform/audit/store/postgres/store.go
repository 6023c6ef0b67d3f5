package postgres

import (
	"context"
	"database/sql"
	"fmt"

	id "callguard/pkg/domain"
	audit "callguard/pkg/platform/audit"
	txcontext "callguard/pkg/platform/tx"

	"github.com/google/uuid"
)

// Store implements audit.Store on the audit_events table. When the context
// carries a transaction (pkg/platform/tx), the insert joins it so audit rows
// commit together with the change they describe.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Append inserts an audit event.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}

	var profileID *uuid.UUID
	if !event.ProfileID.IsNil() {
		pid := uuid.UUID(event.ProfileID)
		profileID = &pid
	}

	query := `
		INSERT INTO audit_events (
			id, category, timestamp, profile_id, subject, action,
			decision, reason, component, request_id, actor_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		string(category),
		event.Timestamp,
		profileID,
		event.Subject,
		event.Action,
		event.Decision,
		event.Reason,
		event.Component,
		event.RequestID,
		event.ActorID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByProfile returns events for a profile, most recent first.
func (s *Store) ListByProfile(ctx context.Context, profileID id.ProfileID) ([]audit.Event, error) {
	query := `
		SELECT category, timestamp, profile_id, subject, action,
			   decision, reason, component, request_id, actor_id
		FROM audit_events
		WHERE profile_id = $1
		ORDER BY timestamp DESC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(profileID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			category string
			event    audit.Event
			pid      *uuid.UUID
		)
		if err := rows.Scan(
			&category,
			&event.Timestamp,
			&pid,
			&event.Subject,
			&event.Action,
			&event.Decision,
			&event.Reason,
			&event.Component,
			&event.RequestID,
			&event.ActorID,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		if pid != nil {
			event.ProfileID = id.ProfileID(*pid)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
