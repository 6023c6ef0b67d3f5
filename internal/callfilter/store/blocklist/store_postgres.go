package blocklist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"callguard/internal/callfilter/models"
	id "callguard/pkg/domain"
	"callguard/pkg/platform/sentinel"
	txcontext "callguard/pkg/platform/tx"
)

// PostgresStore persists the block list in the blocked_numbers and
// block_policies tables. Writes join a transaction carried in the context.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Block(ctx context.Context, profileID id.ProfileID, handle id.Handle) error {
	n := handle.Normalize()
	if n.IsEmpty() {
		return fmt.Errorf("block number: empty handle")
	}
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO blocked_numbers (profile_id, number)
		VALUES ($1, $2)
		ON CONFLICT (profile_id, number) DO NOTHING
	`, uuid.UUID(profileID), string(n))
	if err != nil {
		return fmt.Errorf("block number: %w", err)
	}
	return nil
}

func (s *PostgresStore) Unblock(ctx context.Context, profileID id.ProfileID, handle id.Handle) error {
	variants := handle.Variants()
	if len(variants) == 0 {
		return fmt.Errorf("unblock number: %w", sentinel.ErrNotFound)
	}
	res, err := s.execer(ctx).ExecContext(ctx, `
		DELETE FROM blocked_numbers
		WHERE profile_id = $1 AND number = ANY($2)
	`, uuid.UUID(profileID), pq.Array(variants))
	if err != nil {
		return fmt.Errorf("unblock number: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unblock number: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("unblock number: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) IsBlocked(ctx context.Context, profileID id.ProfileID, variants []string) (bool, error) {
	if len(variants) == 0 {
		return false, nil
	}
	var blocked bool
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM blocked_numbers
			WHERE profile_id = $1 AND number = ANY($2)
		)
	`, uuid.UUID(profileID), pq.Array(variants)).Scan(&blocked)
	if err != nil {
		return false, fmt.Errorf("check blocked number: %w", err)
	}
	return blocked, nil
}

func (s *PostgresStore) ListBlocked(ctx context.Context, profileID id.ProfileID) ([]string, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT number FROM blocked_numbers
		WHERE profile_id = $1
		ORDER BY number
	`, uuid.UUID(profileID))
	if err != nil {
		return nil, fmt.Errorf("list blocked numbers: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan blocked number: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocked numbers: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) GetPolicy(ctx context.Context, profileID id.ProfileID) (models.BlockPolicy, error) {
	var p models.BlockPolicy
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT block_unknown, block_restricted, block_payphone, block_not_in_contacts
		FROM block_policies
		WHERE profile_id = $1
	`, uuid.UUID(profileID)).Scan(&p.BlockUnknown, &p.BlockRestricted, &p.BlockPayphone, &p.BlockNotInContacts)
	if errors.Is(err, sql.ErrNoRows) {
		return models.BlockPolicy{}, nil
	}
	if err != nil {
		return models.BlockPolicy{}, fmt.Errorf("get block policy: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) SetPolicy(ctx context.Context, profileID id.ProfileID, p models.BlockPolicy) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO block_policies (
			profile_id, block_unknown, block_restricted, block_payphone, block_not_in_contacts, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (profile_id) DO UPDATE SET
			block_unknown = EXCLUDED.block_unknown,
			block_restricted = EXCLUDED.block_restricted,
			block_payphone = EXCLUDED.block_payphone,
			block_not_in_contacts = EXCLUDED.block_not_in_contacts,
			updated_at = EXCLUDED.updated_at
	`, uuid.UUID(profileID), p.BlockUnknown, p.BlockRestricted, p.BlockPayphone, p.BlockNotInContacts)
	if err != nil {
		return fmt.Errorf("set block policy: %w", err)
	}
	return nil
}
