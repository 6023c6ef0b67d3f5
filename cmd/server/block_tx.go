package main

import (
	"context"
	"database/sql"
	"time"

	dErrors "callguard/pkg/domain-errors"
	txcontext "callguard/pkg/platform/tx"
)

const defaultBlockTxTimeout = 5 * time.Second

// blockPostgresTx runs block list changes and their audit rows in one
// Postgres transaction.
type blockPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newBlockPostgresTx(db *sql.DB) *blockPostgresTx {
	return &blockPostgresTx{db: db}
}

func (t *blockPostgresTx) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultBlockTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return txcontext.Run(ctx, t.db, fn)
}
