package postgres

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS receipt_journal (
		receipt_id     TEXT PRIMARY KEY,
		transaction_id TEXT NOT NULL,
		card_id        TEXT NOT NULL,
		product        TEXT NOT NULL,
		amount         NUMERIC(10, 2) NOT NULL,
		payment_method TEXT NOT NULL,
		operator       TEXT NOT NULL DEFAULT '',
		printed_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS receipt_journal_printed_at_idx ON receipt_journal (printed_at DESC)`,
}

// Migrate creates the journal schema. It is safe to run repeatedly.
func Migrate(ctx context.Context, q Querier) error {
	for i, stmt := range migrations {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
