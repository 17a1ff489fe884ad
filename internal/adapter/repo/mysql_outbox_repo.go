package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/ebooklane/checkout-api/internal/usecase"
)

// OutboxRow is one event waiting to be published to RabbitMQ.
type OutboxRow struct {
	ID      int64
	Channel string
	Payload []byte
}

type MySQLOutboxRepo struct{ db *sql.DB }

func NewMySQLOutboxRepo(db *sql.DB) *MySQLOutboxRepo { return &MySQLOutboxRepo{db: db} }

func (r *MySQLOutboxRepo) Insert(ctx context.Context, channel string, payload []byte) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO outbox (channel,payload,status,retry_count,next_attempt_at,created_at)
VALUES (?,?,'PENDING',0,NOW(),NOW())`,
		channel, payload,
	)
	return err
}

// FetchDue returns pending rows whose next attempt is due, oldest first.
func (r *MySQLOutboxRepo) FetchDue(ctx context.Context, limit int) ([]OutboxRow, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, channel, payload FROM outbox
WHERE status = 'PENDING' AND next_attempt_at <= NOW()
ORDER BY id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OutboxRow
	for rows.Next() {
		var row OutboxRow
		if err := rows.Scan(&row.ID, &row.Channel, &row.Payload); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *MySQLOutboxRepo) MarkSent(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE outbox SET status = 'SENT' WHERE id = ?`, id)
	return err
}

// MarkRetry pushes the next attempt out and counts the failure.
func (r *MySQLOutboxRepo) MarkRetry(ctx context.Context, id int64, nextAttempt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE outbox SET retry_count = retry_count + 1, next_attempt_at = ? WHERE id = ?`,
		nextAttempt, id)
	return err
}

var _ usecase.EventOutbox = (*MySQLOutboxRepo)(nil)
