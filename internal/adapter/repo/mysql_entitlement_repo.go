package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ebooklane/checkout-api/internal/usecase"
)

type MySQLEntitlementRepo struct{ db *sql.DB }

func NewMySQLEntitlementRepo(db *sql.DB) *MySQLEntitlementRepo {
	return &MySQLEntitlementRepo{db: db}
}

// Grant relies on the UNIQUE(user_identity, book_id) index: INSERT IGNORE
// leaves an existing grant, and its source_order_id, untouched.
func (r *MySQLEntitlementRepo) Grant(ctx context.Context, e usecase.EntitlementRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT IGNORE INTO entitlements (user_identity, book_id, source_order_id, granted_at)
VALUES (?,?,?,?)`,
		e.UserIdentity, e.BookID, e.SourceOrderID, e.GrantedAt,
	)
	return err
}

func (r *MySQLEntitlementRepo) Get(ctx context.Context, userIdentity, bookID string) (*usecase.EntitlementRecord, error) {
	var e usecase.EntitlementRecord
	err := r.db.QueryRowContext(ctx, `
SELECT user_identity, book_id, source_order_id, granted_at
FROM entitlements WHERE user_identity=? AND book_id=?`,
		userIdentity, bookID,
	).Scan(&e.UserIdentity, &e.BookID, &e.SourceOrderID, &e.GrantedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, usecase.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *MySQLEntitlementRepo) ListByUser(ctx context.Context, userIdentity string) ([]*usecase.EntitlementRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT user_identity, book_id, source_order_id, granted_at
FROM entitlements WHERE user_identity=? ORDER BY granted_at DESC`,
		userIdentity,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*usecase.EntitlementRecord
	for rows.Next() {
		var e usecase.EntitlementRecord
		if err := rows.Scan(&e.UserIdentity, &e.BookID, &e.SourceOrderID, &e.GrantedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

var _ usecase.EntitlementRepo = (*MySQLEntitlementRepo)(nil)
