package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/ebooklane/checkout-api/internal/entity"
	"github.com/ebooklane/checkout-api/internal/usecase"
	"github.com/go-sql-driver/mysql"
)

type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

const orderColumns = `id,book_id,user_id,buyer_email,buyer_phone,price_cents,coupon_code,discount_cents,amount_cents,transfer_code,state,created_at,expires_at`

// Create inserts the order and, when a coupon is applied, consumes one use
// in the same transaction. The increment is guarded so two buyers racing
// the last use of a limited coupon cannot both commit.
func (r *MySQLOrderRepo) Create(ctx context.Context, o *usecase.OrderRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if o.CouponCode != "" {
		res, err := tx.ExecContext(ctx, `
UPDATE coupons
SET usage_count = usage_count + 1, updated_at = NOW()
WHERE code = ? AND is_active = 1 AND (usage_limit = 0 OR usage_count < usage_limit)`,
			o.CouponCode,
		)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			// Coupon vanished, was deactivated, or lost the last-use race
			// between pricing and commit.
			return usecase.ErrCouponExhausted
		}
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO orders (`+orderColumns+`,updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,NOW())`,
		o.ID, o.BookID, nullStr(o.UserID), o.BuyerEmail, nullStr(o.BuyerPhone),
		o.PriceCents, nullStr(o.CouponCode), o.DiscountCents, o.AmountCents,
		o.TransferCode, o.State, o.CreatedAt, o.ExpiresAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return usecase.ErrTransferCodeTaken
		}
		return err
	}

	return tx.Commit()
}

func (r *MySQLOrderRepo) GetByID(ctx context.Context, id string) (*usecase.OrderRecord, error) {
	return scanOne(r.db.QueryRowContext(ctx, `
SELECT `+orderColumns+` FROM orders WHERE id=?`, id))
}

func (r *MySQLOrderRepo) GetByTransferCode(ctx context.Context, code string) (*usecase.OrderRecord, error) {
	return scanOne(r.db.QueryRowContext(ctx, `
SELECT `+orderColumns+` FROM orders WHERE transfer_code=?`, code))
}

// UpdateStateIf is the single guarded transition primitive: rows == 0 means
// the order was no longer in `from` (or does not exist) and nothing changed.
func (r *MySQLOrderRepo) UpdateStateIf(ctx context.Context, id string, from, to domain.State) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders
SET state = ?, updated_at = NOW()
WHERE id = ? AND state = ?`,
		string(to), id, string(from),
	)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// MarkPaid commits the PAID transition and the entitlement grant as one
// unit, so a PAID order always implies a granted entitlement. INSERT IGNORE
// keeps the grant idempotent: an existing (user, book) row, including its
// source_order_id, is left untouched.
func (r *MySQLOrderRepo) MarkPaid(ctx context.Context, id string, grant usecase.EntitlementRecord) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
UPDATE orders
SET state = ?, updated_at = NOW()
WHERE id = ? AND state = ?`,
		string(domain.StatePaid), id, string(domain.StatePendingPayment),
	)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
INSERT IGNORE INTO entitlements (user_identity, book_id, source_order_id, granted_at)
VALUES (?,?,?,?)`,
		grant.UserIdentity, grant.BookID, grant.SourceOrderID, grant.GrantedAt,
	)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// ExpirePastDue selects candidates and moves each through the guarded
// update, so a confirmation that commits first keeps its win. Returns the
// ids that actually expired.
func (r *MySQLOrderRepo) ExpirePastDue(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id FROM orders WHERE state = ? AND expires_at < ?`,
		string(domain.StatePendingPayment), now,
	)
	if err != nil {
		return nil, err
	}
	var candidates []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		candidates = append(candidates, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var expired []string
	for _, id := range candidates {
		won, err := r.UpdateStateIf(ctx, id, domain.StatePendingPayment, domain.StateExpired)
		if err != nil {
			return expired, err
		}
		if won {
			expired = append(expired, id)
		}
	}
	return expired, nil
}

func (r *MySQLOrderRepo) List(ctx context.Context, f usecase.OrderFilter) ([]*usecase.OrderRecord, error) {
	q := `SELECT ` + orderColumns + ` FROM orders`
	args := []any{}
	if f.State != "" {
		q += ` WHERE state = ?`
		args = append(args, f.State)
	}
	q += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*usecase.OrderRecord
	for rows.Next() {
		rec, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOne(row *sql.Row) (*usecase.OrderRecord, error) {
	rec, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, usecase.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func scanOrder(s rowScanner) (*usecase.OrderRecord, error) {
	var (
		rec           usecase.OrderRecord
		userID, phone sql.NullString
		couponCode    sql.NullString
	)
	if err := s.Scan(
		&rec.ID, &rec.BookID, &userID, &rec.BuyerEmail, &phone,
		&rec.PriceCents, &couponCode, &rec.DiscountCents, &rec.AmountCents,
		&rec.TransferCode, &rec.State, &rec.CreatedAt, &rec.ExpiresAt,
	); err != nil {
		return nil, err
	}
	rec.UserID = userID.String
	rec.BuyerPhone = phone.String
	rec.CouponCode = couponCode.String
	return &rec, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

var _ usecase.OrderRepo = (*MySQLOrderRepo)(nil)
