package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/ebooklane/checkout-api/internal/entity"
	"github.com/ebooklane/checkout-api/internal/usecase"
)

type MySQLCouponRepo struct{ db *sql.DB }

func NewMySQLCouponRepo(db *sql.DB) *MySQLCouponRepo { return &MySQLCouponRepo{db: db} }

const couponColumns = `code,discount_kind,value,usage_limit,usage_count,expires_at,is_active,created_at,updated_at`

func (r *MySQLCouponRepo) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	c, err := scanCoupon(r.db.QueryRowContext(ctx, `
SELECT `+couponColumns+` FROM coupons WHERE code=?`, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, usecase.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *MySQLCouponRepo) Create(ctx context.Context, c *domain.Coupon) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO coupons (`+couponColumns+`)
VALUES (?,?,?,?,?,?,?,?,?)`,
		c.Code, string(c.Kind), c.Value, c.UsageLimit, c.UsageCount,
		nullTime(c.ExpiresAt), c.Active, c.CreatedAt, c.UpdatedAt,
	)
	if isDuplicateKey(err) {
		return usecase.ErrDuplicate
	}
	return err
}

// Update never touches usage_count; that column only moves through the
// guarded increment in the order-creation transaction.
func (r *MySQLCouponRepo) Update(ctx context.Context, c *domain.Coupon) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE coupons
SET value = ?, usage_limit = ?, expires_at = ?, is_active = ?, updated_at = ?
WHERE code = ?`,
		c.Value, c.UsageLimit, nullTime(c.ExpiresAt), c.Active, c.UpdatedAt, c.Code,
	)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return usecase.ErrNotFound
	}
	return nil
}

func (r *MySQLCouponRepo) Delete(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM coupons WHERE code=?`, code)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return usecase.ErrNotFound
	}
	return nil
}

func (r *MySQLCouponRepo) List(ctx context.Context, limit, offset int) ([]*domain.Coupon, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+couponColumns+` FROM coupons ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCoupon(s rowScanner) (*domain.Coupon, error) {
	var (
		c       domain.Coupon
		kind    string
		expires sql.NullTime
	)
	if err := s.Scan(
		&c.Code, &kind, &c.Value, &c.UsageLimit, &c.UsageCount,
		&expires, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.Kind = domain.DiscountKind(kind)
	if expires.Valid {
		t := expires.Time
		c.ExpiresAt = &t
	}
	return &c, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

var _ usecase.CouponRepo = (*MySQLCouponRepo)(nil)
