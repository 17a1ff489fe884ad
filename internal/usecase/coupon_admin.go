package usecase

import (
	"context"
	"time"

	domain "github.com/ebooklane/checkout-api/internal/entity"
)

// CouponAdmin is the admin CRUD surface. Validation lives on the domain
// type; this just normalizes and guards the usage invariant on updates.
type CouponAdmin struct {
	repo CouponRepo

	now func() time.Time
}

func NewCouponAdmin(repo CouponRepo) *CouponAdmin {
	return &CouponAdmin{repo: repo, now: time.Now}
}

type CouponInput struct {
	Code       string
	Kind       domain.DiscountKind
	Value      int64
	UsageLimit int64
	ExpiresAt  *time.Time
	Active     bool
}

func (a *CouponAdmin) Create(ctx context.Context, in CouponInput) (*domain.Coupon, error) {
	now := a.now()
	c := &domain.Coupon{
		Code:       domain.NormalizeCode(in.Code),
		Kind:       in.Kind,
		Value:      in.Value,
		UsageLimit: in.UsageLimit,
		ExpiresAt:  in.ExpiresAt,
		Active:     in.Active,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if c.Code == "" {
		return nil, domain.ErrInvalidDiscountValue
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := a.repo.Create(ctx, c); err != nil {
		return nil, err // ErrDuplicate on code collision
	}
	return c, nil
}

type CouponUpdate struct {
	Value       *int64
	UsageLimit  *int64
	ExpiresAt   *time.Time
	ClearExpiry bool
	Active      *bool
}

func (a *CouponAdmin) Update(ctx context.Context, code string, upd CouponUpdate) (*domain.Coupon, error) {
	c, err := a.repo.GetByCode(ctx, domain.NormalizeCode(code))
	if err != nil {
		return nil, err
	}
	if upd.Value != nil {
		c.Value = *upd.Value
	}
	if upd.UsageLimit != nil {
		c.UsageLimit = *upd.UsageLimit
	}
	if upd.ClearExpiry {
		c.ExpiresAt = nil
	} else if upd.ExpiresAt != nil {
		c.ExpiresAt = upd.ExpiresAt
	}
	if upd.Active != nil {
		c.Active = *upd.Active
	}
	c.UpdatedAt = a.now()
	if err := c.Validate(); err != nil {
		return nil, err // also rejects usage_limit below usage_count
	}
	if err := a.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (a *CouponAdmin) Get(ctx context.Context, code string) (*domain.Coupon, error) {
	return a.repo.GetByCode(ctx, domain.NormalizeCode(code))
}

func (a *CouponAdmin) Delete(ctx context.Context, code string) error {
	return a.repo.Delete(ctx, domain.NormalizeCode(code))
}

func (a *CouponAdmin) List(ctx context.Context, limit, offset int) ([]*domain.Coupon, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return a.repo.List(ctx, limit, offset)
}
