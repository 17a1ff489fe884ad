package usecase

import (
	"context"
	"time"

	domain "github.com/ebooklane/checkout-api/internal/entity"
)

// Quote is the priced result of applying a coupon snapshot to a book price.
type Quote struct {
	PriceCents    int64
	DiscountCents int64
	AmountCents   int64
	CouponCode    string // normalized; empty when no coupon applied
}

// Pricer validates a coupon against a purchase and computes the discount.
// It reads a consistent coupon snapshot and never mutates usage_count; the
// increment happens inside the order-creation transaction.
type Pricer struct {
	coupons CouponRepo
}

func NewPricer(coupons CouponRepo) *Pricer {
	return &Pricer{coupons: coupons}
}

// Quote prices a purchase. With an empty code it returns the plain price.
func (p *Pricer) Quote(ctx context.Context, priceCents int64, couponCode string, now time.Time) (Quote, error) {
	if couponCode == "" {
		return Quote{PriceCents: priceCents, AmountCents: priceCents}, nil
	}

	code := domain.NormalizeCode(couponCode)
	c, err := p.coupons.GetByCode(ctx, code)
	if err != nil {
		return Quote{}, err // ErrNotFound propagates unchanged
	}
	if !c.Active {
		return Quote{}, ErrCouponInactive
	}
	if c.Expired(now) {
		return Quote{}, ErrCouponExpired
	}
	if c.Exhausted() {
		return Quote{}, ErrCouponExhausted
	}

	discount := c.Discount(priceCents)
	amount := priceCents - discount
	if amount < 0 {
		amount = 0
	}
	return Quote{
		PriceCents:    priceCents,
		DiscountCents: discount,
		AmountCents:   amount,
		CouponCode:    code,
	}, nil
}
