package domain

import (
	"errors"
	"strings"
	"time"
)

type DiscountKind string

const (
	DiscountPercentage  DiscountKind = "PERCENTAGE"
	DiscountFixedAmount DiscountKind = "FIXED_AMOUNT"
)

var (
	ErrInvalidDiscountKind  = errors.New("invalid discount kind")
	ErrInvalidDiscountValue = errors.New("invalid discount value")
	ErrInvalidUsageLimit    = errors.New("usage limit below current usage count")
)

// Coupon is a snapshot of one coupon row. UsageCount is only ever moved
// forward by the order-creation transaction, never by this type.
type Coupon struct {
	Code       string
	Kind       DiscountKind
	Value      int64 // percent for PERCENTAGE, minor units for FIXED_AMOUNT
	UsageLimit int64 // 0 = unlimited
	UsageCount int64
	ExpiresAt  *time.Time // nil = never expires
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NormalizeCode uppercases a coupon code the way it is stored.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (c *Coupon) Validate() error {
	switch c.Kind {
	case DiscountPercentage:
		if c.Value <= 0 || c.Value > 100 {
			return ErrInvalidDiscountValue
		}
	case DiscountFixedAmount:
		if c.Value <= 0 {
			return ErrInvalidDiscountValue
		}
	default:
		return ErrInvalidDiscountKind
	}
	if c.UsageLimit < 0 || (c.UsageLimit > 0 && c.UsageCount > c.UsageLimit) {
		return ErrInvalidUsageLimit
	}
	return nil
}

// Expired reports whether the coupon's expiry has passed at the given instant.
func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// Exhausted reports whether a limited coupon has no uses left.
func (c *Coupon) Exhausted() bool {
	return c.UsageLimit > 0 && c.UsageCount >= c.UsageLimit
}

// Discount computes the discount in minor units for the given price.
// One arithmetic rule per kind; never negative, never above the price.
func (c *Coupon) Discount(priceCents int64) int64 {
	var d int64
	switch c.Kind {
	case DiscountPercentage:
		d = priceCents * c.Value / 100 // integer division == floor for non-negatives
	case DiscountFixedAmount:
		d = c.Value
	}
	if d > priceCents {
		d = priceCents
	}
	if d < 0 {
		d = 0
	}
	return d
}
