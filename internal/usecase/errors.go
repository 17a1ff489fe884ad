package usecase

import "errors"

// Caller-recoverable error kinds. Handlers map these to HTTP statuses with
// errors.Is; anything not in this list is an infrastructure fault and
// surfaces as UNAVAILABLE (retry with backoff).
var (
	ErrNotFound        = errors.New("not found")
	ErrCouponInactive  = errors.New("coupon inactive")
	ErrCouponExpired   = errors.New("coupon expired")
	ErrCouponExhausted = errors.New("coupon exhausted")
	ErrBookUnavailable = errors.New("book not available for purchase")
	ErrCodeGeneration  = errors.New("transfer code generation failed")
	ErrInvalidState    = errors.New("order not in a state that allows this transition")
	ErrAmountMismatch  = errors.New("confirmed amount does not match order amount")
	ErrForbidden       = errors.New("forbidden")
	ErrDuplicate       = errors.New("duplicate")

	// ErrTransferCodeTaken is returned by OrderRepo.Create on a transfer code
	// collision so the creator can regenerate and retry.
	ErrTransferCodeTaken = errors.New("transfer code already in use")
)
