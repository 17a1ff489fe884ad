package usecase

import (
	"context"

	domain "github.com/ebooklane/checkout-api/internal/entity"
)

type CancelOrder struct {
	repo  OrderRepo
	cache OrderCache
}

func NewCancelOrder(repo OrderRepo, cache OrderCache) *CancelOrder {
	return &CancelOrder{repo: repo, cache: cache}
}

// Execute cancels a pending order. actorIdentity is the caller's identity
// key; admin actors pass isAdmin and skip the ownership check. Cancelling
// anything that is not PENDING_PAYMENT fails ErrInvalidState. A second
// cancel, or a cancel after payment, must be visible to the caller, not
// swallowed.
func (uc *CancelOrder) Execute(ctx context.Context, orderID, actorIdentity string, isAdmin bool) error {
	rec, err := uc.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !isAdmin && rec.IdentityKey() != actorIdentity {
		return ErrForbidden
	}

	won, err := uc.repo.UpdateStateIf(ctx, orderID, domain.StatePendingPayment, domain.StateCancelled)
	if err != nil {
		return err
	}
	if !won {
		return ErrInvalidState
	}
	_ = uc.cache.SetStatus(ctx, orderID, string(domain.StateCancelled))
	return nil
}
