package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	domain "github.com/ebooklane/checkout-api/internal/entity"
)

// Confirmation is one observed bank transfer, regardless of whether it came
// in by push (Kafka, ops queue, webhook) or pull (statement poller).
type Confirmation struct {
	TransferCode string
	AmountCents  int64
	ReceivedAt   time.Time
}

// Reconciler matches confirmations to pending orders by exact transfer code
// and owns the payment-window expiry sweep. Both paths transition orders
// through conditional updates, so running them concurrently is safe: the
// first commit wins and the loser observes a no-op.
type Reconciler struct {
	repo  OrderRepo
	cache OrderCache
	out   EventOutbox
	log   *slog.Logger

	now func() time.Time
}

func NewReconciler(repo OrderRepo, cache OrderCache, out EventOutbox, log *slog.Logger) *Reconciler {
	return &Reconciler{repo: repo, cache: cache, out: out, log: log, now: time.Now}
}

// Confirm applies one payment confirmation.
//
// A confirmation that reaches the conditional update before the expiry sweep
// wins even if expires_at has already passed; once the sweep has committed
// EXPIRED, late confirmations land here as ErrInvalidState and are logged
// for manual reconciliation.
func (r *Reconciler) Confirm(ctx context.Context, c Confirmation) error {
	order, err := r.repo.GetByTransferCode(ctx, c.TransferCode)
	if err != nil {
		if err == ErrNotFound {
			confirmationsUnmatched.WithLabelValues("unknown_code").Inc()
			r.log.Warn("confirmation matched no order",
				"transfer_code", c.TransferCode, "amount_cents", c.AmountCents)
		}
		return err
	}

	// Exact match only. Partial or over-payments stay PENDING_PAYMENT for a
	// human to sort out; nothing is partially credited.
	if c.AmountCents != order.AmountCents {
		confirmationsUnmatched.WithLabelValues("amount_mismatch").Inc()
		r.log.Warn("confirmation amount mismatch",
			"order_id", order.ID,
			"expected_cents", order.AmountCents,
			"confirmed_cents", c.AmountCents)
		return ErrAmountMismatch
	}

	identity := order.IdentityKey()
	won, err := r.repo.MarkPaid(ctx, order.ID, EntitlementRecord{
		UserIdentity:  identity,
		BookID:        order.BookID,
		SourceOrderID: order.ID,
		GrantedAt:     r.now(),
	})
	if err != nil {
		return err
	}
	if !won {
		// Lost the race against the sweep, a cancel, or a duplicate
		// confirmation. Not an error for the signal source.
		confirmationsUnmatched.WithLabelValues("not_pending").Inc()
		r.log.Info("confirmation for non-pending order",
			"order_id", order.ID, "state", order.State)
		return ErrInvalidState
	}

	ordersPaid.Inc()
	_ = r.cache.SetStatus(ctx, order.ID, string(domain.StatePaid))
	r.emit(ctx, ChannelOrderPaid, order, identity)
	r.log.Info("order paid", "order_id", order.ID, "amount_cents", order.AmountCents)
	return nil
}

// ExpirePastDue sweeps every pending order whose payment window has closed.
// Runs on a ticker; also safe to call ad hoc.
func (r *Reconciler) ExpirePastDue(ctx context.Context, now time.Time) (int, error) {
	ids, err := r.repo.ExpirePastDue(ctx, now)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		ordersExpired.Inc()
		_ = r.cache.SetStatus(ctx, id, string(domain.StateExpired))
		if order, err := r.repo.GetByID(ctx, id); err == nil {
			r.emit(ctx, ChannelOrderExpired, order, order.IdentityKey())
		}
	}
	if len(ids) > 0 {
		r.log.Info("expired stale orders", "count", len(ids))
	}
	return len(ids), nil
}

func (r *Reconciler) emit(ctx context.Context, channel string, order *OrderRecord, identity string) {
	payload, err := json.Marshal(OrderEventMsg{
		Type:         channel,
		OrderID:      order.ID,
		BookID:       order.BookID,
		UserIdentity: identity,
		AmountCents:  order.AmountCents,
		OccurredAt:   r.now(),
	})
	if err != nil {
		return
	}
	_ = r.out.Insert(ctx, channel, payload)
}
