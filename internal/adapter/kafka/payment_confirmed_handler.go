package kafka

import (
	"context"
	"errors"

	"github.com/ebooklane/checkout-api/internal/usecase"
)

// PaymentConfirmedHandler bridges gateway confirmation events into the
// reconciler. One confirmation per message; the transfer code is the only
// matching key.
type PaymentConfirmedHandler struct {
	Reconciler *usecase.Reconciler
}

func NewPaymentConfirmedHandler(rec *usecase.Reconciler) *PaymentConfirmedHandler {
	return &PaymentConfirmedHandler{Reconciler: rec}
}

func (h *PaymentConfirmedHandler) Handle(ctx context.Context, ev usecase.PaymentConfirmedMsg) error {
	err := h.Reconciler.Confirm(ctx, usecase.Confirmation{
		TransferCode: ev.TransferCode,
		AmountCents:  ev.AmountCents,
		ReceivedAt:   ev.ConfirmedAt,
	})
	// Terminal domain outcomes must commit the offset; only infrastructure
	// failures are worth replaying.
	if errors.Is(err, usecase.ErrNotFound) ||
		errors.Is(err, usecase.ErrAmountMismatch) ||
		errors.Is(err, usecase.ErrInvalidState) {
		return nil
	}
	return err
}
