package queue

import (
	"context"
	"errors"

	"github.com/ebooklane/checkout-api/internal/usecase"
)

// ManualConfirmationHandler feeds ops-entered confirmations from the
// RabbitMQ queue into the reconciler. Intended for use with
// queue.JSONHandler[usecase.PaymentConfirmedMsg].
type ManualConfirmationHandler struct {
	Reconciler *usecase.Reconciler
}

func NewManualConfirmationHandler(rec *usecase.Reconciler) *ManualConfirmationHandler {
	return &ManualConfirmationHandler{Reconciler: rec}
}

func (h *ManualConfirmationHandler) HandleConfirm(ctx context.Context, msg usecase.PaymentConfirmedMsg) error {
	err := h.Reconciler.Confirm(ctx, usecase.Confirmation{
		TransferCode: msg.TransferCode,
		AmountCents:  msg.AmountCents,
		ReceivedAt:   msg.ConfirmedAt,
	})
	// Domain outcomes are final for the queue: requeueing an unknown code or
	// a lost race would spin forever. Only infrastructure errors bounce.
	if errors.Is(err, usecase.ErrNotFound) ||
		errors.Is(err, usecase.ErrAmountMismatch) ||
		errors.Is(err, usecase.ErrInvalidState) {
		return nil
	}
	return err
}
