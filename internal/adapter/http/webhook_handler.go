package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ebooklane/checkout-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

// WebhookHandler ingests signed payment confirmations pushed by the bank
// partner. Signature verification happens in middleware before this runs.
type WebhookHandler struct {
	rec *usecase.Reconciler
}

func NewWebhookHandler(rec *usecase.Reconciler) *WebhookHandler {
	return &WebhookHandler{rec: rec}
}

// PaymentConfirmed applies one confirmation. Confirmations that cannot
// change anything anymore (unknown code, wrong amount, order already
// settled) are acknowledged with 200 so the partner stops retrying; the
// reconciler has already logged and counted them.
func (h *WebhookHandler) PaymentConfirmed(c *gin.Context) {
	var msg usecase.PaymentConfirmedMsg
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	if msg.TransferCode == "" || msg.AmountCents <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	if msg.ConfirmedAt.IsZero() {
		msg.ConfirmedAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	err := h.rec.Confirm(ctx, usecase.Confirmation{
		TransferCode: msg.TransferCode,
		AmountCents:  msg.AmountCents,
		ReceivedAt:   msg.ConfirmedAt,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"result": "applied"})
	case errors.Is(err, usecase.ErrNotFound),
		errors.Is(err, usecase.ErrAmountMismatch),
		errors.Is(err, usecase.ErrInvalidState):
		c.JSON(http.StatusOK, gin.H{"result": "ignored"})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "unavailable"})
	}
}
