package http

import (
	"errors"
	"net/http"

	domain "github.com/ebooklane/checkout-api/internal/entity"
	"github.com/ebooklane/checkout-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

// writeError maps usecase error kinds onto HTTP statuses. Anything not in
// the table is an infrastructure fault the caller should retry.
func writeError(c *gin.Context, err error) {
	type mapping struct {
		target error
		status int
		code   string
	}
	table := []mapping{
		{usecase.ErrNotFound, http.StatusNotFound, "not_found"},
		{usecase.ErrForbidden, http.StatusForbidden, "forbidden"},
		{usecase.ErrDuplicate, http.StatusConflict, "duplicate_request"},
		{usecase.ErrInvalidState, http.StatusConflict, "invalid_state"},
		{usecase.ErrCouponInactive, http.StatusUnprocessableEntity, "coupon_inactive"},
		{usecase.ErrCouponExpired, http.StatusUnprocessableEntity, "coupon_expired"},
		{usecase.ErrCouponExhausted, http.StatusUnprocessableEntity, "coupon_exhausted"},
		{usecase.ErrBookUnavailable, http.StatusUnprocessableEntity, "book_unavailable"},
		{usecase.ErrAmountMismatch, http.StatusUnprocessableEntity, "amount_mismatch"},
		{usecase.ErrCodeGeneration, http.StatusServiceUnavailable, "try_again"},
		{domain.ErrNoBuyerIdentity, http.StatusBadRequest, "buyer_identity_required"},
		{domain.ErrInvalidDiscountKind, http.StatusBadRequest, "invalid_discount_kind"},
		{domain.ErrInvalidDiscountValue, http.StatusBadRequest, "invalid_discount_value"},
		{domain.ErrInvalidUsageLimit, http.StatusUnprocessableEntity, "usage_limit_below_count"},
	}
	for _, m := range table {
		if errors.Is(err, m.target) {
			c.JSON(m.status, gin.H{"error": m.code})
			return
		}
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "unavailable"})
}
