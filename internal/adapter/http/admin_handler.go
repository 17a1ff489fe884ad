package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	domain "github.com/ebooklane/checkout-api/internal/entity"
	"github.com/ebooklane/checkout-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

// AdminHandler is the back-office coupon surface.
type AdminHandler struct {
	coupons *usecase.CouponAdmin
}

func NewAdminHandler(coupons *usecase.CouponAdmin) *AdminHandler {
	return &AdminHandler{coupons: coupons}
}

type couponReq struct {
	Code       string     `json:"code" binding:"required"`
	Kind       string     `json:"kind" binding:"required"`
	Value      int64      `json:"value" binding:"required"`
	UsageLimit int64      `json:"usageLimit"`
	ExpiresAt  *time.Time `json:"expiresAt"`
	Active     bool       `json:"active"`
}

type couponResp struct {
	Code       string     `json:"code"`
	Kind       string     `json:"kind"`
	Value      int64      `json:"value"`
	UsageLimit int64      `json:"usageLimit"`
	UsageCount int64      `json:"usageCount"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	Active     bool       `json:"active"`
}

func (h *AdminHandler) CreateCoupon(c *gin.Context) {
	var req couponReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	coupon, err := h.coupons.Create(ctx, usecase.CouponInput{
		Code:       req.Code,
		Kind:       domain.DiscountKind(req.Kind),
		Value:      req.Value,
		UsageLimit: req.UsageLimit,
		ExpiresAt:  req.ExpiresAt,
		Active:     req.Active,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCouponResp(coupon))
}

type couponUpdateReq struct {
	Value       *int64     `json:"value"`
	UsageLimit  *int64     `json:"usageLimit"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	ClearExpiry bool       `json:"clearExpiry"`
	Active      *bool      `json:"active"`
}

func (h *AdminHandler) UpdateCoupon(c *gin.Context) {
	var req couponUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	coupon, err := h.coupons.Update(ctx, c.Param("code"), usecase.CouponUpdate{
		Value:       req.Value,
		UsageLimit:  req.UsageLimit,
		ExpiresAt:   req.ExpiresAt,
		ClearExpiry: req.ClearExpiry,
		Active:      req.Active,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCouponResp(coupon))
}

func (h *AdminHandler) GetCoupon(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	coupon, err := h.coupons.Get(ctx, c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCouponResp(coupon))
}

func (h *AdminHandler) DeleteCoupon(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.coupons.Delete(ctx, c.Param("code")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ListCoupons(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	coupons, err := h.coupons.List(ctx, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]couponResp, 0, len(coupons))
	for _, cp := range coupons {
		out = append(out, toCouponResp(cp))
	}
	c.JSON(http.StatusOK, gin.H{"coupons": out})
}

func toCouponResp(cp *domain.Coupon) couponResp {
	return couponResp{
		Code:       cp.Code,
		Kind:       string(cp.Kind),
		Value:      cp.Value,
		UsageLimit: cp.UsageLimit,
		UsageCount: cp.UsageCount,
		ExpiresAt:  cp.ExpiresAt,
		Active:     cp.Active,
	}
}
