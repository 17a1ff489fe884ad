package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ebooklane/checkout-api/internal/adapter/http/middleware"
	domain "github.com/ebooklane/checkout-api/internal/entity"
	"github.com/ebooklane/checkout-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	create *usecase.CreateOrder
	cancel *usecase.CancelOrder
	query  *usecase.OrderQuery
}

func NewOrderHandler(create *usecase.CreateOrder, cancel *usecase.CancelOrder, query *usecase.OrderQuery) *OrderHandler {
	return &OrderHandler{create: create, cancel: cancel, query: query}
}

type createOrderReq struct {
	BookID string `json:"bookId" binding:"required"`

	Buyer struct {
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"buyer"`

	CouponCode string `json:"couponCode"`
}

type paymentResp struct {
	AmountCents  int64     `json:"amountCents"`
	TransferCode string    `json:"transferCode"`
	Beneficiary  any       `json:"beneficiary"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type orderResp struct {
	OrderID       string `json:"orderId"`
	BookID        string `json:"bookId"`
	State         string `json:"state"`
	PriceCents    int64  `json:"priceCents"`
	DiscountCents int64  `json:"discountCents"`
	AmountCents   int64  `json:"amountCents"`
	CouponCode    string `json:"couponCode,omitempty"`
}

// CreateOrder places an order for one book. The authenticated session's
// identity, when present, wins over the email in the body.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	idemKey := c.GetHeader("X-Idempotency-Key")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	out, err := h.create.Execute(ctx, usecase.CreateOrderInput{
		BookID: req.BookID,
		Buyer: domain.Buyer{
			UserID: middleware.Identity(c),
			Email:  req.Buyer.Email,
			Phone:  req.Buyer.Phone,
		},
		CouponCode:     req.CouponCode,
		IdempotencyKey: idemKey,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order": toOrderResp(out.Order),
		"payment": paymentResp{
			AmountCents:  out.Payment.AmountCents,
			TransferCode: out.Payment.TransferCode,
			Beneficiary:  out.Payment.Beneficiary,
			ExpiresAt:    out.Payment.ExpiresAt,
		},
	})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	rec, err := h.query.Get(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(rec))
}

// GetOrderStatus is the polling endpoint; the cache usually answers it.
func (h *OrderHandler) GetOrderStatus(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	state, err := h.query.Status(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orderId": c.Param("id"), "state": state})
}

type cancelOrderReq struct {
	// Guest buyers identify themselves by the email used at checkout.
	Email string `json:"email"`
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	var req cancelOrderReq
	_ = c.ShouldBindJSON(&req) // body is optional for signed-in sessions

	actor := middleware.Identity(c)
	if actor == "" {
		actor = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if actor == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "buyer_identity_required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.cancel.Execute(ctx, c.Param("id"), actor, false); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orderId": c.Param("id"), "state": string(domain.StateCancelled)})
}

// ListOrders serves the back office; filterable by state.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	recs, err := h.query.List(ctx, usecase.OrderFilter{
		State:  c.Query("state"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]orderResp, 0, len(recs))
	for _, r := range recs {
		out = append(out, toOrderResp(r))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

// AdminCancelOrder skips the ownership check.
func (h *OrderHandler) AdminCancelOrder(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.cancel.Execute(ctx, c.Param("id"), "", true); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orderId": c.Param("id"), "state": string(domain.StateCancelled)})
}

func toOrderResp(rec *usecase.OrderRecord) orderResp {
	return orderResp{
		OrderID:       rec.ID,
		BookID:        rec.BookID,
		State:         rec.State,
		PriceCents:    rec.PriceCents,
		DiscountCents: rec.DiscountCents,
		AmountCents:   rec.AmountCents,
		CouponCode:    rec.CouponCode,
	}
}
