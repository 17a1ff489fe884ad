package http

import (
	"context"
	"net/http"
	"time"

	"github.com/ebooklane/checkout-api/internal/adapter/http/middleware"
	"github.com/ebooklane/checkout-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

type EntitlementHandler struct {
	entitlements *usecase.Entitlements
	downloads    *usecase.AuthorizeDownload
}

func NewEntitlementHandler(entitlements *usecase.Entitlements, downloads *usecase.AuthorizeDownload) *EntitlementHandler {
	return &EntitlementHandler{entitlements: entitlements, downloads: downloads}
}

type entitlementResp struct {
	BookID        string    `json:"bookId"`
	SourceOrderID string    `json:"sourceOrderId"`
	GrantedAt     time.Time `json:"grantedAt"`
}

// ListMine returns the caller's library, newest grant first.
func (h *EntitlementHandler) ListMine(c *gin.Context) {
	identity := middleware.Identity(c)
	if identity == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "buyer_identity_required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	recs, err := h.entitlements.List(ctx, identity)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]entitlementResp, 0, len(recs))
	for _, r := range recs {
		out = append(out, entitlementResp{
			BookID:        r.BookID,
			SourceOrderID: r.SourceOrderID,
			GrantedAt:     r.GrantedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"entitlements": out})
}

type downloadReq struct {
	BookID string `json:"bookId" binding:"required"`
	FileID string `json:"fileId" binding:"required"`
}

// AuthorizeDownload mints a short-lived token for one file of one owned
// book. Not entitled and not purchased look identical from outside.
func (h *EntitlementHandler) AuthorizeDownload(c *gin.Context) {
	identity := middleware.Identity(c)
	if identity == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "buyer_identity_required"})
		return
	}

	var req downloadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	grant, err := h.downloads.Execute(ctx, identity, req.BookID, req.FileID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token":     grant.Token,
		"expiresAt": grant.ExpiresAt,
	})
}
