package http

import (
	"github.com/ebooklane/checkout-api/internal/adapter/http/middleware"
	"github.com/ebooklane/checkout-api/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	Orders       *OrderHandler
	Entitlements *EntitlementHandler
	Admin        *AdminHandler
	Webhooks     *WebhookHandler
	Token        *TokenHandler
	Authz        *middleware.Authz
	Signature    *middleware.SignatureVerify
	ExposeTest   bool // mounts the webhook test-signing endpoint
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/token", d.Token.IssueToken)

	if d.ExposeTest && d.Signature != nil {
		r.POST("/_test/sign-webhook", d.Signature.SignForTest())
	}

	v1 := r.Group("/v1")
	{
		v1.POST("/orders", d.Authz.Require("orders.write"), d.Orders.CreateOrder)
		v1.GET("/orders/:id", d.Authz.Require("orders.read"), d.Orders.GetOrder)
		v1.GET("/orders/:id/status", d.Authz.Require("orders.read"), d.Orders.GetOrderStatus)
		v1.POST("/orders/:id/cancel", d.Authz.Require("orders.write"), d.Orders.CancelOrder)

		v1.GET("/me/entitlements", d.Authz.Require("entitlements.read"), d.Entitlements.ListMine)
		v1.POST("/downloads", d.Authz.Require("downloads.write"), d.Entitlements.AuthorizeDownload)

		if d.Signature != nil {
			v1.POST("/webhooks/payment", d.Signature.Verify(), d.Webhooks.PaymentConfirmed)
		}
	}

	admin := r.Group("/v1/admin")
	{
		admin.GET("/orders", d.Authz.Require("admin.orders"), d.Orders.ListOrders)
		admin.POST("/orders/:id/cancel", d.Authz.Require("admin.orders"), d.Orders.AdminCancelOrder)

		admin.POST("/coupons", d.Authz.Require("admin.coupons"), d.Admin.CreateCoupon)
		admin.GET("/coupons", d.Authz.Require("admin.coupons"), d.Admin.ListCoupons)
		admin.GET("/coupons/:code", d.Authz.Require("admin.coupons"), d.Admin.GetCoupon)
		admin.PATCH("/coupons/:code", d.Authz.Require("admin.coupons"), d.Admin.UpdateCoupon)
		admin.DELETE("/coupons/:code", d.Authz.Require("admin.coupons"), d.Admin.DeleteCoupon)
	}

	return r
}
