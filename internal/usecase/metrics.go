package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_orders_created_total",
		Help: "Orders successfully created",
	})

	ordersPaid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_orders_paid_total",
		Help: "Orders transitioned to PAID",
	})

	ordersExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_orders_expired_total",
		Help: "Orders expired by the payment-window sweep",
	})

	confirmationsUnmatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_confirmations_unmatched_total",
		Help: "Payment confirmations that did not result in a PAID transition",
	}, []string{"reason"})

	downloadTokensIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_download_tokens_issued_total",
		Help: "Download authorization tokens issued",
	})
)
