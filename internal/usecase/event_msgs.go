package usecase

import "time"

// Outbox channels drained to RabbitMQ.
const (
	ChannelOrderCreated = "order.created"
	ChannelOrderPaid    = "order.paid"
	ChannelOrderExpired = "order.expired"
)

// OrderEventMsg is the payload published for every lifecycle event.
type OrderEventMsg struct {
	Type         string    `json:"type"`
	OrderID      string    `json:"orderId"`
	BookID       string    `json:"bookId"`
	UserIdentity string    `json:"userIdentity"`
	AmountCents  int64     `json:"amountCents"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// PaymentConfirmedMsg arrives from the payment gateway on Kafka and from the
// ops queue on RabbitMQ. transferCode is the sole reconciliation key.
type PaymentConfirmedMsg struct {
	TransferCode string    `json:"transferCode"`
	AmountCents  int64     `json:"amountCents"`
	ConfirmedAt  time.Time `json:"confirmedAt"`
}
