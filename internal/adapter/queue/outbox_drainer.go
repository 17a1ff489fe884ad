package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/ebooklane/checkout-api/internal/adapter/repo"
)

// OutboxDrainer moves pending outbox rows to RabbitMQ on a ticker. Delivery
// is at-least-once: a row is marked SENT only after a successful publish,
// and failures back off via next_attempt_at.
type OutboxDrainer struct {
	Outbox   *repo.MySQLOutboxRepo
	Producer *RabbitProducer
	Log      *slog.Logger

	Interval  time.Duration
	BatchSize int
	Backoff   time.Duration
}

func NewOutboxDrainer(outbox *repo.MySQLOutboxRepo, producer *RabbitProducer, log *slog.Logger) *OutboxDrainer {
	return &OutboxDrainer{
		Outbox:    outbox,
		Producer:  producer,
		Log:       log,
		Interval:  2 * time.Second,
		BatchSize: 100,
		Backoff:   30 * time.Second,
	}
}

// Start runs the drain loop until ctx is cancelled. Non-blocking.
func (d *OutboxDrainer) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(d.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				d.Log.Info("outbox drainer stopped")
				return
			case <-ticker.C:
				d.drainOnce(ctx)
			}
		}
	}()
}

func (d *OutboxDrainer) drainOnce(ctx context.Context) {
	rows, err := d.Outbox.FetchDue(ctx, d.BatchSize)
	if err != nil {
		d.Log.Error("outbox fetch failed", "error", err)
		return
	}
	for _, row := range rows {
		if err := d.Producer.Publish(ctx, row.Channel, row.Payload); err != nil {
			d.Log.Error("outbox publish failed", "outbox_id", row.ID, "channel", row.Channel, "error", err)
			_ = d.Outbox.MarkRetry(ctx, row.ID, time.Now().Add(d.Backoff))
			continue
		}
		if err := d.Outbox.MarkSent(ctx, row.ID); err != nil {
			// Publish succeeded but the mark failed; the row will be sent
			// again. Consumers must tolerate duplicates.
			d.Log.Warn("outbox mark-sent failed", "outbox_id", row.ID, "error", err)
		}
	}
}
