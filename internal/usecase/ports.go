package usecase

import (
	"context"
	"time"

	domain "github.com/ebooklane/checkout-api/internal/entity"
)

// Persistence shapes (kept out of domain).

type OrderRecord struct {
	ID            string
	BookID        string
	UserID        string // empty for guest checkout
	BuyerEmail    string
	BuyerPhone    string
	PriceCents    int64
	CouponCode    string // empty when no coupon was applied
	DiscountCents int64
	AmountCents   int64
	TransferCode  string
	State         string
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// IdentityKey mirrors domain.Buyer.IdentityKey for a stored order.
func (o *OrderRecord) IdentityKey() string {
	return domain.Buyer{UserID: o.UserID, Email: o.BuyerEmail}.IdentityKey()
}

type EntitlementRecord struct {
	UserIdentity  string
	BookID        string
	SourceOrderID string
	GrantedAt     time.Time
}

type OrderFilter struct {
	State  string // empty = all
	Limit  int
	Offset int
}

// OrderRepo owns the orders table. Every state transition goes through a
// conditional update guarded on the current state; callers learn from the
// bool whether they won the transition.
type OrderRepo interface {
	// Create inserts the order in PENDING_PAYMENT and, when o.CouponCode is
	// set, consumes one coupon use in the same transaction. Returns
	// ErrCouponExhausted when the guarded increment matches no row and
	// ErrTransferCodeTaken on a transfer code collision.
	Create(ctx context.Context, o *OrderRecord) error
	GetByID(ctx context.Context, id string) (*OrderRecord, error)
	GetByTransferCode(ctx context.Context, code string) (*OrderRecord, error)
	UpdateStateIf(ctx context.Context, id string, from, to domain.State) (bool, error)
	// MarkPaid transitions PENDING_PAYMENT -> PAID and grants the entitlement
	// in one transaction. false means the conditional update lost (order no
	// longer pending); nothing is written in that case.
	MarkPaid(ctx context.Context, id string, grant EntitlementRecord) (bool, error)
	// ExpirePastDue moves every pending order with expires_at < now to
	// EXPIRED and returns the ids that actually transitioned.
	ExpirePastDue(ctx context.Context, now time.Time) ([]string, error)
	List(ctx context.Context, f OrderFilter) ([]*OrderRecord, error)
}

type CouponRepo interface {
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	Create(ctx context.Context, c *domain.Coupon) error
	Update(ctx context.Context, c *domain.Coupon) error
	Delete(ctx context.Context, code string) error
	List(ctx context.Context, limit, offset int) ([]*domain.Coupon, error)
}

type EntitlementRepo interface {
	// Grant is idempotent: an existing (user, book) row is left untouched,
	// including its source_order_id.
	Grant(ctx context.Context, e EntitlementRecord) error
	Get(ctx context.Context, userIdentity, bookID string) (*EntitlementRecord, error)
	ListByUser(ctx context.Context, userIdentity string) ([]*EntitlementRecord, error)
}

// Catalog is the consumed collaborator for book metadata. Both lookups
// return ErrNotFound for unknown ids.
type Catalog interface {
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	GetBookFile(ctx context.Context, id string) (*domain.BookFile, error)
}

// DownloadScope is what a token authorizes, exactly one (user, book, file).
type DownloadScope struct {
	UserIdentity string    `json:"userIdentity"`
	BookID       string    `json:"bookId"`
	FileID       string    `json:"fileId"`
	IssuedAt     time.Time `json:"issuedAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// TokenStore holds download tokens for the storage/CDN collaborator to
// redeem. Entries vanish on their own after ttl.
type TokenStore interface {
	Put(ctx context.Context, token string, scope DownloadScope, ttl time.Duration) error
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

// OrderCache is a best-effort status cache in front of the status query.
type OrderCache interface {
	SetStatus(ctx context.Context, orderID, status string) error
	GetStatus(ctx context.Context, orderID string) (string, bool, error)
}

// EventOutbox records lifecycle events for the drainer to publish.
type EventOutbox interface {
	Insert(ctx context.Context, channel string, payload []byte) error
}
