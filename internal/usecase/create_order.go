package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	domain "github.com/ebooklane/checkout-api/internal/entity"
	"github.com/google/uuid"
)

// Beneficiary is the account the buyer wires money to. It comes from
// configuration, not from the engine.
type Beneficiary struct {
	Name     string `json:"name"`
	Account  string `json:"account"`
	BankName string `json:"bankName"`
}

// CheckoutPolicy carries the configured knobs the creation flow depends on.
type CheckoutPolicy struct {
	PaymentWindow         time.Duration
	TransferCodeAttempts  int
	AutoConfirmZeroAmount bool
	Beneficiary           Beneficiary
}

type CreateOrderInput struct {
	BookID         string
	Buyer          domain.Buyer
	CouponCode     string
	IdempotencyKey string
}

// TransferInstruction is what the buyer needs to complete the bank transfer.
type TransferInstruction struct {
	AmountCents  int64
	TransferCode string
	Beneficiary  Beneficiary
	ExpiresAt    time.Time
}

type CreateOrderOutput struct {
	Order   *OrderRecord
	Payment TransferInstruction
}

type CreateOrder struct {
	catalog Catalog
	pricer  *Pricer
	repo    OrderRepo
	idem    IdempotencyStore
	out     EventOutbox
	cache   OrderCache
	policy  CheckoutPolicy

	now func() time.Time // test seam
}

func NewCreateOrder(catalog Catalog, pricer *Pricer, repo OrderRepo, idem IdempotencyStore, out EventOutbox, cache OrderCache, policy CheckoutPolicy) *CreateOrder {
	if policy.TransferCodeAttempts <= 0 {
		policy.TransferCodeAttempts = 5
	}
	return &CreateOrder{
		catalog: catalog,
		pricer:  pricer,
		repo:    repo,
		idem:    idem,
		out:     out,
		cache:   cache,
		policy:  policy,
		now:     time.Now,
	}
}

func (uc *CreateOrder) Execute(ctx context.Context, in CreateOrderInput) (CreateOrderOutput, error) {
	if err := in.Buyer.Validate(); err != nil {
		return CreateOrderOutput{}, err
	}
	identity := in.Buyer.IdentityKey()

	// Fast path: idempotency recall
	if in.IdempotencyKey != "" {
		if id, ok, _ := uc.idem.Recall(ctx, identity, in.IdempotencyKey); ok {
			existing, err := uc.repo.GetByID(ctx, id)
			if err != nil {
				return CreateOrderOutput{}, err
			}
			return uc.output(existing), nil
		}
		ok, err := uc.idem.TryLock(ctx, identity, in.IdempotencyKey)
		if err != nil {
			return CreateOrderOutput{}, err
		}
		if !ok {
			return CreateOrderOutput{}, ErrDuplicate
		}
	}

	book, err := uc.catalog.GetBook(ctx, in.BookID)
	if err != nil {
		return CreateOrderOutput{}, err
	}
	if !book.Purchasable() {
		return CreateOrderOutput{}, ErrBookUnavailable
	}

	now := uc.now()
	quote, err := uc.pricer.Quote(ctx, book.PriceCents, in.CouponCode, now)
	if err != nil {
		return CreateOrderOutput{}, err
	}

	rec := &OrderRecord{
		ID:            uuid.NewString(),
		BookID:        book.ID,
		UserID:        in.Buyer.UserID,
		BuyerEmail:    in.Buyer.Email,
		BuyerPhone:    in.Buyer.Phone,
		PriceCents:    quote.PriceCents,
		CouponCode:    quote.CouponCode,
		DiscountCents: quote.DiscountCents,
		AmountCents:   quote.AmountCents,
		State:         string(domain.StatePendingPayment),
		CreatedAt:     now,
		ExpiresAt:     now.Add(uc.policy.PaymentWindow),
	}

	// Insert with a fresh transfer code; regenerate on collision, bounded.
	// The coupon usage increment rides in the same transaction, so a lost
	// race on the last use surfaces here as ErrCouponExhausted.
	if err := uc.createWithCode(ctx, rec); err != nil {
		return CreateOrderOutput{}, err
	}
	ordersCreated.Inc()

	// A fully discounted order skips the transfer step only when policy
	// says so; the PAID transition still runs through the one guarded path.
	if rec.AmountCents == 0 && uc.policy.AutoConfirmZeroAmount {
		won, err := uc.repo.MarkPaid(ctx, rec.ID, EntitlementRecord{
			UserIdentity:  identity,
			BookID:        rec.BookID,
			SourceOrderID: rec.ID,
			GrantedAt:     now,
		})
		if err != nil {
			return CreateOrderOutput{}, err
		}
		if won {
			rec.State = string(domain.StatePaid)
			ordersPaid.Inc()
		}
	}

	uc.publish(ctx, ChannelOrderCreated, rec, identity)
	if rec.State == string(domain.StatePaid) {
		uc.publish(ctx, ChannelOrderPaid, rec, identity)
	}
	_ = uc.cache.SetStatus(ctx, rec.ID, rec.State)
	if in.IdempotencyKey != "" {
		_ = uc.idem.Remember(ctx, identity, in.IdempotencyKey, rec.ID)
	}

	return uc.output(rec), nil
}

func (uc *CreateOrder) createWithCode(ctx context.Context, rec *OrderRecord) error {
	for attempt := 0; attempt < uc.policy.TransferCodeAttempts; attempt++ {
		code, err := newTransferCode()
		if err != nil {
			return err
		}
		rec.TransferCode = code
		err = uc.repo.Create(ctx, rec)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrTransferCodeTaken) {
			continue
		}
		return err
	}
	return ErrCodeGeneration
}

func (uc *CreateOrder) publish(ctx context.Context, channel string, rec *OrderRecord, identity string) {
	payload, err := json.Marshal(OrderEventMsg{
		Type:         channel,
		OrderID:      rec.ID,
		BookID:       rec.BookID,
		UserIdentity: identity,
		AmountCents:  rec.AmountCents,
		OccurredAt:   uc.now(),
	})
	if err != nil {
		return
	}
	_ = uc.out.Insert(ctx, channel, payload) // best effort; drainer retries delivery, not insertion
}

func (uc *CreateOrder) output(rec *OrderRecord) CreateOrderOutput {
	return CreateOrderOutput{
		Order: rec,
		Payment: TransferInstruction{
			AmountCents:  rec.AmountCents,
			TransferCode: rec.TransferCode,
			Beneficiary:  uc.policy.Beneficiary,
			ExpiresAt:    rec.ExpiresAt,
		},
	}
}
