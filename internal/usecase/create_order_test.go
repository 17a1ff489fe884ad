package usecase

import (
	"context"
	"testing"
	"time"

	domain "github.com/ebooklane/checkout-api/internal/entity"
	"github.com/stretchr/testify/require"
)

func testCatalog() *fakeCatalog {
	return &fakeCatalog{
		books: map[string]*domain.Book{
			"bk-1": {ID: "bk-1", Title: "Distributed Systems", PriceCents: 100000, Status: domain.BookPublished},
			"bk-2": {ID: "bk-2", Title: "Unfinished Draft", PriceCents: 5000, Status: domain.BookDraft},
		},
		files: map[string]*domain.BookFile{
			"f-1": {ID: "f-1", BookID: "bk-1", FileType: "epub"},
		},
	}
}

type createOrderEnv struct {
	uc      *CreateOrder
	repo    *fakeOrderRepo
	coupons *fakeCouponRepo
	idem    *fakeIdemStore
	outbox  *fakeOutbox
	cache   *fakeStatusCache
}

func newCreateOrderEnv(policy CheckoutPolicy, coupons *fakeCouponRepo) *createOrderEnv {
	if policy.PaymentWindow == 0 {
		policy.PaymentWindow = 48 * time.Hour
	}
	repo := newFakeOrderRepo()
	repo.coupons = coupons
	idem := newFakeIdemStore()
	outbox := &fakeOutbox{}
	cache := newFakeStatusCache()
	uc := NewCreateOrder(testCatalog(), NewPricer(coupons), repo, idem, outbox, cache, policy)
	return &createOrderEnv{uc: uc, repo: repo, coupons: coupons, idem: idem, outbox: outbox, cache: cache}
}

func TestCreateOrder_HappyPath(t *testing.T) {
	env := newCreateOrderEnv(CheckoutPolicy{}, newFakeCouponRepo())

	out, err := env.uc.Execute(context.Background(), CreateOrderInput{
		BookID: "bk-1",
		Buyer:  domain.Buyer{Email: "Reader@Example.com"},
	})
	require.NoError(t, err)
	require.Equal(t, string(domain.StatePendingPayment), out.Order.State)
	require.Equal(t, int64(100000), out.Payment.AmountCents)
	require.Regexp(t, `^BK-[ACDEFGHJKLMNPQRTUVWXYZ234679]{10}$`, out.Payment.TransferCode)
	require.Equal(t, out.Order.CreatedAt.Add(48*time.Hour), out.Order.ExpiresAt)
	require.Equal(t, []string{ChannelOrderCreated}, env.outbox.channels())

	stored, err := env.repo.GetByID(context.Background(), out.Order.ID)
	require.NoError(t, err)
	require.Equal(t, "reader@example.com", stored.IdentityKey())
}

func TestCreateOrder_NoIdentity(t *testing.T) {
	env := newCreateOrderEnv(CheckoutPolicy{}, newFakeCouponRepo())

	_, err := env.uc.Execute(context.Background(), CreateOrderInput{BookID: "bk-1"})
	require.ErrorIs(t, err, domain.ErrNoBuyerIdentity)
}

func TestCreateOrder_BookNotPurchasable(t *testing.T) {
	env := newCreateOrderEnv(CheckoutPolicy{}, newFakeCouponRepo())

	_, err := env.uc.Execute(context.Background(), CreateOrderInput{
		BookID: "bk-2",
		Buyer:  domain.Buyer{UserID: "u-1"},
	})
	require.ErrorIs(t, err, ErrBookUnavailable)

	_, err = env.uc.Execute(context.Background(), CreateOrderInput{
		BookID: "bk-404",
		Buyer:  domain.Buyer{UserID: "u-1"},
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateOrder_CouponConsumedInsideCreate(t *testing.T) {
	coupons := newFakeCouponRepo(&domain.Coupon{
		Code: "LAST", Kind: domain.DiscountPercentage, Value: 10, Active: true, UsageLimit: 1,
	})
	env := newCreateOrderEnv(CheckoutPolicy{}, coupons)

	out, err := env.uc.Execute(context.Background(), CreateOrderInput{
		BookID:     "bk-1",
		Buyer:      domain.Buyer{UserID: "u-1"},
		CouponCode: "last",
	})
	require.NoError(t, err)
	require.Equal(t, int64(90000), out.Order.AmountCents)
	require.Equal(t, "LAST", out.Order.CouponCode)

	// The single use is gone; the next buyer loses at insert time even
	// though the quote itself would still have passed a stale snapshot.
	_, err = env.uc.Execute(context.Background(), CreateOrderInput{
		BookID:     "bk-1",
		Buyer:      domain.Buyer{UserID: "u-2"},
		CouponCode: "LAST",
	})
	require.ErrorIs(t, err, ErrCouponExhausted)
}

func TestCreateOrder_TransferCodeCollisionRetries(t *testing.T) {
	env := newCreateOrderEnv(CheckoutPolicy{}, newFakeCouponRepo())

	// Every insert collides; the bounded retry loop must give up cleanly.
	env.repo.failCreateWith = ErrTransferCodeTaken

	_, err := env.uc.Execute(context.Background(), CreateOrderInput{
		BookID: "bk-1",
		Buyer:  domain.Buyer{UserID: "u-1"},
	})
	require.ErrorIs(t, err, ErrCodeGeneration)
}

func TestCreateOrder_Idempotency(t *testing.T) {
	env := newCreateOrderEnv(CheckoutPolicy{}, newFakeCouponRepo())

	in := CreateOrderInput{
		BookID:         "bk-1",
		Buyer:          domain.Buyer{UserID: "u-1"},
		IdempotencyKey: "req-abc",
	}
	first, err := env.uc.Execute(context.Background(), in)
	require.NoError(t, err)

	second, err := env.uc.Execute(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, first.Order.ID, second.Order.ID)
	require.Equal(t, first.Payment.TransferCode, second.Payment.TransferCode)
	require.Len(t, env.repo.orders, 1)
}

func TestCreateOrder_ZeroAmountAutoConfirm(t *testing.T) {
	coupons := newFakeCouponRepo(&domain.Coupon{
		Code: "FREE", Kind: domain.DiscountPercentage, Value: 100, Active: true,
	})
	env := newCreateOrderEnv(CheckoutPolicy{AutoConfirmZeroAmount: true}, coupons)

	out, err := env.uc.Execute(context.Background(), CreateOrderInput{
		BookID:     "bk-1",
		Buyer:      domain.Buyer{UserID: "u-1"},
		CouponCode: "FREE",
	})
	require.NoError(t, err)
	require.Equal(t, string(domain.StatePaid), out.Order.State)
	require.Equal(t, int64(0), out.Payment.AmountCents)
	require.Equal(t, []string{ChannelOrderCreated, ChannelOrderPaid}, env.outbox.channels())

	ent, err := env.repo.grants.Get(context.Background(), "u-1", "bk-1")
	require.NoError(t, err)
	require.Equal(t, out.Order.ID, ent.SourceOrderID)
}

func TestCreateOrder_ZeroAmountStaysPendingByDefault(t *testing.T) {
	coupons := newFakeCouponRepo(&domain.Coupon{
		Code: "FREE", Kind: domain.DiscountPercentage, Value: 100, Active: true,
	})
	env := newCreateOrderEnv(CheckoutPolicy{}, coupons)

	out, err := env.uc.Execute(context.Background(), CreateOrderInput{
		BookID:     "bk-1",
		Buyer:      domain.Buyer{UserID: "u-1"},
		CouponCode: "FREE",
	})
	require.NoError(t, err)
	require.Equal(t, string(domain.StatePendingPayment), out.Order.State)

	_, err = env.repo.grants.Get(context.Background(), "u-1", "bk-1")
	require.ErrorIs(t, err, ErrNotFound)
}
