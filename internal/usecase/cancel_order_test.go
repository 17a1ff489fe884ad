package usecase

import (
	"context"
	"testing"
	"time"

	domain "github.com/ebooklane/checkout-api/internal/entity"
	"github.com/stretchr/testify/require"
)

func TestCancelOrder_Owner(t *testing.T) {
	repo := newFakeOrderRepo()
	cache := newFakeStatusCache()
	pendingOrder(t, repo, "o-1", "BK-AAAAAAAAAA", 100, time.Now().Add(time.Hour))

	uc := NewCancelOrder(repo, cache)
	require.NoError(t, uc.Execute(context.Background(), "o-1", "u-1", false))

	got, _ := repo.GetByID(context.Background(), "o-1")
	require.Equal(t, string(domain.StateCancelled), got.State)
	status, ok, _ := cache.GetStatus(context.Background(), "o-1")
	require.True(t, ok)
	require.Equal(t, string(domain.StateCancelled), status)
}

func TestCancelOrder_NotOwner(t *testing.T) {
	repo := newFakeOrderRepo()
	pendingOrder(t, repo, "o-1", "BK-AAAAAAAAAA", 100, time.Now().Add(time.Hour))

	uc := NewCancelOrder(repo, newFakeStatusCache())
	err := uc.Execute(context.Background(), "o-1", "someone-else", false)
	require.ErrorIs(t, err, ErrForbidden)

	got, _ := repo.GetByID(context.Background(), "o-1")
	require.Equal(t, string(domain.StatePendingPayment), got.State)
}

func TestCancelOrder_AdminSkipsOwnership(t *testing.T) {
	repo := newFakeOrderRepo()
	pendingOrder(t, repo, "o-1", "BK-AAAAAAAAAA", 100, time.Now().Add(time.Hour))

	uc := NewCancelOrder(repo, newFakeStatusCache())
	require.NoError(t, uc.Execute(context.Background(), "o-1", "", true))
}

func TestCancelOrder_AfterPaidFails(t *testing.T) {
	repo := newFakeOrderRepo()
	rec := pendingOrder(t, repo, "o-1", "BK-AAAAAAAAAA", 100, time.Now().Add(time.Hour))
	won, err := repo.MarkPaid(context.Background(), rec.ID, EntitlementRecord{
		UserIdentity: "u-1", BookID: "bk-1", SourceOrderID: rec.ID,
	})
	require.NoError(t, err)
	require.True(t, won)

	uc := NewCancelOrder(repo, newFakeStatusCache())
	err = uc.Execute(context.Background(), "o-1", "u-1", false)
	require.ErrorIs(t, err, ErrInvalidState)

	// The purchase and its entitlement are untouched.
	got, _ := repo.GetByID(context.Background(), "o-1")
	require.Equal(t, string(domain.StatePaid), got.State)
	_, err = repo.grants.Get(context.Background(), "u-1", "bk-1")
	require.NoError(t, err)
}

func TestCancelOrder_SecondCancelFails(t *testing.T) {
	repo := newFakeOrderRepo()
	pendingOrder(t, repo, "o-1", "BK-AAAAAAAAAA", 100, time.Now().Add(time.Hour))

	uc := NewCancelOrder(repo, newFakeStatusCache())
	require.NoError(t, uc.Execute(context.Background(), "o-1", "u-1", false))
	require.ErrorIs(t, uc.Execute(context.Background(), "o-1", "u-1", false), ErrInvalidState)
}

func TestCancelOrder_Unknown(t *testing.T) {
	uc := NewCancelOrder(newFakeOrderRepo(), newFakeStatusCache())
	err := uc.Execute(context.Background(), "o-404", "u-1", false)
	require.ErrorIs(t, err, ErrNotFound)
}
