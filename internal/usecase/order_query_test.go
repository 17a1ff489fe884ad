package usecase

import (
	"context"
	"testing"
	"time"

	domain "github.com/ebooklane/checkout-api/internal/entity"
	"github.com/stretchr/testify/require"
)

func TestOrderQuery_StatusCacheMissThenHit(t *testing.T) {
	repo := newFakeOrderRepo()
	cache := newFakeStatusCache()
	pendingOrder(t, repo, "o-1", "BK-AAAAAAAAAA", 100, time.Now().Add(time.Hour))

	q := NewOrderQuery(repo, cache)

	state, err := q.Status(context.Background(), "o-1")
	require.NoError(t, err)
	require.Equal(t, string(domain.StatePendingPayment), state)

	// The miss populated the cache.
	cached, ok, _ := cache.GetStatus(context.Background(), "o-1")
	require.True(t, ok)
	require.Equal(t, state, cached)

	// A stale cache entry answers without touching the repo.
	require.NoError(t, cache.SetStatus(context.Background(), "o-1", string(domain.StatePaid)))
	state, err = q.Status(context.Background(), "o-1")
	require.NoError(t, err)
	require.Equal(t, string(domain.StatePaid), state)
}

func TestOrderQuery_StatusUnknown(t *testing.T) {
	q := NewOrderQuery(newFakeOrderRepo(), newFakeStatusCache())
	_, err := q.Status(context.Background(), "o-404")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOrderQuery_ListFilterAndClamp(t *testing.T) {
	repo := newFakeOrderRepo()
	cache := newFakeStatusCache()
	pendingOrder(t, repo, "o-1", "BK-AAAAAAAAAA", 100, time.Now().Add(time.Hour))
	rec := pendingOrder(t, repo, "o-2", "BK-BBBBBBBBBB", 100, time.Now().Add(time.Hour))
	_, err := repo.MarkPaid(context.Background(), rec.ID, EntitlementRecord{UserIdentity: "u-1", BookID: "bk-1", SourceOrderID: rec.ID})
	require.NoError(t, err)

	q := NewOrderQuery(repo, cache)

	paid, err := q.List(context.Background(), OrderFilter{State: string(domain.StatePaid)})
	require.NoError(t, err)
	require.Len(t, paid, 1)
	require.Equal(t, "o-2", paid[0].ID)

	all, err := q.List(context.Background(), OrderFilter{Limit: -3})
	require.NoError(t, err)
	require.Len(t, all, 2)
}
