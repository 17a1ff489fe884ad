package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuyerIdentityKey(t *testing.T) {
	require.Equal(t, "u-1", Buyer{UserID: "u-1", Email: "Someone@Example.com"}.IdentityKey(),
		"user id wins over email")
	require.Equal(t, "someone@example.com", Buyer{Email: " Someone@Example.com "}.IdentityKey())
}

func TestBuyerValidate(t *testing.T) {
	require.ErrorIs(t, Buyer{Phone: "+44 7700 900000"}.Validate(), ErrNoBuyerIdentity)
	require.NoError(t, Buyer{UserID: "u-1"}.Validate())
	require.NoError(t, Buyer{Email: "a@b.c"}.Validate())
}

func TestStateTerminal(t *testing.T) {
	require.False(t, StatePendingPayment.Terminal())
	require.True(t, StatePaid.Terminal())
	require.True(t, StateExpired.Terminal())
	require.True(t, StateCancelled.Terminal())
}
