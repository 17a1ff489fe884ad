package domain

import (
	"errors"
	"strings"
)

type State string

const (
	StatePendingPayment State = "PENDING_PAYMENT"
	StatePaid           State = "PAID"
	StateExpired        State = "EXPIRED"
	StateCancelled      State = "CANCELLED"
)

// Terminal reports whether no further transition may leave this state.
func (s State) Terminal() bool {
	return s == StatePaid || s == StateExpired || s == StateCancelled
}

var ErrNoBuyerIdentity = errors.New("buyer requires a user id or an email")

// Buyer identifies who is checking out: an authenticated user id, or a
// guest email (with optional phone) for unauthenticated checkout.
type Buyer struct {
	UserID string
	Email  string
	Phone  string
}

func (b Buyer) Validate() error {
	if b.UserID == "" && b.Email == "" {
		return ErrNoBuyerIdentity
	}
	return nil
}

// IdentityKey returns the single string entitlements are keyed on: the
// user id when authenticated, otherwise the lowercased email. Choosing it
// once at order creation keeps the grant and later ownership checks aligned.
func (b Buyer) IdentityKey() string {
	if b.UserID != "" {
		return b.UserID
	}
	return strings.ToLower(strings.TrimSpace(b.Email))
}
