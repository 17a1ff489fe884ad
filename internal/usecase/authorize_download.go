package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// DownloadGrant is the caller-visible result: an opaque token the
// storage/CDN layer redeems, and when it stops working.
type DownloadGrant struct {
	Token     string
	ExpiresAt time.Time
}

type AuthorizeDownload struct {
	entitlements EntitlementRepo
	catalog      Catalog
	tokens       TokenStore
	ttl          time.Duration

	now func() time.Time
}

func NewAuthorizeDownload(entitlements EntitlementRepo, catalog Catalog, tokens TokenStore, ttl time.Duration) *AuthorizeDownload {
	return &AuthorizeDownload{
		entitlements: entitlements,
		catalog:      catalog,
		tokens:       tokens,
		ttl:          ttl,
		now:          time.Now,
	}
}

// Execute issues a short-lived token scoped to exactly (user, book, file).
// There is no cap on re-authorization: every call while entitled mints a
// fresh token with its own expiry.
//
// ErrForbidden is deliberately the same whether the user never bought the
// book or a purchase is still pending; the response must not leak order
// existence to non-owners.
func (uc *AuthorizeDownload) Execute(ctx context.Context, userIdentity, bookID, fileID string) (DownloadGrant, error) {
	ent, err := uc.entitlements.Get(ctx, userIdentity, bookID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return DownloadGrant{}, ErrForbidden
		}
		return DownloadGrant{}, err
	}
	if ent == nil {
		return DownloadGrant{}, ErrForbidden
	}

	// The file must still exist and belong to the entitled book. A file
	// deleted after purchase blocks new authorizations; copies already
	// downloaded are out of our hands.
	file, err := uc.catalog.GetBookFile(ctx, fileID)
	if err != nil {
		return DownloadGrant{}, err
	}
	if file.BookID != bookID {
		return DownloadGrant{}, ErrNotFound
	}

	token, err := newDownloadToken()
	if err != nil {
		return DownloadGrant{}, err
	}
	now := uc.now()
	scope := DownloadScope{
		UserIdentity: userIdentity,
		BookID:       bookID,
		FileID:       fileID,
		IssuedAt:     now,
		ExpiresAt:    now.Add(uc.ttl),
	}
	if err := uc.tokens.Put(ctx, token, scope, uc.ttl); err != nil {
		return DownloadGrant{}, err
	}
	downloadTokensIssued.Inc()
	return DownloadGrant{Token: token, ExpiresAt: scope.ExpiresAt}, nil
}

func newDownloadToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
