package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func downloadEnv(t *testing.T) (*AuthorizeDownload, *fakeEntitlementRepo, *fakeTokenStore) {
	t.Helper()
	ents := newFakeEntitlementRepo()
	tokens := newFakeTokenStore()
	catalog := testCatalog()
	uc := NewAuthorizeDownload(ents, catalog, tokens, 10*time.Minute)
	return uc, ents, tokens
}

func TestAuthorizeDownload_Entitled(t *testing.T) {
	uc, ents, tokens := downloadEnv(t)
	require.NoError(t, ents.Grant(context.Background(), EntitlementRecord{
		UserIdentity: "u-1", BookID: "bk-1", SourceOrderID: "o-1",
	}))

	grant, err := uc.Execute(context.Background(), "u-1", "bk-1", "f-1")
	require.NoError(t, err)
	require.NotEmpty(t, grant.Token)

	scope, ok := tokens.puts[grant.Token]
	require.True(t, ok)
	require.Equal(t, "u-1", scope.UserIdentity)
	require.Equal(t, "bk-1", scope.BookID)
	require.Equal(t, "f-1", scope.FileID)
	require.Equal(t, 10*time.Minute, tokens.ttls[grant.Token])
	require.Equal(t, scope.ExpiresAt, grant.ExpiresAt)
}

func TestAuthorizeDownload_NotEntitled(t *testing.T) {
	uc, _, tokens := downloadEnv(t)

	_, err := uc.Execute(context.Background(), "u-1", "bk-1", "f-1")
	require.ErrorIs(t, err, ErrForbidden)
	require.Zero(t, tokens.count)
}

func TestAuthorizeDownload_FileNotInBook(t *testing.T) {
	uc, ents, _ := downloadEnv(t)
	require.NoError(t, ents.Grant(context.Background(), EntitlementRecord{
		UserIdentity: "u-1", BookID: "bk-2", SourceOrderID: "o-1",
	}))

	// f-1 belongs to bk-1; owning bk-2 gives no access to it.
	_, err := uc.Execute(context.Background(), "u-1", "bk-2", "f-1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAuthorizeDownload_UnknownFile(t *testing.T) {
	uc, ents, _ := downloadEnv(t)
	require.NoError(t, ents.Grant(context.Background(), EntitlementRecord{
		UserIdentity: "u-1", BookID: "bk-1", SourceOrderID: "o-1",
	}))

	_, err := uc.Execute(context.Background(), "u-1", "bk-1", "f-404")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAuthorizeDownload_FreshTokenEachCall(t *testing.T) {
	uc, ents, tokens := downloadEnv(t)
	require.NoError(t, ents.Grant(context.Background(), EntitlementRecord{
		UserIdentity: "u-1", BookID: "bk-1", SourceOrderID: "o-1",
	}))

	a, err := uc.Execute(context.Background(), "u-1", "bk-1", "f-1")
	require.NoError(t, err)
	b, err := uc.Execute(context.Background(), "u-1", "bk-1", "f-1")
	require.NoError(t, err)

	require.NotEqual(t, a.Token, b.Token)
	require.Equal(t, 2, tokens.count)
}
