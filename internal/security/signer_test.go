package security

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/stretchr/testify/require"
)

func testSigner(t *testing.T) WebhookSigner {
	t.Helper()
	pri, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	s, err := NewWebhookSigner(&WebhookKeys{KeyID: "test", RSAPub: &pri.PublicKey, RSAPri: pri})
	require.NoError(t, err)
	return s
}

func TestWebhookSigner_RoundTrip(t *testing.T) {
	s := testSigner(t)

	body := []byte(`{"transferCode":"BK-QX7QCN4AGM","amountCents":90000}`)
	sig, err := s.Sign(body)
	require.NoError(t, err)
	require.NoError(t, s.Verify(body, sig))
}

func TestWebhookSigner_RejectsTamperedBody(t *testing.T) {
	s := testSigner(t)

	body := []byte(`{"transferCode":"BK-QX7QCN4AGM","amountCents":90000}`)
	sig, err := s.Sign(body)
	require.NoError(t, err)

	tampered := []byte(`{"transferCode":"BK-QX7QCN4AGM","amountCents":99000}`)
	require.Error(t, s.Verify(tampered, sig))
}

func TestWebhookSigner_VerifyOnlyCannotSign(t *testing.T) {
	pri, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	s, err := NewWebhookSigner(&WebhookKeys{KeyID: "test", RSAPub: &pri.PublicKey})
	require.NoError(t, err)

	_, err = s.Sign([]byte("x"))
	require.Error(t, err)
}
