package security

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"errors"
)

// WebhookSigner verifies RSA-SHA256 detached signatures on payment webhook
// bodies. Sign exists for the test endpoint and requires the private key.
type WebhookSigner interface {
	Sign(payload []byte) ([]byte, error)
	Verify(payload, signature []byte) error
}

type webhookSigner struct {
	pub *rsa.PublicKey
	pri *rsa.PrivateKey // nil => verify-only
}

func NewWebhookSigner(keys *WebhookKeys) (WebhookSigner, error) {
	if keys.RSAPub == nil {
		return nil, errors.New("rsa public key required")
	}
	return &webhookSigner{pub: keys.RSAPub, pri: keys.RSAPri}, nil
}

func (s *webhookSigner) Sign(payload []byte) ([]byte, error) {
	if s.pri == nil {
		return nil, errors.New("rsa private key not loaded")
	}
	digest := sha256.Sum256(payload)
	return rsa.SignPKCS1v15(rand.Reader, s.pri, crypto.SHA256, digest[:])
}

func (s *webhookSigner) Verify(payload, signature []byte) error {
	digest := sha256.Sum256(payload)
	return rsa.VerifyPKCS1v15(s.pub, crypto.SHA256, digest[:], signature)
}
