package security

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/ebooklane/checkout-api/configs"
)

// WebhookKeys holds the RSA material for payment-webhook signatures: the
// bank partner's public key to verify with, and optionally our private key
// (used only by the test-signing endpoint in non-prod environments).
type WebhookKeys struct {
	KeyID  string
	RSAPub *rsa.PublicKey
	RSAPri *rsa.PrivateKey
}

func LoadWebhookKeys(c configs.Config) (*WebhookKeys, error) {
	if c.Security.WebhookRSAPubPEM == "" {
		return nil, errors.New("missing security.webhook_rsa_pub_pem")
	}
	pub, err := parseRSAPublicKeyFromPEM([]byte(c.Security.WebhookRSAPubPEM))
	if err != nil {
		return nil, fmt.Errorf("parse rsa pub pem: %w", err)
	}

	var pri *rsa.PrivateKey
	if c.Security.WebhookRSAPriPEM != "" {
		pri, err = parseRSAPrivateKeyFromPEM([]byte(c.Security.WebhookRSAPriPEM))
		if err != nil {
			return nil, fmt.Errorf("parse rsa pri pem: %w", err)
		}
	}

	id := c.Security.WebhookKeyID
	if id == "" {
		id = "v1"
	}
	return &WebhookKeys{KeyID: id, RSAPub: pub, RSAPri: pri}, nil
}

func parseRSAPublicKeyFromPEM(pemBytes []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("no pem block")
	}
	pubAny, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	pub, ok := pubAny.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("not rsa public key")
	}
	return pub, nil
}

func parseRSAPrivateKeyFromPEM(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("no pem block in RSA private key")
	}

	// try PKCS#8 first
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err == nil {
		if rsaKey, ok := key.(*rsa.PrivateKey); ok {
			return rsaKey, nil
		}
		return nil, errors.New("not an RSA private key in PKCS#8")
	}

	// fallback to PKCS#1
	rsaKey, err2 := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err2 != nil {
		return nil, fmt.Errorf("parse RSA private key failed (PKCS#8: %v, PKCS#1: %v)", err, err2)
	}
	return rsaKey, nil
}
