package middleware

import (
	"bytes"
	"encoding/base64"
	"io"
	"net/http"

	"github.com/ebooklane/checkout-api/internal/logging"
	"github.com/ebooklane/checkout-api/internal/security"
	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 64 * 1024

// SignatureVerify authenticates bank-partner webhooks: the raw body must
// carry a valid RSA-SHA256 signature in X-Signature (base64).
type SignatureVerify struct {
	signer security.WebhookSigner
	keyID  string
}

func NewSignatureVerify(signer security.WebhookSigner, keyID string) *SignatureVerify {
	return &SignatureVerify{signer: signer, keyID: keyID}
}

func (s *SignatureVerify) Verify() gin.HandlerFunc {
	return func(c *gin.Context) {
		if kid := c.GetHeader("X-Signature-Key-Id"); kid != "" && kid != s.keyID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown_key"})
			return
		}

		sigB64 := c.GetHeader("X-Signature")
		if sigB64 == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_signature"})
			return
		}
		sig, err := base64.StdEncoding.DecodeString(sigB64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed_signature"})
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
			return
		}
		_ = c.Request.Body.Close()
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if err := s.signer.Verify(body, sig); err != nil {
			logging.From(c).Warn("webhook signature rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_signature"})
			return
		}

		c.Next()
	}
}

// SignForTest signs an arbitrary body with the loaded private key so the
// webhook path can be exercised without the bank partner. Mounted only
// outside prod.
func (s *SignatureVerify) SignForTest() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
			return
		}
		sig, err := s.signer.Sign(body)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "signing_unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"key_id":    s.keyID,
			"signature": base64.StdEncoding.EncodeToString(sig),
		})
	}
}
