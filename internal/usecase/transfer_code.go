package usecase

import (
	"crypto/rand"
	"fmt"
)

// Alphabet for transfer codes: no 0/O, 1/I, 5/S, 8/B, since buyers retype these
// into banking apps.
const transferCodeAlphabet = "ACDEFGHJKLMNPQRTUVWXYZ234679"

const transferCodeLength = 10

// newTransferCode returns a random code like "BK-QX7QCN4AGM". Uniqueness is
// enforced by the orders table; callers regenerate on collision.
func newTransferCode() (string, error) {
	buf := make([]byte, transferCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	for i, b := range buf {
		buf[i] = transferCodeAlphabet[int(b)%len(transferCodeAlphabet)]
	}
	return "BK-" + string(buf), nil
}
