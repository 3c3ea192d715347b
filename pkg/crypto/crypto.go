package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// ComputeHMAC256 signs the payload with the shared secret and returns the
// hex-encoded signature. Used for Calendly, Tipalti and Stripe webhook
// verification as well as outbound Tipalti API requests.
func ComputeHMAC256(toSign []byte, secretKey string) string {
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write(toSign)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// VerifyHMAC compares the provided hex signature against the expected
// signature of the payload in constant time.
func VerifyHMAC(toSign []byte, providedSign, secretKey string) bool {
	expected := ComputeHMAC256(toSign, secretKey)
	return hmac.Equal([]byte(expected), []byte(providedSign))
}

// GenerateSecret returns a random hex-encoded secret of the given byte length,
// suitable for webhook shared secrets.
func GenerateSecret(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
