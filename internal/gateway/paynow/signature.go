package paynow

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// ComputeSignature returns the base64 HMAC-SHA256 of payload under key. The
// payload must be the exact bytes sent or received; re-serializing JSON can
// reorder keys and silently break verification.
func ComputeSignature(key, payload []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a presented signature in constant time. A missing
// key or signature fails closed.
func VerifySignature(key, payload []byte, presented string) bool {
	if len(key) == 0 || presented == "" {
		return false
	}
	expected := ComputeSignature(key, payload)
	return hmac.Equal([]byte(expected), []byte(presented))
}
