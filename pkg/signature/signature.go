// Package signature authenticates LINE webhook deliveries.
//
// LINE signs each delivery with HMAC-SHA256 over the raw request body, keyed
// by the channel secret, and sends the base64-encoded digest in the
// X-Line-Signature header.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// HeaderName is the request header carrying the LINE signature.
const HeaderName = "X-Line-Signature"

// Compute returns the base64-encoded HMAC-SHA256 of body keyed by secret.
func Compute(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify reports whether header is a valid signature of body under secret.
// It returns false for an empty secret, a missing header, a header that is
// not valid base64, or a digest mismatch. The comparison is constant-time.
func Verify(body []byte, header, secret string) bool {
	header = strings.TrimSpace(header)
	if secret == "" || header == "" {
		return false
	}
	given, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), given)
}
