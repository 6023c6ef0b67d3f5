// Package privacy derives stable, non-reversible identifiers for caller
// handles so logs and audit rows never carry phone numbers.
package privacy

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	id "callguard/pkg/domain"
)

// HashHandle returns the hex BLAKE2b-256 digest of the normalized handle.
// Empty handles hash to "".
func HashHandle(h id.Handle) string {
	n := h.Normalize()
	if n == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(n))
	return hex.EncodeToString(sum[:])
}

// ShortHash is the first 12 hex characters of HashHandle, for log lines.
func ShortHash(h id.Handle) string {
	full := HashHandle(h)
	if len(full) > 12 {
		return full[:12]
	}
	return full
}
