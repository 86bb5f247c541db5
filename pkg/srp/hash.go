package srp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// InfoBits is the fixed HKDF info string used to derive the SRP session key.
// It is part of the protocol's shared module state: a constant, not a secret.
var InfoBits = []byte("Caldera Derived Key")

// Sha256Hex hashes data and renders the digest as lowercase hex. A SHA-256
// digest is always 32 bytes, so the result is always exactly 64 characters —
// callers must reach this function (or HexHash) rather than formatting a
// digest through big.Int, which would silently strip leading zero nibbles.
func Sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HexHash hex-decodes s, hashes the resulting bytes with SHA-256, and
// re-encodes the digest as a 64-character lowercase hex string. Hashing the
// ASCII of the hex digits instead of the decoded bytes produces a different,
// incorrect key — every caller must go through this function rather than
// hashing a hex string directly.
func HexHash(s string) string {
	return Sha256Hex(hexDecode(s))
}

// HKDF derives the 16-byte session key from the SRP shared secret ikm and
// the scrambling parameter salt. This is RFC 5869 HKDF with a single Expand
// round keyed by the fixed InfoBits string and truncated to 128 bits: the
// Extract step yields PRK = HMAC-SHA256(salt, ikm), and because the derived
// output never exceeds one hash block, Expand's first (and only) block is
// exactly T1 = HMAC-SHA256(PRK, InfoBits | 0x01).
func HKDF(ikm, salt []byte) ([]byte, error) {
	prk := hkdf.Extract(sha256.New, ikm, salt)
	out := make([]byte, 16)
	if _, err := io.ReadFull(hkdf.Expand(sha256.New, prk, InfoBits), out); err != nil {
		return nil, fmt.Errorf("hkdf expand: %w", err)
	}
	return out, nil
}

// HMACSHA256 computes HMAC-SHA256(key, msg). Both the PASSWORD_CLAIM_SIGNATURE
// and SECRET_HASH auth parameters are instances of this same primitive,
// keyed by different material.
func HMACSHA256(key, msg []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(msg)
	return h.Sum(nil)
}
