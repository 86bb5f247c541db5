package srp

import (
	"encoding/hex"
	"math/big"
	"strings"
)

// signedHexChars are the hex digits whose high bit is set when they appear
// as the first nibble of a byte-aligned encoding.
const signedHexChars = "89ABCDEFabcdef"

// PadHex renders x as a sign-safe, byte-aligned lowercase hex string: odd
// lengths are left-padded with a single '0', and encodings whose leading
// nibble would set the high bit of the first byte are left-padded with an
// extra "00" byte. The server's implementation depends on this byte layout
// bit-exactly when hashing big integers — do not paraphrase these rules.
func PadHex(x *big.Int) string {
	h := strings.ToLower(x.Text(16))
	if len(h)%2 != 0 {
		h = "0" + h
	} else if len(h) > 0 && strings.ContainsRune(signedHexChars, rune(h[0])) {
		h = "00" + h
	}
	return h
}

// HexToInt parses a hex string (as produced by PadHex or IntToHex) into a
// big.Int.
func HexToInt(h string) *big.Int {
	n := new(big.Int)
	n.SetString(h, 16)
	return n
}

// IntToHex renders x as lowercase hex with no leading zero and no prefix.
func IntToHex(x *big.Int) string {
	return strings.ToLower(x.Text(16))
}

// hexDecode decodes a hex string with an even-length precondition already
// established by PadHex; malformed input (which should not occur given this
// package's own callers) decodes to nil.
func hexDecode(h string) []byte {
	b, err := hex.DecodeString(h)
	if err != nil {
		return nil
	}
	return b
}
