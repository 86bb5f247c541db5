package srp

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/fzdarsky/caldera/pkg/protocol"
)

// oneBitLess is the exclusive upper bound for the ephemeral private value a:
// a 1024-bit draw, i.e. [0, 2^1024).
var oneBitLess = new(big.Int).Lsh(big.NewInt(1), 1024)

// Client holds the ephemeral SRP state for one authentication attempt:
// the private value a and its public counterpart A. A Client is single-use
// and single-threaded — callers must not share one across goroutines or
// reuse it past a failed or completed exchange.
type Client struct {
	Username string
	Password string

	a *big.Int
	A *big.Int
}

// NewClient samples a fresh ephemeral keypair (a, A) for username/password.
// It fails with protocol.ErrSrpSafetyFailure if A mod N == 0, which would
// make the exchange trivially breakable; a caller that sees this error
// should retry with a fresh Client, not reuse the one that failed.
func NewClient(username, password string) (*Client, error) {
	raw, err := rand.Int(rand.Reader, oneBitLess)
	if err != nil {
		return nil, fmt.Errorf("srp: draw ephemeral a: %w", err)
	}
	a := new(big.Int).Mod(raw, N)
	A := new(big.Int).Exp(G, a, N)
	if new(big.Int).Mod(A, N).Sign() == 0 {
		return nil, protocol.ErrSrpSafetyFailure
	}
	return &Client{Username: username, Password: password, a: a, A: A}, nil
}

// PublicA returns the client's public ephemeral value, to be sent to the
// server as SRP_A.
func (c *Client) PublicA() *big.Int {
	return c.A
}

// ComputeU computes the SRP-6a scrambling parameter
// u = int(hex_hash(pad_hex(A) | pad_hex(B))), failing with
// protocol.ErrSrpSafetyFailure if the result is zero.
func ComputeU(A, B *big.Int) (*big.Int, error) {
	u := HexToInt(HexHash(PadHex(A) + PadHex(B)))
	if u.Sign() == 0 {
		return nil, protocol.ErrSrpSafetyFailure
	}
	return u, nil
}

// DeriveSessionKey computes the 16-byte HKDF session key shared by both the
// password-authentication and device-authentication branches, which share
// an identical derivation structure differing only in what fullPassword is
// built from (see DerivePasswordKey and DeriveDeviceKey).
//
// S := ((B - k*g^x) mod N) ^ (a + u*x) mod N, with the intermediate
// B - k*g^x reduced through big.Int.Mod, whose Euclidean semantics always
// return a non-negative result for a positive modulus — this satisfies the
// "add N if negative" rule with no explicit sign correction.
func DeriveSessionKey(a, A, B, salt *big.Int, fullPassword string) ([]byte, error) {
	u, err := ComputeU(A, B)
	if err != nil {
		return nil, err
	}

	ph := Sha256Hex([]byte(fullPassword))
	x := HexToInt(HexHash(PadHex(salt) + ph))

	gx := new(big.Int).Exp(G, x, N)
	kgx := new(big.Int).Mul(K, gx)
	base := new(big.Int).Sub(B, kgx)
	base.Mod(base, N)

	exp := new(big.Int).Add(a, new(big.Int).Mul(u, x))
	S := new(big.Int).Exp(base, exp, N)

	key, err := HKDF(hexDecode(PadHex(S)), hexDecode(PadHex(u)))
	if err != nil {
		return nil, fmt.Errorf("srp: derive session key: %w", err)
	}
	return key, nil
}

// DerivePasswordKey derives the session key for the password-authentication
// branch. poolShortID is the user pool id's substring after its first '_'.
func (c *Client) DerivePasswordKey(poolShortID, userIDForSRP string, salt, B *big.Int) ([]byte, error) {
	fullPassword := poolShortID + userIDForSRP + ":" + c.Password
	return DeriveSessionKey(c.a, c.A, B, salt, fullPassword)
}

// DeriveDeviceKey derives the session key for the DEVICE_SRP_AUTH branch.
// It takes its own ephemeral (a, A) since a device re-auth runs its own SRP
// exchange, structurally identical to but independent of any password auth
// that may have preceded it.
func DeriveDeviceKey(a, A, B, salt *big.Int, deviceGroupKey, deviceKey, devicePassword string) ([]byte, error) {
	fullPassword := deviceGroupKey + deviceKey + ":" + devicePassword
	return DeriveSessionKey(a, A, B, salt, fullPassword)
}

// DeriveDeviceKey derives the session key for this client's own ephemeral
// keypair against the server's B, for the DEVICE_SRP_AUTH branch.
func (c *Client) DeriveDeviceKey(B, salt *big.Int, deviceGroupKey, deviceKey, devicePassword string) ([]byte, error) {
	return DeriveDeviceKey(c.a, c.A, B, salt, deviceGroupKey, deviceKey, devicePassword)
}

// ClearSecrets zeroes the client's password so it does not linger in memory
// past the exchange that needed it. The ephemeral a is left intact: callers
// that abort mid-exchange and restart may still need PublicA/ComputeU.
func (c *Client) ClearSecrets() {
	c.Password = ""
}
