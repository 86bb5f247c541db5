package caldera

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/fzdarsky/caldera/pkg/protocol"
	"github.com/fzdarsky/caldera/pkg/srp"
)

// deviceSaltBits is the width of the random salt drawn for a device
// verifier, per the device registration algorithm.
const deviceSaltBits = 128

// DeviceVerifier is the artifact produced for enrolling a new trusted
// device: the verifier and salt to hand to the IDP's device-confirmation
// call, alongside the device password the caller must persist locally (it
// is never sent to the server and cannot be recovered from the verifier).
type DeviceVerifier struct {
	PasswordVerifier string // base64
	Salt             string // base64
}

// GenerateDeviceVerifier produces a fresh device password and its SRP
// verifier/salt pair for deviceGroupKey/deviceKey, following the same
// structure as the SRP password verifier the IDP computes server-side:
// v = g^x mod N, x = int(hex_hash(salt | sha256_hex(device_group_key |
// device_key | ":" | device_password))).
func GenerateDeviceVerifier(deviceGroupKey, deviceKey string) (devicePassword string, verifier DeviceVerifier, err error) {
	passwordBytes := make([]byte, 40)
	if _, err := rand.Read(passwordBytes); err != nil {
		return "", DeviceVerifier{}, fmt.Errorf("caldera: generate device password: %w", err)
	}
	devicePassword = base64.StdEncoding.EncodeToString(passwordBytes)

	ph := srp.Sha256Hex([]byte(deviceGroupKey + deviceKey + ":" + devicePassword))

	saltInt, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), deviceSaltBits))
	if err != nil {
		return "", DeviceVerifier{}, fmt.Errorf("caldera: generate device salt: %w", err)
	}
	saltHex := srp.PadHex(saltInt)

	x := srp.HexToInt(srp.HexHash(saltHex + ph))
	v := new(big.Int).Exp(srp.G, x, srp.N)
	verifierHex := srp.PadHex(v)

	saltBytes, err := hex.DecodeString(saltHex)
	if err != nil {
		return "", DeviceVerifier{}, fmt.Errorf("caldera: decode device salt: %w", err)
	}
	verifierBytes, err := hex.DecodeString(verifierHex)
	if err != nil {
		return "", DeviceVerifier{}, fmt.Errorf("caldera: decode device verifier: %w", err)
	}

	return devicePassword, DeviceVerifier{
		PasswordVerifier: base64.StdEncoding.EncodeToString(verifierBytes),
		Salt:             base64.StdEncoding.EncodeToString(saltBytes),
	}, nil
}

// RegisterDevice generates and records a device verifier for the session's
// server-issued device group key, gated per spec: it requires a
// device_group_key already recorded on the session (from a prior
// AuthenticationResult.NewDeviceMetadata) and refuses to run twice.
func (s *Session) RegisterDevice() (DeviceVerifier, error) {
	if s.DeviceGroupKey == "" || s.DevicePassword != "" {
		return DeviceVerifier{}, protocol.ErrDeviceRegistrationDisallowed
	}

	password, verifier, err := GenerateDeviceVerifier(s.DeviceGroupKey, s.DeviceKey)
	if err != nil {
		return DeviceVerifier{}, err
	}
	s.DevicePassword = password
	return verifier, nil
}
