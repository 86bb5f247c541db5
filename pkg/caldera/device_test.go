package caldera_test

import (
	"encoding/base64"
	"testing"

	"github.com/fzdarsky/caldera/pkg/caldera"
	"github.com/fzdarsky/caldera/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestGenerateDeviceVerifier_ProducesDistinctSaltsAndPasswords(t *testing.T) {
	password1, verifier1, err := caldera.GenerateDeviceVerifier("device-group-1", "device-key-1")
	require.NoError(t, err)

	password2, verifier2, err := caldera.GenerateDeviceVerifier("device-group-1", "device-key-1")
	require.NoError(t, err)

	assert.NotEqual(t, password1, password2)
	assert.NotEqual(t, verifier1.Salt, verifier2.Salt)
	assert.NotEqual(t, verifier1.PasswordVerifier, verifier2.PasswordVerifier)
}

func TestGenerateDeviceVerifier_OutputsAreValidBase64(t *testing.T) {
	_, verifier, err := caldera.GenerateDeviceVerifier("device-group-1", "device-key-1")
	require.NoError(t, err)

	_, err = base64.StdEncoding.DecodeString(verifier.Salt)
	assert.NoError(t, err)

	_, err = base64.StdEncoding.DecodeString(verifier.PasswordVerifier)
	assert.NoError(t, err)
}

func TestSession_RegisterDevice_RequiresDeviceGroupKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockIDP := protocol.NewMockIdentityProvider(ctrl)

	s := caldera.NewSession(mockIDP, nil, "us-east-1_abc123", "client-123", "", "alice")

	_, err := s.RegisterDevice()
	assert.ErrorIs(t, err, protocol.ErrDeviceRegistrationDisallowed)
}

func TestSession_RegisterDevice_RefusesDoubleEnrollment(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockIDP := protocol.NewMockIdentityProvider(ctrl)

	s := caldera.NewSession(mockIDP, nil, "us-east-1_abc123", "client-123", "", "alice")
	s.DeviceGroupKey = "device-group-1"

	_, err := s.RegisterDevice()
	require.NoError(t, err)

	_, err = s.RegisterDevice()
	assert.ErrorIs(t, err, protocol.ErrDeviceRegistrationDisallowed)
}

func TestSession_RegisterDevice_ReturnsVerifier(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockIDP := protocol.NewMockIdentityProvider(ctrl)

	s := caldera.NewSession(mockIDP, nil, "us-east-1_abc123", "client-123", "", "alice")
	s.DeviceKey = "device-key-1"
	s.DeviceGroupKey = "device-group-1"

	verifier, err := s.RegisterDevice()
	require.NoError(t, err)
	assert.NotEmpty(t, verifier.Salt)
	assert.NotEmpty(t, verifier.PasswordVerifier)
	assert.NotEmpty(t, s.DevicePassword)
}
