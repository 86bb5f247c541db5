package protocol_test

import (
	"testing"

	"github.com/fzdarsky/caldera/pkg/protocol"
	"github.com/stretchr/testify/assert"
)

func TestInitiateAuthInput_CarriesFlowAndParameters(t *testing.T) {
	in := &protocol.InitiateAuthInput{
		AuthFlow: protocol.AuthFlowUserSRP,
		AuthParameters: protocol.AuthParameters{
			"USERNAME": "alice",
			"SRP_A":    "abcdef",
		},
		ClientID: "client-123",
	}

	assert.Equal(t, protocol.AuthFlow("USER_SRP_AUTH"), in.AuthFlow)
	assert.Equal(t, "alice", in.AuthParameters["USERNAME"])
	assert.Empty(t, in.UserPoolID)
}

func TestRespondToAuthChallengeInput_CarriesSession(t *testing.T) {
	in := &protocol.RespondToAuthChallengeInput{
		ClientID:      "client-123",
		ChallengeName: protocol.ChallengePasswordVerifier,
		ChallengeResponses: protocol.AuthParameters{
			"PASSWORD_CLAIM_SIGNATURE": "sig",
		},
		Session: "session-token",
	}

	assert.Equal(t, protocol.ChallengeName("PASSWORD_VERIFIER"), in.ChallengeName)
	assert.Equal(t, "session-token", in.Session)
}

func TestAuthOutput_AuthenticationResultOptional(t *testing.T) {
	out := &protocol.AuthOutput{
		ChallengeName: protocol.ChallengeSoftwareTokenMFA,
		ChallengeParameters: protocol.ChallengeParameters{
			"USERNAME": "alice",
		},
		Session: "session-token",
	}

	assert.Nil(t, out.AuthenticationResult)
	assert.Equal(t, protocol.ChallengeName("SOFTWARE_TOKEN_MFA"), out.ChallengeName)
}

func TestAuthenticationResult_NewDeviceMetadataOptional(t *testing.T) {
	withDevice := &protocol.AuthenticationResult{
		IDToken:      "id-token",
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		TokenType:    "Bearer",
		NewDeviceMetadata: &protocol.NewDeviceMetadata{
			DeviceKey:      "device-key",
			DeviceGroupKey: "device-group-key",
		},
	}
	assert.NotNil(t, withDevice.NewDeviceMetadata)
	assert.Equal(t, "device-key", withDevice.NewDeviceMetadata.DeviceKey)

	withoutDevice := &protocol.AuthenticationResult{
		IDToken:     "id-token",
		AccessToken: "access-token",
		TokenType:   "Bearer",
	}
	assert.Nil(t, withoutDevice.NewDeviceMetadata)
}

func TestGetUserOutput_CarriesAttributes(t *testing.T) {
	out := &protocol.GetUserOutput{
		Username: "alice",
		Attributes: map[string]string{
			"email": "alice@example.com",
		},
		Enabled:    true,
		UserStatus: "CONFIRMED",
	}

	assert.True(t, out.Enabled)
	assert.Equal(t, "alice@example.com", out.Attributes["email"])
}

func TestGroupOutput_Fields(t *testing.T) {
	out := &protocol.GroupOutput{
		GroupName:   "admins",
		Description: "Administrators",
		Precedence:  1,
		RoleArn:     "arn:aws:iam::123456789012:role/admin",
	}

	assert.Equal(t, "admins", out.GroupName)
	assert.Equal(t, 1, out.Precedence)
}
