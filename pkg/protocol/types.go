package protocol

import "context"

// AuthFlow names one of the IDP's InitiateAuth flows.
type AuthFlow string

// Supported auth flows.
const (
	AuthFlowUserSRP      AuthFlow = "USER_SRP_AUTH"
	AuthFlowRefreshToken AuthFlow = "REFRESH_TOKEN_AUTH"
	AuthFlowAdminNoSRP   AuthFlow = "ADMIN_NO_SRP_AUTH"
)

// ChallengeName names a challenge the server can pose mid-flow.
type ChallengeName string

// Challenge names the state machine understands.
const (
	ChallengePasswordVerifier       ChallengeName = "PASSWORD_VERIFIER"
	ChallengeSoftwareTokenMFA       ChallengeName = "SOFTWARE_TOKEN_MFA"
	ChallengeNewPasswordRequired    ChallengeName = "NEW_PASSWORD_REQUIRED"
	ChallengeDeviceSRPAuth          ChallengeName = "DEVICE_SRP_AUTH"
	ChallengeDevicePasswordVerifier ChallengeName = "DEVICE_PASSWORD_VERIFIER"
)

// AuthParameters is the flat string-keyed parameter bag InitiateAuth and
// RespondToAuthChallenge both send; the IDP's RPC framing is untyped at this
// layer by design (the abstract envelope makes no assumption about wire
// format).
type AuthParameters map[string]string

// NewDeviceMetadata is returned alongside an AuthenticationResult when the
// server wants to offer trusted-device enrollment.
type NewDeviceMetadata struct {
	DeviceKey      string `json:"DeviceKey"`
	DeviceGroupKey string `json:"DeviceGroupKey"`
}

// AuthenticationResult carries the tokens issued on successful
// authentication.
type AuthenticationResult struct {
	IDToken           string             `json:"IdToken"`
	AccessToken       string             `json:"AccessToken"`
	RefreshToken      string             `json:"RefreshToken"`
	TokenType         string             `json:"TokenType"`
	NewDeviceMetadata *NewDeviceMetadata `json:"NewDeviceMetadata,omitempty"`
}

// ChallengeParameters is the server-echoed parameter bag accompanying a
// ChallengeName — e.g. USER_ID_FOR_SRP, SALT, SRP_B, SECRET_BLOCK, USERNAME.
type ChallengeParameters map[string]string

// InitiateAuthInput is the request for initiate_auth.
type InitiateAuthInput struct {
	AuthFlow       AuthFlow
	AuthParameters AuthParameters
	ClientID       string
	UserPoolID     string // only required for ADMIN_NO_SRP_AUTH
}

// RespondToAuthChallengeInput is the request for respond_to_auth_challenge.
type RespondToAuthChallengeInput struct {
	ClientID           string
	ChallengeName      ChallengeName
	ChallengeResponses AuthParameters
	Session            string
}

// AuthOutput is the common response shape for both initiate_auth and
// respond_to_auth_challenge.
type AuthOutput struct {
	ChallengeName        ChallengeName
	ChallengeParameters  ChallengeParameters
	Session              string
	AuthenticationResult *AuthenticationResult
}

// Admin / self-service directory RPCs consumed by the directory entities
// (users and groups). Request/response shapes are intentionally thin string
// bags — the adapter's concrete RPC framing decides how these map onto wire
// messages.

// GetUserOutput is returned by GetUser / AdminGetUser.
type GetUserOutput struct {
	Username   string
	Attributes map[string]string
	Enabled    bool
	UserStatus string
}

// GroupOutput describes a single user-pool group.
type GroupOutput struct {
	GroupName        string
	Description      string
	Precedence       int
	RoleArn          string
	CreationDate     string
	LastModifiedDate string
}

// IdentityProvider is the interface the auth engine (C3/C4) and the
// directory entities (C8) consume. It is deliberately interface-only here:
// the concrete RPC framing, transport, and retry policy are an adapter's
// concern, not the engine's.
type IdentityProvider interface {
	InitiateAuth(ctx context.Context, in *InitiateAuthInput) (*AuthOutput, error)
	RespondToAuthChallenge(ctx context.Context, in *RespondToAuthChallengeInput) (*AuthOutput, error)

	AdminGetUser(ctx context.Context, userPoolID, username string) (*GetUserOutput, error)
	GetUser(ctx context.Context, accessToken string) (*GetUserOutput, error)
	UpdateUserAttributes(ctx context.Context, accessToken string, attributes map[string]string) error
	ChangePassword(ctx context.Context, accessToken, previousPassword, proposedPassword string) error
	AdminCreateUser(ctx context.Context, userPoolID, username string, attributes map[string]string) error
	AdminDeleteUser(ctx context.Context, userPoolID, username string) error
	ListGroups(ctx context.Context, userPoolID string) ([]GroupOutput, error)
}
