// Package caldera implements the SRP-6a authentication engine: session
// state, the challenge/response state machine driving the IDP's
// USER_SRP_AUTH flow (with its MFA, new-password, and trusted-device
// branches), and device verifier enrollment.
package caldera

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/fzdarsky/caldera/internal/auth"
	"github.com/fzdarsky/caldera/internal/jwtverify"
	"github.com/fzdarsky/caldera/internal/logging"
	"github.com/fzdarsky/caldera/pkg/protocol"
	"github.com/fzdarsky/caldera/pkg/srp"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

// Session holds the per-user authentication state described in the data
// model: pool/client identity, ephemeral SRP state while an exchange is in
// flight, issued tokens once authenticated, and any enrolled device state.
// A Session is single-threaded: the caller must not invoke two of its
// methods concurrently, except where noted (Refresh/CheckToken collapse
// concurrent callers through an internal singleflight group).
type Session struct {
	PoolID       string
	ClientID     string
	ClientSecret string // optional; SECRET_HASH is omitted when empty
	Username     string // caller-supplied login name

	IDToken      string
	AccessToken  string
	RefreshToken string
	TokenType    string

	IDClaims     jwt.MapClaims
	AccessClaims jwt.MapClaims

	DeviceKey      string
	DeviceGroupKey string
	DevicePassword string

	idp      protocol.IdentityProvider
	verifier *jwtverify.Verifier
	limiter  *auth.RateLimiter // optional; nil disables local attempt throttling
	logger   *logging.Logger   // optional; nil disables logging

	refreshGroup singleflight.Group
}

// NewSession constructs a Session bound to one user pool/app client.
func NewSession(idp protocol.IdentityProvider, verifier *jwtverify.Verifier, poolID, clientID, clientSecret, username string) *Session {
	return &Session{
		PoolID:       poolID,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Username:     username,
		idp:          idp,
		verifier:     verifier,
	}
}

// WithRateLimiter attaches a local-attempt throttle: Authenticate will
// refuse to start a new SRP exchange while the caller's username is locked
// out from prior consecutive failures, and will record the outcome of each
// attempt against it.
func (s *Session) WithRateLimiter(limiter *auth.RateLimiter) *Session {
	s.limiter = limiter
	return s
}

// WithLogger attaches a structured logger; authentication milestones and
// failures are logged through it with secret redaction applied. A caller
// that does not set one gets silent operation, matching a library's default
// of not owning process-wide log output.
func (s *Session) WithLogger(logger *logging.Logger) *Session {
	s.logger = logger
	return s
}

// logInfo and logError are no-ops when no logger is attached.
func (s *Session) logInfo(msg string, fields map[string]any) {
	if s.logger != nil {
		s.logger.Info(msg, fields)
	}
}

func (s *Session) logError(msg string, err error, fields map[string]any) {
	if s.logger == nil {
		return
	}
	if fields == nil {
		fields = map[string]any{}
	}
	fields["error"] = err.Error()
	s.logger.Error(msg, fields)
}

// logDebug is for the wire-shaped request bodies (auth parameters, challenge
// responses) rather than derived fields; those maps carry SECRET_HASH and
// PASSWORD_CLAIM_SIGNATURE, so anything logged here must pass through the
// logger's redaction first.
func (s *Session) logDebug(msg string, params protocol.AuthParameters) {
	if s.logger == nil {
		return
	}
	fields := make(map[string]any, len(params))
	for k, v := range params {
		fields[k] = v
	}
	s.logger.Debug(msg, fields)
}

// Authenticated reports whether the session holds a verified access token.
func (s *Session) Authenticated() bool {
	return s.AccessToken != ""
}

// poolShortID returns the user pool id's substring after its first '_',
// used as the pool prefix in the SRP full_password construction.
func poolShortID(poolID string) string {
	if i := strings.IndexByte(poolID, '_'); i >= 0 {
		return poolID[i+1:]
	}
	return poolID
}

// secretHash computes SECRET_HASH(username, client_id, client_secret), to
// be included as an auth parameter whenever a client secret is configured.
func secretHash(username, clientID, clientSecret string) string {
	return base64.StdEncoding.EncodeToString(srp.HMACSHA256([]byte(clientSecret), []byte(username+clientID)))
}

// finalize verifies the tokens in result via C6 and, only once verification
// passes, binds them (and any device metadata) onto the session.
func (s *Session) finalize(ctx context.Context, result *protocol.AuthenticationResult) error {
	idClaims, err := s.verifier.Verify(ctx, result.IDToken, protocol.TokenKindID)
	if err != nil {
		s.logError("finalize: ID token verification failed", err, map[string]any{"username": s.Username})
		return err
	}
	accessClaims, err := s.verifier.Verify(ctx, result.AccessToken, protocol.TokenKindAccess)
	if err != nil {
		s.logError("finalize: access token verification failed", err, map[string]any{"username": s.Username})
		return err
	}

	s.IDToken = result.IDToken
	s.AccessToken = result.AccessToken
	s.RefreshToken = result.RefreshToken
	s.TokenType = result.TokenType
	s.IDClaims = idClaims
	s.AccessClaims = accessClaims

	if result.NewDeviceMetadata != nil {
		s.DeviceKey = result.NewDeviceMetadata.DeviceKey
		s.DeviceGroupKey = result.NewDeviceMetadata.DeviceGroupKey
	}

	s.logInfo("finalize: session authenticated", map[string]any{
		"username":        s.Username,
		"new_device":      result.NewDeviceMetadata != nil,
		"token_claim_sub": idClaims["sub"],
	})
	return nil
}
