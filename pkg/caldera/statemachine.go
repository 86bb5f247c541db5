package caldera

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"github.com/fzdarsky/caldera/pkg/protocol"
	"github.com/fzdarsky/caldera/pkg/srp"
)

// parseHexParam parses a hex-encoded challenge parameter (e.g. SALT,
// SRP_B) into a big.Int, failing loudly rather than silently treating
// malformed input as zero.
func parseHexParam(name, val string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(val, 16)
	if !ok {
		return nil, fmt.Errorf("caldera: malformed %s challenge parameter %q", name, val)
	}
	return n, nil
}

// dayZeroPad matches the single leading zero of a strftime day-of-month so
// it can be stripped; the IDP rejects zero-padded day numbers in the
// PASSWORD_CLAIM signature's timestamp.
var dayZeroPad = regexp.MustCompile(` 0(\d) `)

// claimTimestamp renders now in the exact format the IDP expects for the
// PASSWORD_CLAIM_SECRET_BLOCK signature: a Go reference-layout strftime
// equivalent, then de-zeroed day-of-month.
func claimTimestamp(now time.Time) string {
	raw := now.UTC().Format("Mon Jan 02 15:04:05 UTC 2006")
	return dayZeroPad.ReplaceAllString(raw, " $1 ")
}

// Authenticate runs the USER_SRP_AUTH password entry point to completion or
// to a typed error. It does not accept MFA or new-password challenges on
// this entry point: encountering either surfaces ErrMfaRequired /
// ErrForceChangePassword so the caller can resume via RespondToMFA /
// RespondToNewPassword.
func (s *Session) Authenticate(ctx context.Context, password string) error {
	if s.limiter != nil {
		if locked, retryAfter, err := s.limiter.CheckLimit(s.Username); locked {
			return fmt.Errorf("caldera: %w: retry after %s", err, retryAfter)
		}
	}

	err := s.authenticate(ctx, password)

	if s.limiter != nil {
		if err != nil {
			s.limiter.RecordFailure(s.Username)
		} else {
			s.limiter.RecordSuccess(s.Username)
		}
	}
	return err
}

func (s *Session) authenticate(ctx context.Context, password string) error {
	s.logInfo("authenticate: starting USER_SRP_AUTH", map[string]any{"username": s.Username})

	client, err := srp.NewClient(s.Username, password)
	if err != nil {
		s.logError("authenticate: failed to build SRP client", err, map[string]any{"username": s.Username})
		return err
	}

	authParams := protocol.AuthParameters{
		"USERNAME": s.Username,
		"SRP_A":    srp.IntToHex(client.PublicA()),
	}
	s.addSecretHash(authParams, s.Username)
	s.addDeviceKey(authParams)

	out, err := s.idp.InitiateAuth(ctx, &protocol.InitiateAuthInput{
		AuthFlow:       protocol.AuthFlowUserSRP,
		AuthParameters: authParams,
		ClientID:       s.ClientID,
	})
	if err != nil {
		wrapped := &protocol.ErrTransport{Op: "InitiateAuth", Err: err}
		s.logError("authenticate: InitiateAuth failed", wrapped, map[string]any{"username": s.Username})
		return wrapped
	}
	if out.ChallengeName != protocol.ChallengePasswordVerifier {
		s.logInfo("authenticate: unsupported initial challenge", map[string]any{
			"username": s.Username, "challenge": out.ChallengeName,
		})
		return &protocol.ErrUnsupportedChallenge{ChallengeName: string(out.ChallengeName)}
	}

	resp, err := s.passwordVerifierResponse(client, out.ChallengeParameters)
	if err != nil {
		s.logError("authenticate: failed to build PASSWORD_VERIFIER response", err, map[string]any{"username": s.Username})
		return err
	}

	pvOut, err := s.idp.RespondToAuthChallenge(ctx, &protocol.RespondToAuthChallengeInput{
		ClientID:           s.ClientID,
		ChallengeName:      protocol.ChallengePasswordVerifier,
		ChallengeResponses: resp,
		Session:            out.Session,
	})
	if err != nil {
		wrapped := &protocol.ErrTransport{Op: "RespondToAuthChallenge(PASSWORD_VERIFIER)", Err: err}
		s.logError("authenticate: RespondToAuthChallenge(PASSWORD_VERIFIER) failed", wrapped, map[string]any{"username": s.Username})
		return wrapped
	}

	return s.dispatchChallenge(ctx, pvOut)
}

// dispatchChallenge interprets the outcome of a PASSWORD_VERIFIER response:
// completion, a supported continuation (device re-auth), or a typed error
// for MFA/new-password/unsupported challenges.
func (s *Session) dispatchChallenge(ctx context.Context, out *protocol.AuthOutput) error {
	if out.AuthenticationResult != nil {
		return s.finalize(ctx, out.AuthenticationResult)
	}

	s.logInfo("dispatchChallenge: continuation requested", map[string]any{
		"username": s.Username, "challenge": out.ChallengeName,
	})

	switch out.ChallengeName {
	case protocol.ChallengeDeviceSRPAuth:
		return s.authenticateDevice(ctx, out.Session, out.ChallengeParameters)
	case protocol.ChallengeSoftwareTokenMFA:
		return &protocol.ErrMfaRequired{Session: out.Session, Username: out.ChallengeParameters["USERNAME"]}
	case protocol.ChallengeNewPasswordRequired:
		return &protocol.ErrForceChangePassword{Session: out.Session, Username: out.ChallengeParameters["USERNAME"]}
	default:
		return &protocol.ErrUnsupportedChallenge{ChallengeName: string(out.ChallengeName)}
	}
}

// RespondToMFA resumes a session parked in the MFA state by ErrMfaRequired.
// username and sessionToken must come from that error, not from the
// caller's original login name.
func (s *Session) RespondToMFA(ctx context.Context, sessionToken, username, code string) error {
	s.logInfo("RespondToMFA: submitting SOFTWARE_TOKEN_MFA", map[string]any{"username": username})

	out, err := s.idp.RespondToAuthChallenge(ctx, &protocol.RespondToAuthChallengeInput{
		ClientID:      s.ClientID,
		ChallengeName: protocol.ChallengeSoftwareTokenMFA,
		ChallengeResponses: protocol.AuthParameters{
			"USERNAME":                username,
			"SOFTWARE_TOKEN_MFA_CODE": code,
		},
		Session: sessionToken,
	})
	if err != nil {
		wrapped := &protocol.ErrTransport{Op: "RespondToAuthChallenge(SOFTWARE_TOKEN_MFA)", Err: err}
		s.logError("RespondToMFA: RespondToAuthChallenge(SOFTWARE_TOKEN_MFA) failed", wrapped, map[string]any{"username": username})
		return wrapped
	}
	if out.AuthenticationResult == nil {
		return &protocol.ErrUnsupportedChallenge{ChallengeName: string(out.ChallengeName)}
	}
	return s.finalize(ctx, out.AuthenticationResult)
}

// RespondToNewPassword resumes a session parked in the new-password state
// by ErrForceChangePassword.
func (s *Session) RespondToNewPassword(ctx context.Context, sessionToken, username, newPassword string) error {
	s.logInfo("RespondToNewPassword: submitting NEW_PASSWORD_REQUIRED", map[string]any{"username": username})

	out, err := s.idp.RespondToAuthChallenge(ctx, &protocol.RespondToAuthChallengeInput{
		ClientID:      s.ClientID,
		ChallengeName: protocol.ChallengeNewPasswordRequired,
		ChallengeResponses: protocol.AuthParameters{
			"USERNAME":     username,
			"NEW_PASSWORD": newPassword,
		},
		Session: sessionToken,
	})
	if err != nil {
		wrapped := &protocol.ErrTransport{Op: "RespondToAuthChallenge(NEW_PASSWORD_REQUIRED)", Err: err}
		s.logError("RespondToNewPassword: RespondToAuthChallenge(NEW_PASSWORD_REQUIRED) failed", wrapped, map[string]any{"username": username})
		return wrapped
	}
	if out.AuthenticationResult == nil {
		return &protocol.ErrUnsupportedChallenge{ChallengeName: string(out.ChallengeName)}
	}
	return s.finalize(ctx, out.AuthenticationResult)
}

// authenticateDevice drives the DEVICE_SRP_AUTH -> DEVICE_PASSWORD_VERIFIER
// pair that re-authenticates an already-enrolled trusted device. It runs
// its own, independent SRP exchange structured identically to the password
// path.
func (s *Session) authenticateDevice(ctx context.Context, sessionToken string, params protocol.ChallengeParameters) error {
	s.logInfo("authenticateDevice: starting DEVICE_SRP_AUTH", map[string]any{"username": s.Username, "device_key": s.DeviceKey})

	if s.DeviceKey == "" || s.DeviceGroupKey == "" || s.DevicePassword == "" {
		return &protocol.ErrUnsupportedChallenge{ChallengeName: string(protocol.ChallengeDeviceSRPAuth)}
	}

	client, err := srp.NewClient(s.Username, s.DevicePassword)
	if err != nil {
		s.logError("authenticateDevice: failed to build SRP client", err, map[string]any{"username": s.Username})
		return err
	}

	authParams := protocol.AuthParameters{
		"USERNAME":   s.Username,
		"SRP_A":      srp.IntToHex(client.PublicA()),
		"DEVICE_KEY": s.DeviceKey,
	}
	s.addSecretHash(authParams, s.Username)

	out, err := s.idp.RespondToAuthChallenge(ctx, &protocol.RespondToAuthChallengeInput{
		ClientID:           s.ClientID,
		ChallengeName:      protocol.ChallengeDeviceSRPAuth,
		ChallengeResponses: authParams,
		Session:            sessionToken,
	})
	if err != nil {
		wrapped := &protocol.ErrTransport{Op: "RespondToAuthChallenge(DEVICE_SRP_AUTH)", Err: err}
		s.logError("authenticateDevice: RespondToAuthChallenge(DEVICE_SRP_AUTH) failed", wrapped, map[string]any{"username": s.Username})
		return wrapped
	}
	if out.ChallengeName != protocol.ChallengeDevicePasswordVerifier {
		return &protocol.ErrUnsupportedChallenge{ChallengeName: string(out.ChallengeName)}
	}

	salt, err := parseHexParam("SALT", out.ChallengeParameters["SALT"])
	if err != nil {
		return err
	}
	B, err := parseHexParam("SRP_B", out.ChallengeParameters["SRP_B"])
	if err != nil {
		return err
	}

	key, err := client.DeriveDeviceKey(B, salt, s.DeviceGroupKey, s.DeviceKey, s.DevicePassword)
	if err != nil {
		return err
	}

	secretBlock := out.ChallengeParameters["SECRET_BLOCK"]
	secretBlockBytes, err := base64.StdEncoding.DecodeString(secretBlock)
	if err != nil {
		return fmt.Errorf("caldera: malformed SECRET_BLOCK in DEVICE_PASSWORD_VERIFIER challenge: %w", err)
	}
	timestamp := claimTimestamp(time.Now())
	msg := append([]byte(s.DeviceGroupKey), []byte(s.DeviceKey)...)
	msg = append(msg, secretBlockBytes...)
	msg = append(msg, []byte(timestamp)...)
	signature := base64.StdEncoding.EncodeToString(srp.HMACSHA256(key, msg))

	deviceResp := protocol.AuthParameters{
		"TIMESTAMP":                   timestamp,
		"USERNAME":                    s.Username,
		"PASSWORD_CLAIM_SECRET_BLOCK": secretBlock,
		"PASSWORD_CLAIM_SIGNATURE":    signature,
		"DEVICE_KEY":                  s.DeviceKey,
	}
	s.addSecretHash(deviceResp, s.Username)
	s.logDebug("authenticateDevice: submitting DEVICE_PASSWORD_VERIFIER response", deviceResp)

	finalOut, err := s.idp.RespondToAuthChallenge(ctx, &protocol.RespondToAuthChallengeInput{
		ClientID:           s.ClientID,
		ChallengeName:      protocol.ChallengeDevicePasswordVerifier,
		ChallengeResponses: deviceResp,
		Session:            sessionToken,
	})
	if err != nil {
		wrapped := &protocol.ErrTransport{Op: "RespondToAuthChallenge(DEVICE_PASSWORD_VERIFIER)", Err: err}
		s.logError("authenticateDevice: RespondToAuthChallenge(DEVICE_PASSWORD_VERIFIER) failed", wrapped, map[string]any{"username": s.Username})
		return wrapped
	}
	if finalOut.AuthenticationResult == nil {
		return &protocol.ErrUnsupportedChallenge{ChallengeName: string(finalOut.ChallengeName)}
	}
	return s.finalize(ctx, finalOut.AuthenticationResult)
}

// passwordVerifierResponse builds the signed PASSWORD_VERIFIER challenge
// response from the server-echoed challenge parameters.
func (s *Session) passwordVerifierResponse(client *srp.Client, params protocol.ChallengeParameters) (protocol.AuthParameters, error) {
	userIDForSRP := params["USER_ID_FOR_SRP"]
	salt, err := parseHexParam("SALT", params["SALT"])
	if err != nil {
		return nil, err
	}
	B, err := parseHexParam("SRP_B", params["SRP_B"])
	if err != nil {
		return nil, err
	}
	secretBlock := params["SECRET_BLOCK"]

	key, err := client.DerivePasswordKey(poolShortID(s.PoolID), userIDForSRP, salt, B)
	if err != nil {
		return nil, err
	}

	secretBlockBytes, err := base64.StdEncoding.DecodeString(secretBlock)
	if err != nil {
		return nil, fmt.Errorf("caldera: malformed SECRET_BLOCK in PASSWORD_VERIFIER challenge: %w", err)
	}
	timestamp := claimTimestamp(time.Now())
	msg := append([]byte(poolShortID(s.PoolID)), []byte(userIDForSRP)...)
	msg = append(msg, secretBlockBytes...)
	msg = append(msg, []byte(timestamp)...)
	signature := base64.StdEncoding.EncodeToString(srp.HMACSHA256(key, msg))

	resp := protocol.AuthParameters{
		"TIMESTAMP":                   timestamp,
		"USERNAME":                    userIDForSRP,
		"PASSWORD_CLAIM_SECRET_BLOCK": secretBlock,
		"PASSWORD_CLAIM_SIGNATURE":    signature,
	}
	s.addSecretHash(resp, userIDForSRP)
	s.addDeviceKey(resp)
	s.logDebug("passwordVerifierResponse: submitting PASSWORD_VERIFIER response", resp)
	return resp, nil
}

// AuthenticateAdmin runs the ADMIN_NO_SRP_AUTH entry point, bypassing C3
// entirely: the IDP accepts the plaintext password directly (over a
// transport the adapter is responsible for securing).
func (s *Session) AuthenticateAdmin(ctx context.Context, password string) error {
	s.logInfo("AuthenticateAdmin: starting ADMIN_NO_SRP_AUTH", map[string]any{"username": s.Username})

	authParams := protocol.AuthParameters{
		"USERNAME": s.Username,
		"PASSWORD": password,
	}
	s.addSecretHash(authParams, s.Username)
	s.logDebug("AuthenticateAdmin: submitting ADMIN_NO_SRP_AUTH parameters", authParams)

	out, err := s.idp.InitiateAuth(ctx, &protocol.InitiateAuthInput{
		AuthFlow:       protocol.AuthFlowAdminNoSRP,
		AuthParameters: authParams,
		ClientID:       s.ClientID,
		UserPoolID:     s.PoolID,
	})
	if err != nil {
		wrapped := &protocol.ErrTransport{Op: "InitiateAuth(ADMIN_NO_SRP_AUTH)", Err: err}
		s.logError("AuthenticateAdmin: InitiateAuth(ADMIN_NO_SRP_AUTH) failed", wrapped, map[string]any{"username": s.Username})
		return wrapped
	}
	if out.AuthenticationResult == nil {
		return &protocol.ErrUnsupportedChallenge{ChallengeName: string(out.ChallengeName)}
	}
	return s.finalize(ctx, out.AuthenticationResult)
}

// Refresh replaces the access and ID tokens using the stored refresh
// token; the refresh token itself is not rotated. Concurrent Refresh (or
// CheckToken-triggered refresh) calls on the same session collapse onto a
// single in-flight RPC via singleflight.
func (s *Session) Refresh(ctx context.Context) error {
	_, err, _ := s.refreshGroup.Do("refresh", func() (interface{}, error) {
		return nil, s.refresh(ctx)
	})
	return err
}

func (s *Session) refresh(ctx context.Context) error {
	if s.RefreshToken == "" {
		return protocol.ErrAdminTokenRequired
	}

	s.logInfo("refresh: renewing ID/access tokens", map[string]any{"username": s.Username})

	authParams := protocol.AuthParameters{
		"REFRESH_TOKEN": s.RefreshToken,
	}
	s.addSecretHash(authParams, s.Username)
	s.addDeviceKey(authParams)

	out, err := s.idp.InitiateAuth(ctx, &protocol.InitiateAuthInput{
		AuthFlow:       protocol.AuthFlowRefreshToken,
		AuthParameters: authParams,
		ClientID:       s.ClientID,
	})
	if err != nil {
		wrapped := &protocol.ErrTransport{Op: "InitiateAuth(REFRESH_TOKEN)", Err: err}
		s.logError("refresh: InitiateAuth(REFRESH_TOKEN) failed", wrapped, map[string]any{"username": s.Username})
		return wrapped
	}
	if out.AuthenticationResult == nil {
		return &protocol.ErrUnsupportedChallenge{ChallengeName: string(out.ChallengeName)}
	}

	idClaims, err := s.verifier.Verify(ctx, out.AuthenticationResult.IDToken, protocol.TokenKindID)
	if err != nil {
		s.logError("refresh: ID token verification failed", err, map[string]any{"username": s.Username})
		return err
	}
	accessClaims, err := s.verifier.Verify(ctx, out.AuthenticationResult.AccessToken, protocol.TokenKindAccess)
	if err != nil {
		s.logError("refresh: access token verification failed", err, map[string]any{"username": s.Username})
		return err
	}

	s.IDToken = out.AuthenticationResult.IDToken
	s.AccessToken = out.AuthenticationResult.AccessToken
	s.TokenType = out.AuthenticationResult.TokenType
	s.IDClaims = idClaims
	s.AccessClaims = accessClaims
	s.logInfo("refresh: tokens refreshed", map[string]any{"username": s.Username})
	return nil
}

// CheckToken checks the access token's exp claim against now; if expired
// and renew is true it refreshes first. Returns an error if the token is
// expired and renew is false, or if the session has no access token yet.
func (s *Session) CheckToken(ctx context.Context, renew bool) error {
	if s.AccessClaims == nil {
		return protocol.ErrAdminTokenRequired
	}

	exp, ok := s.AccessClaims["exp"].(float64)
	if !ok {
		return &protocol.ErrTokenVerification{Kind: protocol.TokenKindAccess, Reason: "missing exp claim"}
	}
	if time.Now().Before(time.Unix(int64(exp), 0)) {
		return nil
	}
	if !renew {
		return &protocol.ErrTokenVerification{Kind: protocol.TokenKindAccess, Reason: "token expired"}
	}
	return s.Refresh(ctx)
}

func (s *Session) addSecretHash(params protocol.AuthParameters, username string) {
	if s.ClientSecret != "" {
		params["SECRET_HASH"] = secretHash(username, s.ClientID, s.ClientSecret)
	}
}

func (s *Session) addDeviceKey(params protocol.AuthParameters) {
	if s.DeviceKey != "" {
		params["DEVICE_KEY"] = s.DeviceKey
	}
}
