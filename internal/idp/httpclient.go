// Package idp implements protocol.IdentityProvider against a Cognito-style
// JSON RPC endpoint: every call is a POST of a JSON body to a single path,
// disambiguated by an X-Amz-Target header naming the RPC.
package idp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/fzdarsky/caldera/internal/logging"
	"github.com/fzdarsky/caldera/pkg/protocol"
)

const (
	defaultTimeout  = 30 * time.Second
	contentType     = "application/x-amz-json-1.1"
	maxRetries      = 3
	initialBackoff  = 500 * time.Millisecond
	maxBackoff      = 5 * time.Second
	targetHeader    = "X-Amz-Target"
	targetPrefix    = "AWSCognitoIdentityProviderService"
	rpcPath         = "/"
)

// Client is an HTTP adapter implementing protocol.IdentityProvider against
// an endpoint speaking the Cognito Identity Provider RPC dialect.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger // optional; nil disables logging
}

// NewClient builds a Client targeting endpoint (e.g.
// "https://cognito-idp.us-east-1.amazonaws.com").
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithLogger attaches a structured logger; each RPC logs its name, attempt
// count and outcome through it with secret redaction applied.
func (c *Client) WithLogger(logger *logging.Logger) *Client {
	c.logger = logger
	return c
}

var _ protocol.IdentityProvider = (*Client)(nil)

func (c *Client) InitiateAuth(ctx context.Context, in *protocol.InitiateAuthInput) (*protocol.AuthOutput, error) {
	req := map[string]any{
		"AuthFlow":       in.AuthFlow,
		"AuthParameters": in.AuthParameters,
		"ClientId":       in.ClientID,
	}
	if in.UserPoolID != "" {
		req["UserPoolId"] = in.UserPoolID
	}

	var out authOutputWire
	if err := c.call(ctx, "InitiateAuth", req, &out); err != nil {
		return nil, err
	}
	return out.toAuthOutput(), nil
}

func (c *Client) RespondToAuthChallenge(ctx context.Context, in *protocol.RespondToAuthChallengeInput) (*protocol.AuthOutput, error) {
	req := map[string]any{
		"ClientId":           in.ClientID,
		"ChallengeName":      in.ChallengeName,
		"ChallengeResponses": in.ChallengeResponses,
		"Session":            in.Session,
	}

	var out authOutputWire
	if err := c.call(ctx, "RespondToAuthChallenge", req, &out); err != nil {
		return nil, err
	}
	return out.toAuthOutput(), nil
}

func (c *Client) AdminGetUser(ctx context.Context, userPoolID, username string) (*protocol.GetUserOutput, error) {
	req := map[string]any{"UserPoolId": userPoolID, "Username": username}

	var out getUserWire
	if err := c.call(ctx, "AdminGetUser", req, &out); err != nil {
		return nil, err
	}
	return out.toGetUserOutput(), nil
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (*protocol.GetUserOutput, error) {
	req := map[string]any{"AccessToken": accessToken}

	var out getUserWire
	if err := c.call(ctx, "GetUser", req, &out); err != nil {
		return nil, err
	}
	return out.toGetUserOutput(), nil
}

func (c *Client) UpdateUserAttributes(ctx context.Context, accessToken string, attributes map[string]string) error {
	req := map[string]any{
		"AccessToken":    accessToken,
		"UserAttributes": attributesToWire(attributes),
	}
	return c.call(ctx, "UpdateUserAttributes", req, nil)
}

func (c *Client) ChangePassword(ctx context.Context, accessToken, previousPassword, proposedPassword string) error {
	req := map[string]any{
		"AccessToken":      accessToken,
		"PreviousPassword": previousPassword,
		"ProposedPassword": proposedPassword,
	}
	return c.call(ctx, "ChangePassword", req, nil)
}

func (c *Client) AdminCreateUser(ctx context.Context, userPoolID, username string, attributes map[string]string) error {
	req := map[string]any{
		"UserPoolId":     userPoolID,
		"Username":       username,
		"UserAttributes": attributesToWire(attributes),
	}
	return c.call(ctx, "AdminCreateUser", req, nil)
}

func (c *Client) AdminDeleteUser(ctx context.Context, userPoolID, username string) error {
	req := map[string]any{"UserPoolId": userPoolID, "Username": username}
	return c.call(ctx, "AdminDeleteUser", req, nil)
}

func (c *Client) ListGroups(ctx context.Context, userPoolID string) ([]protocol.GroupOutput, error) {
	req := map[string]any{"UserPoolId": userPoolID}

	var out struct {
		Groups []struct {
			GroupName        string `json:"GroupName"`
			Description      string `json:"Description"`
			Precedence       int    `json:"Precedence"`
			RoleArn          string `json:"RoleArn"`
			CreationDate     string `json:"CreationDate"`
			LastModifiedDate string `json:"LastModifiedDate"`
		} `json:"Groups"`
	}
	if err := c.call(ctx, "ListGroups", req, &out); err != nil {
		return nil, err
	}

	groups := make([]protocol.GroupOutput, len(out.Groups))
	for i, g := range out.Groups {
		groups[i] = protocol.GroupOutput{
			GroupName:        g.GroupName,
			Description:      g.Description,
			Precedence:       g.Precedence,
			RoleArn:          g.RoleArn,
			CreationDate:     g.CreationDate,
			LastModifiedDate: g.LastModifiedDate,
		}
	}
	return groups, nil
}

// call performs a single RPC with retry on transient network errors and 5xx
// responses, following the same backoff schedule regardless of which RPC is
// being called.
func (c *Client) call(ctx context.Context, rpc string, body, response any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("idp: marshal %s request: %w", rpc, err)
	}

	c.logDebug(rpc+": dispatching RPC", body)

	start := time.Now()
	target := targetPrefix + "." + rpc
	backoff := initialBackoff

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+rpcPath, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("idp: build %s request: %w", rpc, err)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set(targetHeader, target)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if isRetryable(err) && attempt < maxRetries {
				lastErr = &protocol.ErrTransport{Op: rpc, Err: err}
				c.logInfo(rpc+": retrying after transport error", map[string]any{"attempt": attempt, "error": err.Error()})
				time.Sleep(backoff)
				backoff = min(backoff*2, maxBackoff)
				continue
			}
			wrapped := &protocol.ErrTransport{Op: rpc, Err: err}
			c.logError(rpc+": request failed", wrapped, attempt, start)
			return wrapped
		}

		respBytes, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			wrapped := &protocol.ErrTransport{Op: rpc, Err: err}
			c.logError(rpc+": reading response body failed", wrapped, attempt, start)
			return wrapped
		}

		if resp.StatusCode >= 400 {
			if resp.StatusCode >= 500 && attempt < maxRetries {
				lastErr = &protocol.ErrTransport{Op: rpc, Err: fmt.Errorf("server error (HTTP %d)", resp.StatusCode)}
				c.logInfo(rpc+": retrying after server error", map[string]any{"attempt": attempt, "status": resp.StatusCode})
				time.Sleep(backoff)
				backoff = min(backoff*2, maxBackoff)
				continue
			}
			svcErr := decodeServiceError(rpc, resp.StatusCode, respBytes)
			c.logError(rpc+": service returned an error", svcErr, attempt, start)
			return svcErr
		}

		if response != nil && len(respBytes) > 0 {
			if err := json.Unmarshal(respBytes, response); err != nil {
				wrapped := &protocol.ErrTransport{Op: rpc, Err: fmt.Errorf("decode response: %w", err)}
				c.logError(rpc+": decoding response failed", wrapped, attempt, start)
				return wrapped
			}
		}
		c.logInfo(rpc+": completed", map[string]any{"attempt": attempt, "duration_ms": time.Since(start).Milliseconds()})
		return nil
	}

	c.logError(rpc+": exhausted retries", lastErr, maxRetries, start)
	return lastErr
}

// logDebug logs the raw wire-shaped request body; it carries plaintext
// passwords and SRP claim values, so it must pass through redaction.
func (c *Client) logDebug(msg string, body any) {
	if c.logger == nil {
		return
	}
	fields, ok := body.(map[string]any)
	if !ok {
		return
	}
	c.logger.Debug(msg, fields)
}

func (c *Client) logInfo(msg string, fields map[string]any) {
	if c.logger != nil {
		c.logger.Info(msg, fields)
	}
}

func (c *Client) logError(msg string, err error, attempt int, start time.Time) {
	if c.logger == nil {
		return
	}
	c.logger.Error(msg, map[string]any{
		"attempt":     attempt,
		"duration_ms": time.Since(start).Milliseconds(),
		"error":       err.Error(),
	})
}

func isRetryable(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsTemporary {
		return true
	}
	return false
}

func decodeServiceError(rpc string, statusCode int, body []byte) error {
	var wire struct {
		Type    string `json:"__type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &wire); err != nil || wire.Type == "" {
		return &protocol.ErrTransport{Op: rpc, Err: fmt.Errorf("HTTP %d: %s", statusCode, string(body))}
	}
	return &protocol.ErrTransport{Op: rpc, Err: fmt.Errorf("%s: %s", wire.Type, wire.Message)}
}

func attributesToWire(attributes map[string]string) []map[string]string {
	wire := make([]map[string]string, 0, len(attributes))
	for name, value := range attributes {
		wire = append(wire, map[string]string{"Name": name, "Value": value})
	}
	return wire
}

type authOutputWire struct {
	ChallengeName       string            `json:"ChallengeName"`
	ChallengeParameters map[string]string `json:"ChallengeParameters"`
	Session             string            `json:"Session"`
	AuthenticationResult *struct {
		IDToken           string `json:"IdToken"`
		AccessToken       string `json:"AccessToken"`
		RefreshToken      string `json:"RefreshToken"`
		TokenType         string `json:"TokenType"`
		NewDeviceMetadata *struct {
			DeviceKey      string `json:"DeviceKey"`
			DeviceGroupKey string `json:"DeviceGroupKey"`
		} `json:"NewDeviceMetadata"`
	} `json:"AuthenticationResult"`
}

func (w *authOutputWire) toAuthOutput() *protocol.AuthOutput {
	out := &protocol.AuthOutput{
		ChallengeName:       protocol.ChallengeName(w.ChallengeName),
		ChallengeParameters: w.ChallengeParameters,
		Session:             w.Session,
	}
	if w.AuthenticationResult != nil {
		ar := &protocol.AuthenticationResult{
			IDToken:      w.AuthenticationResult.IDToken,
			AccessToken:  w.AuthenticationResult.AccessToken,
			RefreshToken: w.AuthenticationResult.RefreshToken,
			TokenType:    w.AuthenticationResult.TokenType,
		}
		if w.AuthenticationResult.NewDeviceMetadata != nil {
			ar.NewDeviceMetadata = &protocol.NewDeviceMetadata{
				DeviceKey:      w.AuthenticationResult.NewDeviceMetadata.DeviceKey,
				DeviceGroupKey: w.AuthenticationResult.NewDeviceMetadata.DeviceGroupKey,
			}
		}
		out.AuthenticationResult = ar
	}
	return out
}

type getUserWire struct {
	Username       string `json:"Username"`
	UserAttributes []struct {
		Name  string `json:"Name"`
		Value string `json:"Value"`
	} `json:"UserAttributes"`
	Enabled    bool   `json:"Enabled"`
	UserStatus string `json:"UserStatus"`
}

func (w *getUserWire) toGetUserOutput() *protocol.GetUserOutput {
	attrs := make(map[string]string, len(w.UserAttributes))
	for _, a := range w.UserAttributes {
		attrs[a.Name] = a.Value
	}
	return &protocol.GetUserOutput{
		Username:   w.Username,
		Attributes: attrs,
		Enabled:    w.Enabled,
		UserStatus: w.UserStatus,
	}
}
