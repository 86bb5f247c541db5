package jwtverify

import (
	"context"
	"fmt"

	"github.com/fzdarsky/caldera/pkg/protocol"
	"github.com/golang-jwt/jwt/v5"
)

// Verifier checks RS256-signed ID and access tokens issued by one user
// pool: signature against the cached JWKS, token_use against the expected
// kind, and issuer/audience against values pinned at construction time
// (rather than the token's own unverified claims — see the package-level
// decision recorded alongside this type in the module's design notes).
type Verifier struct {
	cache    *Cache
	issuer   string
	audience string
}

// NewVerifier builds a Verifier pinned to issuer and audience, backed by
// cache for key resolution.
func NewVerifier(cache *Cache, issuer, audience string) *Verifier {
	return &Verifier{cache: cache, issuer: issuer, audience: audience}
}

// Verify parses, signature-checks and claim-checks tokenString, returning
// its claims on success. An expired exp claim is rejected by the
// signature-checking parse and reported as "signature verification failed".
func (v *Verifier) Verify(ctx context.Context, tokenString string, kind protocol.TokenKind) (jwt.MapClaims, error) {
	peeked := jwt.MapClaims{}
	peekedToken, _, err := jwt.NewParser().ParseUnverified(tokenString, peeked)
	if err != nil {
		return nil, &protocol.ErrTokenVerification{Kind: kind, Reason: "malformed token"}
	}

	tokenUse, _ := peeked["token_use"].(string)
	if tokenUse != string(kind) {
		return nil, &protocol.ErrTokenVerification{Kind: kind, Reason: fmt.Sprintf("unexpected token_use %q", tokenUse)}
	}

	kid, _ := peekedToken.Header["kid"].(string)
	if kid == "" {
		return nil, &protocol.ErrTokenVerification{Kind: kind, Reason: "missing kid in token header"}
	}

	pubKey, err := v.cache.Get(ctx, kid)
	if err != nil {
		return nil, &protocol.ErrTokenVerification{Kind: kind, Reason: err.Error()}
	}

	claims := jwt.MapClaims{}
	verified, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return pubKey, nil
	})
	if err != nil || !verified.Valid {
		return nil, &protocol.ErrTokenVerification{Kind: kind, Reason: "signature verification failed"}
	}

	if iss, _ := claims["iss"].(string); iss != v.issuer {
		return nil, &protocol.ErrTokenVerification{Kind: kind, Reason: "issuer mismatch"}
	}
	if !audienceMatches(claims["aud"], v.audience) {
		return nil, &protocol.ErrTokenVerification{Kind: kind, Reason: "audience mismatch"}
	}

	return claims, nil
}

func audienceMatches(aud interface{}, expected string) bool {
	switch v := aud.(type) {
	case string:
		return v == expected
	case []interface{}:
		for _, a := range v {
			if s, ok := a.(string); ok && s == expected {
				return true
			}
		}
	}
	return false
}
