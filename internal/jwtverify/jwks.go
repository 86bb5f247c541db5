// Package jwtverify fetches and caches the IDP's JSON Web Key Set and
// verifies RS256-signed ID and access tokens against it.
package jwtverify

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"os"
	"sync"
)

// jwk is a single entry of a published JSON Web Key Set.
type jwk struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwksDocument struct {
	Keys []jwk `json:"keys"`
}

// EnvOverride is the environment variable carrying a pre-seeded JWKS
// document. If set, it supersedes the network fetch entirely.
const EnvOverride = "COGNITO_JWKS"

// Cache holds the resolved RSA public keys for one user pool's JWKS
// endpoint, keyed by kid. It is process-wide, shared across all sessions
// for a given pool, and monotonic: once a key is resolved it is never
// dropped except through an explicit Invalidate call. The first population
// is serialized by a sync.Once; a Get for a kid not yet in the cache forces
// one full refetch (to pick up freshly rotated keys) but installs no
// background timer.
type Cache struct {
	jwksURL    string
	httpClient *http.Client

	once    sync.Once
	onceErr error

	mu   sync.RWMutex
	keys map[string]*rsa.PublicKey
}

// NewCache constructs a Cache that fetches from jwksURL on first use unless
// the COGNITO_JWKS environment variable is set. httpClient may be nil, in
// which case http.DefaultClient is used.
func NewCache(jwksURL string, httpClient *http.Client) *Cache {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Cache{
		jwksURL:    jwksURL,
		httpClient: httpClient,
		keys:       make(map[string]*rsa.PublicKey),
	}
}

// Get resolves the RSA public key for kid, populating the cache on first
// call and forcing a single refetch if kid is not present in an
// already-populated cache.
func (c *Cache) Get(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.once.Do(func() { c.onceErr = c.refresh(ctx) })
	if c.onceErr != nil {
		return nil, c.onceErr
	}

	if key, ok := c.lookup(kid); ok {
		return key, nil
	}

	if err := c.refresh(ctx); err != nil {
		return nil, err
	}
	key, ok := c.lookup(kid)
	if !ok {
		return nil, fmt.Errorf("jwtverify: key id %q not found in jwks", kid)
	}
	return key, nil
}

// Invalidate drops a single kid from the cache, forcing the next Get for it
// to refetch. This is an out-of-band escape hatch for operators reacting to
// a known key rotation; nothing in this package calls it automatically.
func (c *Cache) Invalidate(kid string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.keys, kid)
}

func (c *Cache) lookup(kid string) (*rsa.PublicKey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key, ok := c.keys[kid]
	return key, ok
}

func (c *Cache) refresh(ctx context.Context) error {
	body, err := c.load(ctx)
	if err != nil {
		return err
	}

	var doc jwksDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("jwtverify: parse jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || (k.Use != "" && k.Use != "sig") {
			continue
		}
		pub, err := toRSAPublicKey(k)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return fmt.Errorf("jwtverify: no usable RSA signing keys in jwks")
	}

	c.mu.Lock()
	for kid, key := range keys {
		c.keys[kid] = key
	}
	c.mu.Unlock()
	return nil
}

func (c *Cache) load(ctx context.Context) ([]byte, error) {
	if raw := os.Getenv(EnvOverride); raw != "" {
		return []byte(raw), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("jwtverify: build jwks request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jwtverify: fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jwtverify: jwks endpoint returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("jwtverify: read jwks response: %w", err)
	}
	return body, nil
}

func toRSAPublicKey(k jwk) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}

	var e int
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}
