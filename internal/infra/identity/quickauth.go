// Package identity verifies Farcaster Quick Auth tokens and resolves FIDs to
// wallet addresses. Address resolution is best effort: a provider outage
// degrades enrichment, it never fails a request outright.
package identity

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"strconv"
	"sync"
	"time"

	"devhours-api/internal/infra"
	"devhours-api/internal/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

const jwksRefreshInterval = time.Hour

type jwksDocument struct {
	Keys []jwksKey `json:"keys"`
}

type jwksKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

// TokenVerifier validates Quick Auth JWTs against the Farcaster auth server's
// JWKS. Keys are cached and refreshed lazily on unknown-kid misses.
type TokenVerifier struct {
	jwksURL string
	domain  string
	client  *http.Client

	mu        sync.RWMutex
	keys      map[string]*ecdsa.PublicKey
	fetchedAt time.Time
}

func NewTokenVerifier(cfg config.AuthConfig) *TokenVerifier {
	return &TokenVerifier{
		jwksURL: cfg.JWKSURL,
		domain:  cfg.Domain,
		client:  &http.Client{Timeout: 10 * time.Second},
		keys:    make(map[string]*ecdsa.PublicKey),
	}
}

type quickAuthClaims struct {
	jwt.RegisteredClaims
}

// Verify checks the token signature, expiry and audience and returns the FID
// carried in the subject claim.
func (v *TokenVerifier) Verify(ctx context.Context, token string) (int64, error) {
	parsed, err := jwt.ParseWithClaims(token, &quickAuthClaims{}, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		return v.keyForKid(ctx, kid)
	}, jwt.WithValidMethods([]string{"ES256"}), jwt.WithAudience(v.domain))
	if err != nil {
		return 0, infra.WrapRepoErr("quick auth token rejected", err, infra.KindDecode)
	}

	claims, ok := parsed.Claims.(*quickAuthClaims)
	if !ok || claims.Subject == "" {
		return 0, infra.WrapRepoErr("quick auth token missing subject", nil, infra.KindDecode)
	}

	fid, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || fid <= 0 {
		return 0, infra.WrapRepoErr("quick auth subject is not a fid", err, infra.KindDecode)
	}

	return fid, nil
}

func (v *TokenVerifier) keyForKid(ctx context.Context, kid string) (*ecdsa.PublicKey, error) {
	v.mu.RLock()
	key, ok := v.keys[kid]
	fresh := time.Since(v.fetchedAt) < jwksRefreshInterval
	v.mu.RUnlock()

	if ok && fresh {
		return key, nil
	}

	if err := v.refresh(ctx); err != nil {
		// A stale key beats no key when the auth server is briefly down.
		if ok {
			return key, nil
		}
		return nil, err
	}

	v.mu.RLock()
	key, ok = v.keys[kid]
	v.mu.RUnlock()
	if !ok {
		return nil, infra.WrapRepoErr("unknown signing key id", nil, infra.KindNotFound)
	}
	return key, nil
}

func (v *TokenVerifier) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return infra.WrapRepoErr("failed to build jwks request", err, infra.KindTransport)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return infra.WrapRepoErr("failed to fetch jwks", err, infra.KindTransport)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return infra.WrapRepoErr("jwks endpoint returned non-200", nil, infra.KindTransport)
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return infra.WrapRepoErr("failed to decode jwks", err, infra.KindDecode)
	}

	keys := make(map[string]*ecdsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "EC" || k.Crv != "P-256" {
			continue
		}
		pub, err := parseP256Key(k)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return infra.WrapRepoErr("jwks contained no usable keys", nil, infra.KindDecode)
	}

	v.mu.Lock()
	v.keys = keys
	v.fetchedAt = time.Now()
	v.mu.Unlock()

	return nil
}

func parseP256Key(k jwksKey) (*ecdsa.PublicKey, error) {
	xb, err := base64.RawURLEncoding.DecodeString(k.X)
	if err != nil {
		return nil, err
	}
	yb, err := base64.RawURLEncoding.DecodeString(k.Y)
	if err != nil {
		return nil, err
	}

	return &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(xb),
		Y:     new(big.Int).SetBytes(yb),
	}, nil
}
