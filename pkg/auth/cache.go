// Package auth handles carrier credential lifecycle: OAuth client-credentials
// exchange and bearer-token caching.
package auth

import (
	"time"
)

// TokenCache holds at most one cached bearer token. Setting always replaces,
// there is no history. The cache performs no locking of its own; the owning
// Provider serializes access.
//
// A token whose lifetime is at or under the skew is valid for zero time and
// triggers a fresh exchange on every call.
type TokenCache struct {
	skew        time.Duration
	accessToken string
	expiresAt   time.Time
}

// DefaultSkew is the safety margin subtracted from a token's expiry so a
// token is never handed out right as it expires mid-flight.
const DefaultSkew = 30 * time.Second

// NewTokenCache creates an empty cache. A non-positive skew falls back to
// DefaultSkew.
func NewTokenCache(skew time.Duration) *TokenCache {
	if skew <= 0 {
		skew = DefaultSkew
	}
	return &TokenCache{skew: skew}
}

// GetValid returns the cached token if it is still valid at now plus skew.
// A token past that point is treated as absent.
func (c *TokenCache) GetValid(now time.Time) (string, bool) {
	if c.accessToken == "" {
		return "", false
	}
	if !now.Add(c.skew).Before(c.expiresAt) {
		return "", false
	}
	return c.accessToken, true
}

// Set replaces the cached token. expiresIn is the carrier-reported lifetime
// in seconds, anchored at now.
func (c *TokenCache) Set(accessToken string, expiresIn float64, now time.Time) {
	c.accessToken = accessToken
	c.expiresAt = now.Add(time.Duration(expiresIn * float64(time.Second)))
}

// Clear drops the cached token.
func (c *TokenCache) Clear() {
	c.accessToken = ""
	c.expiresAt = time.Time{}
}
