package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tournevent/rategate/pkg/carrier"
	"github.com/tournevent/rategate/pkg/transport"
)

// TokenSource yields a valid bearer token for carrier API calls.
type TokenSource interface {
	GetAccessToken(ctx context.Context) (string, error)
}

// ProviderConfig holds configuration for the OAuth provider.
type ProviderConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration // token exchange timeout, default 10s
	Skew         time.Duration // cache safety margin, default 30s
	Now          func() time.Time
}

// Provider performs the OAuth client-credentials flow against a carrier's
// token endpoint and caches the result. One Provider owns one TokenCache;
// providers are long-lived and shared across concurrent rate calls.
//
// Concurrent callers that miss the cache are coalesced into a single
// in-flight exchange. The exchange runs on its own timeout budget, detached
// from the callers' contexts: a caller that gives up stops waiting, but a
// late-arriving success still lands in the cache.
type Provider struct {
	http   transport.Client
	config ProviderConfig
	cache  *TokenCache

	mu    sync.Mutex
	group singleflight.Group
}

// NewProvider creates a new OAuth client-credentials provider.
func NewProvider(httpClient transport.Client, cfg ProviderConfig) *Provider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Provider{
		http:   httpClient,
		config: cfg,
		cache:  NewTokenCache(cfg.Skew),
	}
}

// GetAccessToken returns a valid bearer token, reusing the cached one when
// it is still inside its validity window. A cache hit never touches the
// network.
func (p *Provider) GetAccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	token, ok := p.cache.GetValid(p.config.Now())
	p.mu.Unlock()
	if ok {
		return token, nil
	}

	ch := p.group.DoChan("token", func() (any, error) {
		return p.exchange()
	})

	select {
	case <-ctx.Done():
		return "", carrier.NewError(carrier.CodeTimeout, "token exchange abandoned").
			WithRetryable(true).
			WithCause(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// Invalidate drops the cached token so the next call performs a fresh
// exchange.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache.Clear()
}

// tokenResponse is the expected token endpoint body. Pointer fields let a
// missing or mistyped field be told apart from a zero value.
type tokenResponse struct {
	AccessToken *string  `json:"access_token"`
	ExpiresIn   *float64 `json:"expires_in"`
}

// exchange performs one client-credentials POST. It deliberately uses a
// background context so an abandoned caller cannot cut the exchange short.
func (p *Provider) exchange() (string, error) {
	basic := base64.StdEncoding.EncodeToString([]byte(p.config.ClientID + ":" + p.config.ClientSecret))

	resp, err := p.http.Do(context.Background(), &transport.Request{
		Method: http.MethodPost,
		URL:    p.config.TokenURL,
		Headers: http.Header{
			"Authorization": []string{"Basic " + basic},
			"Content-Type":  []string{"application/x-www-form-urlencoded"},
		},
		Body:    []byte("grant_type=client_credentials"),
		Timeout: p.config.Timeout,
	})
	if err != nil {
		return "", err
	}

	switch {
	case resp.Status == http.StatusTooManyRequests:
		return "", carrier.NewError(carrier.CodeRateLimited, "OAuth rate limited").
			WithStatus(resp.Status).
			WithRetryable(true)
	case resp.Status == http.StatusUnauthorized || resp.Status == http.StatusForbidden:
		// Stale or rotated credentials; a fresh attempt is reasonable.
		return "", carrier.NewError(carrier.CodeAuth, "OAuth unauthorized").
			WithStatus(resp.Status).
			WithRetryable(true)
	case resp.Status >= 400:
		return "", carrier.NewError(carrier.CodeAuth, "OAuth token request failed").
			WithStatus(resp.Status).
			WithRetryable(resp.Status >= 500).
			WithDetails(string(resp.Body))
	}

	var body tokenResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return "", carrier.NewError(carrier.CodeMalformedResponse, "invalid OAuth token response").
			WithDetails(string(resp.Body)).
			WithCause(err)
	}
	if body.AccessToken == nil || *body.AccessToken == "" || body.ExpiresIn == nil {
		return "", carrier.NewError(carrier.CodeMalformedResponse, "invalid OAuth token response").
			WithDetails(string(resp.Body))
	}

	p.mu.Lock()
	p.cache.Set(*body.AccessToken, *body.ExpiresIn, p.config.Now())
	p.mu.Unlock()

	return *body.AccessToken, nil
}

// Ensure Provider implements TokenSource.
var _ TokenSource = (*Provider)(nil)
