package travel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	tokenPath = "/v1/security/oauth2/token"

	// expiryMargin is subtracted from the provider-declared TTL.
	expiryMargin = 60 * time.Second
)

// tokenExchanger performs one client-credentials grant per call.
// *clientcredentials.Config satisfies it.
type tokenExchanger interface {
	Token(ctx context.Context) (*oauth2.Token, error)
}

// TokenProvider acquires and caches the flight provider's bearer token.
//
// The mutex only guards the cached Credential; it is not held across the
// exchange, so concurrent cache misses may each exchange and the last
// writer wins.
type TokenProvider struct {
	exchanger tokenExchanger
	client    *http.Client
	now       func() time.Time
	log       *slog.Logger

	mu   sync.Mutex
	cred Credential
}

// NewTokenProvider constructs a TokenProvider that exchanges clientID and
// clientSecret at baseURL's OAuth2 token endpoint.
func NewTokenProvider(baseURL, clientID, clientSecret string, log *slog.Logger) *TokenProvider {
	return NewTokenProviderWithExchanger(&clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     baseURL + tokenPath,
		AuthStyle:    oauth2.AuthStyleInParams,
	}, log)
}

// NewTokenProviderWithExchanger constructs a TokenProvider around a custom exchanger (for tests).
func NewTokenProviderWithExchanger(ex tokenExchanger, log *slog.Logger) *TokenProvider {
	return &TokenProvider{
		exchanger: ex,
		client:    newHTTPClient(),
		now:       time.Now,
		log:       loggerOrDefault(log),
	}
}

// WithClock replaces the provider's time source and returns the provider.
func (p *TokenProvider) WithClock(now func() time.Time) *TokenProvider {
	p.now = now
	return p
}

// Token returns the cached token while it is valid, otherwise exchanges
// the client credentials for a new one. Every exchange failure is reported
// as ErrAuth; the provider's answer is only logged.
func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	cred := p.cred
	p.mu.Unlock()

	if cred.validAt(p.now()) {
		p.log.Debug("using cached flight provider token")
		return cred.Token, nil
	}

	p.log.Info("fetching new flight provider token")

	tok, err := p.exchanger.Token(context.WithValue(ctx, oauth2.HTTPClient, p.client))
	if err != nil {
		attrs := []any{"err", err}
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			attrs = append(attrs, "body", string(re.Body))
			if re.Response != nil {
				attrs = append(attrs, "status", re.Response.StatusCode)
			}
		}
		p.log.Error("flight provider token exchange failed", attrs...)
		return "", ErrAuth
	}

	now := p.now()
	ttl := time.Duration(tok.ExpiresIn) * time.Second
	if tok.ExpiresIn == 0 && !tok.Expiry.IsZero() {
		ttl = tok.Expiry.Sub(now)
	}

	cred = Credential{Token: tok.AccessToken, ExpiresAt: now.Add(ttl - expiryMargin)}

	p.mu.Lock()
	p.cred = cred
	p.mu.Unlock()

	p.log.Info("new flight provider token obtained", "expires_in", ttl.Seconds())
	return cred.Token, nil
}

// ClearCache drops the cached credential so the next Token call exchanges.
func (p *TokenProvider) ClearCache() {
	p.mu.Lock()
	p.cred = Credential{}
	p.mu.Unlock()

	p.log.Info("flight provider token cache cleared")
}

// Credential returns a copy of the cached credential.
func (p *TokenProvider) Credential() Credential {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cred
}
