// ABOUTME: Adobe IMS token provider with per-environment caching
// ABOUTME: Client-credentials grant via x/oauth2, single-flight refresh via x/sync

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"

	"github.com/markalston/vip-marketplace-proxy/config"
	"github.com/markalston/vip-marketplace-proxy/metrics"
	"github.com/markalston/vip-marketplace-proxy/models"
)

// IMSScope is the scope string requested for VIP Marketplace access.
const IMSScope = "openid,AdobeID,ent_vip_marketplace_sdk"

// defaultTokenLifetime applies when IMS omits expires_in.
const defaultTokenLifetime = 24 * time.Hour

// TokenProvider hands out bearer tokens for Adobe API calls. Tokens are
// cached per environment and reused until refreshMargin before expiry.
// Concurrent callers that find no usable token share one IMS request.
type TokenProvider struct {
	store         TokenStore
	httpClient    *http.Client
	refreshMargin time.Duration
	metrics       *metrics.Metrics
	now           func() time.Time
	group         singleflight.Group
}

func NewTokenProvider(store TokenStore, httpClient *http.Client, refreshMargin time.Duration, m *metrics.Metrics) *TokenProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &TokenProvider{
		store:         store,
		httpClient:    httpClient,
		refreshMargin: refreshMargin,
		metrics:       m,
		now:           time.Now,
	}
}

// Token returns a usable token for env, fetching one from IMS if the cache
// has none. The fetch is detached from ctx cancellation so that one caller
// going away does not fail the others waiting on the same refresh.
func (p *TokenProvider) Token(ctx context.Context, env *config.Environment) (*models.OAuthToken, error) {
	if token, ok := p.cached(ctx, env.Name); ok {
		p.metrics.TokenCacheHit(env.Name)
		return token, nil
	}

	ch := p.group.DoChan(env.Name, func() (any, error) {
		fetchCtx := context.WithoutCancel(ctx)

		// Another replica (or an earlier flight) may have refreshed already.
		if token, ok := p.cached(fetchCtx, env.Name); ok {
			return token, nil
		}

		token, err := p.fetch(fetchCtx, env)
		if err != nil {
			return nil, err
		}
		p.store.Set(fetchCtx, env.Name, token, p.cacheTTL(token))
		return token, nil
	})

	select {
	case <-ctx.Done():
		return nil, upstreamError("IMS token", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.OAuthToken), nil
	}
}

// Invalidate drops the cached token for an environment.
func (p *TokenProvider) Invalidate(ctx context.Context, environment string) {
	p.store.Delete(ctx, environment)
	slog.Info("IMS token invalidated", "environment", environment)
}

// Now exposes the provider's clock for computing remaining lifetimes.
func (p *TokenProvider) Now() time.Time {
	return p.now()
}

func (p *TokenProvider) cached(ctx context.Context, environment string) (*models.OAuthToken, bool) {
	token, ok := p.store.Get(ctx, environment)
	if !ok || !token.UsableAt(p.now(), p.refreshMargin) {
		return nil, false
	}
	return token, true
}

func (p *TokenProvider) cacheTTL(token *models.OAuthToken) time.Duration {
	return token.ExpiresAt().Add(-p.refreshMargin).Sub(p.now())
}

// fetch performs the client-credentials grant against {ims}/ims/token/v2.
func (p *TokenProvider) fetch(ctx context.Context, env *config.Environment) (*models.OAuthToken, error) {
	if !env.HasCredentials() {
		return nil, fmt.Errorf("%w: %s", ErrCredentialsMissing, env.Name)
	}

	conf := clientcredentials.Config{
		ClientID:     env.ClientID,
		ClientSecret: env.ClientSecret,
		TokenURL:     env.TokenURL(),
		Scopes:       []string{IMSScope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	tok, err := conf.Token(context.WithValue(ctx, oauth2.HTTPClient, p.httpClient))
	p.metrics.TokenFetched(env.Name, err)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			authErr := &UpstreamAuthError{
				Environment: env.Name,
				StatusCode:  retrieveErr.Response.StatusCode,
				Body:        string(retrieveErr.Body),
			}
			slog.Error("IMS token request rejected",
				"environment", env.Name,
				"status", authErr.StatusCode,
				"body", truncate(authErr.Body, maxLoggedBody))
			return nil, authErr
		}
		slog.Error("IMS token request failed", "environment", env.Name, "error", err)
		return nil, upstreamError("IMS token", err)
	}

	// x/oauth2 converts expires_in to an absolute Expiry on the wall clock.
	lifetime := defaultTokenLifetime
	if !tok.Expiry.IsZero() {
		lifetime = time.Until(tok.Expiry)
	}

	token := &models.OAuthToken{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		ExpiresIn:   int64(math.Round(lifetime.Seconds())),
		ObtainedAt:  p.now(),
	}
	slog.Info("IMS token obtained", "environment", env.Name, "expires_in", token.ExpiresIn)
	return token, nil
}
