// ABOUTME: Builds the proxy's HTTP handler from configuration
// ABOUTME: Wires token store, upstream clients, metrics and rate limiting

package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/markalston/vip-marketplace-proxy/cache"
	"github.com/markalston/vip-marketplace-proxy/config"
	"github.com/markalston/vip-marketplace-proxy/handlers"
	"github.com/markalston/vip-marketplace-proxy/metrics"
	"github.com/markalston/vip-marketplace-proxy/middleware"
	"github.com/markalston/vip-marketplace-proxy/services"
)

// redisPrefix namespaces every key the proxy writes to a shared Redis.
const redisPrefix = "vip-proxy:"

// Proxy is a fully wired proxy. Close releases the token store.
type Proxy struct {
	Handler http.Handler
	closers []func()
}

func (p *Proxy) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		p.closers[i]()
	}
}

// New wires a proxy for cfg. With REDIS_URL set, IMS tokens and rate limit
// counters are shared through Redis; otherwise both stay in process.
func New(ctx context.Context, cfg *config.Config) (*Proxy, error) {
	p := &Proxy{}

	httpClient, err := services.NewUpstreamClient(cfg.UpstreamTimeout, cfg.UpstreamAllProxy)
	if err != nil {
		return nil, err
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	var (
		store  services.TokenStore
		shared *cache.Redis
	)
	if cfg.RedisURL != "" {
		shared, err = cache.NewRedis(ctx, cfg.RedisURL, redisPrefix)
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, func() { shared.Close() })
		store = services.NewRedisTokenStore(shared)
		slog.Info("Token store: redis")
	} else {
		c := cache.New(time.Hour)
		p.closers = append(p.closers, c.Close)
		store = services.NewMemoryTokenStore(c)
		slog.Info("Token store: memory")
	}

	tokens := services.NewTokenProvider(store, httpClient, cfg.TokenRefreshMargin, m)
	h := handlers.NewHandler(cfg, tokens,
		services.NewVIPClient(httpClient, tokens, m),
		services.NewDevsAIClient(cfg.DevsAIURL, httpClient, m),
	)

	var limiter middleware.Limiter
	if cfg.RateLimitEnabled {
		if shared != nil {
			limiter = middleware.NewSharedLimiter(shared, cfg.RateLimitDefault, time.Minute)
		} else {
			limiter = middleware.NewWindowLimiter(cfg.RateLimitDefault, time.Minute)
		}
		slog.Info("Rate limiting enabled", "requests_per_minute", cfg.RateLimitDefault, "shared", shared != nil)
	}

	p.Handler = handlers.NewRouter(h, handlers.RouterOptions{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:    limiter,
		Metrics:        m,
	})
	return p, nil
}

// NewHTTPServer applies the proxy's server timeouts. Handlers bound each
// request's upstream work by UPSTREAM_TIMEOUT, so WriteTimeout leaves room
// for the JSON answer after that deadline fires.
func NewHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.UpstreamTimeout + 15*time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
