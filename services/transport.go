// ABOUTME: HTTP client construction for upstream calls
// ABOUTME: Applies the upstream timeout and optional SSH+SOCKS5 jumpbox routing

package services

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	proxy "github.com/cloudfoundry/socks5-proxy"
)

// NewUpstreamClient builds the HTTP client shared by all upstream calls.
// allProxy is optional; when set it must look like
// ssh+socks5://user@host:port?private-key=/path/to/key
func NewUpstreamClient(timeout time.Duration, allProxy string) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSHandshakeTimeout = 10 * time.Second
	transport.ResponseHeaderTimeout = timeout

	if allProxy != "" {
		spec, err := parseAllProxy(allProxy)
		if err != nil {
			return nil, err
		}
		key, err := os.ReadFile(spec.keyPath)
		if err != nil {
			return nil, fmt.Errorf("ADOBE_ALL_PROXY: failed to read private key %s: %w", spec.keyPath, err)
		}
		transport.Proxy = nil
		transport.DialContext = socks5DialContext(spec, string(key))
		slog.Info("Upstream traffic routed through SSH jumpbox", "host", spec.host, "user", spec.username)
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}

type allProxySpec struct {
	username string
	host     string
	keyPath  string
}

func parseAllProxy(raw string) (*allProxySpec, error) {
	proxyURL, err := url.Parse(strings.TrimPrefix(raw, "ssh+"))
	if err != nil {
		return nil, fmt.Errorf("ADOBE_ALL_PROXY: invalid URL: %w", err)
	}
	if proxyURL.Scheme != "socks5" {
		return nil, fmt.Errorf("ADOBE_ALL_PROXY: unsupported scheme %q, want ssh+socks5", proxyURL.Scheme)
	}
	if proxyURL.Host == "" {
		return nil, fmt.Errorf("ADOBE_ALL_PROXY: missing jumpbox host")
	}

	spec := &allProxySpec{host: proxyURL.Host}
	if proxyURL.User != nil {
		spec.username = proxyURL.User.Username()
	}

	spec.keyPath = proxyURL.Query().Get("private-key")
	if spec.keyPath == "" {
		return nil, fmt.Errorf("ADOBE_ALL_PROXY: missing required 'private-key' query param")
	}
	return spec, nil
}

// socks5DialContext lazily opens the SSH tunnel on first use and reuses the
// dialer afterwards.
func socks5DialContext(spec *allProxySpec, privateKey string) func(ctx context.Context, network, address string) (net.Conn, error) {
	socks5Proxy := proxy.NewSocks5Proxy(proxy.NewHostKey(), slog.NewLogLogger(slog.Default().Handler(), slog.LevelDebug), time.Minute)

	var (
		dialer proxy.DialFunc
		mu     sync.Mutex
	)

	return func(ctx context.Context, network, address string) (net.Conn, error) {
		mu.Lock()
		if dialer == nil {
			d, err := socks5Proxy.Dialer(spec.username, privateKey, spec.host)
			if err != nil {
				mu.Unlock()
				return nil, fmt.Errorf("error creating SOCKS5 dialer: %w", err)
			}
			dialer = d
		}
		d := dialer
		mu.Unlock()

		return d(network, address)
	}
}
