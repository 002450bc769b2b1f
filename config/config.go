// ABOUTME: Configuration loader for the VIP Marketplace proxy
// ABOUTME: Loads settings and per-environment Adobe credentials from environment variables

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment names accepted by the proxy.
const (
	Sandbox    = "sandbox"
	Production = "production"
)

// Default upstream hosts. These are public endpoints, not credentials.
const (
	DefaultSandboxAPIURL    = "https://partners-sandbox.adobe.io"
	DefaultProductionAPIURL = "https://partners.adobe.io"
	DefaultIMSURL           = "https://ims-na1.adobelogin.com"
	DefaultDevsAIURL        = "https://devs.ai"
)

// ErrUnknownEnvironment is matched by errors.Is for any environment lookup
// that names an environment the proxy was not configured with.
var ErrUnknownEnvironment = errors.New("unknown environment")

// UnknownEnvironmentError reports a lookup of an unconfigured environment.
type UnknownEnvironmentError struct {
	Name      string
	Available []string
}

func (e *UnknownEnvironmentError) Error() string {
	return fmt.Sprintf("unknown environment %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

func (e *UnknownEnvironmentError) Is(target error) bool {
	return target == ErrUnknownEnvironment
}

// Environment is the immutable credential bundle and base URLs for one
// Adobe environment.
type Environment struct {
	Name               string
	ClientID           string
	ClientSecret       string
	TechnicalAccountID string
	OrganizationID     string
	PrivateKey         string
	ResellerID         string
	DistributorID      string
	APIBaseURL         string
	IMSBaseURL         string
}

// HasCredentials returns true if the client credentials needed for the
// IMS token exchange are set.
func (e *Environment) HasCredentials() bool {
	return e.ClientID != "" && e.ClientSecret != ""
}

// TokenURL is the IMS OAuth token endpoint for this environment.
func (e *Environment) TokenURL() string {
	return strings.TrimRight(e.IMSBaseURL, "/") + "/ims/token/v2"
}

// APIURL joins path onto the environment's VIP Marketplace base URL.
func (e *Environment) APIURL(path string) string {
	return strings.TrimRight(e.APIBaseURL, "/") + path
}

type Config struct {
	// Server
	Port               string
	CORSAllowedOrigins []string // empty = allow any origin
	MetricsEnabled     bool

	// Upstream
	UpstreamTimeout    time.Duration
	TokenRefreshMargin time.Duration
	DevsAIURL          string
	UpstreamAllProxy   string // ssh+socks5://user@host:port?private-key=/path
	RedisURL           string // optional shared token store

	// Rate Limiting
	RateLimitEnabled bool
	RateLimitDefault int // requests per minute per client IP

	environments map[string]*Environment
	enabled      []string
}

// Environment resolves an environment by name. An empty name selects the
// sandbox. Unknown or disabled names fail with an *UnknownEnvironmentError.
func (c *Config) Environment(name string) (*Environment, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = Sandbox
	}
	env, ok := c.environments[name]
	if !ok {
		return nil, &UnknownEnvironmentError{Name: name, Available: c.EnvironmentNames()}
	}
	return env, nil
}

// EnvironmentNames returns the enabled environments in configuration order.
func (c *Config) EnvironmentNames() []string {
	return slices.Clone(c.enabled)
}

// WithEnvironments returns a copy of c serving exactly the given environments.
// Intended for tests and embedding; Load is the normal constructor.
func (c *Config) WithEnvironments(envs ...*Environment) *Config {
	out := *c
	out.environments = make(map[string]*Environment, len(envs))
	out.enabled = nil
	for _, env := range envs {
		e := *env
		out.environments[e.Name] = &e
		out.enabled = append(out.enabled, e.Name)
	}
	return &out
}

// Load reads configuration from the process environment, after applying an
// optional dotenv file (ENV_FILE, default .env). Variables already set in the
// environment take precedence over the file.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := &Config{
		Port:               getEnv("PORT", "3001"),
		CORSAllowedOrigins: getEnvStringList("CORS_ALLOWED_ORIGINS"),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),

		UpstreamTimeout:    getEnvDuration("UPSTREAM_TIMEOUT", 30*time.Second),
		TokenRefreshMargin: getEnvDuration("TOKEN_REFRESH_MARGIN", 60*time.Second),
		DevsAIURL:          ensureScheme(getEnv("DEVS_AI_URL", DefaultDevsAIURL)),
		UpstreamAllProxy:   os.Getenv("ADOBE_ALL_PROXY"),
		RedisURL:           os.Getenv("REDIS_URL"),

		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitDefault: getEnvInt("RATE_LIMIT_DEFAULT", 120),

		environments: make(map[string]*Environment),
	}

	if cfg.UpstreamTimeout <= 0 {
		return nil, fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %s", cfg.UpstreamTimeout)
	}
	if cfg.TokenRefreshMargin < 0 {
		return nil, fmt.Errorf("TOKEN_REFRESH_MARGIN must not be negative, got %s", cfg.TokenRefreshMargin)
	}
	if cfg.RateLimitDefault < 1 || cfg.RateLimitDefault > 10000 {
		return nil, fmt.Errorf("RATE_LIMIT_DEFAULT must be between 1 and 10000, got %d", cfg.RateLimitDefault)
	}

	names := getEnvStringList("ADOBE_ENVIRONMENTS")
	if len(names) == 0 {
		names = []string{Sandbox, Production}
	}
	for _, name := range names {
		name = strings.ToLower(name)
		if _, dup := cfg.environments[name]; dup {
			continue
		}

		var env *Environment
		switch name {
		case Sandbox:
			env = loadEnvironment(Sandbox, "ADOBE_", DefaultSandboxAPIURL)
		case Production:
			env = loadEnvironment(Production, "ADOBE_PRODUCTION_", DefaultProductionAPIURL)
			if env.ClientID == "" {
				return nil, fmt.Errorf("ADOBE_PRODUCTION_CLIENT_ID is required when production is enabled")
			}
			if env.ClientSecret == "" {
				return nil, fmt.Errorf("ADOBE_PRODUCTION_CLIENT_SECRET is required when production is enabled")
			}
		default:
			return nil, fmt.Errorf("ADOBE_ENVIRONMENTS: unsupported environment %q", name)
		}

		cfg.environments[name] = env
		cfg.enabled = append(cfg.enabled, name)
	}

	return cfg, nil
}

func loadEnvironment(name, prefix, defaultAPIURL string) *Environment {
	return &Environment{
		Name:               name,
		ClientID:           os.Getenv(prefix + "CLIENT_ID"),
		ClientSecret:       os.Getenv(prefix + "CLIENT_SECRET"),
		TechnicalAccountID: os.Getenv(prefix + "TECHNICAL_ACCOUNT_ID"),
		OrganizationID:     os.Getenv(prefix + "ORGANIZATION_ID"),
		PrivateKey:         os.Getenv(prefix + "PRIVATE_KEY"),
		ResellerID:         os.Getenv(prefix + "RESELLER_ID"),
		DistributorID:      os.Getenv(prefix + "DISTRIBUTOR_ID"),
		APIBaseURL:         ensureScheme(getEnv(prefix+"API_URL", defaultAPIURL)),
		IMSBaseURL:         ensureScheme(getEnv(prefix+"IMS_URL", DefaultIMSURL)),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("45s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvStringList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ensureScheme adds https:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "https://" + url
	}
	return url
}
