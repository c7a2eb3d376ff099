// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file
// when present), loads them into structured Go types, and validates
// that required values are present so they can be reused across the
// application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional config blocks (guestbook, observability).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists, it gets loaded into the
	// process env before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the GUESTBOOK_ prefix. After the prefix is
	removed the key is lowercased and every "__" becomes a "." so nested
	struct fields can be addressed from plain shell variables:

	  GUESTBOOK_SERVER__PORT            -> server.port
	  GUESTBOOK_GUESTBOOK__HASHID_SALT  -> guestbook.hashid_salt
*/

// EnvPrefix is the prefix every configuration variable must carry.
const EnvPrefix = "GUESTBOOK_"

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Guestbook     GuestbookConfig      `koanf:"guestbook" validate:"required"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// GlobalRateLimit is the per-IP requests-per-second budget enforced in
	// front of every route. Zero falls back to DefaultGlobalRateLimit.
	GlobalRateLimit float64 `koanf:"global_rate_limit" validate:"gte=0"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// RedisConfig contains Redis connection details.
// Address is "host:port".
type RedisConfig struct {
	Address  string `koanf:"address" validate:"required"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"gte=0"`
}

// AuthConfig stores the Clerk secret key used by the identity provider.
type AuthConfig struct {
	SecretKey string `koanf:"secret_key" validate:"required"`
}

// IntegrationConfig holds credentials for third-party integrations that
// are optional at runtime.
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	EmailFrom    string `koanf:"email_from"`
}

// Rate limiter backends.
const (
	RateLimitBackendRedis  = "redis"
	RateLimitBackendMemory = "memory"
)

// GuestbookConfig configures the guestbook feature.
type GuestbookConfig struct {
	// HashidSalt seeds the id obfuscation codec. Changing it invalidates
	// every id that was handed out before.
	HashidSalt      string `koanf:"hashid_salt" validate:"required"`
	HashidMinLength int    `koanf:"hashid_min_length" validate:"gte=0"`

	RateLimit GuestbookRateLimitConfig `koanf:"rate_limit"`

	// SiteOwnerMetadataKey is the Clerk public metadata flag granting edit
	// rights over every entry.
	SiteOwnerMetadataKey string `koanf:"site_owner_metadata_key" validate:"required"`

	// NotifyOnModeration enqueues an email to the author when a site owner
	// edits somebody else's entry.
	NotifyOnModeration bool `koanf:"notify_on_moderation"`
}

// GuestbookRateLimitConfig is the per-user quota for guestbook writes.
type GuestbookRateLimitConfig struct {
	Requests int           `koanf:"requests" validate:"gt=0"`
	Window   time.Duration `koanf:"window" validate:"min=1s"`
	Backend  string        `koanf:"backend" validate:"oneof=redis memory"`
}

const (
	DefaultGlobalRateLimit     = 20
	DefaultHashidMinLength     = 8
	DefaultRateLimitRequests   = 10
	DefaultRateLimitWindow     = 10 * time.Second
	DefaultSiteOwnerMetadata   = "siteOwner"
	DefaultServiceName         = "guestbook"
	DefaultModerationEmailFrom = "Guestbook <onboarding@resend.dev>"
)

// LoadConfig loads configuration from environment variables, unmarshals it
// into Config, applies defaults, validates it and returns the result.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	mainConfig.applyDefaults()

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if mainConfig.Guestbook.NotifyOnModeration && mainConfig.Integration.ResendAPIKey == "" {
		return nil, fmt.Errorf("config validation failed: integration.resend_api_key is required when guestbook.notify_on_moderation is set")
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name and environment are derived, never configured.
	mainConfig.Observability.ServiceName = DefaultServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// applyDefaults fills optional knobs that were not provided. It runs
// before struct validation so defaults satisfy the validate tags.
func (c *Config) applyDefaults() {
	if c.Server.GlobalRateLimit == 0 {
		c.Server.GlobalRateLimit = DefaultGlobalRateLimit
	}

	g := &c.Guestbook
	if g.HashidMinLength == 0 {
		g.HashidMinLength = DefaultHashidMinLength
	}
	if g.SiteOwnerMetadataKey == "" {
		g.SiteOwnerMetadataKey = DefaultSiteOwnerMetadata
	}
	if g.RateLimit.Requests == 0 {
		g.RateLimit.Requests = DefaultRateLimitRequests
	}
	if g.RateLimit.Window == 0 {
		g.RateLimit.Window = DefaultRateLimitWindow
	}
	if g.RateLimit.Backend == "" {
		g.RateLimit.Backend = RateLimitBackendRedis
	}

	if c.Integration.EmailFrom == "" {
		c.Integration.EmailFrom = DefaultModerationEmailFrom
	}
}

// IsLocal reports whether the app runs on a developer machine.
func (c *Config) IsLocal() bool {
	return c.Primary.Env == "local"
}
