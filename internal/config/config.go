// Package config reads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MinSessionSecret is the shortest SESSION_SECRET accepted when sessions are enforced.
const MinSessionSecret = 32

type Config struct {
	Port               int           `env:"PORT"                  envDefault:"8080"`
	FrontendURL        string        `env:"FRONTEND_URL"          envDefault:"http://localhost:4321"`
	SessionSecret      string        `env:"SESSION_SECRET"        envDefault:"dev-secret-change-in-production-32bytes"`
	AuthRequired       bool          `env:"AUTH_REQUIRED"         envDefault:"false"`
	ExportDir          string        `env:"EXPORT_DIR"            envDefault:"./exports"`
	ExportURLPrefix    string        `env:"EXPORT_URL_PREFIX"     envDefault:"/exports"`
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120"`
	TrustedProxies     int           `env:"TRUSTED_PROXIES"       envDefault:"1"`
	MaxUploadBytes     int64         `env:"MAX_UPLOAD_BYTES"      envDefault:"10485760"`
	LogLevel           string        `env:"LOG_LEVEL"             envDefault:"INFO"`
	LogFormat          string        `env:"LOG_FORMAT"            envDefault:"json"`
	SeedSample         bool          `env:"SEED_SAMPLE"           envDefault:"true"`
	WorkspaceTTL       time.Duration `env:"WORKSPACE_TTL"         envDefault:"24h"`
	JanitorInterval    time.Duration `env:"JANITOR_INTERVAL"      envDefault:"10m"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT"      envDefault:"5s"`
	MetricsEnabled     bool          `env:"METRICS_ENABLED"       envDefault:"true"`
}

// Load reads .env files (missing files are ignored) and then the process environment.
func Load(files ...string) (Config, error) {
	_ = godotenv.Load(files...)
	return Parse(env.Options{})
}

// Parse builds a Config from opts; tests pass Options.Environment to avoid touching the process env.
func Parse(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	if c.AuthRequired && len(c.SessionSecret) < MinSessionSecret {
		errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least %d bytes when AUTH_REQUIRED is set", MinSessionSecret))
	}
	if c.RateLimitPerMinute <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be positive"))
	}
	if c.TrustedProxies < 0 {
		errs = append(errs, errors.New("TRUSTED_PROXIES must not be negative"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	if c.WorkspaceTTL <= 0 || c.JanitorInterval <= 0 {
		errs = append(errs, errors.New("WORKSPACE_TTL and JANITOR_INTERVAL must be positive"))
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for PORT.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// SecureCookies reports whether the frontend is served over HTTPS.
func (c Config) SecureCookies() bool {
	return strings.HasPrefix(c.FrontendURL, "https://")
}
