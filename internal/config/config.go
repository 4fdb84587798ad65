package config

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultAuthEndpoint is the upstream login endpoint used when none is configured
const DefaultAuthEndpoint = "https://fakestoreapi.com/auth/login"

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Auth     AuthConfig     `yaml:"auth"`
	Session  SessionConfig  `yaml:"session"`
	Database DatabaseConfig `yaml:"database"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port            int            `yaml:"port"`
	Host            string         `yaml:"host"`
	BaseURL         string         `yaml:"base_url"` // Optional: public URL (e.g., https://shop.example.com)
	ReadTimeout     time.Duration  `yaml:"read_timeout"`
	WriteTimeout    time.Duration  `yaml:"write_timeout"`
	IdleTimeout     time.Duration  `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration  `yaml:"shutdown_timeout"`
	Security        SecurityConfig `yaml:"security"`
}

// SecurityConfig contains security-related settings
type SecurityConfig struct {
	CSRFEnabled     bool                  `yaml:"csrf_enabled"`
	MaxRequestBytes int64                 `yaml:"max_request_bytes"`
	Headers         SecurityHeadersConfig `yaml:"headers"`
}

// SecurityHeadersConfig contains HTTP security header settings
type SecurityHeadersConfig struct {
	XFrameOptions           string `yaml:"x_frame_options"`
	XContentTypeOptions     string `yaml:"x_content_type_options"`
	ReferrerPolicy          string `yaml:"referrer_policy"`
	ContentSecurityPolicy   string `yaml:"content_security_policy"`
	StrictTransportSecurity string `yaml:"strict_transport_security"`
}

// AuthConfig contains settings for the upstream authentication service
type AuthConfig struct {
	Endpoint       string        `yaml:"endpoint"`
	RequestTimeout time.Duration `yaml:"request_timeout"` // negative disables the client timeout
	UserAgent      string        `yaml:"user_agent"`
}

// SessionConfig contains cookie session settings
type SessionConfig struct {
	Secret         string `yaml:"secret"`
	MaxAge         int    `yaml:"max_age"`         // seconds
	CookieSecure   string `yaml:"cookie_secure"`   // "auto", "true", "false"
	CookieSameSite string `yaml:"cookie_samesite"` // "strict", "lax", "none"
}

// DatabaseConfig contains SQLite settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// Load reads configuration from the specified file path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, expanding ${VAR} references from the environment
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables if set
	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		cfg.Server.BaseURL = baseURL
	}
	if endpoint := os.Getenv("AUTH_ENDPOINT"); endpoint != "" {
		cfg.Auth.Endpoint = endpoint
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.Security.MaxRequestBytes == 0 {
		c.Server.Security.MaxRequestBytes = 1 << 20
	}
	if c.Auth.Endpoint == "" {
		c.Auth.Endpoint = DefaultAuthEndpoint
	}
	if c.Auth.RequestTimeout == 0 {
		c.Auth.RequestTimeout = 15 * time.Second
	}
	if c.Session.MaxAge == 0 {
		c.Session.MaxAge = 7 * 24 * 60 * 60
	}
	if c.Session.CookieSecure == "" {
		c.Session.CookieSecure = "auto"
	}
	if c.Session.CookieSameSite == "" {
		c.Session.CookieSameSite = "lax"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/storefront.db"
	}
}

// Validate checks that all required configuration fields are set
func (c *Config) Validate() error {
	// Session validation
	if c.Session.Secret == "" || strings.Contains(c.Session.Secret, "${") {
		return fmt.Errorf("session.secret is required (set SESSION_SECRET environment variable)")
	}
	if len(c.Session.Secret) < 32 {
		return fmt.Errorf("session.secret must be at least 32 characters")
	}
	if c.Session.MaxAge < 0 {
		return fmt.Errorf("session.max_age must not be negative")
	}
	switch strings.ToLower(c.Session.CookieSecure) {
	case "auto", "true", "false":
	default:
		return fmt.Errorf("session.cookie_secure must be one of auto, true, false")
	}
	switch strings.ToLower(c.Session.CookieSameSite) {
	case "strict", "lax", "none":
	default:
		return fmt.Errorf("session.cookie_samesite must be one of strict, lax, none")
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	// Auth validation
	u, err := url.Parse(c.Auth.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("auth.endpoint must be an absolute http(s) URL")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	return nil
}

// GetAddr returns the full server address (host:port)
func (c *Config) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetBaseURL returns base_url if set, otherwise constructs one from host:port
func (c *Config) GetBaseURL() string {
	if c.Server.BaseURL != "" {
		return c.Server.BaseURL
	}
	return fmt.Sprintf("http://%s", c.GetAddr())
}

// IsHTTPS returns true if the base URL uses HTTPS
func (c *Config) IsHTTPS() bool {
	return strings.HasPrefix(strings.ToLower(c.GetBaseURL()), "https://")
}

// CookieSecure resolves the cookie_secure setting, where "auto" follows the base URL scheme
func (c *Config) CookieSecure() bool {
	switch strings.ToLower(c.Session.CookieSecure) {
	case "true":
		return true
	case "false":
		return false
	default:
		return c.IsHTTPS()
	}
}

// CookieSameSite maps cookie_samesite to its http.SameSite value
func (c *Config) CookieSameSite() http.SameSite {
	switch strings.ToLower(c.Session.CookieSameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// AuthTimeout is the upstream client timeout, zero meaning none
func (c *Config) AuthTimeout() time.Duration {
	if c.Auth.RequestTimeout < 0 {
		return 0
	}
	return c.Auth.RequestTimeout
}
