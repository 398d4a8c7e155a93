package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the aaisp CLI and exporter configuration.
type Config struct {
	Chaos    ChaosConfig    `yaml:"chaos"`
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Exporter ExporterConfig `yaml:"exporter"`
	Display  DisplayConfig  `yaml:"display"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ChaosConfig holds CHAOS API credentials and transport settings.
type ChaosConfig struct {
	BaseURL    string `yaml:"base_url"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// Timeout returns the request timeout as a duration.
func (c ChaosConfig) Timeout() time.Duration { return time.Duration(c.TimeoutSec) * time.Second }

// HTTPConfig holds exporter HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// AuthConfig holds exporter API authentication settings.
// Required makes `serve` refuse to start without at least one non-empty key.
type AuthConfig struct {
	APIKeys  []string `yaml:"api_keys"`
	Required bool     `yaml:"required"`
}

// Keys returns the configured keys with empty entries (unset ${VAR}) removed.
func (a AuthConfig) Keys() []string {
	var keys []string
	for _, k := range a.APIKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Enabled reports whether bearer authentication is active.
func (a AuthConfig) Enabled() bool { return len(a.Keys()) > 0 }

// Validate fails when authentication is required but no key is set.
func (a AuthConfig) Validate() error {
	if a.Required && !a.Enabled() {
		return errors.New("auth.required is set but auth.api_keys has no non-empty key")
	}
	return nil
}

// ExporterConfig holds Prometheus exporter settings.
type ExporterConfig struct {
	ScrapeTimeoutSec int `yaml:"scrape_timeout_sec"`
}

// DisplayConfig holds the default units for human-readable output.
type DisplayConfig struct {
	RateUnit  string `yaml:"rate_unit"`  // raw, mb, gb, mbit, gbit
	QuotaUnit string `yaml:"quota_unit"` // raw, mb, gb, mbit, gbit
	Precision *int   `yaml:"precision"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads, expands, defaults and validates the configuration at path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes configuration from YAML bytes.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Chaos.BaseURL == "" {
		c.Chaos.BaseURL = "https://chaos2.aa.net.uk/broadband/"
	}
	if c.Chaos.TimeoutSec <= 0 {
		c.Chaos.TimeoutSec = 30
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 9712
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Exporter.ScrapeTimeoutSec <= 0 {
		c.Exporter.ScrapeTimeoutSec = 20
	}
	if c.Display.RateUnit == "" {
		c.Display.RateUnit = "mbit"
	}
	if c.Display.QuotaUnit == "" {
		c.Display.QuotaUnit = "gb"
	}
	if c.Display.Precision == nil {
		p := 1
		c.Display.Precision = &p
	}
}

var units = map[string]struct{}{"raw": {}, "mb": {}, "gb": {}, "mbit": {}, "gbit": {}}

// Validate checks the configuration for correctness.
// Credentials are checked by the commands that need them, not here.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Chaos.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("chaos.base_url must be an absolute URL, got %q", c.Chaos.BaseURL)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Exporter.ScrapeTimeoutSec > c.HTTP.WriteTimeoutSec {
		return fmt.Errorf(
			"exporter.scrape_timeout_sec (%d) must not exceed http.write_timeout_sec (%d)",
			c.Exporter.ScrapeTimeoutSec, c.HTTP.WriteTimeoutSec,
		)
	}
	for name, v := range map[string]string{
		"display.rate_unit":  c.Display.RateUnit,
		"display.quota_unit": c.Display.QuotaUnit,
	} {
		if _, ok := units[strings.ToLower(v)]; !ok {
			return fmt.Errorf("%s must be one of raw, mb, gb, mbit, gbit, got %q", name, v)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
