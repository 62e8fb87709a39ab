// Package config loads client configuration from a YAML file, with
// environment overrides.
package config

import (
	"bytes"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	stdjwt "github.com/dgrijalva/jwt-go"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvBaseURL  = "OUTCOME_BASE_URL"
	EnvTimeout  = "OUTCOME_TIMEOUT"
	EnvLogLevel = "OUTCOME_LOG_LEVEL"
)

// Config describes one remote service and how to talk to it.
type Config struct {
	BaseURL         string            `yaml:"base_url"`
	Timeout         time.Duration     `yaml:"timeout"`
	ConnectTimeout  time.Duration     `yaml:"connect_timeout"`
	MaxBodySize     int64             `yaml:"max_body_size"`
	Headers         map[string]string `yaml:"headers"`
	RequestIDHeader string            `yaml:"request_id_header"`
	RateLimit       RateLimit         `yaml:"rate_limit"`
	Breaker         Breaker           `yaml:"breaker"`
	Auth            Auth              `yaml:"auth"`
	LogLevel        string            `yaml:"log_level"`
	DistinctCancel  bool              `yaml:"distinct_cancel"`
}

// RateLimit throttles outgoing requests. A zero PerSecond disables it.
type RateLimit struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// Breaker configures a circuit breaker. An empty Name disables it.
type Breaker struct {
	Name                string        `yaml:"name"`
	MaxRequests         uint32        `yaml:"max_requests"`
	Interval            time.Duration `yaml:"interval"`
	Timeout             time.Duration `yaml:"timeout"`
	ConsecutiveFailures uint32        `yaml:"consecutive_failures"`
}

// Auth holds credentials sent with every request. At most one of basic
// auth and JWT may be set.
type Auth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	JWT      JWT    `yaml:"jwt"`
}

// JWT signs a fresh HMAC token for every request. An empty Secret disables
// it.
type JWT struct {
	KeyID  string                 `yaml:"key_id"`
	Method string                 `yaml:"method"`
	Secret string                 `yaml:"secret"`
	Claims map[string]interface{} `yaml:"claims"`
	TTL    time.Duration          `yaml:"ttl"`
}

// SigningMethod returns the configured method, HS256 if none is set.
func (j JWT) SigningMethod() (stdjwt.SigningMethod, error) {
	name := j.Method
	if name == "" {
		name = stdjwt.SigningMethodHS256.Alg()
	}
	m, ok := stdjwt.GetSigningMethod(name).(*stdjwt.SigningMethodHMAC)
	if !ok {
		return nil, errors.Errorf("auth.jwt.method %q: want one of HS256, HS384, HS512", name)
	}
	return m, nil
}

// Default returns the configuration used for anything a file leaves unset.
func Default() Config {
	return Config{
		Timeout:        30 * time.Second,
		ConnectTimeout: 10 * time.Second,
		MaxBodySize:    10 << 20,
		LogLevel:       "info",
	}
}

// Load reads the configuration with Read and validates it.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Read reads the file at path, if path is not empty, and applies
// environment overrides. The result is not validated, so callers can
// apply their own overrides first.
func Read(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "open config")
		}
		defer f.Close()
		if cfg, err = Decode(f); err != nil {
			return Config{}, errors.Wrapf(err, "load %s", path)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode reads YAML from r over the defaults. Unknown keys are an error.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	buf, err := io.ReadAll(r)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	if len(bytes.TrimSpace(buf)) == 0 {
		return cfg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(buf))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment, as seen through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvBaseURL); ok {
		c.BaseURL = v
	}
	if v, ok := lookup(EnvTimeout); ok {
		d, err := parseDuration(v)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvTimeout)
		}
		c.Timeout = d
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = v
	}
	return nil
}

// parseDuration accepts Go durations and bare seconds.
func parseDuration(s string) (time.Duration, error) {
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(n * float64(time.Second)), nil
	}
	return time.ParseDuration(s)
}

// Validate reports the first problem with c.
func (c Config) Validate() error {
	if _, err := c.URL(); err != nil {
		return err
	}
	if c.Timeout < 0 || c.ConnectTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	if c.MaxBodySize < 1 {
		return errors.New("max_body_size must be positive")
	}
	if c.RateLimit.PerSecond < 0 {
		return errors.New("rate_limit.per_second must not be negative")
	}
	if c.RateLimit.PerSecond > 0 && c.RateLimit.Burst < 1 {
		return errors.New("rate_limit.burst must be at least 1")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Auth.JWT.Secret != "" {
		if c.Auth.Username != "" {
			return errors.New("auth: username and jwt are mutually exclusive")
		}
		if _, err := c.Auth.JWT.SigningMethod(); err != nil {
			return err
		}
		if c.Auth.JWT.TTL < 0 {
			return errors.New("auth.jwt.ttl must not be negative")
		}
	}
	return nil
}

// URL parses BaseURL, which must be an absolute http or https URL.
func (c Config) URL() (*url.URL, error) {
	if c.BaseURL == "" {
		return nil, errors.New("base_url is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "base_url")
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.Errorf("base_url %q: want an absolute http or https URL", c.BaseURL)
	}
	return u, nil
}

// ParseLevel maps a level name to a go-kit level filter.
func ParseLevel(s string) (level.Option, error) {
	switch strings.ToLower(s) {
	case "debug":
		return level.AllowDebug(), nil
	case "info", "":
		return level.AllowInfo(), nil
	case "warn":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	case "none":
		return level.AllowNone(), nil
	}
	return nil, errors.Errorf("unknown log level %q", s)
}
