package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL    = "https://api.payzcore.com"
	DefaultTimeoutMS  = 30000
	DefaultMaxRetries = 2
)

type Config struct {
	APIKey     string `koanf:"api_key" mapstructure:"api_key"`
	BaseURL    string `koanf:"base_url" mapstructure:"base_url"`
	TimeoutMS  int    `koanf:"timeout_ms" mapstructure:"timeout_ms"`
	MaxRetries int    `koanf:"max_retries" mapstructure:"max_retries"`
	MasterKey  bool   `koanf:"master_key" mapstructure:"master_key"`
	UserAgent  string `koanf:"user_agent" mapstructure:"user_agent"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		TimeoutMS:  DefaultTimeoutMS,
		MaxRetries: DefaultMaxRetries,
		UserAgent:  DefaultUserAgent(),
	}
}

func DefaultUserAgent() string {
	return "payzcore-go/" + Version
}

func (c Config) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return time.Duration(DefaultTimeoutMS) * time.Millisecond
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// NormalizedBaseURL returns the base URL without trailing slashes.
func (c Config) NormalizedBaseURL() string {
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/")
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) != "" {
		parsed, err := url.Parse(strings.TrimSpace(c.BaseURL))
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("core: base_url %q is invalid", c.BaseURL)
		}
	}
	if c.TimeoutMS < 0 {
		return fmt.Errorf("core: timeout_ms must not be negative")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("core: max_retries must not be negative")
	}
	return nil
}
