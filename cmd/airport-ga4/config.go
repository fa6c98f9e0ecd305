package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"

	ga4 "github.com/hugr-lab/airport-ga4"
	"github.com/hugr-lab/airport-ga4/report"
)

// fileConfig is the YAML configuration file layout.
type fileConfig struct {
	Listen         string `yaml:"listen"`
	PublicAddress  string `yaml:"public_address"`
	MetricsListen  string `yaml:"metrics_listen"`
	LogLevel       string `yaml:"log_level"`
	MaxMessageSize int    `yaml:"max_message_size"`

	PropertyID      string        `yaml:"property_id"`
	CredentialsFile string        `yaml:"credentials_file"`
	Endpoint        string        `yaml:"endpoint"`
	UpstreamTimeout time.Duration `yaml:"upstream_timeout"`

	Scope struct {
		Dimension string `yaml:"dimension"`
		Value     string `yaml:"value"`
	} `yaml:"scope"`

	// Tokens maps bearer tokens to identities. Empty disables authentication.
	Tokens               map[string]string `yaml:"tokens"`
	// Scopes maps identities to their scope values.
	Scopes               map[string]string `yaml:"scopes"`
	// DefaultScopeFallback serves identities missing from Scopes with the default scope.
	DefaultScopeFallback bool              `yaml:"default_scope_fallback"`
}

func defaultFileConfig() fileConfig {
	cfg := fileConfig{
		Listen:          ":50051",
		LogLevel:        "info",
		UpstreamTimeout: 30 * time.Second,
	}
	cfg.Scope.Dimension = "hostName"
	return cfg
}

func loadConfig(path string) (fileConfig, error) {
	cfg := defaultFileConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// serverConfig converts the file layout to a ga4.Config.
// The returned Config.Logger writes text logs to stderr at log_level.
func (c fileConfig) serverConfig() (ga4.Config, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return ga4.Config{}, fmt.Errorf("log_level: %w", err)
	}

	var opts []option.ClientOption
	if c.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(c.CredentialsFile))
	}
	if c.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.Endpoint))
	}

	config := ga4.Config{
		PropertyID:           c.PropertyID,
		Scope:                report.Scope{Dimension: c.Scope.Dimension, Value: c.Scope.Value},
		Scopes:               c.Scopes,
		DefaultScopeFallback: c.DefaultScopeFallback,
		ClientOptions:        opts,
		UpstreamTimeout:      c.UpstreamTimeout,
		Logger:               newLogger(os.Stderr, level),
		LogLevel:             &level,
		MaxMessageSize:       c.MaxMessageSize,
		Address:              c.PublicAddress,
	}
	if len(c.Tokens) > 0 {
		config.Auth = ga4.StaticTokens(c.Tokens)
	}
	return config, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
