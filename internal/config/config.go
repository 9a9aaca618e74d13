// Package config provides configuration types for the refund notary.
//
// Configuration is file-based (refund-notary.yaml) with environment
// variable overrides under the REFUND_NOTARY_ prefix. The service is
// stateless by design: there is no session, persistence, or auth
// configuration to carry.
package config

import (
	"os"

	"github.com/spf13/viper"
)

// Config is the top-level configuration for the refund notary server.
type Config struct {
	// Server configures the HTTP listener.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Rules configures the vendor policy table source.
	Rules RulesConfig `yaml:"rules" mapstructure:"rules"`

	// Validation configures the compute engine's input strictness.
	Validation ValidationConfig `yaml:"validation" mapstructure:"validation"`

	// Oracle configures the yes/no LLM oracle proxy.
	Oracle OracleConfig `yaml:"oracle" mapstructure:"oracle"`

	// Audit configures where decision records are written.
	Audit AuditConfig `yaml:"audit" mapstructure:"audit"`

	// Tracing enables the OpenTelemetry stdout trace exporter.
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`

	// DevMode enables development features (verbose logging).
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// ServerConfig configures the HTTP server listener.
type ServerConfig struct {
	// HTTPAddr is the listen address. Default "127.0.0.1:8080".
	HTTPAddr string `yaml:"http_addr" mapstructure:"http_addr" validate:"required,hostname_port"`
	// LogLevel is one of debug, info, warn, error. Default "info".
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
	// AllowedOrigins lists origins permitted for cross-origin requests.
	// Empty means browser cross-origin requests are refused.
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	// ShutdownTimeout bounds graceful shutdown (e.g. "10s").
	ShutdownTimeout string `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout" validate:"omitempty,duration_string"`
}

// RulesConfig configures the policy table source.
type RulesConfig struct {
	// File is a path to a JSON or YAML rules document. Empty uses the
	// embedded default table.
	File string `yaml:"file" mapstructure:"file"`
}

// ValidationConfig configures engine input validation.
type ValidationConfig struct {
	// Strictness is "strict" (integer day counts only) or "loose"
	// (any finite non-negative number). Default "strict".
	Strictness string `yaml:"strictness" mapstructure:"strictness" validate:"omitempty,oneof=strict loose"`
}

// OracleConfig configures the LLM oracle proxy.
type OracleConfig struct {
	// Enabled controls whether /api/decide is served. Default true.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Model is the generative model name.
	Model string `yaml:"model" mapstructure:"model"`
	// Endpoint overrides the Generative Language API base URL.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,url"`
	// Timeout bounds the upstream wait (e.g. "8s"). On timeout the
	// oracle degrades to a "try again" answer.
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"omitempty,duration_string"`
	// APIKeyEnv names the environment variable holding the API key.
	// The key itself never appears in config files.
	APIKeyEnv string `yaml:"api_key_env" mapstructure:"api_key_env"`
}

// AuditConfig configures decision-record output.
type AuditConfig struct {
	// Output is "stdout", "none", or "file://<absolute-path>".
	Output string `yaml:"output" mapstructure:"output" validate:"omitempty,audit_output"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled turns on the stdout span exporter. Default false.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// SetDefaults fills zero values with production defaults.
func (c *Config) SetDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "127.0.0.1:8080"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Validation.Strictness == "" {
		c.Validation.Strictness = "strict"
	}
	if c.Oracle.Model == "" {
		c.Oracle.Model = "gemini-2.0-flash-lite"
	}
	if c.Oracle.Timeout == "" {
		c.Oracle.Timeout = "8s"
	}
	if c.Oracle.APIKeyEnv == "" {
		c.Oracle.APIKeyEnv = "GEMINI_API_KEY"
	}
	if c.Audit.Output == "" {
		c.Audit.Output = "stdout"
	}
}

// OracleAPIKey reads the oracle API key from the configured environment
// variable. Empty when unset.
func (c *Config) OracleAPIKey() string {
	return os.Getenv(c.Oracle.APIKeyEnv)
}

// ConfigFileUsed returns the config file Viper loaded, if any.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
