// Package config provides configuration loading for the refund notary.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment
// variables. If configFile is empty, it searches standard locations for
// refund-notary.yaml/.yml. The search requires an explicit YAML extension
// so the binary itself (same base name, no extension) never matches.
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		// No config file in any standard location. Set name/type without
		// search paths so ReadInConfig returns ConfigFileNotFoundError,
		// which callers handle gracefully.
		viper.SetConfigName("refund-notary")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: REFUND_NOTARY_SERVER_HTTP_ADDR
	viper.SetEnvPrefix("REFUND_NOTARY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

// findConfigFile searches standard locations for a refund-notary config
// file with an explicit YAML extension.
func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".refund-notary"),
		"/etc/refund-notary",
	}
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "refund-notary"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds nested config keys for env var overrides.
func bindNestedEnvKeys() {
	_ = viper.BindEnv("server.http_addr")
	_ = viper.BindEnv("server.log_level")
	_ = viper.BindEnv("server.shutdown_timeout")
	// Note: server.allowed_origins is an array; use the config file.

	_ = viper.BindEnv("rules.file")
	_ = viper.BindEnv("validation.strictness")

	_ = viper.BindEnv("oracle.enabled")
	_ = viper.BindEnv("oracle.model")
	_ = viper.BindEnv("oracle.endpoint")
	_ = viper.BindEnv("oracle.timeout")
	_ = viper.BindEnv("oracle.api_key_env")

	_ = viper.BindEnv("audit.output")
	_ = viper.BindEnv("tracing.enabled")
	_ = viper.BindEnv("dev_mode")
}

// LoadConfig reads the configuration file, applies environment overrides
// and defaults, and returns the Config. Callers apply CLI flag overrides
// and then call cfg.Validate().
func LoadConfig() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found: continue with env vars and defaults only.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()
	return &cfg, nil
}
