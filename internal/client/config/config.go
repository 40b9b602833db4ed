// Package config loads client configuration from a YAML file, environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix namespaces the environment variables read by Load,
// e.g. RECALLFORGE_SERVER_URL.
const EnvPrefix = "RECALLFORGE_"

// Config holds the client settings.
type Config struct {
	// ServerURL is the base URL of the RecallForge API.
	ServerURL string `koanf:"server_url" validate:"required,url"`
	// DBPath is the path of the local BoltDB file holding the token pair.
	DBPath string `koanf:"db_path" validate:"required"`
	// HTTPTimeout bounds every outbound request.
	HTTPTimeout time.Duration `koanf:"http_timeout" validate:"gt=0"`
	// PollInterval is the delay between ingestion status queries.
	PollInterval time.Duration `koanf:"poll_interval" validate:"gt=0"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// RegisterFlags declares the client flags with their defaults on the given
// flag set. The flag values double as configuration defaults.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("server-url", "http://localhost:8000", "Base URL of the RecallForge server")
	flags.String("db-path", "recallforge.db", "Path to the local token database")
	flags.Duration("http-timeout", 30*time.Second, "Timeout for every outbound request")
	flags.Duration("poll-interval", 2*time.Second, "Interval between ingestion status checks")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json)")
	flags.String("config", "", "Path to a YAML config file (optional)")
}

// Load merges the config file (when present), RECALLFORGE_* environment
// variables and flags into a validated Config. Flags explicitly set on the
// command line win over the environment, which wins over the file.
func Load(flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if configFile, _ := flags.GetString("config"); configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("config file %s does not exist", configFile)
			}
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := k.Load(posflag.ProviderWithValue(flags, ".", k, flagKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// envKey maps RECALLFORGE_SERVER_URL to server_url.
func envKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// flagKey maps server-url to server_url; the config flag itself is not a
// setting and is dropped.
func flagKey(key, value string) (string, any) {
	if key == "config" {
		return "", nil
	}
	return strings.ReplaceAll(key, "-", "_"), value
}
