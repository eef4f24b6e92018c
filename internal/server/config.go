package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the connector's runtime configuration: everything that varies
// per deployment but isn't part of the catalog (configuration.json). Field
// names carry mapstructure tags so viper.Unmarshal binds them directly.
type Config struct {
	// ConnectionURI is the Postgres connection string statements are
	// executed against. Accepts a `{from_env:"NAME"}` wrapper, resolved by
	// ResolveSecrets before Connect uses it.
	ConnectionURI string `mapstructure:"connection_uri"`

	// ConfigurationPath is the directory containing configuration.json.
	ConfigurationPath string `mapstructure:"configuration_path"`

	// HostPort the HTTP server listens on, e.g. "0.0.0.0:8080".
	HostPort string `mapstructure:"host_port"`

	// IsolationLevel is passed straight through to
	// translate.BuildMutationPlan; empty defers to its own Postgres default.
	IsolationLevel string `mapstructure:"isolation_level"`

	// PoolMaxConns bounds the pgxpool.Pool's maximum connection count.
	PoolMaxConns int32 `mapstructure:"pool_max_conns"`

	// PlanCacheSize is the LRU plan cache's maximum entry count. Zero
	// disables the cache, translating and rendering on every request.
	PlanCacheSize int `mapstructure:"plan_cache_size"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`

	// Production disables the configuration-file watcher and switches the
	// logger to JSON output.
	Production bool `mapstructure:"production"`

	// ConnectTimeout bounds how long the initial pool connect's backoff
	// retry loop runs before giving up.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// defaultConfig seeds viper with SetDefault calls before a config file is
// read, so a minimal or absent config file still produces a runnable
// service.
func defaultConfig() Config {
	return Config{
		ConfigurationPath: ".",
		HostPort:          "0.0.0.0:8080",
		PoolMaxConns:      10,
		PlanCacheSize:     256,
		LogLevel:          "info",
		ConnectTimeout:    30 * time.Second,
	}
}

// LoadConfig reads configuration.yaml (or .json/.toml, anything viper
// supports) from configPath, overlaying it onto defaultConfig and any
// NDC_POSTGRES_-prefixed environment variables. Uses a fresh viper.New per
// call, never a process-wide global, so tests can load independent
// configs.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("configuration")
	v.AddConfigPath(configPath)
	v.SetEnvPrefix("NDC_POSTGRES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := defaultConfig()
	v.SetDefault("connection_uri", def.ConnectionURI)
	v.SetDefault("configuration_path", def.ConfigurationPath)
	v.SetDefault("host_port", def.HostPort)
	v.SetDefault("pool_max_conns", def.PoolMaxConns)
	v.SetDefault("plan_cache_size", def.PlanCacheSize)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("connect_timeout", def.ConnectTimeout)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("server: reading configuration: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("server: decoding configuration: %w", err)
	}
	if cfg.ConfigurationPath == "" {
		cfg.ConfigurationPath = configPath
	}
	return &cfg, nil
}

// ResolveSecrets expands the `{from_env:"NAME"}` secret-reference
// convention NDC connectors use for connection strings, so operators never
// have to put a literal credential in configuration.json.
func ResolveSecrets(raw string, lookupEnv func(string) (string, bool)) (string, error) {
	const prefix = `{from_env:"`
	const suffix = `"}`
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, prefix) || !strings.HasSuffix(trimmed, suffix) {
		return raw, nil
	}
	name := strings.TrimSuffix(strings.TrimPrefix(trimmed, prefix), suffix)
	val, ok := lookupEnv(name)
	if !ok {
		return "", fmt.Errorf("server: environment variable %q referenced by configuration is not set", name)
	}
	return val, nil
}
