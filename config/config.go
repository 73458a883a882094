// Package config loads GlobalConfig, the settings shared by every Kelvin
// entry point (store location, digest algorithm, remote backend, log
// level). It is modeled on the teacher's api.GlobalConfig (field shape and
// Validate), wired onto spf13/viper for the env/file loading the teacher
// left to its own flag parsing, following the viper init sequence used by
// the HORNET-Storage relay's lib/config.InitConfig (SetEnvPrefix,
// AutomaticEnv, SetConfigName/Type/AddConfigPath, optional ReadInConfig).
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/dusk-network/kelvin/digest"
	"github.com/dusk-network/kelvin/internal/logging"
)

// GlobalConfig is the configuration shared by every command built on top
// of the substrate.
type GlobalConfig struct {
	// DigestFunction names the hash used to address blobs in the Store.
	// One of "sha256", "blake3".
	DigestFunction string `mapstructure:"digest_function"`
	// StoreDir is the on-disk root a store.Store opens (spec.md §6 layout).
	StoreDir string `mapstructure:"store_dir"`
	// RootName is the name under <StoreDir>/roots used by kelvin.OpenRoot.
	RootName string `mapstructure:"root_name"`
	// CacheBytes bounds the in-memory read cache (store.WithCacheBytes).
	CacheBytes int64 `mapstructure:"cache_bytes"`
	// Remote is an optional grpc(s):// REAPI endpoint; when set, the store
	// backend is store/remote.Backend instead of the local disk backend.
	Remote string `mapstructure:"remote"`
	// LogLevel is one of "error", "warning", "basic", "debug".
	LogLevel string `mapstructure:"log_level"`
}

// Validate reports every problem with c at once, following the teacher's
// GlobalConfig.Validate shape (accumulate issues, return one joined error).
func (c GlobalConfig) Validate() error {
	var issues []string

	if _, ok := digest.ParseAlgorithm(c.DigestFunction); !ok {
		issues = append(issues, fmt.Sprintf(`digest_function must be one of "sha256", "blake3", got %q`, c.DigestFunction))
	}
	if c.StoreDir == "" {
		issues = append(issues, "store_dir must be provided")
	}
	if c.RootName == "" {
		issues = append(issues, "root_name must be provided")
	}
	if c.CacheBytes < 0 {
		issues = append(issues, "cache_bytes must not be negative")
	}
	if c.Remote != "" {
		scheme, _, found := strings.Cut(c.Remote, "://")
		if !found || (scheme != "grpc" && scheme != "grpcs") {
			issues = append(issues, `remote must start with "grpc://" or "grpcs://"`)
		}
	}
	switch c.LogLevel {
	case "", "error", "warning", "basic", "debug":
	default:
		issues = append(issues, `log_level must be one of "error", "warning", "basic", "debug"`)
	}

	if len(issues) > 0 {
		return errors.New("config: invalid configuration:\n  " + strings.Join(issues, "\n  "))
	}
	return nil
}

// DigestAlgorithm resolves DigestFunction to a digest.Algorithm. Call only
// after Validate has passed.
func (c GlobalConfig) DigestAlgorithm() digest.Algorithm {
	algo, _ := digest.ParseAlgorithm(c.DigestFunction)
	return algo
}

// Default returns the configuration used when nothing else is set.
func Default() GlobalConfig {
	return GlobalConfig{
		DigestFunction: "sha256",
		StoreDir:       "~/.cache/kelvin",
		RootName:       "default",
		CacheBytes:     64 << 20,
		Remote:         "",
		LogLevel:       "basic",
	}
}

// envPrefix is the environment variable prefix consulted by Load, e.g.
// KELVIN_STORE_DIR overrides StoreDir.
const envPrefix = "KELVIN"

// Load reads GlobalConfig from (in ascending priority) built-in defaults,
// an optional config file, and KELVIN_-prefixed environment variables.
// configPaths lists directories to search for a "kelvin.{yaml,json,toml}"
// file; a missing file is not an error, matching the teacher's tolerance
// for running with flags/env alone.
func Load(configPaths ...string) (GlobalConfig, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("digest_function", def.DigestFunction)
	v.SetDefault("store_dir", def.StoreDir)
	v.SetDefault("root_name", def.RootName)
	v.SetDefault("cache_bytes", def.CacheBytes)
	v.SetDefault("remote", def.Remote)
	v.SetDefault("log_level", def.LogLevel)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("kelvin")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}
	if len(configPaths) == 0 {
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return GlobalConfig{}, fmt.Errorf("config: reading config file: %w", err)
		}
		logging.Debugf("config: no config file found, using defaults and environment")
	}

	var cfg GlobalConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return GlobalConfig{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return GlobalConfig{}, err
	}
	return cfg, nil
}
