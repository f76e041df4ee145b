package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "MINORCHANGES"

// newViper builds a pre-configured Viper instance: YAML file type,
// MINORCHANGES_ env prefix, automatic env binding, a key replacer that maps
// "." to "_" so that nested keys like "engine.max_variants" resolve to
// "MINORCHANGES_ENGINE_MAX_VARIANTS", and every default registered.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	registerDefaults(v)
	return v
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set.  Missing
// files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("config: failed to load env files %v: %w", existing, err)
	}
	return nil
}

// Load reads the YAML file at configPath, merges any MINORCHANGES_*
// environment variable overrides, applies defaults for unset fields, and
// validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from MINORCHANGES_* environment
// variables and defaults, with no config file required.
//
//	MINORCHANGES_<SECTION>_<FIELD>   e.g.  MINORCHANGES_WORKER_CONCURRENCY
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// LoadOptional calls Load when configPath is non-empty and LoadFromEnv
// otherwise.
func LoadOptional(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	return Load(configPath)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	// Env values for list keys arrive as one comma separated string.
	cfg.Engine.Rules = splitList(cfg.Engine.Rules)
	cfg.Engine.ElementTransformations = splitList(cfg.Engine.ElementTransformations)
	cfg.Output.Sinks = splitList(cfg.Output.Sinks)
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file is modified on disk.  Only settings that
// are safe to swap at runtime (log level, request limits) should be applied
// by the callback.  Watch is non-blocking; it fails only when the file cannot
// be read up front.  An invalid file is skipped and reported through onError
// when it is non-nil.  Editors that truncate before writing produce an empty
// file event, which is ignored.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		if fi, err := os.Stat(configPath); err != nil || fi.Size() == 0 {
			return
		}
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

//Personal.AI order the ending
