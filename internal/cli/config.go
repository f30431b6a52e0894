package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/aerogramlab/aerogram/pkg/cache"
	"github.com/aerogramlab/aerogram/pkg/errors"
	"github.com/aerogramlab/aerogram/pkg/pipeline"
	"github.com/aerogramlab/aerogram/pkg/store"
)

// configFileName is the default config file looked up when --config is not set.
const configFileName = "aerogram.toml"

// Config is the on-disk TOML configuration. All sections are optional;
// flags override anything set here.
type Config struct {
	Render pipeline.Options `toml:"render"`
	Serve  ServeConfig      `toml:"serve"`
}

// ServeConfig configures the HTTP service.
type ServeConfig struct {
	Addr  string            `toml:"addr"`
	Redis cache.RedisConfig `toml:"redis"`
	Mongo store.MongoConfig `toml:"mongo"`
}

// loadConfig reads a TOML config file. When path is empty, the default
// locations are tried in order and a zero Config is returned if none exists.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = findConfig()
		if path == "" {
			return &Config{}, nil
		}
	}

	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if explicit && os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "config file not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing config %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q in %s", undecoded[0].String(), path)
	}
	return &cfg, nil
}

// findConfig returns the first existing default config path, or "".
func findConfig() string {
	candidates := []string{configFileName}
	if dir := configDir(); dir != "" {
		candidates = append(candidates, filepath.Join(dir, configFileName))
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// configDir returns the per-user config directory following XDG conventions.
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}
