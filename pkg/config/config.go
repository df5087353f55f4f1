// Package config loads stratum's configuration: embedded defaults, then an
// optional user config file, then STRATUM_* environment variables, each
// layer overriding the previous one.
package config

import (
	_ "embed"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	stratumerrors "github.com/arthur-debert/stratum/pkg/errors"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// Config is the decoded configuration.
type Config struct {
	// FactsDB is the path of the facts database. Empty resolves to the
	// per-user data directory.
	FactsDB string `koanf:"facts_db"`

	// Color controls colored output: auto, always or never.
	Color string `koanf:"color"`

	// Verbosity is the base log verbosity; the -v flag adds to it.
	Verbosity int `koanf:"verbosity"`

	Compile CompileConfig `koanf:"compile"`
}

// CompileConfig holds compile-command settings.
type CompileConfig struct {
	// Parallel compiles independent layers concurrently.
	Parallel bool `koanf:"parallel"`
}

// FactsDBPath resolves the facts database location, defaulting into the XDG
// data dir.
func (c *Config) FactsDBPath() string {
	if c.FactsDB != "" {
		return c.FactsDB
	}
	return filepath.Join(xdg.DataHome, "stratum", "facts.db")
}

// userConfigPaths lists candidate config files in priority order; the first
// one that exists wins.
func userConfigPaths() []string {
	return []string{
		filepath.Join(xdg.ConfigHome, "stratum", "config.toml"),
		"stratum.toml",
	}
}

// Load builds the configuration from defaults, the user config file (if
// any) and the environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, stratumerrors.Wrap(err, stratumerrors.ErrConfigLoad, "loading default config")
	}

	// 2. User config file, first match wins
	for _, path := range userConfigPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, stratumerrors.Wrapf(err, stratumerrors.ErrConfigParse, "loading config from %s", path)
		}
		break
	}

	// 3. Environment. Double underscore nests: STRATUM_COMPILE__PARALLEL
	// -> compile.parallel, while STRATUM_FACTS_DB stays facts_db.
	err := k.Load(env.Provider("STRATUM_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "STRATUM_")), "__", ".")
	}), nil)
	if err != nil {
		return nil, stratumerrors.Wrap(err, stratumerrors.ErrConfigLoad, "loading environment overrides")
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, stratumerrors.Wrap(err, stratumerrors.ErrConfigValid, "decoding configuration")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Color {
	case "auto", "always", "never":
		return nil
	}
	return stratumerrors.Newf(stratumerrors.ErrConfigValid, "invalid color %q: expected auto, always or never", c.Color)
}
