package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix marks environment overrides: GLASSRADAR_TRACKER_COOLDOWN maps
// to tracker.cooldown.
const EnvPrefix = "GLASSRADAR_"

// ErrInvalid is returned when the merged configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

var validate = validator.New()

// Source loads one configuration layer into koanf. Later sources override
// earlier ones.
type Source interface {
	Name() string
	Load(k *koanf.Koanf) error
}

// DefaultSource loads DefaultConfig.
type DefaultSource struct{}

func (s *DefaultSource) Name() string { return "defaults" }

func (s *DefaultSource) Load(k *koanf.Koanf) error {
	if err := k.Load(confmap.Provider(DefaultConfigAsMap(), "."), nil); err != nil {
		return fmt.Errorf("error loading defaults: %w", err)
	}
	return nil
}

// FileSource loads a YAML file. An empty path is skipped; a path that was
// given but does not exist is an error.
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string { return "file:" + s.Path }

func (s *FileSource) Load(k *koanf.Koanf) error {
	if s.Path == "" {
		return nil
	}
	if _, err := os.Stat(s.Path); err != nil {
		return fmt.Errorf("error checking config file %s: %w", s.Path, err)
	}
	if err := k.Load(file.Provider(s.Path), yaml.Parser()); err != nil {
		return fmt.Errorf("error loading config file %s: %w", s.Path, err)
	}
	return nil
}

// EnvSource loads prefixed environment variables, underscores mapping to
// dots.
type EnvSource struct {
	Prefix string
}

func (s *EnvSource) Name() string { return "env" }

func (s *EnvSource) Load(k *koanf.Koanf) error {
	prefix := s.Prefix
	if prefix == "" {
		prefix = EnvPrefix
	}
	if err := k.Load(env.Provider(prefix, ".", func(key string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(key, prefix)), "_", ".")
	}), nil); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}
	return nil
}

// FlagSource loads command-line flags that were set explicitly.
type FlagSource struct {
	Flags *pflag.FlagSet
}

func (s *FlagSource) Name() string { return "flags" }

func (s *FlagSource) Load(k *koanf.Koanf) error {
	if s.Flags == nil {
		return nil
	}
	if err := k.Load(posflag.Provider(s.Flags, ".", k), nil); err != nil {
		return fmt.Errorf("error loading command-line flags: %w", err)
	}
	if f := s.Flags.Lookup("debug"); f != nil && f.Value.String() == "true" {
		_ = k.Set("log.level", "debug")
	}
	return nil
}

// DefaultSources returns defaults, file, env and flags, in that order.
func DefaultSources(path string, flags *pflag.FlagSet) []Source {
	return []Source{
		&DefaultSource{},
		&FileSource{Path: path},
		&EnvSource{Prefix: EnvPrefix},
		&FlagSource{Flags: flags},
	}
}

// Load merges all sources and validates the result.
func Load(flags *pflag.FlagSet, path string) (Config, error) {
	return LoadFrom(DefaultSources(path, flags)...)
}

// LoadFrom merges the given sources in order and validates the result.
func LoadFrom(sources ...Source) (Config, error) {
	k := koanf.New(".")
	for _, src := range sources {
		if err := src.Load(k); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field ranges and band ordering.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			v := verrs[0]
			return fmt.Errorf("%w: %s failed %q (value %v)", ErrInvalid, v.Namespace(), v.Tag(), v.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// BindFlags defines the flags that override configuration keys.
func BindFlags(flags *pflag.FlagSet) {
	def := DefaultConfig()

	flags.Bool("debug", false, "Enable debug logging")
	flags.String("log.level", def.Log.Level, "Log level (trace, debug, info, warn, error)")
	flags.String("log.format", def.Log.Format, "Log format (console, json)")

	flags.Bool("demo", def.Demo, "Use synthetic advertisements instead of a Bluetooth adapter")
	flags.String("adapter", def.Adapter, "Bluetooth adapter to use (Linux)")
	flags.Bool("tui", def.TUI, "Show the terminal monitor")
	flags.String("led", def.LED, "Sysfs LED directory to blink, e.g. /sys/class/leds/led0")
	flags.String("out", def.Out, "Write the event stream to this file instead of stdout")

	flags.Int("rssi.threshold", def.RSSI.Threshold, "Ignore advertisements weaker than this (dBm)")
	flags.Bool("tiers.medium", def.Tiers.Medium, "Alert on MEDIUM tier company IDs")
	flags.Bool("tiers.low", def.Tiers.Low, "Alert on LOW tier company IDs")
	flags.Duration("tracker.cooldown", def.Tracker.Cooldown, "Suppress repeat detections of a device for this long")
	flags.Duration("alert.duration", def.Alert.Duration, "How long an alert blinks")
	flags.String("database.path", def.Database.Path, "Fingerprint database YAML replacing the built-in one")
}
