package project

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"rsfront/internal/layout"
)

// ConfigName is the project file looked up from the working directory.
const ConfigName = "rsfront.toml"

// Config mirrors rsfront.toml. Zero values mean "use the default".
type Config struct {
	Path string `toml:"-"` // file the config was read from, empty for defaults

	Target TargetConfig `toml:"target"`
	Limits LimitsConfig `toml:"limits"`
	Trace  TraceConfig  `toml:"trace"`
	Cache  CacheConfig  `toml:"cache"`
	Run    RunConfig    `toml:"run"`
}

type TargetConfig struct {
	Triple      string `toml:"triple"` // empty: derived from pointer_size
	PointerSize int    `toml:"pointer_size"`
}

type LimitsConfig struct {
	MaxDiagnostics int `toml:"max_diagnostics"`
	MacroRecursion int `toml:"macro_recursion"`
	MonoDepth      int `toml:"mono_depth"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
	Format string `toml:"format"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// RunConfig bounds the reference interpreter.
type RunConfig struct {
	MaxDepth    int `toml:"max_depth"`
	MemoryLimit int `toml:"memory_limit"`
}

// ErrBadConfig wraps every validation failure of a config file.
var ErrBadConfig = errors.New("invalid project configuration")

// DefaultConfig returns the settings used when no rsfront.toml exists.
func DefaultConfig() Config {
	return Config{
		Target: TargetConfig{PointerSize: 8},
		Limits: LimitsConfig{MaxDiagnostics: 100, MacroRecursion: 64, MonoDepth: 64},
		Trace:  TraceConfig{Level: "off", Output: "-", Format: "auto"},
	}
}

// LoadConfig parses path on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: %w: unknown keys %s", path, ErrBadConfig, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadFrom finds rsfront.toml above startDir; ok reports whether one exists.
func LoadFrom(startDir string) (cfg Config, ok bool, err error) {
	path, ok, err := FindConfig(startDir)
	if err != nil || !ok {
		return DefaultConfig(), false, err
	}
	cfg, err = LoadConfig(path)
	return cfg, true, err
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if _, err := layout.TargetForPointerSize(c.Target.PointerSize); err != nil {
		return fmt.Errorf("%w: [target].pointer_size: %v", ErrBadConfig, err)
	}
	switch {
	case c.Limits.MaxDiagnostics < 0:
		return fmt.Errorf("%w: [limits].max_diagnostics must not be negative", ErrBadConfig)
	case c.Limits.MacroRecursion < 0:
		return fmt.Errorf("%w: [limits].macro_recursion must not be negative", ErrBadConfig)
	case c.Limits.MonoDepth < 0:
		return fmt.Errorf("%w: [limits].mono_depth must not be negative", ErrBadConfig)
	case c.Run.MaxDepth < 0, c.Run.MemoryLimit < 0:
		return fmt.Errorf("%w: [run] limits must not be negative", ErrBadConfig)
	}
	return nil
}

// LayoutTarget converts the [target] section.
func (c Config) LayoutTarget() layout.Target {
	t, err := layout.TargetForPointerSize(c.Target.PointerSize)
	if err != nil {
		return layout.X86_64LinuxGNU()
	}
	if c.Target.Triple != "" {
		t.Triple = c.Target.Triple
	}
	return t
}
