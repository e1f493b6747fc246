package corehost

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pingcap/errors"
)

// Environment variables read by the configuration layer.
const (
	EnvConfig     = "COREHOST_CONFIG"
	EnvDotnetRoot = "COREHOST_DOTNET_ROOT"
	EnvPipe       = "COREHOST_PIPE"
	EnvLogLevel   = "COREHOST_LOG_LEVEL"
)

// Config configures hostfxr discovery, the default log channel and logging.
type Config struct {
	Runtime RuntimeConfig `toml:"runtime"`
	IPC     IPCConfig     `toml:"ipc"`
	Log     LogConfig     `toml:"log"`
}

type RuntimeConfig struct {
	// DotnetRoot is searched before SearchPaths.
	DotnetRoot  string   `toml:"dotnet_root"`
	SearchPaths []string `toml:"search_paths"`
	// NethostPath, when set, asks nethost for hostfxr before searching.
	NethostPath     string `toml:"nethost_path"`
	UseDefaultPaths bool   `toml:"use_default_paths"`
}

type IPCConfig struct {
	// PipeName is the log channel used when a request names none.
	PipeName string `toml:"pipe_name" validate:"omitempty,max=250"`
}

type LogConfig struct {
	Level  string `toml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `toml:"format" validate:"omitempty,oneof=text json"`
	File   string `toml:"file"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Runtime: RuntimeConfig{UseDefaultPaths: true},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig reads a TOML file over DefaultConfig, then applies environment
// overrides. Unknown keys are an error.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	if filepath.Ext(path) != ".toml" {
		return nil, errors.Errorf("config must be a .toml file: %s", path)
	}

	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Annotatef(err, "decode config %s failed", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("unknown keys in config: %v", undecoded)
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides c with the COREHOST_* environment variables that are set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDotnetRoot); v != "" {
		c.Runtime.DotnetRoot = v
	}
	if v := os.Getenv(EnvPipe); v != "" {
		c.IPC.PipeName = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Validate checks field values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Annotate(err, "invalid config")
	}
	return nil
}

// Locator builds the hostfxr Locator described by c.
func (c *Config) Locator() Locator {
	search := SearchLocator{UseDefaults: c.Runtime.UseDefaultPaths}
	if c.Runtime.DotnetRoot != "" {
		search.Roots = append(search.Roots, c.Runtime.DotnetRoot)
	}
	search.Roots = append(search.Roots, c.Runtime.SearchPaths...)
	if c.Runtime.NethostPath == "" {
		return search
	}
	return ChainLocator{NethostLocator{Path: c.Runtime.NethostPath}, search}
}

// HostOptions returns the Host options implied by c.
func (c *Config) HostOptions() []Option {
	return []Option{WithLocator(c.Locator()), WithPipeName(c.IPC.PipeName)}
}
