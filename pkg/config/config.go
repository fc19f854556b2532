// Package config defines the engine configuration.
//
// All knobs live in an explicit Config value passed into the comparator's
// constructor; nothing is read from ambient process state at run time. A
// TOML file supplies defaults and CLI flags override individual fields.
//
// Example pixeldrift.toml:
//
//	corpus_dir = "../resvg-test-suite/svg"
//	work_dir = "/tmp/pixeldrift"
//	noise_floor = 20
//	render_timeout = "60s"
//
//	[candidate]
//	simplify = ["usvg", "{input}", "{output}", "--dpi", "96"]
//	rasterize = ["node", "svgrender.js", "{input}", "{output}", "200"]
//
//	[reference]
//	rasterize = ["node", "svgrender.js", "{input}", "{output}", "200"]
//
//	[cache]
//	backend = "file"
package config

import (
	"time"

	"github.com/BurntSushi/toml"

	"github.com/pixeldrift/pixeldrift/pkg/errors"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Differ implementations.
const (
	DifferNative = "native"
	DifferMagick = "magick"
)

// Defaults.
const (
	DefaultNoiseFloor    = 20 // pixels of AE absorbed as anti-aliasing jitter
	DefaultExt           = ".svg"
	DefaultRenderTimeout = 60 * time.Second
)

// CommandConfig is an argv template for one renderer operation.
type CommandConfig struct {
	Simplify  []string `toml:"simplify"`
	Rasterize []string `toml:"rasterize"`
	Dir       string   `toml:"dir"`
}

// CacheConfig selects and configures the fingerprint cache backend.
type CacheConfig struct {
	Backend  string `toml:"backend"` // file, redis, or none
	Path     string `toml:"path"`    // file backend: cache file; empty means <work_dir>/cache.csv
	Addr     string `toml:"addr"`    // redis backend: host:port
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Key      string `toml:"key"` // redis backend: hash key
}

// Config is the complete engine configuration.
type Config struct {
	CorpusDir string `toml:"corpus_dir"`
	CorpusExt string `toml:"corpus_ext"`
	WorkDir   string `toml:"work_dir"`

	AllowFile        string `toml:"allow_file"`         // CSV stem,maxAE; optional
	CrashAllowedFile string `toml:"crash_allowed_file"` // one stem per line; optional

	NoiseFloor    int      `toml:"noise_floor"`
	CIMode        bool     `toml:"ci_mode"`
	Differ        string   `toml:"differ"`
	RenderTimeout duration `toml:"render_timeout"`

	Candidate CommandConfig `toml:"candidate"`
	Reference CommandConfig `toml:"reference"`
	Cache     CacheConfig   `toml:"cache"`
}

// duration wraps time.Duration for TOML decoding of strings like "60s".
type duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// Default returns a Config with defaults applied; callers fill in the
// corpus and renderer settings.
func Default() Config {
	return Config{
		CorpusExt:     DefaultExt,
		NoiseFloor:    DefaultNoiseFloor,
		Differ:        DifferNative,
		RenderTimeout: duration(DefaultRenderTimeout),
		Cache:         CacheConfig{Backend: CacheFile},
	}
}

// Load reads a TOML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig,
			"config %s: unknown key %s", path, undecoded[0].String())
	}
	return cfg, nil
}

// Timeout returns the per-render timeout as a time.Duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.RenderTimeout)
}

// SetTimeout sets the per-render timeout.
func (c *Config) SetTimeout(d time.Duration) {
	c.RenderTimeout = duration(d)
}

// Validate checks that the configuration is complete enough to run.
func (c Config) Validate() error {
	if c.CorpusDir == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "corpus directory is required")
	}
	if c.WorkDir == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "work directory is required")
	}
	if c.NoiseFloor < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "noise floor cannot be negative")
	}
	if len(c.Candidate.Simplify) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "candidate simplify command is required")
	}
	if len(c.Candidate.Rasterize) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "candidate rasterize command is required")
	}
	if len(c.Reference.Rasterize) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "reference rasterize command is required")
	}
	switch c.Differ {
	case DifferNative, DifferMagick:
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"unknown differ %q (must be %q or %q)", c.Differ, DifferNative, DifferMagick)
	}
	switch c.Cache.Backend {
	case CacheFile, CacheRedis, CacheNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"unknown cache backend %q (must be %q, %q, or %q)",
			c.Cache.Backend, CacheFile, CacheRedis, CacheNone)
	}
	return nil
}
