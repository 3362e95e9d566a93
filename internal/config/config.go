package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/darmiel/rtcmint/internal/assets"
)

const (
	DefaultAddr              = ":8080"
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultShutdownTimeout   = 10 * time.Second

	StoreTypeDir = "dir"
	StoreTypeS3  = "s3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Assets AssetsConfig `yaml:"assets"`
}

// Duration accepts Go duration strings like "5s" or "1m30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type ServerConfig struct {
	// Addr is the address to listen on, e.g. ":8080".
	Addr string `yaml:"addr"`

	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`

	// ShutdownTimeout bounds the graceful shutdown on SIGINT / SIGTERM.
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

type AssetsConfig struct {
	// CacheControl is sent with every asset response.
	CacheControl string `yaml:"cache_control"`

	// Wasm and Video configure where the objects of each class live.
	// A nil class is not served.
	Wasm  *StoreConfig `yaml:"wasm,omitempty"`
	Video *StoreConfig `yaml:"video,omitempty"`
}

// StoreConfig selects the asset store of one class.
type StoreConfig struct {
	Type string `yaml:"type"` // "dir" or "s3"

	// Dir is the base directory for "dir" stores.
	Dir string `yaml:"dir,omitempty"`

	Bucket string `yaml:"bucket,omitempty"`
	Prefix string `yaml:"prefix,omitempty"`
	Region string `yaml:"region,omitempty"`
	// Endpoint overrides the S3 endpoint, e.g. for MinIO.
	Endpoint  string `yaml:"endpoint,omitempty"`
	PathStyle bool   `yaml:"path_style,omitempty"`
}

func (s *StoreConfig) Validate() error {
	switch s.Type {
	case StoreTypeDir:
		if s.Dir == "" {
			return fmt.Errorf("dir is required")
		}
	case StoreTypeS3:
		if s.Bucket == "" {
			return fmt.Errorf("bucket is required")
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown store type %q", s.Type)
	}
	return nil
}

// Default returns the configuration used when no file is given: both classes are served
// from ./public/<class>.
func Default() *Config {
	cfg := &Config{
		Assets: AssetsConfig{
			Wasm:  &StoreConfig{Type: StoreTypeDir, Dir: filepath.Join("public", assets.ClassWasm)},
			Video: &StoreConfig{Type: StoreTypeDir, Dir: filepath.Join("public", assets.ClassVideo)},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the configuration file at the given path.
// It returns a Config struct or an error if loading/parsing/validation fails.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	// relative directories are resolved against the config file
	cfg.resolveDirs(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes, defaults and validates a YAML document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadHeaderTimeout.Duration == 0 {
		c.Server.ReadHeaderTimeout.Duration = DefaultReadHeaderTimeout
	}
	if c.Server.ShutdownTimeout.Duration == 0 {
		c.Server.ShutdownTimeout.Duration = DefaultShutdownTimeout
	}
	if c.Assets.CacheControl == "" {
		c.Assets.CacheControl = assets.DefaultCacheControl
	}
}

func (c *Config) resolveDirs(base string) {
	for _, s := range []*StoreConfig{c.Assets.Wasm, c.Assets.Video} {
		if s != nil && s.Type == StoreTypeDir && !filepath.IsAbs(s.Dir) {
			s.Dir = filepath.Join(base, s.Dir)
		}
	}
}

func (c *Config) Validate() error {
	if c.Server.ReadHeaderTimeout.Duration < 0 {
		return fmt.Errorf("server.read_header_timeout must not be negative")
	}
	if c.Server.ShutdownTimeout.Duration < 0 {
		return fmt.Errorf("server.shutdown_timeout must not be negative")
	}
	if c.Assets.Wasm != nil {
		if err := c.Assets.Wasm.Validate(); err != nil {
			return fmt.Errorf("assets.%s: %w", assets.ClassWasm, err)
		}
	}
	if c.Assets.Video != nil {
		if err := c.Assets.Video.Validate(); err != nil {
			return fmt.Errorf("assets.%s: %w", assets.ClassVideo, err)
		}
	}
	return nil
}
