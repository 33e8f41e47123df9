package fire

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/tailscale/hujson"

	"github.com/hupe1980/fire/codec"
	"github.com/hupe1980/fire/store"
)

// ErrInvalidConfig is returned by LoadConfig and Config.Validate.
var ErrInvalidConfig = errors.New("fire: invalid config")

// Config is the file form of the options accepted by Create and Open.
// Zero fields keep their defaults.
type Config struct {
	RowsPerChunk     int    `json:"rows_per_chunk,omitempty" yaml:"rows_per_chunk,omitempty"`
	Compression      string `json:"compression,omitempty" yaml:"compression,omitempty"`
	CompressionLevel int    `json:"compression_level,omitempty" yaml:"compression_level,omitempty"`
	Shuffle          bool   `json:"shuffle,omitempty" yaml:"shuffle,omitempty"`
	Codec            string `json:"codec,omitempty" yaml:"codec,omitempty"`
	IndexPath        string `json:"index_path,omitempty" yaml:"index_path,omitempty"`

	ReadCacheBytes     int64 `json:"read_cache_bytes,omitempty" yaml:"read_cache_bytes,omitempty"`
	MemoryLimitBytes   int64 `json:"memory_limit_bytes,omitempty" yaml:"memory_limit_bytes,omitempty"`
	IOLimitBytesPerSec int64 `json:"io_limit_bytes_per_sec,omitempty" yaml:"io_limit_bytes_per_sec,omitempty"`
	Mmap               bool  `json:"mmap,omitempty" yaml:"mmap,omitempty"`

	// LogLevel enables a text logger on stderr ("debug", "info", "warn",
	// "error"). Empty disables logging.
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
}

// DefaultConfig returns the configuration matching the defaults of Create.
func DefaultConfig() Config {
	d := store.DefaultOptions()
	return Config{
		RowsPerChunk: d.RowsPerChunk,
		Compression:  d.Compression.String(),
		Codec:        d.Codec.Name(),
		IndexPath:    DefaultIndexPath,
	}
}

// LoadConfig reads a configuration file. Files ending in .yaml or .yml are
// parsed as YAML; anything else as JSON with comments and trailing commas.
// Unknown keys are rejected. Fields absent from the file keep the values
// of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is user supplied
	if err != nil {
		return Config{}, fmt.Errorf("fire: read config: %w", err)
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict())
	default:
		err = decodeJSONC(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w %s: %w", ErrInvalidConfig, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func decodeJSONC(data []byte, v any) error {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("invalid JSONC: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// Validate checks that every field names a known setting and that the
// resulting layout is valid.
func (c Config) Validate() error {
	if _, err := c.storeOptions(); err != nil {
		return err
	}
	if _, err := c.logLevel(); err != nil {
		return err
	}
	if strings.Contains(c.IndexPath, "/") {
		return fmt.Errorf("%w: index path %q must not contain '/'", ErrInvalidConfig, c.IndexPath)
	}
	if c.ReadCacheBytes < 0 || c.MemoryLimitBytes < 0 || c.IOLimitBytesPerSec < 0 {
		return fmt.Errorf("%w: limits must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (c Config) storeOptions() (store.Options, error) {
	o := store.DefaultOptions()
	if c.RowsPerChunk != 0 {
		o.RowsPerChunk = c.RowsPerChunk
	}
	if c.Compression != "" {
		comp, err := store.ParseCompression(c.Compression)
		if err != nil {
			return o, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		o.Compression = comp
	}
	o.CompressionLevel = c.CompressionLevel
	o.Shuffle = c.Shuffle
	if c.Codec != "" {
		cd, ok := codec.ByName(c.Codec)
		if !ok {
			return o, fmt.Errorf("%w: unknown codec %q", ErrInvalidConfig, c.Codec)
		}
		o.Codec = cd
	}
	if err := o.Validate(); err != nil {
		return o, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return o, nil
}

func (c Config) logLevel() (*slog.Level, error) {
	if c.LogLevel == "" {
		return nil, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &lvl, nil
}

// Options converts the configuration into options for Create and Open.
// Options given after these on the same call take precedence.
func (c Config) Options() ([]Option, error) {
	so, err := c.storeOptions()
	if err != nil {
		return nil, err
	}
	lvl, err := c.logLevel()
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithRowsPerChunk(so.RowsPerChunk),
		WithCompression(so.Compression, so.CompressionLevel),
		WithShuffle(so.Shuffle),
		WithCodec(so.Codec),
		WithResourceLimits(c.MemoryLimitBytes, c.IOLimitBytesPerSec),
	}
	if c.IndexPath != "" {
		opts = append(opts, WithIndexPath(c.IndexPath))
	}
	if c.ReadCacheBytes > 0 {
		opts = append(opts, WithReadCache(c.ReadCacheBytes))
	}
	if c.Mmap {
		opts = append(opts, WithMmap(true))
	}
	if lvl != nil {
		opts = append(opts, WithLogLevel(*lvl))
	}
	return opts, nil
}
