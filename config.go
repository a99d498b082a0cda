package seqgraph

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/seqgraph/codec"
	"github.com/hupe1980/seqgraph/persistence"
)

var configValidate = validator.New()

// Config is the file form of the Graph options.
//
//	log:
//	  level: info
//	  format: json
//	codec: yaml
//	compression: zstd
//	resource:
//	  max_concurrent_searches: 8
//	storage:
//	  backend: local
//	  path: ./data
type Config struct {
	Log         LogConfig      `json:"log" yaml:"log"`
	Codec       string         `json:"codec" yaml:"codec" validate:"omitempty,oneof=json go-json yaml"`
	Compression string         `json:"compression" yaml:"compression" validate:"omitempty,oneof=none lz4 zstd xz"`
	Validation  bool           `json:"validate" yaml:"validate"`
	Resource    ResourceConfig `json:"resource" yaml:"resource"`
	Storage     StorageConfig  `json:"storage" yaml:"storage"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `json:"format" yaml:"format" validate:"omitempty,oneof=text json"`
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seqgraph: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates a YAML configuration.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("seqgraph: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration against its validation tags.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("seqgraph: invalid config: %w", err)
	}
	return nil
}

func (l LogConfig) logger() *Logger {
	var level slog.Level
	switch strings.ToLower(l.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	case "info":
		level = slog.LevelInfo
	default:
		return NoopLogger()
	}
	if l.Format == "json" {
		return NewJSONLogger(level)
	}
	return NewTextLogger(level)
}

// Options converts the configuration into Graph options. Storage is not
// part of the options; open it with Storage.Open.
func (c *Config) Options() ([]Option, error) {
	opts := []Option{
		WithLogger(c.Log.logger()),
		WithResourceConfig(c.Resource),
		WithValidation(c.Validation),
	}
	if c.Codec != "" {
		cd, err := codec.Lookup(c.Codec)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithCodec(cd))
	}
	if c.Compression != "" {
		comp, err := persistence.ParseCompression(c.Compression)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithCompression(comp))
	}
	return opts, nil
}
