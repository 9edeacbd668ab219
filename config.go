package declari

import (
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxSourceSize = "4MiB"
	DefaultStream        = "default"
)

// Config describes where templates come from, where compiled
// artifacts go and how the compiler treats them.
type Config struct {
	SourceDir  string `yaml:"source_dir"`
	CompileDir string `yaml:"compile_dir"`
	// Streams maps additional stream names to directories. Templates
	// refer to them as "stream:path".
	Streams            map[string]string `yaml:"streams"`
	AllowRelativePaths bool              `yaml:"allow_relative_paths"`
	// ExpressionEngine is used for expressions without an engine prefix
	ExpressionEngine string `yaml:"expression_engine"`
	MaxSourceSize    string `yaml:"max_source_size"`
	Workers          int    `yaml:"workers"`
	CompressDynamic  bool   `yaml:"compress_dynamic"`

	maxSourceSize uint64
}

func DefaultConfig() *Config {
	return &Config{
		SourceDir:     ".",
		CompileDir:    ".",
		MaxSourceSize: DefaultMaxSourceSize,
		Workers:       1,
		maxSourceSize: 4 << 20,
	}
}

// LoadConfig reads a YAML configuration file. Fields missing from the
// file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration '%s': %w", path, err)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Clone returns a copy of c that shares no mutable state with it.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Streams = maps.Clone(c.Streams)
	return &clone
}

// Validate checks the configuration and computes the derived values.
func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return fmt.Errorf("%w: source_dir cannot be empty", ErrInvalidConfig)
	}
	if c.CompileDir == "" {
		return fmt.Errorf("%w: compile_dir cannot be empty", ErrInvalidConfig)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	for name := range c.Streams {
		if name == "" || name == DefaultStream || strings.ContainsRune(name, ':') {
			return fmt.Errorf("%w: invalid stream name '%s'", ErrInvalidConfig, name)
		}
	}

	size := strings.TrimSpace(c.MaxSourceSize)
	if size == "" || size == "0" {
		c.maxSourceSize = 0
		return nil
	}
	parsed, err := humanize.ParseBytes(size)
	if err != nil {
		return fmt.Errorf("%w: invalid max_source_size '%s'", ErrInvalidConfig, c.MaxSourceSize)
	}
	c.maxSourceSize = parsed
	return nil
}

// SourceSizeLimit returns the maximum accepted source size in bytes.
// Zero means unlimited.
func (c *Config) SourceSizeLimit() uint64 {
	return c.maxSourceSize
}
