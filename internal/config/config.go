package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/movingmnist/internal/core/dataset"
	"github.com/zeusync/movingmnist/internal/core/env"
	"github.com/zeusync/movingmnist/internal/core/errs"
	"github.com/zeusync/movingmnist/internal/core/observability/log"
	"github.com/zeusync/movingmnist/internal/core/sprites"
	"github.com/zeusync/movingmnist/internal/server"
)

const (
	SourceSynthetic = "synthetic"
	SourceIDX       = "idx"

	DefaultNumSourceImages = 1000
)

// Source selects where sprites come from.
type Source struct {
	Kind string `yaml:"kind"`
	// Dir holds the IDX files when Kind is idx.
	Dir string `yaml:"dir"`
}

// Config is the full loader configuration as read from YAML.
type Config struct {
	Train           bool   `yaml:"train"`
	BatchSize       int    `yaml:"batch_size"`
	NumSourceImages int    `yaml:"num_source_images"`
	DigitsPerImage  int    `yaml:"digits_per_image"`
	SeqLen          int    `yaml:"seq_len"`
	Seed            uint64 `yaml:"seed"`
	Workers         int    `yaml:"workers"`
	// Device is a placement hint carried through for logging only.
	Device        int    `yaml:"device"`
	MaxBatchBytes int64  `yaml:"max_batch_bytes"`
	LogLevel      string `yaml:"log_level"`

	Source Source        `yaml:"source"`
	Server server.Config `yaml:"server"`
}

func Default() Config {
	return Config{
		Train:           true,
		BatchSize:       dataset.DefaultBatchSize,
		NumSourceImages: DefaultNumSourceImages,
		DigitsPerImage:  env.DefaultDigits,
		SeqLen:          env.DefaultSeqLen,
		Seed:            dataset.DefaultSeed,
		LogLevel:        "info",
		Source:          Source{Kind: SourceSynthetic},
		Server:          server.DefaultConfig(),
	}
}

// LoadYAML decodes r over Default. Unknown keys are rejected.
func LoadYAML(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w: %w", errs.ErrInvalidConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return LoadYAML(bytes.NewReader(data))
}

// Validate checks every section and reports the first problem found.
func (c Config) Validate() error {
	if c.NumSourceImages <= 0 {
		return errs.New(errs.ErrInvalidConfiguration, "num_source_images must be positive").
			WithContext("num_source_images", c.NumSourceImages)
	}
	if c.Device < 0 {
		return errs.New(errs.ErrInvalidConfiguration, "device must not be negative")
	}
	if err := c.Env().Validate(); err != nil {
		return err
	}
	if err := c.Dataset().Validate(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.Source.Kind {
	case SourceSynthetic:
	case SourceIDX:
		if c.Source.Dir == "" {
			return errs.New(errs.ErrInvalidConfiguration, "source.dir is required for idx sources")
		}
	default:
		return errs.New(errs.ErrInvalidConfiguration, "unknown source kind").WithContext("kind", c.Source.Kind)
	}
	return c.Server.Validate()
}

func (c Config) Env() env.Config {
	return env.Config{SeqLen: c.SeqLen, DigitsPerSequence: c.DigitsPerImage}
}

func (c Config) Dataset() dataset.Config {
	return dataset.Config{
		BatchSize:     c.BatchSize,
		Seed:          c.Seed,
		Workers:       c.Workers,
		MaxBatchBytes: c.MaxBatchBytes,
	}
}

func (c Config) Level() (log.Level, error) {
	return log.ParseLevel(c.LogLevel)
}

func (c Config) Split() sprites.Split {
	return sprites.SplitFor(c.Train)
}

// Provider returns the sprite source named by Source.Kind.
func (c Config) Provider() (sprites.Provider, error) {
	switch c.Source.Kind {
	case SourceIDX:
		return sprites.IDXProvider{Dir: c.Source.Dir}, nil
	case SourceSynthetic:
		return sprites.SyntheticProvider{Count: c.NumSourceImages}, nil
	default:
		return nil, errs.New(errs.ErrInvalidConfiguration, "unknown source kind").WithContext("kind", c.Source.Kind)
	}
}
