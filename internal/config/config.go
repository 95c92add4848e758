package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/anas-shakeel/go-bmp-blend/internal/blend"
)

// Config controls how two bitmaps are blended
type Config struct {
	Sampler string `yaml:"sampler"` // "bilinear" or "legacy"
	Workers int    `yaml:"workers"` // row bands evaluated in parallel; 0 or 1 runs sequentially
	Preview bool   `yaml:"preview"` // print the blended image in the terminal
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Sampler: blend.Bilinear.String(),
		Workers: 1,
	}
}

// LoadConfig reads a YAML configuration file on top of the defaults.
// A missing file is not an error; the defaults are returned.
func LoadConfig(configPath string) (Config, error) {
	cfg := Default()
	if configPath == "" {
		return cfg, nil
	}

	configData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read configuration file '%s': %w", configPath, err)
	}

	if err := yaml.UnmarshalStrict(configData, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse configuration file '%s': %w", configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration file '%s': %w", configPath, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML
func SaveConfig(configPath string, cfg Config) error {
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write configuration file '%s': %w", configPath, err)
	}
	return nil
}

func (c Config) Validate() error {
	_, err := c.BlendOptions()
	return err
}

// BlendOptions converts the configuration into options for blend.Combine
func (c Config) BlendOptions() (blend.Options, error) {
	sampler, err := blend.ParseSampler(c.Sampler)
	if err != nil {
		return blend.Options{}, err
	}
	if c.Workers < 0 {
		return blend.Options{}, fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return blend.Options{Sampler: sampler, Workers: c.Workers}, nil
}
