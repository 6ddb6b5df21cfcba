package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-yaml/yaml"
	"github.com/helpcomp/camt-harmonizer/harmonize"
	"github.com/helpcomp/camt-harmonizer/present"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

type harmonizeConfig struct {
	BatchSize     int                      `yaml:"batch_size"`
	BatchDelay    string                   `yaml:"batch_delay"`
	Substitutions []harmonize.Substitution `yaml:"substitutions"`
}

type outputConfig struct {
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type MasterConfig struct {
	Harmonize      harmonizeConfig      `yaml:"harmonize"`
	LabelOverrides []harmonize.Override `yaml:"labelOverrides"`
	Output         outputConfig         `yaml:"output"`
}

// InitConfig loads the rules file at path. A missing file yields the defaults.
func InitConfig(path string) (*MasterConfig, error) {
	c := &MasterConfig{}
	if err := c.getConf(path); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return c, nil
}

func (c *MasterConfig) getConf(file string) error {
	yamlFile, err := os.ReadFile(file)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("Path", file).Msg("Config file not found, using defaults")
		return nil
	}
	if err != nil {
		return err
	}

	if err = yaml.Unmarshal(yamlFile, c); err != nil {
		return fmt.Errorf("unmarshal %s: %w", file, err)
	}
	log.Debug().Str("Path", file).Int("Overrides", len(c.LabelOverrides)).Msg("Loaded config")
	return nil
}

// Validate checks the values that cannot be checked by YAML decoding alone.
func (c *MasterConfig) Validate() error {
	if c.Harmonize.BatchSize < 0 {
		return fmt.Errorf("harmonize.batch_size must not be negative, got %d", c.Harmonize.BatchSize)
	}
	if _, err := c.BatchDelay(); err != nil {
		return err
	}
	if c.Output.Format != "" && !slices.Contains(present.Formats, c.Output.Format) {
		return fmt.Errorf("output.format must be one of %v, got %q", present.Formats, c.Output.Format)
	}
	for i, o := range c.LabelOverrides {
		if o.Contains == "" || o.Label == "" {
			return fmt.Errorf("labelOverrides[%d] needs both contains and label", i)
		}
	}
	return nil
}

// BatchDelay parses harmonize.batch_delay. Zero means not configured.
func (c *MasterConfig) BatchDelay() (time.Duration, error) {
	if c.Harmonize.BatchDelay == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Harmonize.BatchDelay)
	if err != nil {
		return 0, fmt.Errorf("harmonize.batch_delay: %w", err)
	}
	return d, nil
}
