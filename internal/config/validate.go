package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSeparation(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSeparation() error {
	switch c.Separation.StemMode {
	case StemMode2, StemMode4, StemMode6:
	default:
		return fmt.Errorf("separation.stem_mode must be one of %q, %q, %q", StemMode2, StemMode4, StemMode6)
	}
	switch c.Separation.Quality {
	case QualityNormal, QualityHigh:
	default:
		return fmt.Errorf("separation.quality must be %q or %q", QualityNormal, QualityHigh)
	}
	known := false
	for _, model := range KnownModels {
		if c.Separation.Model == model {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("separation.model %q is not a known model", c.Separation.Model)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.MaxConcurrency < MinConcurrency || c.Workflow.MaxConcurrency > MaxConcurrency {
		return fmt.Errorf("workflow.max_concurrency must be between %d and %d", MinConcurrency, MaxConcurrency)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return errors.New("logging.format must be console or json")
	}
	return nil
}
