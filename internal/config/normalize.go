package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSeparation()
	c.normalizeAcquisition()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if trimmed := strings.TrimSpace(c.Paths.DefaultFolder); trimmed != "" {
		if c.Paths.DefaultFolder, err = expandPath(trimmed); err != nil {
			return fmt.Errorf("paths.default_folder: %w", err)
		}
	} else {
		c.Paths.DefaultFolder = ""
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeSeparation() {
	c.Separation.Binary = strings.TrimSpace(c.Separation.Binary)
	if c.Separation.Binary == "" {
		c.Separation.Binary = defaultSeparationBinary
	}
	c.Separation.Model = strings.TrimSpace(c.Separation.Model)
	if c.Separation.Model == "" {
		c.Separation.Model = defaultModel
	}
	c.Separation.StemMode = strings.TrimSpace(c.Separation.StemMode)
	if c.Separation.StemMode == "" {
		c.Separation.StemMode = defaultStemMode
	}
	c.Separation.Quality = strings.ToLower(strings.TrimSpace(c.Separation.Quality))
	if c.Separation.Quality == "" {
		c.Separation.Quality = defaultQuality
	}
}

func (c *Config) normalizeAcquisition() {
	c.Acquisition.Binary = strings.TrimSpace(c.Acquisition.Binary)
	if c.Acquisition.Binary == "" {
		c.Acquisition.Binary = defaultAcquisitionBinary
	}
	c.Acquisition.AudioFormat = strings.ToLower(strings.TrimSpace(c.Acquisition.AudioFormat))
	if c.Acquisition.AudioFormat == "" {
		c.Acquisition.AudioFormat = defaultAudioFormat
	}
	c.Acquisition.AudioQuality = strings.TrimSpace(c.Acquisition.AudioQuality)
	if c.Acquisition.AudioQuality == "" {
		c.Acquisition.AudioQuality = defaultAudioQuality
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.MaxConcurrency < MinConcurrency {
		c.Workflow.MaxConcurrency = defaultMaxConcurrency
	}
	if c.Workflow.MaxConcurrency > MaxConcurrency {
		c.Workflow.MaxConcurrency = MaxConcurrency
	}
	if c.Workflow.PollIntervalMS <= 0 {
		c.Workflow.PollIntervalMS = defaultPollIntervalMS
	}
	if c.Workflow.ReadTimeoutMS <= 0 {
		c.Workflow.ReadTimeoutMS = defaultReadTimeoutMS
	}
	if c.Workflow.DrainGraceSeconds <= 0 {
		c.Workflow.DrainGraceSeconds = defaultDrainGraceSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
