package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateVAD(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateCaption(); err != nil {
		return err
	}
	if err := c.validateMix(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.WorkDir == "" {
		return errors.New("paths.work_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateVAD() error {
	if c.VAD.ModelPath == "" {
		return errors.New("vad.model_path must be set")
	}
	if c.VAD.Threshold <= 0 || c.VAD.Threshold >= 1 {
		return errors.New("vad.threshold must be between 0 and 1 exclusive")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Backend {
	case "local":
	case "api":
		if c.Transcription.APIKey == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = "~/.config/descant/config.toml"
			}
			return fmt.Errorf("transcription.api_key is required when transcription.backend is \"api\". Set DESCANT_WHISPER_API_KEY env var or edit %s (create with 'descant config init')", defaultPath)
		}
	default:
		return fmt.Errorf("transcription.backend must be \"local\" or \"api\", got %q", c.Transcription.Backend)
	}
	if c.Transcription.TimeoutSeconds <= 0 {
		return errors.New("transcription.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateCaption() error {
	if c.Caption.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/descant/config.toml"
		}
		return fmt.Errorf("caption.api_key is required. Set DESCANT_CAPTION_API_KEY env var or edit %s (create with 'descant config init')", defaultPath)
	}
	if c.Caption.Model == "" {
		return errors.New("caption.model must be set")
	}
	if c.Caption.FramesPerScene < 1 {
		return errors.New("caption.frames_per_scene must be at least 1")
	}
	if c.Caption.TimeoutSeconds <= 0 {
		return errors.New("caption.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateMix() error {
	if c.Mix.BackgroundReductionDB > 0 {
		return errors.New("mix.background_reduction_db must be zero or negative")
	}
	if c.Mix.MinNarrationGap < 0 {
		return errors.New("mix.min_narration_gap must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be auto, console, or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
