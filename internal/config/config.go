package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Media contains the external media tool binaries.
type Media struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
}

// VAD contains configuration for voice-activity detection.
type VAD struct {
	ModelPath string  `toml:"model_path"`
	Threshold float64 `toml:"threshold"`
}

// Transcription contains configuration for the transcription collaborator.
// Backend selects between "local" (WhisperX via uvx) and "api" (an
// OpenAI-compatible transcription endpoint). The choice is made here, once.
type Transcription struct {
	Backend        string `toml:"backend"`
	Model          string `toml:"model"`
	Language       string `toml:"language"`
	CUDAEnabled    bool   `toml:"cuda_enabled"`
	APIKey         string `toml:"api_key"`
	APIEndpoint    string `toml:"api_endpoint"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Caption contains configuration for the vision captioning collaborator.
type Caption struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	FramesPerScene int    `toml:"frames_per_scene"`
}

// TTS contains configuration for narration synthesis.
type TTS struct {
	Binary  string `toml:"binary"`
	Model   string `toml:"model"`
	Speaker string `toml:"speaker"`
	UseCUDA bool   `toml:"use_cuda"`
}

// Mix contains the narration mixing parameters.
type Mix struct {
	BackgroundReductionDB float64 `toml:"background_reduction_db"`
	NarrationAdjustDB     float64 `toml:"narration_adjust_db"`
	MinNarrationGap       float64 `toml:"min_narration_gap"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config is the root configuration document.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Media         Media         `toml:"media"`
	VAD           VAD           `toml:"vad"`
	Transcription Transcription `toml:"transcription"`
	Caption       Caption       `toml:"caption"`
	TTS           TTS           `toml:"tts"`
	Mix           Mix           `toml:"mix"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the expected config file location.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "descant", "config.toml"), nil
}

// Load reads configuration from path (or the default location when empty).
// It returns the config, the resolved path, and whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	resolved := strings.TrimSpace(path)
	if resolved == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, "", false, err
		}
		resolved = defaultPath
	}
	resolved = ExpandPath(resolved)

	cfg := Default()
	exists := true
	data, err := os.ReadFile(resolved)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, resolved, true, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		exists = false
	default:
		return nil, resolved, false, fmt.Errorf("read config %s: %w", resolved, err)
	}

	cfg.applyEnvOverrides()
	cfg.ExpandPaths()
	if err := cfg.Validate(); err != nil {
		return nil, resolved, exists, err
	}
	return &cfg, resolved, exists, nil
}

// applyEnvOverrides fills secrets from the environment when the file left
// them empty. This is the only environment read in the repository.
func (c *Config) applyEnvOverrides() {
	if c.Caption.APIKey == "" {
		c.Caption.APIKey = strings.TrimSpace(os.Getenv("DESCANT_CAPTION_API_KEY"))
	}
	if c.Transcription.APIKey == "" {
		c.Transcription.APIKey = strings.TrimSpace(os.Getenv("DESCANT_WHISPER_API_KEY"))
	}
}

func (c *Config) ExpandPaths() {
	c.Paths.WorkDir = ExpandPath(c.Paths.WorkDir)
	c.Paths.OutputDir = ExpandPath(c.Paths.OutputDir)
	c.Paths.LogDir = ExpandPath(c.Paths.LogDir)
	c.VAD.ModelPath = ExpandPath(c.VAD.ModelPath)
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure directory %s: %w", dir, err)
		}
	}
	return nil
}

// QueueDBPath returns the sqlite database location.
func (c *Config) QueueDBPath() string {
	return filepath.Join(c.Paths.LogDir, "queue.db")
}

// SampleConfig returns the annotated sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// ExpandPath resolves a leading ~ to the current user's home directory.
func ExpandPath(path string) string {
	if path == "" || !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
