package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"descant/internal/timeline"
)

// Service transcribes audio into timed segments.
type Service struct {
	cfg           Config
	httpClient    *http.Client
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a transcription service with the given configuration.
func NewService(cfg Config) *Service {
	if cfg.Backend == "" {
		cfg.Backend = BackendLocal
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.APIEndpoint == "" {
		cfg.APIEndpoint = DefaultAPIEndpoint
	}
	return &Service{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// WithHTTPClient sets a custom HTTP client (for testing).
func (s *Service) WithHTTPClient(client *http.Client) {
	if client != nil {
		s.httpClient = client
	}
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	return s.cfg.Model
}

// Backend returns the active backend name for logging.
func (s *Service) Backend() string {
	return s.cfg.Backend
}

// Transcribe produces a timed transcript of the audio file at source.
// workDir receives intermediate files for the local backend.
func (s *Service) Transcribe(ctx context.Context, source, workDir string) ([]timeline.TranscriptSegment, error) {
	if source == "" {
		return nil, fmt.Errorf("transcribe: source path required")
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	switch s.cfg.Backend {
	case BackendLocal:
		return s.transcribeLocal(ctx, source, workDir)
	case BackendAPI:
		return s.transcribeAPI(ctx, source)
	default:
		return nil, fmt.Errorf("transcribe: unknown backend %q", s.cfg.Backend)
	}
}

// segmentPayload matches both WhisperX JSON output and the verbose_json
// response of OpenAI-compatible endpoints.
type segmentPayload struct {
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Text         string  `json:"text"`
	NoSpeechProb float64 `json:"no_speech_prob"`
}

type transcriptPayload struct {
	Segments []segmentPayload `json:"segments"`
}

func convertSegments(payload []segmentPayload) []timeline.TranscriptSegment {
	segments := make([]timeline.TranscriptSegment, 0, len(payload))
	for _, seg := range payload {
		segments = append(segments, timeline.TranscriptSegment{
			Start:        seg.Start,
			End:          seg.End,
			Text:         strings.TrimSpace(seg.Text),
			NoSpeechProb: seg.NoSpeechProb,
		})
	}
	return segments
}

// LoadTranscript reads a transcript JSON file produced by either backend.
func LoadTranscript(path string) ([]timeline.TranscriptSegment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	var payload transcriptPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse transcript %s: %w", filepath.Base(path), err)
	}
	return convertSegments(payload.Segments), nil
}
