package whisper

import "time"

// Backend names.
const (
	BackendLocal = "local"
	BackendAPI   = "api"
)

// Config captures runtime settings for transcription.
type Config struct {
	// Backend selects BackendLocal or BackendAPI.
	Backend string
	// Model is the Whisper model name (e.g. "small", "large-v3").
	Model string
	// Language is the expected audio language as an ISO code, empty for
	// auto-detection.
	Language string
	// CUDAEnabled enables GPU acceleration for the local backend.
	CUDAEnabled bool
	// APIKey authenticates against the remote endpoint (api backend only).
	APIKey string
	// APIEndpoint is the transcription URL for the api backend.
	APIEndpoint string
	// Timeout bounds a single transcription run.
	Timeout time.Duration
}

// Local backend constants.
const (
	DefaultModel = "small"
	UVXCommand   = "uvx"

	cudaIndexURL = "https://download.pytorch.org/whl/cu128"
	pypiIndexURL = "https://pypi.org/simple"

	cpuDevice      = "cpu"
	cudaDevice     = "cuda"
	cpuComputeType = "float32"
)

// DefaultAPIEndpoint is used when the api backend has no explicit endpoint.
const DefaultAPIEndpoint = "https://api.openai.com/v1/audio/transcriptions"

// DefaultTimeout bounds transcription when the config leaves it unset.
const DefaultTimeout = 30 * time.Minute
