package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusExtracting Status = "extracting"
	StatusExtracted  Status = "extracted"
	StatusAnalyzing  Status = "analyzing"
	StatusAnalyzed   Status = "analyzed"
	StatusSegmenting Status = "segmenting"
	StatusSegmented  Status = "segmented"
	StatusNarrating  Status = "narrating"
	StatusNarrated   Status = "narrated"
	StatusMixing     Status = "mixing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusReview     Status = "review"
)

var allStatuses = []Status{
	StatusPending,
	StatusExtracting,
	StatusExtracted,
	StatusAnalyzing,
	StatusAnalyzed,
	StatusSegmenting,
	StatusSegmented,
	StatusNarrating,
	StatusNarrated,
	StatusMixing,
	StatusCompleted,
	StatusFailed,
	StatusReview,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]Status{
	// processing status -> rollback target when a run is interrupted
	StatusExtracting: StatusPending,
	StatusAnalyzing:  StatusExtracted,
	StatusSegmenting: StatusAnalyzed,
	StatusNarrating:  StatusSegmented,
	StatusMixing:     StatusNarrated,
}

// AllStatuses returns every known status in pipeline order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ValidStatus reports whether the given status is known.
func ValidStatus(status Status) bool {
	_, ok := statusSet[status]
	return ok
}

// Processing reports whether the status indicates a stage in flight.
func (s Status) Processing() bool {
	_, ok := processingStatuses[s]
	return ok
}

// Terminal reports whether the item is finished, successfully or not.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusReview
}

// Item is one source video moving through the description pipeline.
type Item struct {
	ID              int64
	SourcePath      string
	Title           string
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	ErrorMessage    string
	ReviewReason    string

	// Artifact paths and payloads written by stage handlers.
	AudioPath         string // full-quality extracted soundtrack (mix master)
	AnalysisAudioPath string // mono 16 kHz WAV for VAD and transcription
	ScenesJSON        string // serialized []timeline.Scene
	OutputPath        string // final mixed audio
	WorkDir           string // per-item scratch directory
}

// SetFailed marks the item failed with a human-readable message.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
}

// SetReview parks the item for operator attention.
func (i *Item) SetReview(reason string) {
	i.Status = StatusReview
	i.ReviewReason = reason
}

// InferTitle derives a display title from a source file path.
func InferTitle(path string) string {
	base := path
	if idx := strings.LastIndexAny(base, "/\\"); idx >= 0 {
		base = base[idx+1:]
	}
	if dot := strings.LastIndex(base, "."); dot > 0 {
		base = base[:dot]
	}
	base = strings.NewReplacer("_", " ", ".", " ").Replace(base)
	return strings.Join(strings.Fields(base), " ")
}
