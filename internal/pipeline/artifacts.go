package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"descant/internal/interval"
	"descant/internal/queue"
	"descant/internal/timeline"
)

// File names inside an item's work directory.
const (
	originalAudioFile = "original_audio.wav"
	analysisAudioFile = "analysis_audio.wav"
	analysisFile      = "analysis.json"
	narrationsDir     = "narrations"
	framesDir         = "frames"
)

// analysisArtifact is the intermediate product of the analyzing stage,
// persisted to the work directory so later stages (and reruns) can pick it
// up without re-running VAD or transcription.
type analysisArtifact struct {
	Duration    float64                      `json:"duration"`
	Speech      []interval.Span              `json:"speech"`
	NonDialogue []interval.Span              `json:"non_dialogue"`
	Transcript  []timeline.TranscriptSegment `json:"transcript"`
}

func analysisPath(item *queue.Item) string {
	return filepath.Join(item.WorkDir, analysisFile)
}

func writeAnalysis(item *queue.Item, artifact analysisArtifact) error {
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	if err := os.WriteFile(analysisPath(item), data, 0o644); err != nil {
		return fmt.Errorf("write analysis: %w", err)
	}
	return nil
}

func loadAnalysis(item *queue.Item) (analysisArtifact, error) {
	var artifact analysisArtifact
	data, err := os.ReadFile(analysisPath(item))
	if err != nil {
		return artifact, fmt.Errorf("load analysis: %w", err)
	}
	if err := json.Unmarshal(data, &artifact); err != nil {
		return artifact, fmt.Errorf("parse analysis: %w", err)
	}
	return artifact, nil
}

// EncodeScenes serializes scenes into the queue item payload column.
func EncodeScenes(scenes []timeline.Scene) (string, error) {
	data, err := json.Marshal(scenes)
	if err != nil {
		return "", fmt.Errorf("encode scenes: %w", err)
	}
	return string(data), nil
}

func DecodeScenes(payload string) ([]timeline.Scene, error) {
	if payload == "" {
		return nil, fmt.Errorf("no scenes recorded")
	}
	var scenes []timeline.Scene
	if err := json.Unmarshal([]byte(payload), &scenes); err != nil {
		return nil, fmt.Errorf("parse scenes: %w", err)
	}
	return scenes, nil
}
