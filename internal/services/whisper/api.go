package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"descant/internal/timeline"
)

// transcribeAPI posts the audio file to an OpenAI-compatible transcription
// endpoint and parses the verbose_json response.
func (s *Service) transcribeAPI(ctx context.Context, source string) ([]timeline.TranscriptSegment, error) {
	if s.cfg.APIKey == "" {
		return nil, fmt.Errorf("transcribe: api backend requires an API key")
	}

	body, contentType, err := buildMultipartBody(source, s.cfg.Model, s.cfg.Language)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIEndpoint, body)
	if err != nil {
		return nil, fmt.Errorf("transcribe: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcribe: request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("transcribe: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcribe: endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var parsed transcriptPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("transcribe: parse response: %w", err)
	}
	return convertSegments(parsed.Segments), nil
}

func buildMultipartBody(source, model, language string) (*bytes.Buffer, string, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, "", fmt.Errorf("transcribe: open audio: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filepath.Base(source))
	if err != nil {
		return nil, "", fmt.Errorf("transcribe: build form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("transcribe: copy audio: %w", err)
	}

	fields := map[string]string{
		"model":           model,
		"response_format": "verbose_json",
	}
	if language != "" {
		fields["language"] = language
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("transcribe: write field %s: %w", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("transcribe: finish form: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}
