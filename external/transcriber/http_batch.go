package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/MikeMehr/patient-intake/internal/transcriber"
)

const batchRequestTimeout = 30 * time.Second

// HTTPBatchTranscriber posts a complete PCM container to the remote
// transcription service and returns the recognized text.
type HTTPBatchTranscriber struct {
	url    string
	client *http.Client
}

func NewHTTPBatchTranscriber(url string) transcriber.Batch {
	return &HTTPBatchTranscriber{
		url:    url,
		client: &http.Client{Timeout: batchRequestTimeout},
	}
}

func (t *HTTPBatchTranscriber) Transcribe(ctx context.Context, wavContainer []byte, language string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("audio", "clip.wav")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(wavContainer); err != nil {
		return "", err
	}
	if err := mw.WriteField("language", NormalizeLanguageTag(language)); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("transcription service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode transcription response: %w", err)
	}
	return out.Text, nil
}

// NormalizeLanguageTag reduces a BCP 47 tag to its lowercase base language,
// e.g. "en-US" becomes "en".
func NormalizeLanguageTag(tag string) string {
	tag = strings.TrimSpace(strings.ToLower(tag))
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	return tag
}
