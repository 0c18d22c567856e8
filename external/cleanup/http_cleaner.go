package cleanup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/MikeMehr/patient-intake/internal/transcript"
)

const requestTimeout = 10 * time.Second

type cleanRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type cleanResponse struct {
	Cleaned string `json:"cleaned"`
}

// HTTPCleaner implements the optional remote cleanup pass. With an empty URL
// it is a passthrough, which keeps the buffer's fallback path trivial.
type HTTPCleaner struct {
	url    string
	client *http.Client
}

func NewHTTPCleaner(url string) transcript.Cleaner {
	return &HTTPCleaner{
		url:    url,
		client: &http.Client{Timeout: requestTimeout},
	}
}

func (c *HTTPCleaner) Clean(ctx context.Context, text, language string) (string, error) {
	if c.url == "" {
		return text, nil
	}

	b, err := json.Marshal(cleanRequest{Text: text, Language: language})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("cleanup service returned status %d", resp.StatusCode)
	}
	var out cleanResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode cleanup response: %w", err)
	}
	if out.Cleaned == "" {
		return "", fmt.Errorf("cleanup service returned empty text")
	}
	return out.Cleaned, nil
}
