package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MikeMehr/patient-intake/internal/protocol"
)

const turnRequestTimeout = 90 * time.Second

// HTTPClient talks to the AI-driven interview generator. It only shapes
// requests and classifies failures; what the generator says is not its
// concern.
type HTTPClient struct {
	url    string
	client *http.Client
}

func NewHTTPClient(url string) protocol.Client {
	return &HTTPClient{
		url:    url,
		client: &http.Client{Timeout: turnRequestTimeout},
	}
}

func (c *HTTPClient) RequestTurn(ctx context.Context, req protocol.TurnRequest) (*protocol.TurnResponse, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("turn request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyFailure(resp)
	}

	var out protocol.TurnResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode turn response: %w", err)
	}
	switch out.Type {
	case protocol.ResponseTypeQuestion:
		if strings.TrimSpace(out.Question) == "" {
			return nil, fmt.Errorf("turn response of type question carried no question")
		}
	case protocol.ResponseTypeSummary:
		if out.Summary == nil {
			return nil, fmt.Errorf("turn response of type summary carried no summary")
		}
	default:
		return nil, fmt.Errorf("unknown turn response type %q", out.Type)
	}
	return &out, nil
}

// classifyFailure maps a non-2xx response to the error taxonomy: rate-limit
// and quota rejections get their own sentinel, everything else carries a
// best-effort message extracted from a JSON or plain-text body.
func classifyFailure(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	message := extractMessage(body)

	if resp.StatusCode == http.StatusTooManyRequests || looksLikeQuota(message) {
		return fmt.Errorf("%w: status %d", protocol.ErrQuotaExceeded, resp.StatusCode)
	}
	if message == "" {
		return fmt.Errorf("interview generator returned status %d", resp.StatusCode)
	}
	return fmt.Errorf("interview generator returned status %d: %s", resp.StatusCode, message)
}

func extractMessage(body []byte) string {
	var decoded struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &decoded); err == nil {
		if decoded.Error != "" {
			return decoded.Error
		}
		if decoded.Message != "" {
			return decoded.Message
		}
	}
	return strings.TrimSpace(string(body))
}

func looksLikeQuota(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "quota") || strings.Contains(m, "rate limit")
}
