package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/MikeMehr/patient-intake/internal/speech"
)

const synthesisTimeout = 20 * time.Second

// Playback consumes synthesized audio. The reference runner uses a discard
// sink; a real deployment injects a device-backed one.
type Playback interface {
	Play(ctx context.Context, audio []byte) error
}

type DiscardPlayback struct{}

func (DiscardPlayback) Play(context.Context, []byte) error { return nil }

// HTTPSpeaker synthesizes text through a remote TTS endpoint and plays the
// returned audio. At most one utterance plays at a time; Cancel stops it.
type HTTPSpeaker struct {
	url      string
	language string
	client   *http.Client
	sink     Playback

	mu       sync.Mutex
	speaking bool
	cancel   context.CancelFunc
}

func NewHTTPSpeaker(url, language string, sink Playback) speech.Speaker {
	return &HTTPSpeaker{
		url:      url,
		language: language,
		client:   &http.Client{Timeout: synthesisTimeout},
		sink:     sink,
	}
}

func (s *HTTPSpeaker) Speak(ctx context.Context, text string) error {
	if s.url == "" || text == "" {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.speaking = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.speaking = false
		s.cancel = nil
		s.mu.Unlock()
		cancel()
	}()

	b, err := json.Marshal(map[string]string{"text": text, "language": s.language})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("speech synthesis request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("speech synthesis returned status %d", resp.StatusCode)
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read synthesized audio: %w", err)
	}
	return s.sink.Play(ctx, audio)
}

func (s *HTTPSpeaker) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *HTTPSpeaker) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}
