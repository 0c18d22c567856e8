package capture

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/MikeMehr/patient-intake/internal/audio"
	"github.com/MikeMehr/patient-intake/internal/transcriber"
	"github.com/MikeMehr/patient-intake/internal/transcript"
)

const (
	captureFrameDuration = 20 * time.Millisecond
	// minClipDuration filters accidental taps: shorter clips resolve to "no
	// speech" without a remote call.
	minClipDuration = 200 * time.Millisecond
)

// BatchBackend records raw frames in memory while the gesture is held; on
// stop the clip is encoded and sent to the remote transcription service as a
// whole. No interim results exist in this mode.
type BatchBackend struct {
	mic     Microphone
	encoder *audio.Encoder
	remote  transcriber.Batch
}

func NewBatchBackend(mic Microphone, encoder *audio.Encoder, remote transcriber.Batch) *BatchBackend {
	return &BatchBackend{mic: mic, encoder: encoder, remote: remote}
}

func (b *BatchBackend) Start(ctx context.Context, sessionID, language string, buf *transcript.Buffer) (Session, error) {
	stream, err := b.mic.Open(ctx)
	if err != nil {
		return nil, err
	}
	s := &batchSession{
		encoder:   b.encoder,
		remote:    b.remote,
		sessionID: sessionID,
		language:  language,
		buf:       buf,
		mic:       stream,
		done:      make(chan struct{}),
	}
	go s.collect(stream)
	slog.Info("batch capture started", "session_id", sessionID, "language", language)
	return s, nil
}

type batchSession struct {
	encoder   *audio.Encoder
	remote    transcriber.Batch
	sessionID string
	language  string
	buf       *transcript.Buffer
	mic       MicStream

	mu      sync.Mutex
	frames  [][]byte
	stopped bool
	done    chan struct{}
}

func (s *batchSession) collect(stream MicStream) {
	defer close(s.done)
	for frame := range stream.Chunks() {
		clip := make([]byte, len(frame))
		copy(clip, frame)
		s.mu.Lock()
		s.frames = append(s.frames, clip)
		s.mu.Unlock()
	}
}

func (s *batchSession) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.mu.Unlock()

	_ = s.mic.Close()
	<-s.done

	s.mu.Lock()
	frames := s.frames
	s.mu.Unlock()

	if time.Duration(len(frames))*captureFrameDuration < minClipDuration {
		slog.Info("captured clip below minimum duration", "session_id", s.sessionID, "frames", len(frames))
		return transcript.ErrNoSpeech
	}

	container, err := s.encoder.Encode(frames)
	if err != nil {
		return fmt.Errorf("process captured audio: %w", err)
	}
	samples, err := audio.ParseContainer(container)
	if err == nil {
		slog.Debug("encoded clip for transcription", "session_id", s.sessionID, "duration", audio.Duration(len(samples)))
	}

	text, err := s.remote.Transcribe(ctx, container, s.language)
	if err != nil {
		return fmt.Errorf("remote transcription: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		slog.Info("remote transcription returned no speech", "session_id", s.sessionID)
		return nil
	}
	s.buf.AppendFinal(text)
	slog.Info("batch capture transcribed", "session_id", s.sessionID, "chars", len(text))
	return nil
}
