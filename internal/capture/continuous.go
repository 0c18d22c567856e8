package capture

import (
	"context"
	"log/slog"
	"sync"

	"github.com/MikeMehr/patient-intake/internal/audio"
	"github.com/MikeMehr/patient-intake/internal/transcriber"
	"github.com/MikeMehr/patient-intake/internal/transcript"
)

// maxStreamRestarts bounds how often a self-ended recognizer stream is
// reopened within one hold-to-talk gesture.
const maxStreamRestarts = 2

// ContinuousBackend streams microphone audio into a long-lived recognizer
// and feeds interim and final results into the transcript buffer as they
// arrive.
type ContinuousBackend struct {
	mic        Microphone
	streamer   transcriber.Streamer
	newDecoder audio.DecoderFactory
}

func NewContinuousBackend(mic Microphone, streamer transcriber.Streamer, newDecoder audio.DecoderFactory) *ContinuousBackend {
	return &ContinuousBackend{mic: mic, streamer: streamer, newDecoder: newDecoder}
}

func (b *ContinuousBackend) Start(ctx context.Context, sessionID, language string, buf *transcript.Buffer) (Session, error) {
	stream, err := b.mic.Open(ctx)
	if err != nil {
		return nil, err
	}
	dec, err := b.newDecoder()
	if err != nil {
		_ = stream.Close()
		return nil, err
	}

	s := &continuousSession{
		ctx:       ctx,
		streamer:  b.streamer,
		sessionID: sessionID,
		language:  language,
		buf:       buf,
		mic:       stream,
		dec:       dec,
		holding:   true,
	}
	writer, err := b.streamer.StartStreaming(ctx, sessionID, language, s)
	if err != nil {
		_ = stream.Close()
		dec.Close()
		return nil, err
	}
	s.writer = writer
	go s.pump(stream)
	slog.Info("continuous capture started", "session_id", sessionID, "language", language)
	return s, nil
}

type continuousSession struct {
	ctx       context.Context
	streamer  transcriber.Streamer
	sessionID string
	language  string
	buf       *transcript.Buffer
	mic       MicStream
	dec       audio.Decoder

	mu       sync.Mutex
	writer   transcriber.StreamWriter
	holding  bool
	gotFinal bool
	restarts int
	ended    bool
}

func (s *continuousSession) OnResult(text string, isFinal bool) {
	if !isFinal {
		s.buf.SetInterim(text)
		return
	}
	s.buf.AppendFinal(text)
	s.mu.Lock()
	s.gotFinal = true
	s.mu.Unlock()
}

// OnEnd fires when the recognizer stream terminates. A provider-initiated end
// while the gesture is still held is answered with a transparent restart so a
// normal short pause never turns into a false "no speech" report. If the
// restart fails the gesture resolves through the buffer, which reports no
// speech when empty.
func (s *continuousSession) OnEnd(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.holding || s.ended {
		return
	}
	if err != nil {
		slog.Error("recognizer stream failed", "error", err, "session_id", s.sessionID)
		s.ended = true
		return
	}
	if s.gotFinal {
		// The utterance was already recognized; the buffer has content and
		// the stop path will finalize it.
		slog.Info("recognizer ended after delivering a final result", "session_id", s.sessionID)
		s.ended = true
		return
	}
	if s.restarts >= maxStreamRestarts {
		slog.Warn("recognizer ended and restart budget exhausted", "session_id", s.sessionID, "restarts", s.restarts)
		s.ended = true
		return
	}
	s.restarts++
	writer, startErr := s.streamer.StartStreaming(s.ctx, s.sessionID, s.language, s)
	if startErr != nil {
		slog.Warn("recognizer restart failed", "error", startErr, "session_id", s.sessionID, "restarts", s.restarts)
		s.ended = true
		return
	}
	slog.Info("recognizer restarted after provider-initiated end", "session_id", s.sessionID, "restarts", s.restarts)
	s.writer = writer
}

func (s *continuousSession) pump(stream MicStream) {
	for frame := range stream.Chunks() {
		samples, err := s.dec.DecodeFloat32(frame)
		if err != nil {
			slog.Warn("failed to decode captured frame", "error", err, "session_id", s.sessionID)
			continue
		}
		w := s.currentWriter()
		if w == nil {
			continue
		}
		if err := w.Write(audio.PCMBytes(samples)); err != nil {
			slog.Warn("failed to write pcm to recognizer stream", "error", err, "session_id", s.sessionID)
		}
	}
}

func (s *continuousSession) currentWriter() transcriber.StreamWriter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended && !s.holding {
		return nil
	}
	return s.writer
}

func (s *continuousSession) Stop(context.Context) error {
	s.mu.Lock()
	if !s.holding {
		s.mu.Unlock()
		return nil
	}
	s.holding = false
	s.ended = true
	w := s.writer
	s.mu.Unlock()

	_ = s.mic.Close()
	if w != nil {
		_ = w.Close()
	}
	s.dec.Close()
	slog.Info("continuous capture stopped", "session_id", s.sessionID)
	return nil
}
