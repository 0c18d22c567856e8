package capture

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/MikeMehr/patient-intake/internal/audio"
	"github.com/MikeMehr/patient-intake/internal/draft"
	"github.com/MikeMehr/patient-intake/internal/transcriber"
	"github.com/MikeMehr/patient-intake/internal/transcript"
)

type mockMicStream struct {
	ch     chan []byte
	mu     sync.Mutex
	closed bool
}

func newMockMicStream() *mockMicStream {
	return &mockMicStream{ch: make(chan []byte, 64)}
}

func (m *mockMicStream) Chunks() <-chan []byte { return m.ch }

func (m *mockMicStream) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.ch)
	}
	return nil
}

type mockMicrophone struct {
	mu      sync.Mutex
	openErr error
	opens   int
	streams []*mockMicStream
}

func (m *mockMicrophone) Open(_ context.Context) (MicStream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opens++
	if m.openErr != nil {
		return nil, m.openErr
	}
	s := newMockMicStream()
	m.streams = append(m.streams, s)
	return s, nil
}

type mockStreamWriter struct {
	mu     sync.Mutex
	writes int
	closed bool
}

func (w *mockStreamWriter) Write(_ []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writes++
	return nil
}

func (w *mockStreamWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

type mockStreamer struct {
	mu        sync.Mutex
	starts    int
	receivers []transcriber.ResultReceiver
	writers   []*mockStreamWriter
	startErrs []error
}

func (s *mockStreamer) StartStreaming(_ context.Context, _, _ string, receiver transcriber.ResultReceiver) (transcriber.StreamWriter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.starts
	s.starts++
	if n < len(s.startErrs) && s.startErrs[n] != nil {
		return nil, s.startErrs[n]
	}
	w := &mockStreamWriter{}
	s.receivers = append(s.receivers, receiver)
	s.writers = append(s.writers, w)
	return w, nil
}

func (s *mockStreamer) receiver(i int) transcriber.ResultReceiver {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receivers[i]
}

func (s *mockStreamer) startCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

type mockBatch struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
}

func (b *mockBatch) Transcribe(_ context.Context, _ []byte, _ string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	return b.text, b.err
}

type mockSpeaker struct{ speaking bool }

func (s *mockSpeaker) Speak(context.Context, string) error { return nil }
func (s *mockSpeaker) Cancel()                             {}
func (s *mockSpeaker) Speaking() bool                      { return s.speaking }

// testDecoder interprets frames as little-endian float32 samples at 16 kHz
// mono so encoded clips need no resampling in tests.
type testDecoder struct{}

func (testDecoder) DecodeFloat32(frame []byte) ([]float32, error) {
	out := make([]float32, len(frame)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(frame[i*4:]))
	}
	return out, nil
}

func (testDecoder) SampleRate() int { return audio.TargetSampleRate }
func (testDecoder) Channels() int   { return 1 }
func (testDecoder) Close()          {}

func testDecoderFactory() (audio.Decoder, error) { return testDecoder{}, nil }

func floatFrame(samples ...float32) []byte {
	buf := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(s))
	}
	return buf
}

func newContinuousFixture() (*Controller, *mockMicrophone, *mockStreamer, *draft.Review) {
	mic := &mockMicrophone{}
	streamer := &mockStreamer{}
	review := draft.NewReview(transcript.NewBuffer(nil, "en-US"))
	backend := NewContinuousBackend(mic, streamer, testDecoderFactory)
	return NewController(backend, &mockSpeaker{}, review, "en-US"), mic, streamer, review
}

func TestStart_RejectedWhileSpeaking(t *testing.T) {
	mic := &mockMicrophone{}
	streamer := &mockStreamer{}
	review := draft.NewReview(transcript.NewBuffer(nil, "en-US"))
	backend := NewContinuousBackend(mic, streamer, testDecoderFactory)
	c := NewController(backend, &mockSpeaker{speaking: true}, review, "en-US")

	if err := c.Start(context.Background(), StartOptions{}); !errors.Is(err, ErrSpeaking) {
		t.Fatalf("expected ErrSpeaking, got %v", err)
	}
	if mic.opens != 0 {
		t.Fatal("microphone must not open while speaking")
	}
}

func TestStart_RejectedWhileReviewingUnlessOverridden(t *testing.T) {
	c, _, streamer, review := newContinuousFixture()
	review.Buffer().AppendFinal("first answer")
	if _, err := review.FinalizeCapture(context.Background()); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if err := c.Start(context.Background(), StartOptions{}); !errors.Is(err, ErrReviewOpen) {
		t.Fatalf("expected ErrReviewOpen, got %v", err)
	}
	if err := c.Start(context.Background(), StartOptions{ResumeReview: true}); err != nil {
		t.Fatalf("override start failed: %v", err)
	}
	if streamer.startCount() != 1 {
		t.Fatalf("stream starts = %d, want 1", streamer.startCount())
	}
}

func TestStart_PendingDraftIsAppendedNotReplaced(t *testing.T) {
	c, _, streamer, review := newContinuousFixture()
	review.Buffer().AppendFinal("first part")
	if _, err := review.FinalizeCapture(context.Background()); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if err := c.Start(context.Background(), StartOptions{ResumeReview: true}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	streamer.receiver(0).OnResult("second part", true)
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	text, err := review.FinalizeCapture(context.Background())
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if text != "first part second part." {
		t.Fatalf("finalized = %q", text)
	}
}

func TestStart_ClearsBufferWhenNoDraftPending(t *testing.T) {
	c, _, _, review := newContinuousFixture()
	review.Buffer().SetInterim("stale interim")
	if err := c.Start(context.Background(), StartOptions{}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if !review.Buffer().Empty() {
		t.Fatal("buffer should be cleared when no draft is pending")
	}
}

func TestStart_TearsDownPreviousSession(t *testing.T) {
	c, mic, streamer, _ := newContinuousFixture()
	if err := c.Start(context.Background(), StartOptions{}); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	if err := c.Start(context.Background(), StartOptions{}); err != nil {
		t.Fatalf("second start failed: %v", err)
	}
	if mic.opens != 2 {
		t.Fatalf("mic opens = %d, want 2", mic.opens)
	}
	mic.streams[0].mu.Lock()
	closed := mic.streams[0].closed
	mic.streams[0].mu.Unlock()
	if !closed {
		t.Fatal("first mic stream must be closed before the second starts")
	}
	streamer.writers[0].mu.Lock()
	writerClosed := streamer.writers[0].closed
	streamer.writers[0].mu.Unlock()
	if !writerClosed {
		t.Fatal("first stream writer must be closed before the second starts")
	}
}

func TestContinuous_InterimThenFinal(t *testing.T) {
	c, _, streamer, review := newContinuousFixture()
	if err := c.Start(context.Background(), StartOptions{}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	streamer.receiver(0).OnResult("follow", false)
	streamer.receiver(0).OnResult("follow up", true)
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	text, err := review.FinalizeCapture(context.Background())
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if text != "follow up." {
		t.Fatalf("finalized = %q, interim leaked", text)
	}
}

func TestContinuous_PendingInterimSurvivesStop(t *testing.T) {
	c, _, streamer, review := newContinuousFixture()
	if err := c.Start(context.Background(), StartOptions{}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	streamer.receiver(0).OnResult("not finalized yet", false)
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	text, err := review.FinalizeCapture(context.Background())
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if text != "not finalized yet." {
		t.Fatalf("finalized = %q", text)
	}
}

func TestContinuous_RestartsOnProviderEndWhileHolding(t *testing.T) {
	c, _, streamer, review := newContinuousFixture()
	if err := c.Start(context.Background(), StartOptions{}); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// Provider ends itself during a short pause; the backend restarts
	// without surfacing anything.
	streamer.receiver(0).OnEnd(nil)
	if streamer.startCount() != 2 {
		t.Fatalf("stream starts = %d, want 2 after restart", streamer.startCount())
	}
	streamer.receiver(1).OnResult("after the pause", true)
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	text, err := review.FinalizeCapture(context.Background())
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if text != "after the pause." {
		t.Fatalf("finalized = %q", text)
	}
}

func TestContinuous_NoRestartAfterFinalResult(t *testing.T) {
	c, _, streamer, review := newContinuousFixture()
	if err := c.Start(context.Background(), StartOptions{}); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// Once a final result has arrived, a provider-initiated end is the
	// normal end of the utterance, not a dropout worth restarting for.
	streamer.receiver(0).OnResult("it hurts right here", true)
	streamer.receiver(0).OnEnd(nil)
	if streamer.startCount() != 1 {
		t.Fatalf("stream starts = %d, want 1 after a final result", streamer.startCount())
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	text, err := review.FinalizeCapture(context.Background())
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if text != "it hurts right here." {
		t.Fatalf("finalized = %q", text)
	}
}

func TestContinuous_NoRestartAfterStop(t *testing.T) {
	c, _, streamer, _ := newContinuousFixture()
	if err := c.Start(context.Background(), StartOptions{}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	streamer.receiver(0).OnEnd(nil)
	if streamer.startCount() != 1 {
		t.Fatalf("stream starts = %d, want no restart after stop", streamer.startCount())
	}
}

func TestContinuous_RestartFailureFallsBackToNoSpeech(t *testing.T) {
	mic := &mockMicrophone{}
	streamer := &mockStreamer{startErrs: []error{nil, errors.New("recognizer unavailable")}}
	review := draft.NewReview(transcript.NewBuffer(nil, "en-US"))
	backend := NewContinuousBackend(mic, streamer, testDecoderFactory)
	c := NewController(backend, &mockSpeaker{}, review, "en-US")

	if err := c.Start(context.Background(), StartOptions{}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	streamer.receiver(0).OnEnd(nil)
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if _, err := review.FinalizeCapture(context.Background()); !errors.Is(err, transcript.ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech after failed restart, got %v", err)
	}
}

func TestStart_MicrophoneErrorsPassThroughClassified(t *testing.T) {
	mic := &mockMicrophone{openErr: ErrPermissionDenied}
	streamer := &mockStreamer{}
	review := draft.NewReview(transcript.NewBuffer(nil, "en-US"))
	backend := NewContinuousBackend(mic, streamer, testDecoderFactory)
	c := NewController(backend, &mockSpeaker{}, review, "en-US")

	if err := c.Start(context.Background(), StartOptions{}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func newBatchFixture(remote *mockBatch) (*Controller, *mockMicrophone, *draft.Review) {
	mic := &mockMicrophone{}
	review := draft.NewReview(transcript.NewBuffer(nil, "en-US"))
	encoder := audio.NewEncoder(testDecoderFactory)
	backend := NewBatchBackend(mic, encoder, remote)
	return NewController(backend, &mockSpeaker{}, review, "en-US"), mic, review
}

func TestBatch_CapturesEncodesAndAppendsSingleFinal(t *testing.T) {
	remote := &mockBatch{text: "follow up"}
	c, mic, review := newBatchFixture(remote)
	if err := c.Start(context.Background(), StartOptions{}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	for i := 0; i < 15; i++ {
		mic.streams[0].ch <- floatFrame(0.1, -0.1, 0.2)
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if remote.calls != 1 {
		t.Fatalf("remote calls = %d, want 1", remote.calls)
	}
	text, err := review.FinalizeCapture(context.Background())
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if text != "follow up." {
		t.Fatalf("finalized = %q", text)
	}
}

func TestBatch_ShortClipSkipsRemoteCall(t *testing.T) {
	remote := &mockBatch{text: "should not be used"}
	c, mic, _ := newBatchFixture(remote)
	if err := c.Start(context.Background(), StartOptions{}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	mic.streams[0].ch <- floatFrame(0.1)
	if err := c.Stop(context.Background()); !errors.Is(err, transcript.ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech for short clip, got %v", err)
	}
	if remote.calls != 0 {
		t.Fatalf("remote calls = %d, want 0", remote.calls)
	}
}

func TestBatch_RemoteFailureSurfaces(t *testing.T) {
	remoteErr := errors.New("network down")
	remote := &mockBatch{err: remoteErr}
	c, mic, _ := newBatchFixture(remote)
	if err := c.Start(context.Background(), StartOptions{}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	for i := 0; i < 15; i++ {
		mic.streams[0].ch <- floatFrame(0.1)
	}
	if err := c.Stop(context.Background()); !errors.Is(err, remoteErr) {
		t.Fatalf("expected remote error, got %v", err)
	}
}

func TestBatch_EmptyRemoteTextYieldsNoSpeechOnFinalize(t *testing.T) {
	remote := &mockBatch{text: "   "}
	c, mic, review := newBatchFixture(remote)
	if err := c.Start(context.Background(), StartOptions{}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	for i := 0; i < 15; i++ {
		mic.streams[0].ch <- floatFrame(0.1)
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if _, err := review.FinalizeCapture(context.Background()); !errors.Is(err, transcript.ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech, got %v", err)
	}
}
