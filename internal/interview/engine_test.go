package interview

import (
	"context"
	"errors"
	"testing"

	"github.com/MikeMehr/patient-intake/internal/capture"
	"github.com/MikeMehr/patient-intake/internal/config"
	"github.com/MikeMehr/patient-intake/internal/draft"
	"github.com/MikeMehr/patient-intake/internal/protocol"
	"github.com/MikeMehr/patient-intake/internal/transcript"
)

// stubBackend writes a canned recognition result into the buffer when the
// capture session stops, standing in for a real microphone pipeline.
type stubBackend struct {
	result   string
	startErr error
	starts   int
	stops    int
}

type stubSession struct {
	backend *stubBackend
	buf     *transcript.Buffer
}

func (b *stubBackend) Start(ctx context.Context, sessionID, language string, buf *transcript.Buffer) (capture.Session, error) {
	if b.startErr != nil {
		return nil, b.startErr
	}
	b.starts++
	return &stubSession{backend: b, buf: buf}, nil
}

func (s *stubSession) Stop(ctx context.Context) error {
	s.backend.stops++
	if s.backend.result != "" {
		s.buf.AppendFinal(s.backend.result)
	}
	return nil
}

type engineFixture struct {
	engine  *Engine
	backend *stubBackend
	*controllerFixture
}

func newEngineFixture(cfg *config.Config) *engineFixture {
	cf := newFixture(cfg)
	backend := &stubBackend{result: "it started two days ago"}
	buf := transcript.NewBuffer(nil, cfg.Language)
	review := draft.NewReview(buf)
	capCtrl := capture.NewController(backend, cf.speaker, review, cfg.Language)
	engine := NewEngine(cfg, cf.controller, capCtrl, review, cf.events)
	return &engineFixture{engine: engine, backend: backend, controllerFixture: cf}
}

func startedEngine(t *testing.T, cfg *config.Config) *engineFixture {
	t.Helper()
	f := newEngineFixture(cfg)
	f.client.responses = []*protocol.TurnResponse{
		{Type: protocol.ResponseTypeQuestion, Question: "When did it start?"},
		{Type: protocol.ResponseTypeQuestion, Question: "How severe is it?"},
	}
	if err := f.engine.Start(context.Background(), testProfile()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	return f
}

func TestEngineHoldReleaseAccept(t *testing.T) {
	f := startedEngine(t, testConfig())

	if err := f.engine.HoldToTalk(context.Background(), false); err != nil {
		t.Fatalf("HoldToTalk returned error: %v", err)
	}
	if err := f.engine.Release(context.Background()); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}

	// Without auto-submit the recognized text waits under review.
	text, open := f.engine.Draft()
	if !open {
		t.Fatalf("no draft under review after release")
	}
	if text != "it started 2 days ago." {
		t.Fatalf("draft = %q", text)
	}
	if f.client.callCount() != 1 {
		t.Fatalf("answer submitted before accept")
	}

	if err := f.engine.Accept(context.Background()); err != nil {
		t.Fatalf("Accept returned error: %v", err)
	}
	sess := f.engine.Snapshot()
	if len(sess.Transcript) != 3 {
		t.Fatalf("transcript length = %d, want 3", len(sess.Transcript))
	}
	if sess.Transcript[1].Role != protocol.RolePatient || sess.Transcript[1].Content != "it started 2 days ago." {
		t.Fatalf("submitted answer = %+v", sess.Transcript[1])
	}
	if _, open := f.engine.Draft(); open {
		t.Fatalf("draft still open after accept")
	}
}

func TestEngineAutoSubmit(t *testing.T) {
	cfg := testConfig()
	cfg.AutoSubmit = true
	f := startedEngine(t, cfg)

	if err := f.engine.HoldToTalk(context.Background(), false); err != nil {
		t.Fatalf("HoldToTalk returned error: %v", err)
	}
	if err := f.engine.Release(context.Background()); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	if f.client.callCount() != 2 {
		t.Fatalf("auto-submit did not submit: client calls = %d", f.client.callCount())
	}
	if _, open := f.engine.Draft(); open {
		t.Fatalf("draft left open after auto-submit")
	}
}

func TestEngineHoldRejectedWhileIdle(t *testing.T) {
	f := newEngineFixture(testConfig())
	if err := f.engine.HoldToTalk(context.Background(), false); !errors.Is(err, ErrNotAwaitingPatient) {
		t.Fatalf("error = %v, want ErrNotAwaitingPatient", err)
	}
	if f.backend.starts != 0 {
		t.Fatalf("capture started while idle")
	}
}

func TestEngineHoldRejectedWhileSpeaking(t *testing.T) {
	f := startedEngine(t, testConfig())
	f.speaker.mu.Lock()
	f.speaker.speaking = true
	f.speaker.mu.Unlock()
	if err := f.engine.HoldToTalk(context.Background(), false); !errors.Is(err, capture.ErrSpeaking) {
		t.Fatalf("error = %v, want ErrSpeaking", err)
	}
}

func TestEngineReleaseWithNoSpeech(t *testing.T) {
	f := startedEngine(t, testConfig())
	f.backend.result = ""
	if err := f.engine.HoldToTalk(context.Background(), false); err != nil {
		t.Fatalf("HoldToTalk returned error: %v", err)
	}
	err := f.engine.Release(context.Background())
	if !errors.Is(err, transcript.ErrNoSpeech) {
		t.Fatalf("error = %v, want ErrNoSpeech", err)
	}
	if f.events.lastUserError() != userMessageNoSpeech {
		t.Fatalf("user error = %q, want no-speech message", f.events.lastUserError())
	}
	// Capture can start again immediately: no draft opened.
	if err := f.engine.HoldToTalk(context.Background(), false); err != nil {
		t.Fatalf("HoldToTalk after no-speech returned error: %v", err)
	}
}

func TestEngineRedoThenRecapture(t *testing.T) {
	f := startedEngine(t, testConfig())
	if err := f.engine.HoldToTalk(context.Background(), false); err != nil {
		t.Fatalf("HoldToTalk returned error: %v", err)
	}
	if err := f.engine.Release(context.Background()); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	if err := f.engine.Redo(); err != nil {
		t.Fatalf("Redo returned error: %v", err)
	}
	if _, open := f.engine.Draft(); open {
		t.Fatalf("draft survived redo")
	}

	f.backend.result = "it started yesterday"
	if err := f.engine.HoldToTalk(context.Background(), false); err != nil {
		t.Fatalf("HoldToTalk after redo returned error: %v", err)
	}
	if err := f.engine.Release(context.Background()); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	text, _ := f.engine.Draft()
	if text != "it started yesterday." {
		t.Fatalf("recaptured draft = %q", text)
	}
}

func TestEngineEditDraft(t *testing.T) {
	f := startedEngine(t, testConfig())
	if err := f.engine.HoldToTalk(context.Background(), false); err != nil {
		t.Fatalf("HoldToTalk returned error: %v", err)
	}
	if err := f.engine.Release(context.Background()); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	if err := f.engine.BeginEdit(); err != nil {
		t.Fatalf("BeginEdit returned error: %v", err)
	}
	if err := f.engine.CommitEdit("It started two days ago, at night."); err != nil {
		t.Fatalf("CommitEdit returned error: %v", err)
	}
	if err := f.engine.Accept(context.Background()); err != nil {
		t.Fatalf("Accept returned error: %v", err)
	}
	sess := f.engine.Snapshot()
	if sess.Transcript[1].Content != "It started two days ago, at night." {
		t.Fatalf("edited answer = %q", sess.Transcript[1].Content)
	}
}

func TestEngineFailedSubmitRestoresDraft(t *testing.T) {
	f := startedEngine(t, testConfig())
	if err := f.engine.HoldToTalk(context.Background(), false); err != nil {
		t.Fatalf("HoldToTalk returned error: %v", err)
	}
	if err := f.engine.Release(context.Background()); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	f.client.errs = []error{nil, errors.New("network down")}
	if err := f.engine.Accept(context.Background()); err == nil {
		t.Fatalf("expected submission failure")
	}
	text, open := f.engine.Draft()
	if !open || text != "it started 2 days ago." {
		t.Fatalf("failed submission lost the draft: %q open=%v", text, open)
	}
	// Retry succeeds once the network is back.
	f.client.errs = nil
	if err := f.engine.Accept(context.Background()); err != nil {
		t.Fatalf("retry Accept returned error: %v", err)
	}
	if len(f.engine.Snapshot().Transcript) != 3 {
		t.Fatalf("retried answer not in transcript")
	}
}

func TestEngineSubmitTextBypassesCapture(t *testing.T) {
	f := startedEngine(t, testConfig())
	if err := f.engine.SubmitText(context.Background(), "typed answer"); err != nil {
		t.Fatalf("SubmitText returned error: %v", err)
	}
	sess := f.engine.Snapshot()
	if sess.Transcript[1].Content != "typed answer" {
		t.Fatalf("typed answer = %q", sess.Transcript[1].Content)
	}
	if f.backend.starts != 0 {
		t.Fatalf("capture started for a typed answer")
	}
}

func TestEngineEndResetsReview(t *testing.T) {
	f := startedEngine(t, testConfig())
	f.client.responses = append(f.client.responses,
		&protocol.TurnResponse{Type: protocol.ResponseTypeSummary, Summary: &protocol.Summary{Summary: "s"}})
	if err := f.engine.HoldToTalk(context.Background(), false); err != nil {
		t.Fatalf("HoldToTalk returned error: %v", err)
	}
	if err := f.engine.Release(context.Background()); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	if err := f.engine.End(context.Background()); err != nil {
		t.Fatalf("End returned error: %v", err)
	}
	if _, open := f.engine.Draft(); open {
		t.Fatalf("pending draft survived end")
	}
	if !f.controller.AwaitingFinalComments() {
		t.Fatalf("patient-initiated end should await final comments")
	}
}
