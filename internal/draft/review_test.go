package draft

import (
	"context"
	"errors"
	"testing"

	"github.com/MikeMehr/patient-intake/internal/transcript"
)

func newReviewWithSpeech(t *testing.T, text string) *Review {
	t.Helper()
	buf := transcript.NewBuffer(nil, "en-US")
	r := NewReview(buf)
	if text != "" {
		buf.AppendFinal(text)
		if _, err := r.FinalizeCapture(context.Background()); err != nil {
			t.Fatalf("finalize capture failed: %v", err)
		}
	}
	return r
}

func TestFinalizeCapture_MovesToReviewing(t *testing.T) {
	r := newReviewWithSpeech(t, "follow up")
	if r.State() != StateReviewing {
		t.Fatalf("state = %s, want reviewing", r.State())
	}
	if r.Committed() != "follow up." {
		t.Fatalf("committed = %q", r.Committed())
	}
}

func TestFinalizeCapture_NoSpeechStaysCapturing(t *testing.T) {
	r := newReviewWithSpeech(t, "")
	if _, err := r.FinalizeCapture(context.Background()); !errors.Is(err, transcript.ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech, got %v", err)
	}
	if r.State() != StateCapturing {
		t.Fatalf("state = %s, want capturing", r.State())
	}
}

func TestAccept_ReturnsCommittedText(t *testing.T) {
	r := newReviewWithSpeech(t, "follow up")
	text, err := r.Accept()
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if text != "follow up." {
		t.Fatalf("accepted = %q", text)
	}
}

func TestAccept_WithoutDraft(t *testing.T) {
	r := newReviewWithSpeech(t, "")
	if _, err := r.Accept(); !errors.Is(err, ErrNoDraft) {
		t.Fatalf("expected ErrNoDraft, got %v", err)
	}
}

func TestEdit_ReplacesText(t *testing.T) {
	r := newReviewWithSpeech(t, "follow up")
	if err := r.BeginEdit(); err != nil {
		t.Fatalf("begin edit failed: %v", err)
	}
	if r.State() != StateEditing {
		t.Fatalf("state = %s, want editing", r.State())
	}
	if err := r.CommitEdit("corrected answer"); err != nil {
		t.Fatalf("commit edit failed: %v", err)
	}
	if r.Committed() != "corrected answer" {
		t.Fatalf("committed = %q", r.Committed())
	}
	if r.State() != StateReviewing {
		t.Fatalf("state = %s, want reviewing", r.State())
	}
}

func TestEdit_EmptyEditPreservesText(t *testing.T) {
	r := newReviewWithSpeech(t, "follow up")
	if err := r.BeginEdit(); err != nil {
		t.Fatalf("begin edit failed: %v", err)
	}
	if err := r.CommitEdit(""); err != nil {
		t.Fatalf("commit edit failed: %v", err)
	}
	if r.Committed() != "follow up." {
		t.Fatalf("committed = %q, want preserved text", r.Committed())
	}
}

func TestRedo_DiscardsEverything(t *testing.T) {
	r := newReviewWithSpeech(t, "follow up")
	r.Buffer().SetInterim("more speech")
	if err := r.Redo(); err != nil {
		t.Fatalf("redo failed: %v", err)
	}
	if r.State() != StateCapturing {
		t.Fatalf("state = %s, want capturing", r.State())
	}
	if r.Committed() != "" {
		t.Fatalf("committed = %q, want empty", r.Committed())
	}
	if _, err := r.Buffer().Finalize(context.Background()); !errors.Is(err, transcript.ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech after redo, got %v", err)
	}
}

func TestSubmittingSuppressesAcceptEditRedo(t *testing.T) {
	r := newReviewWithSpeech(t, "follow up")
	r.SetSubmitting(true)
	if _, err := r.Accept(); !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("accept: expected ErrSubmissionInFlight, got %v", err)
	}
	if err := r.BeginEdit(); !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("edit: expected ErrSubmissionInFlight, got %v", err)
	}
	if err := r.Redo(); !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("redo: expected ErrSubmissionInFlight, got %v", err)
	}
	r.SetSubmitting(false)
	if _, err := r.Accept(); err != nil {
		t.Fatalf("accept after resolve failed: %v", err)
	}
}

func TestTakeAndRestore(t *testing.T) {
	r := newReviewWithSpeech(t, "follow up")
	text := r.Take()
	if text != "follow up." {
		t.Fatalf("taken = %q", text)
	}
	if r.Pending() {
		t.Fatal("draft should be cleared after take")
	}
	r.Restore(text)
	if r.State() != StateReviewing {
		t.Fatalf("state = %s, want reviewing after restore", r.State())
	}
	if r.Committed() != "follow up." {
		t.Fatalf("committed = %q after restore", r.Committed())
	}
}
