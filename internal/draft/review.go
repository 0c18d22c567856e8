package draft

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MikeMehr/patient-intake/internal/transcript"
)

var (
	// ErrSubmissionInFlight rejects accept/edit/redo while a prior answer is
	// still being submitted; duplicate in-flight answers for one turn are
	// never allowed.
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	ErrNoDraft            = errors.New("no draft to act on")
)

type State int

const (
	StateCapturing State = iota
	StateReviewing
	StateEditing
)

func (s State) String() string {
	switch s {
	case StateCapturing:
		return "capturing"
	case StateReviewing:
		return "reviewing"
	case StateEditing:
		return "editing"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Review holds the single live draft for a session: the speech buffer it is
// captured into, the review state and the committed text staged for
// submission.
type Review struct {
	mu         sync.Mutex
	buf        *transcript.Buffer
	state      State
	committed  string
	submitting bool
}

func NewReview(buf *transcript.Buffer) *Review {
	return &Review{buf: buf, state: StateCapturing}
}

func (r *Review) Buffer() *transcript.Buffer { return r.buf }

func (r *Review) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Open reports whether a draft is under review or being edited.
func (r *Review) Open() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state != StateCapturing
}

// Pending reports whether any draft content exists at all.
func (r *Review) Pending() bool {
	r.mu.Lock()
	committed := r.committed
	r.mu.Unlock()
	return committed != "" || !r.buf.Empty()
}

func (r *Review) Committed() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.committed
}

func (r *Review) SetSubmitting(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitting = v
}

func (r *Review) Submitting() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.submitting
}

// FinalizeCapture converts the buffered speech into a reviewable draft. On
// ErrNoSpeech the review stays in Capturing.
func (r *Review) FinalizeCapture(ctx context.Context) (string, error) {
	text, err := r.buf.Finalize(ctx)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	r.committed = text
	r.state = StateReviewing
	r.mu.Unlock()
	return text, nil
}

// Accept stages the committed text for submission. The caller decides what
// autoSubmit means; the review only validates the transition.
func (r *Review) Accept() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.submitting {
		return "", ErrSubmissionInFlight
	}
	if r.state != StateReviewing || r.committed == "" {
		return "", ErrNoDraft
	}
	return r.committed, nil
}

// BeginEdit freezes the draft for free-text modification.
func (r *Review) BeginEdit() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.submitting {
		return ErrSubmissionInFlight
	}
	if r.state != StateReviewing {
		return ErrNoDraft
	}
	r.state = StateEditing
	return nil
}

// CommitEdit replaces the committed text and returns to Reviewing. An empty
// edit preserves the current text.
func (r *Review) CommitEdit(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateEditing {
		return ErrNoDraft
	}
	if text != "" {
		r.committed = text
	}
	r.state = StateReviewing
	return nil
}

// Redo discards the whole draft and returns to Capturing.
func (r *Review) Redo() error {
	r.mu.Lock()
	if r.submitting {
		r.mu.Unlock()
		return ErrSubmissionInFlight
	}
	r.committed = ""
	r.state = StateCapturing
	r.mu.Unlock()
	r.buf.Clear()
	return nil
}

// Take moves the committed text out for submission and clears the draft.
func (r *Review) Take() string {
	r.mu.Lock()
	text := r.committed
	r.committed = ""
	r.state = StateCapturing
	r.mu.Unlock()
	r.buf.Clear()
	return text
}

// Restore puts a failed submission's text back under review so no patient
// input is silently lost.
func (r *Review) Restore(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = text
	r.state = StateReviewing
}

// Reset clears everything, including the submitting flag.
func (r *Review) Reset() {
	r.mu.Lock()
	r.committed = ""
	r.state = StateCapturing
	r.submitting = false
	r.mu.Unlock()
	r.buf.Clear()
}
