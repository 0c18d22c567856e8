package capture

import (
	"context"
	"log/slog"
	"sync"

	"github.com/MikeMehr/patient-intake/internal/draft"
	"github.com/MikeMehr/patient-intake/internal/speech"
	"github.com/google/uuid"
)

type StartOptions struct {
	// ResumeReview allows re-entering capture while a draft is under review;
	// the new speech is appended to the pending draft.
	ResumeReview bool
}

// Controller translates the hold-to-talk gesture into exactly one active
// capture session. Starting a new session fully tears down the previous one
// first.
type Controller struct {
	backend  Backend
	speaker  speech.Speaker
	review   *draft.Review
	language string

	mu       sync.Mutex
	active   Session
	activeID string
}

func NewController(backend Backend, speaker speech.Speaker, review *draft.Review, language string) *Controller {
	return &Controller{
		backend:  backend,
		speaker:  speaker,
		review:   review,
		language: language,
	}
}

func (c *Controller) Start(ctx context.Context, opts StartOptions) error {
	if c.speaker.Speaking() {
		return ErrSpeaking
	}
	if c.review.Open() && !opts.ResumeReview {
		return ErrReviewOpen
	}

	// Tearing down the previous session is a hard precondition of starting
	// the next one.
	c.mu.Lock()
	prev := c.active
	prevID := c.activeID
	c.active = nil
	c.activeID = ""
	c.mu.Unlock()
	if prev != nil {
		slog.Warn("tearing down stale capture session before starting a new one", "session_id", prevID)
		_ = prev.Stop(ctx)
	}

	buf := c.review.Buffer()
	buf.ClearInterim()
	if !c.review.Pending() {
		buf.Clear()
	}

	id := uuid.NewString()
	sess, err := c.backend.Start(ctx, id, c.language, buf)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.active = sess
	c.activeID = id
	c.mu.Unlock()
	return nil
}

// Stop ends the active capture session and lets the backend flush pending
// recognition into the buffer. Stopping with no active session is a no-op.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	sess := c.active
	c.active = nil
	c.activeID = ""
	c.mu.Unlock()
	if sess == nil {
		return nil
	}
	return sess.Stop(ctx)
}

// Suspend aborts any active capture without finalizing; used by the pause
// path.
func (c *Controller) Suspend() {
	if err := c.Stop(context.Background()); err != nil {
		slog.Warn("capture suspend failed", "error", err)
	}
}

func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}
