package interview

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MikeMehr/patient-intake/internal/capture"
	"github.com/MikeMehr/patient-intake/internal/config"
	"github.com/MikeMehr/patient-intake/internal/draft"
	"github.com/MikeMehr/patient-intake/internal/protocol"
)

// Engine ties the hold-to-talk capture loop, the draft review workflow and
// the turn controller into the surface the patient-facing frontend drives.
type Engine struct {
	cfg        *config.Config
	controller *Controller
	capture    *capture.Controller
	review     *draft.Review
	events     Events
}

func NewEngine(cfg *config.Config, controller *Controller, cap *capture.Controller, review *draft.Review, events Events) *Engine {
	if events == nil {
		events = LogEvents{}
	}
	return &Engine{
		cfg:        cfg,
		controller: controller,
		capture:    cap,
		review:     review,
		events:     events,
	}
}

func (e *Engine) Start(ctx context.Context, profile protocol.PatientProfile) error {
	return e.controller.Start(ctx, profile)
}

// HoldToTalk begins speech capture for the current answer. It is rejected
// while a question is being read aloud or while a draft awaits review,
// unless resumeReview is set to append to the pending draft.
func (e *Engine) HoldToTalk(ctx context.Context, resumeReview bool) error {
	if e.controller.Status() != StatusAwaitingPatient {
		return ErrNotAwaitingPatient
	}
	err := e.capture.Start(ctx, capture.StartOptions{ResumeReview: resumeReview})
	if err != nil {
		e.events.OnUserError(UserMessage(err))
	}
	return err
}

// Release ends capture and finalizes the buffered speech into a draft. With
// AutoSubmit enabled the draft is submitted immediately instead of waiting
// for an explicit accept.
func (e *Engine) Release(ctx context.Context) error {
	if err := e.capture.Stop(ctx); err != nil {
		e.events.OnUserError(UserMessage(err))
		return fmt.Errorf("stop capture: %w", err)
	}
	_, err := e.review.FinalizeCapture(ctx)
	if err != nil {
		e.events.OnUserError(UserMessage(err))
		return err
	}
	if e.cfg.AutoSubmit {
		return e.submitDraft(ctx)
	}
	return nil
}

// Accept submits the reviewed draft as the patient's answer.
func (e *Engine) Accept(ctx context.Context) error {
	if _, err := e.review.Accept(); err != nil {
		return err
	}
	return e.submitDraft(ctx)
}

// SubmitText bypasses capture entirely and submits typed text. Any pending
// draft is discarded first.
func (e *Engine) SubmitText(ctx context.Context, text string) error {
	e.review.Take()
	return e.controller.SubmitAnswer(ctx, text)
}

func (e *Engine) BeginEdit() error { return e.review.BeginEdit() }

func (e *Engine) CommitEdit(text string) error { return e.review.CommitEdit(text) }

func (e *Engine) Redo() error { return e.review.Redo() }

func (e *Engine) Draft() (string, bool) {
	if !e.review.Open() {
		return "", false
	}
	return e.review.Committed(), true
}

func (e *Engine) Pause() error { return e.controller.Pause() }

func (e *Engine) Resume(ctx context.Context) error { return e.controller.Resume(ctx) }

// End terminates the interview at the patient's request; a best-effort
// summary is produced from whatever has been captured so far.
func (e *Engine) End(ctx context.Context) error {
	e.review.Reset()
	return e.controller.EndEarly(ctx, EndReasonPatient)
}

func (e *Engine) Reset() {
	e.review.Reset()
	e.controller.Reset()
}

func (e *Engine) Snapshot() Session { return e.controller.Snapshot() }

// submitDraft moves the draft out of review and into the turn controller.
// While the request is in flight the review rejects edit and redo; on
// failure the text is restored so the patient can retry without repeating
// themselves.
func (e *Engine) submitDraft(ctx context.Context) error {
	e.review.SetSubmitting(true)
	text := e.review.Take()
	err := e.controller.SubmitAnswer(ctx, text)
	e.review.SetSubmitting(false)
	if err != nil {
		restored := e.controller.TakeRestoredDraft()
		if restored == "" {
			restored = text
		}
		e.review.Restore(restored)
		slog.Warn("answer submission failed; draft restored", "error", err)
		return err
	}
	return nil
}
