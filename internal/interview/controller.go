package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/MikeMehr/patient-intake/internal/config"
	"github.com/MikeMehr/patient-intake/internal/notify"
	"github.com/MikeMehr/patient-intake/internal/protocol"
	"github.com/MikeMehr/patient-intake/internal/repository"
	"github.com/MikeMehr/patient-intake/internal/speech"
	"github.com/google/uuid"
)

var (
	ErrAlreadyStarted     = errors.New("interview already started")
	ErrNotAwaitingPatient = errors.New("interview is not awaiting a patient answer")
	ErrRequestInFlight    = errors.New("a protocol request is already in flight")
	ErrCannotPause        = errors.New("interview cannot be paused in its current state")
	ErrNotPaused          = errors.New("interview is not paused")
)

const (
	EndReasonPatient     = "patient_request"
	EndReasonIdleTimeout = "idle_timeout"

	// maxLocalSummaryChars bounds the degraded summary synthesized when the
	// generator cannot produce one.
	maxLocalSummaryChars = 2000
)

// CaptureSuspender aborts active speech capture; implemented by the capture
// controller and invoked on pause, end and reset.
type CaptureSuspender interface {
	Suspend()
}

// Controller owns the interview session and drives its state machine. All
// session mutation goes through its transition methods; one protocol request
// is in flight at most per session.
type Controller struct {
	cfg      *config.Config
	client   protocol.Client
	repo     repository.Repository
	notifier notify.Notifier
	speaker  speech.Speaker
	capture  CaptureSuspender
	events   Events

	countdownInterval time.Duration
	now               func() time.Time

	mu                    sync.Mutex
	sess                  Session
	summary               *protocol.Summary
	interviewID           string
	endReason             string
	awaitingFinalComments bool
	resumeStatus          Status
	requestToken          string
	appliedToken          string
	inFlight              bool
	restoredDraft         string

	timerGen  int
	idleTimer *time.Timer
}

func NewController(cfg *config.Config, client protocol.Client, repo repository.Repository, notifier notify.Notifier, speaker speech.Speaker, capture CaptureSuspender, events Events) *Controller {
	if events == nil {
		events = LogEvents{}
	}
	return &Controller{
		cfg:               cfg,
		client:            client,
		repo:              repo,
		notifier:          notifier,
		speaker:           speaker,
		capture:           capture,
		events:            events,
		countdownInterval: time.Second,
		now:               time.Now,
		sess:              Session{Status: StatusIdle},
	}
}

// Snapshot returns a copy of the session for display.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.clone()
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.Status
}

func (c *Controller) Summary() *protocol.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.summary == nil {
		return nil
	}
	s := *c.summary
	return &s
}

func (c *Controller) AwaitingFinalComments() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.awaitingFinalComments
}

// TakeRestoredDraft hands back the answer text restored by a failed
// submission, clearing it.
func (c *Controller) TakeRestoredDraft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	text := c.restoredDraft
	c.restoredDraft = ""
	return text
}

// Start validates the profile, records the interview and issues the first
// protocol request with an empty transcript.
func (c *Controller) Start(ctx context.Context, profile protocol.PatientProfile) error {
	if err := validateProfile(profile); err != nil {
		return err
	}

	c.mu.Lock()
	if c.sess.Status != StatusIdle {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	startedAt := c.now()
	sessionID := uuid.NewString()
	c.sess.ID = sessionID
	c.sess.Profile = profile
	c.sess.Language = c.cfg.Language
	c.sess.StartedAt = &startedAt
	c.sess.Status = StatusAwaitingAI
	token := uuid.NewString()
	c.requestToken = token
	c.inFlight = true
	req := c.turnRequestLocked(token, false)
	c.mu.Unlock()
	c.events.OnStatusChange(StatusIdle, StatusAwaitingAI)
	slog.Info("interview started", "session_id", sessionID, "language", req.Language)

	c.createInterviewRecord(ctx, profile, startedAt)

	resp, err := c.client.RequestTurn(ctx, req)
	c.mu.Lock()
	if token == c.requestToken {
		c.inFlight = false
	}
	if err != nil {
		if token != c.requestToken {
			c.mu.Unlock()
			slog.Info("dropping failure of a superseded turn request", "request_token", token)
			return fmt.Errorf("first turn request: %w", err)
		}
		c.sess.Status = StatusIdle
		c.mu.Unlock()
		c.events.OnStatusChange(StatusAwaitingAI, StatusIdle)
		c.events.OnUserError(UserMessage(err))
		return fmt.Errorf("first turn request: %w", err)
	}
	c.mu.Unlock()
	c.applyResponse(ctx, token, resp)
	return nil
}

// SubmitAnswer appends the patient answer optimistically and issues the next
// protocol request. On failure the append is rolled back and the draft text
// is kept for re-submission. In the final-comments sub-mode the answer closes
// the interview without a protocol round-trip.
func (c *Controller) SubmitAnswer(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("cannot submit an empty answer")
	}

	c.mu.Lock()
	if c.sess.Status != StatusAwaitingPatient {
		c.mu.Unlock()
		return ErrNotAwaitingPatient
	}
	if c.inFlight {
		c.mu.Unlock()
		return ErrRequestInFlight
	}
	if c.awaitingFinalComments {
		return c.submitFinalCommentsLocked(ctx, text)
	}

	prevLen := len(c.sess.Transcript)
	msg := protocol.ChatMessage{Role: protocol.RolePatient, Content: text}
	c.sess.Transcript = append(c.sess.Transcript, msg)
	c.sess.Status = StatusAwaitingAI
	token := uuid.NewString()
	c.requestToken = token
	c.inFlight = true
	req := c.turnRequestLocked(token, false)
	c.mu.Unlock()
	c.events.OnMessage(msg)
	c.events.OnStatusChange(StatusAwaitingPatient, StatusAwaitingAI)

	resp, err := c.client.RequestTurn(ctx, req)
	c.mu.Lock()
	if token == c.requestToken {
		c.inFlight = false
	}
	if err != nil {
		if token != c.requestToken || c.sess.Status == StatusComplete {
			// The request was superseded while in flight; the session has
			// already moved on and must not be rolled back.
			c.mu.Unlock()
			slog.Info("dropping failure of a superseded turn request", "request_token", token)
			return fmt.Errorf("submit answer: %w", err)
		}
		c.sess.Transcript = c.sess.Transcript[:prevLen]
		c.restoredDraft = text
		paused := c.sess.Status == StatusPaused
		if paused {
			c.resumeStatus = StatusAwaitingPatient
		} else {
			c.sess.Status = StatusAwaitingPatient
		}
		c.mu.Unlock()
		if !paused {
			c.events.OnStatusChange(StatusAwaitingAI, StatusAwaitingPatient)
		}
		c.events.OnUserError(UserMessage(err))
		return fmt.Errorf("submit answer: %w", err)
	}
	c.mu.Unlock()
	c.applyResponse(ctx, token, resp)
	return nil
}

// submitFinalCommentsLocked closes the interview with the patient's closing
// remark. Called with the mutex held; releases it.
func (c *Controller) submitFinalCommentsLocked(ctx context.Context, text string) error {
	msg := protocol.ChatMessage{Role: protocol.RolePatient, Content: text}
	c.sess.Transcript = append(c.sess.Transcript, msg)
	if c.summary != nil {
		c.summary.FinalComments = text
	}
	c.awaitingFinalComments = false
	c.cancelTimersLocked()
	c.sess.Status = StatusComplete
	if c.endReason == "" {
		c.endReason = "completed"
	}
	c.mu.Unlock()
	c.events.OnMessage(msg)
	c.events.OnStatusChange(StatusAwaitingPatient, StatusComplete)
	slog.Info("interview complete", "final_comment_chars", len(text))
	c.finalize(ctx)
	return nil
}

// applyResponse folds a protocol response into the session. Responses are
// deduplicated by request token: a retried request and its original can both
// resolve, but only the first arrival is applied, and a response whose token
// is no longer the outstanding one (superseded by a forced-summary request,
// for example) is dropped. Complete is terminal: nothing mutates a finished
// session. If the session is paused the result is applied to the transcript
// and the remembered resume status rather than the live one.
func (c *Controller) applyResponse(ctx context.Context, token string, resp *protocol.TurnResponse) {
	c.mu.Lock()
	if token == c.appliedToken {
		c.mu.Unlock()
		slog.Info("dropping duplicate protocol response", "request_token", token)
		return
	}
	if token != c.requestToken {
		c.mu.Unlock()
		slog.Info("dropping response for a superseded turn request", "request_token", token)
		return
	}
	if c.sess.Status == StatusComplete {
		c.mu.Unlock()
		slog.Info("dropping turn response for a completed interview", "request_token", token)
		return
	}
	c.appliedToken = token
	paused := c.sess.Status == StatusPaused

	var appended []protocol.ChatMessage
	var question string
	switch resp.Type {
	case protocol.ResponseTypeQuestion:
		question = resp.Question
		appended = []protocol.ChatMessage{{Role: protocol.RoleAssistant, Content: resp.Question}}
	case protocol.ResponseTypeSummary:
		s := *resp.Summary
		c.summary = &s
		c.awaitingFinalComments = true
		appended = []protocol.ChatMessage{
			{Role: protocol.RoleAssistant, Content: summaryText(resp.Summary)},
			{Role: protocol.RoleAssistant, Content: messageClosing},
			{Role: protocol.RoleAssistant, Content: messageFinalCommentsPrompt},
		}
	}
	c.sess.Transcript = append(c.sess.Transcript, appended...)
	from := c.sess.Status
	if paused {
		c.resumeStatus = StatusAwaitingPatient
	} else {
		c.sess.Status = StatusAwaitingPatient
	}
	c.mu.Unlock()

	for _, msg := range appended {
		c.events.OnMessage(msg)
	}
	if !paused && from != StatusAwaitingPatient {
		c.events.OnStatusChange(from, StatusAwaitingPatient)
	}
	if question != "" && !paused {
		go func() {
			if err := c.speaker.Speak(context.Background(), question); err != nil {
				slog.Warn("question playback failed", "error", err)
			}
		}()
	}
}

// Pause suspends capture and playback, remembers the pre-pause status and
// arms the idle-deadline timer. An in-flight protocol request is not
// cancelled; its result is applied lazily.
func (c *Controller) Pause() error {
	c.mu.Lock()
	from := c.sess.Status
	switch from {
	case StatusAwaitingPatient, StatusAwaitingAI:
	default:
		c.mu.Unlock()
		return ErrCannotPause
	}
	c.resumeStatus = from
	c.sess.Status = StatusPaused
	c.cancelTimersLocked()
	deadline := c.now().Add(c.cfg.PauseIdleTimeout)
	c.sess.PauseDeadline = &deadline
	gen := c.timerGen
	c.idleTimer = time.AfterFunc(c.cfg.PauseIdleTimeout, func() {
		c.onIdleDeadline(gen)
	})
	c.mu.Unlock()

	c.speaker.Cancel()
	if c.capture != nil {
		c.capture.Suspend()
	}
	c.events.OnStatusChange(from, StatusPaused)
	slog.Info("interview paused", "resume_status", string(from), "idle_deadline", deadline)
	return nil
}

// onIdleDeadline starts the visible countdown. The generation check makes a
// stale fire after resume a no-op.
func (c *Controller) onIdleDeadline(gen int) {
	c.mu.Lock()
	if gen != c.timerGen || c.sess.Status != StatusPaused {
		c.mu.Unlock()
		return
	}
	remaining := c.cfg.CountdownSeconds
	interval := c.countdownInterval
	c.mu.Unlock()
	slog.Info("pause idle deadline reached; starting countdown", "seconds", remaining)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			c.mu.Lock()
			if gen != c.timerGen || c.sess.Status != StatusPaused {
				c.mu.Unlock()
				return
			}
			remaining--
			c.mu.Unlock()
			c.events.OnCountdownTick(remaining)
			if remaining <= 0 {
				slog.Info("countdown elapsed without resume; ending interview")
				if err := c.EndEarly(context.Background(), EndReasonIdleTimeout); err != nil {
					slog.Error("timer-driven termination failed", "error", err)
				}
				return
			}
		}
	}()
}

// Resume cancels both timers and restores the remembered status. If the
// session resumes into AwaitingAI and the last transcript entry is a patient
// message whose response never arrived, the request is retried with the same
// token; the duplicate race resolves by token on arrival.
func (c *Controller) Resume(ctx context.Context) error {
	c.mu.Lock()
	if c.sess.Status != StatusPaused {
		c.mu.Unlock()
		return ErrNotPaused
	}
	c.cancelTimersLocked()
	target := c.resumeStatus
	var retryReq *protocol.TurnRequest
	var retryToken string
	if target == StatusAwaitingAI {
		n := len(c.sess.Transcript)
		if n > 0 && c.sess.Transcript[n-1].Role == protocol.RolePatient {
			if !c.inFlight {
				retryToken = c.requestToken
				req := c.turnRequestLocked(retryToken, false)
				retryReq = &req
				c.inFlight = true
			}
		} else {
			// The answer was already processed; restore the question state.
			target = StatusAwaitingPatient
		}
	}
	c.sess.Status = target
	c.mu.Unlock()
	c.events.OnStatusChange(StatusPaused, target)
	slog.Info("interview resumed", "status", string(target), "retrying_request", retryReq != nil)

	if retryReq == nil {
		return nil
	}
	resp, err := c.client.RequestTurn(ctx, *retryReq)
	c.mu.Lock()
	if retryToken == c.requestToken {
		c.inFlight = false
	}
	if err != nil {
		if retryToken != c.requestToken || c.sess.Status == StatusComplete {
			c.mu.Unlock()
			slog.Info("dropping failure of a superseded turn request", "request_token", retryToken)
			return fmt.Errorf("retry turn request: %w", err)
		}
		n := len(c.sess.Transcript)
		if n > 0 && c.sess.Transcript[n-1].Role == protocol.RolePatient {
			c.restoredDraft = c.sess.Transcript[n-1].Content
			c.sess.Transcript = c.sess.Transcript[:n-1]
		}
		c.sess.Status = StatusAwaitingPatient
		c.mu.Unlock()
		c.events.OnStatusChange(StatusAwaitingAI, StatusAwaitingPatient)
		c.events.OnUserError(UserMessage(err))
		return fmt.Errorf("retry turn request: %w", err)
	}
	c.mu.Unlock()
	c.applyResponse(ctx, retryToken, resp)
	return nil
}

// EndEarly obtains a best-effort summary via a forced-summary request,
// falling back to a locally synthesized one, and drives the session to
// Complete. A patient-initiated end still passes through the final-comments
// flow; a timer-driven end completes immediately. A turn request still in
// flight is superseded by the forced-summary token: whenever it resolves,
// its result no longer matches the outstanding token and is dropped.
func (c *Controller) EndEarly(ctx context.Context, reason string) error {
	c.mu.Lock()
	switch c.sess.Status {
	case StatusIdle:
		c.mu.Unlock()
		return fmt.Errorf("interview has not started")
	case StatusComplete:
		c.mu.Unlock()
		return nil
	}
	c.cancelTimersLocked()
	c.endReason = reason
	from := c.sess.Status

	if c.summary != nil && c.awaitingFinalComments && reason == EndReasonPatient {
		// Already awaiting final comments; nothing more to request.
		c.sess.Status = StatusAwaitingPatient
		c.mu.Unlock()
		if from != StatusAwaitingPatient {
			c.events.OnStatusChange(from, StatusAwaitingPatient)
		}
		return nil
	}

	token := uuid.NewString()
	c.requestToken = token
	c.inFlight = true
	req := c.turnRequestLocked(token, true)
	c.sess.Status = StatusAwaitingAI
	c.mu.Unlock()
	c.speaker.Cancel()
	if c.capture != nil {
		c.capture.Suspend()
	}
	if from != StatusAwaitingAI {
		c.events.OnStatusChange(from, StatusAwaitingAI)
	}
	slog.Info("ending interview early", "reason", reason)

	var summary *protocol.Summary
	resp, err := c.client.RequestTurn(ctx, req)
	if err == nil && resp.Type == protocol.ResponseTypeSummary && resp.Summary != nil {
		s := *resp.Summary
		summary = &s
	} else {
		if err != nil {
			slog.Warn("forced summary request failed; synthesizing locally", "error", err)
		} else {
			slog.Warn("forced summary request returned a non-summary response; synthesizing locally")
		}
		summary = c.synthesizeLocalSummary()
	}

	c.mu.Lock()
	c.inFlight = false
	c.appliedToken = token
	c.summary = summary

	if reason == EndReasonPatient {
		appended := []protocol.ChatMessage{
			{Role: protocol.RoleAssistant, Content: summaryText(summary)},
			{Role: protocol.RoleAssistant, Content: messageClosing},
			{Role: protocol.RoleAssistant, Content: messageFinalCommentsPrompt},
		}
		c.sess.Transcript = append(c.sess.Transcript, appended...)
		c.awaitingFinalComments = true
		c.sess.Status = StatusAwaitingPatient
		c.mu.Unlock()
		for _, msg := range appended {
			c.events.OnMessage(msg)
		}
		c.events.OnStatusChange(StatusAwaitingAI, StatusAwaitingPatient)
		return nil
	}

	appended := []protocol.ChatMessage{
		{Role: protocol.RoleAssistant, Content: summaryText(summary)},
		{Role: protocol.RoleAssistant, Content: messageClosing},
	}
	c.sess.Transcript = append(c.sess.Transcript, appended...)
	c.awaitingFinalComments = false
	c.sess.Status = StatusComplete
	c.mu.Unlock()
	for _, msg := range appended {
		c.events.OnMessage(msg)
	}
	c.events.OnStatusChange(StatusAwaitingAI, StatusComplete)
	c.finalize(ctx)
	return nil
}

// EditPatientMessage applies a provider-initiated correction to a prior
// patient message, updating the canonical transcript and, for a completed
// interview, the persisted copy.
func (c *Controller) EditPatientMessage(ctx context.Context, index int, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("corrected message cannot be empty")
	}
	c.mu.Lock()
	if index < 0 || index >= len(c.sess.Transcript) {
		c.mu.Unlock()
		return fmt.Errorf("message index %d out of range", index)
	}
	if c.sess.Transcript[index].Role != protocol.RolePatient {
		c.mu.Unlock()
		return fmt.Errorf("message %d is not a patient message", index)
	}
	c.sess.Transcript[index].Content = text
	complete := c.sess.Status == StatusComplete
	c.mu.Unlock()
	slog.Info("patient message corrected", "index", index)
	if complete {
		c.finalize(ctx)
	}
	return nil
}

// Reset aborts timers and capture and returns a fresh idle session.
func (c *Controller) Reset() {
	c.mu.Lock()
	from := c.sess.Status
	c.cancelTimersLocked()
	c.sess = Session{Status: StatusIdle}
	c.summary = nil
	c.interviewID = ""
	c.endReason = ""
	c.awaitingFinalComments = false
	c.resumeStatus = ""
	c.requestToken = ""
	c.appliedToken = ""
	c.inFlight = false
	c.restoredDraft = ""
	c.mu.Unlock()
	c.speaker.Cancel()
	if c.capture != nil {
		c.capture.Suspend()
	}
	if from != StatusIdle {
		c.events.OnStatusChange(from, StatusIdle)
	}
	slog.Info("interview reset")
}

// cancelTimersLocked is idempotent and must run on every path that leaves
// Paused; the generation bump makes any already-scheduled fire a no-op.
func (c *Controller) cancelTimersLocked() {
	c.timerGen++
	if c.idleTimer != nil {
		c.idleTimer.Stop()
		c.idleTimer = nil
	}
	c.sess.PauseDeadline = nil
}

func (c *Controller) turnRequestLocked(token string, forceSummary bool) protocol.TurnRequest {
	transcript := make([]protocol.ChatMessage, len(c.sess.Transcript))
	copy(transcript, c.sess.Transcript)
	return protocol.TurnRequest{
		ChiefComplaint: c.sess.Profile.ChiefComplaint,
		PatientProfile: c.sess.Profile,
		Transcript:     transcript,
		PatientEmail:   c.sess.Profile.Email,
		PhysicianID:    c.cfg.PhysicianID,
		Language:       c.sess.Language,
		ForceSummary:   forceSummary,
		RequestToken:   token,
	}
}

// synthesizeLocalSummary builds the degraded summary used when the generator
// cannot provide one: profile demographics plus the patient's own words,
// truncated to a bounded length.
func (c *Controller) synthesizeLocalSummary() *protocol.Summary {
	c.mu.Lock()
	profile := c.sess.Profile
	var answers []string
	for _, msg := range c.sess.Transcript {
		if msg.Role == protocol.RolePatient {
			answers = append(answers, msg.Content)
		}
	}
	c.mu.Unlock()

	text := fmt.Sprintf("%s %s, age %d, sex %s. Chief complaint: %s.",
		profile.FirstName, profile.LastName, profile.Age, profile.Sex, profile.ChiefComplaint)
	if len(answers) > 0 {
		text += " Patient statements: " + strings.Join(answers, " ")
	}
	if len(text) > maxLocalSummaryChars {
		cut := maxLocalSummaryChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return &protocol.Summary{
		Summary:    text,
		Assessment: "Interview ended before an AI summary could be generated; review the transcript.",
	}
}

func (c *Controller) createInterviewRecord(ctx context.Context, profile protocol.PatientProfile, startedAt time.Time) {
	if c.repo == nil {
		return
	}
	iv, err := c.repo.CreateInterview(ctx, repository.CreateInterviewInput{
		PatientEmail:   profile.Email,
		PhysicianID:    c.cfg.PhysicianID,
		Language:       c.cfg.Language,
		FirstName:      profile.FirstName,
		LastName:       profile.LastName,
		Age:            profile.Age,
		Sex:            profile.Sex,
		ChiefComplaint: profile.ChiefComplaint,
		StartedAt:      startedAt,
	})
	if err != nil {
		slog.Error("failed to create interview record", "error", err)
		return
	}
	c.mu.Lock()
	c.interviewID = iv.ID
	c.mu.Unlock()
}

// finalize persists the completed interview and notifies the completion
// webhook. Failures here are logged; they never block completion.
func (c *Controller) finalize(ctx context.Context) {
	c.mu.Lock()
	sess := c.sess.clone()
	var summary protocol.Summary
	if c.summary != nil {
		summary = *c.summary
	}
	interviewID := c.interviewID
	endReason := c.endReason
	c.mu.Unlock()

	endedAt := c.now()
	if c.repo != nil && interviewID != "" {
		transcript := make([]repository.MessageSnapshot, 0, len(sess.Transcript))
		for i, msg := range sess.Transcript {
			transcript = append(transcript, repository.MessageSnapshot{
				Role:     string(msg.Role),
				Content:  msg.Content,
				Position: i,
			})
		}
		if err := c.repo.CompleteInterview(ctx, repository.CompleteInterviewInput{
			InterviewID:      interviewID,
			EndedAt:          endedAt,
			EndReason:        endReason,
			Positives:        summary.Positives,
			Negatives:        summary.Negatives,
			PhysicalFindings: summary.PhysicalFindings,
			Summary:          summary.Summary,
			Investigations:   summary.Investigations,
			Assessment:       summary.Assessment,
			Plan:             summary.Plan,
			FinalComments:    summary.FinalComments,
			Transcript:       transcript,
		}); err != nil {
			slog.Error("failed to persist completed interview", "error", err, "interview_id", interviewID)
		}
	}

	if c.notifier == nil {
		return
	}
	messages := make([]notify.CompletionMessage, 0, len(sess.Transcript))
	for _, msg := range sess.Transcript {
		messages = append(messages, notify.CompletionMessage{Role: string(msg.Role), Content: msg.Content})
	}
	startedAt := ""
	if sess.StartedAt != nil {
		startedAt = sess.StartedAt.Format(time.RFC3339)
	}
	if err := c.notifier.SendCompletion(ctx, notify.CompletionPayload{
		SchemaVersion:    notify.CompletionSchemaVersion,
		InterviewID:      interviewID,
		PatientEmail:     sess.Profile.Email,
		PhysicianID:      c.cfg.PhysicianID,
		Language:         sess.Language,
		FirstName:        sess.Profile.FirstName,
		LastName:         sess.Profile.LastName,
		Age:              sess.Profile.Age,
		Sex:              sess.Profile.Sex,
		ChiefComplaint:   sess.Profile.ChiefComplaint,
		StartedAt:        startedAt,
		EndedAt:          endedAt.Format(time.RFC3339),
		EndReason:        endReason,
		Positives:        summary.Positives,
		Negatives:        summary.Negatives,
		PhysicalFindings: summary.PhysicalFindings,
		Summary:          summary.Summary,
		Investigations:   summary.Investigations,
		Assessment:       summary.Assessment,
		Plan:             summary.Plan,
		FinalComments:    summary.FinalComments,
		Messages:         messages,
	}); err != nil {
		slog.Error("failed to send completion webhook", "error", err, "interview_id", interviewID)
	}
}

func validateProfile(p protocol.PatientProfile) error {
	checks := []struct {
		name  string
		empty bool
	}{
		{"first name", strings.TrimSpace(p.FirstName) == ""},
		{"last name", strings.TrimSpace(p.LastName) == ""},
		{"age", p.Age <= 0},
		{"sex", strings.TrimSpace(p.Sex) == ""},
		{"email", strings.TrimSpace(p.Email) == ""},
		{"chief complaint", strings.TrimSpace(p.ChiefComplaint) == ""},
	}
	for _, check := range checks {
		if check.empty {
			return fmt.Errorf("profile field %s is required", check.name)
		}
	}
	return nil
}
