package interview

import (
	"log/slog"
	"time"

	"github.com/MikeMehr/patient-intake/internal/protocol"
)

type Status string

const (
	StatusIdle            Status = "idle"
	StatusAwaitingAI      Status = "awaiting_ai"
	StatusAwaitingPatient Status = "awaiting_patient"
	StatusPaused          Status = "paused"
	StatusComplete        Status = "complete"
)

// Session is the canonical interview state. It is owned exclusively by the
// Controller and mutated only through its transition methods.
type Session struct {
	ID            string
	Status        Status
	Transcript    []protocol.ChatMessage
	Profile       protocol.PatientProfile
	Language      string
	StartedAt     *time.Time
	PauseDeadline *time.Time
}

func (s Session) clone() Session {
	out := s
	out.Transcript = make([]protocol.ChatMessage, len(s.Transcript))
	copy(out.Transcript, s.Transcript)
	if s.StartedAt != nil {
		t := *s.StartedAt
		out.StartedAt = &t
	}
	if s.PauseDeadline != nil {
		t := *s.PauseDeadline
		out.PauseDeadline = &t
	}
	return out
}

// Events receives controller notifications. Implementations must not call
// back into the Controller from within a handler.
type Events interface {
	OnStatusChange(from, to Status)
	OnMessage(msg protocol.ChatMessage)
	OnCountdownTick(remainingSeconds int)
	OnUserError(message string)
}

// LogEvents is the default sink: structured logs only.
type LogEvents struct{}

func (LogEvents) OnStatusChange(from, to Status) {
	slog.Info("interview status changed", "from", string(from), "to", string(to))
}

func (LogEvents) OnMessage(msg protocol.ChatMessage) {
	slog.Info("transcript message appended", "role", string(msg.Role), "chars", len(msg.Content))
}

func (LogEvents) OnCountdownTick(remainingSeconds int) {
	slog.Info("termination countdown", "remaining_seconds", remainingSeconds)
}

func (LogEvents) OnUserError(message string) {
	slog.Warn("user-facing error", "message", message)
}
