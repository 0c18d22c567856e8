package protocol

import (
	"context"
	"errors"
)

// ErrQuotaExceeded marks a rate-limit or quota rejection from the interview
// generator so the caller can show a specific message instead of a generic one.
var ErrQuotaExceeded = errors.New("interview generator quota exceeded")

type Role string

const (
	RoleAssistant Role = "assistant"
	RolePatient   Role = "patient"
)

type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// PatientProfile is collected before the interview starts and is immutable
// once the first turn request has been issued.
type PatientProfile struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Age            int    `json:"age"`
	Sex            string `json:"sex"`
	Email          string `json:"email"`
	ChiefComplaint string `json:"chiefComplaint"`
}

type TurnRequest struct {
	ChiefComplaint string         `json:"chiefComplaint"`
	PatientProfile PatientProfile `json:"patientProfile"`
	Transcript     []ChatMessage  `json:"transcript"`
	ImageSummary   string         `json:"imageSummary,omitempty"`
	LabSummaries   []string       `json:"labSummaries,omitempty"`
	Guidance       string         `json:"guidance,omitempty"`
	Background     string         `json:"background,omitempty"`
	PatientEmail   string         `json:"patientEmail"`
	PhysicianID    string         `json:"physicianId"`
	Language       string         `json:"language"`
	ForceSummary   bool           `json:"forceSummary,omitempty"`
	// RequestToken deduplicates retried requests: a response carrying a token
	// that has already been applied to the transcript is dropped.
	RequestToken string `json:"requestToken"`
}

type ResponseType string

const (
	ResponseTypeQuestion ResponseType = "question"
	ResponseTypeSummary  ResponseType = "summary"
)

type Summary struct {
	Positives        string `json:"positives"`
	Negatives        string `json:"negatives"`
	PhysicalFindings string `json:"physicalFindings,omitempty"`
	Summary          string `json:"summary"`
	Investigations   string `json:"investigations"`
	Assessment       string `json:"assessment"`
	Plan             string `json:"plan"`
	FinalComments    string `json:"finalComments,omitempty"`
}

type TurnResponse struct {
	Type     ResponseType `json:"type"`
	Question string       `json:"question,omitempty"`
	Summary  *Summary     `json:"summary,omitempty"`
}

type Client interface {
	RequestTurn(ctx context.Context, req TurnRequest) (*TurnResponse, error)
}
