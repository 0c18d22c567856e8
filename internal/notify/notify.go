package notify

import "context"

const CompletionSchemaVersion = 1

type CompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CompletionPayload struct {
	SchemaVersion    int                 `json:"schemaVersion"`
	InterviewID      string              `json:"interviewId"`
	PatientEmail     string              `json:"patientEmail"`
	PhysicianID      string              `json:"physicianId"`
	Language         string              `json:"language"`
	FirstName        string              `json:"firstName"`
	LastName         string              `json:"lastName"`
	Age              int                 `json:"age"`
	Sex              string              `json:"sex"`
	ChiefComplaint   string              `json:"chiefComplaint"`
	StartedAt        string              `json:"startedAt"`
	EndedAt          string              `json:"endedAt"`
	EndReason        string              `json:"endReason"`
	Positives        string              `json:"positives"`
	Negatives        string              `json:"negatives"`
	PhysicalFindings string              `json:"physicalFindings,omitempty"`
	Summary          string              `json:"summary"`
	Investigations   string              `json:"investigations"`
	Assessment       string              `json:"assessment"`
	Plan             string              `json:"plan"`
	FinalComments    string              `json:"finalComments,omitempty"`
	Messages         []CompletionMessage `json:"messages"`
}

// Notifier announces a completed interview to an external endpoint. An
// unconfigured notifier is a no-op.
type Notifier interface {
	SendCompletion(ctx context.Context, payload CompletionPayload) error
}
