package repository

import (
	"context"
	"time"
)

type CreateInterviewInput struct {
	PatientEmail   string
	PhysicianID    string
	Language       string
	FirstName      string
	LastName       string
	Age            int
	Sex            string
	ChiefComplaint string
	StartedAt      time.Time
}

type MessageSnapshot struct {
	Role     string
	Content  string
	Position int
}

type CompleteInterviewInput struct {
	InterviewID      string
	EndedAt          time.Time
	EndReason        string
	Positives        string
	Negatives        string
	PhysicalFindings string
	Summary          string
	Investigations   string
	Assessment       string
	Plan             string
	FinalComments    string
	Transcript       []MessageSnapshot
}

// Repository persists completed interviews for the physician. Failures on
// this path are logged and never block completion.
type Repository interface {
	CreateInterview(ctx context.Context, input CreateInterviewInput) (*Interview, error)
	CompleteInterview(ctx context.Context, input CompleteInterviewInput) error
	GetInterview(ctx context.Context, interviewID string) (*Interview, error)
}
