package repository

import "time"

type InterviewStatus string

const (
	InterviewStatusRunning   InterviewStatus = "running"
	InterviewStatusCompleted InterviewStatus = "completed"
)

type Interview struct {
	ID             string
	PatientEmail   string
	PhysicianID    string
	Language       string
	FirstName      string
	LastName       string
	Age            int
	Sex            string
	ChiefComplaint string
	StartedAt      time.Time
	EndedAt        *time.Time
	Status         InterviewStatus
	EndReason      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type InterviewMessage struct {
	ID          string
	InterviewID string
	Role        string
	Content     string
	Position    int
	CreatedAt   time.Time
}
