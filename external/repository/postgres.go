package repository

import (
	"context"
	"time"

	"github.com/MikeMehr/patient-intake/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) CreateInterview(ctx context.Context, input repository.CreateInterviewInput) (*repository.Interview, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO interviews (patient_email, physician_id, language, first_name, last_name, age, sex, chief_complaint, started_at, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'running')
		 RETURNING id, patient_email, physician_id, language, first_name, last_name, age, sex, chief_complaint, started_at, ended_at, status`,
		input.PatientEmail, input.PhysicianID, input.Language, input.FirstName, input.LastName,
		input.Age, input.Sex, input.ChiefComplaint, input.StartedAt)
	var iv repository.Interview
	var endedAt *time.Time
	err := row.Scan(&iv.ID, &iv.PatientEmail, &iv.PhysicianID, &iv.Language, &iv.FirstName, &iv.LastName,
		&iv.Age, &iv.Sex, &iv.ChiefComplaint, &iv.StartedAt, &endedAt, &iv.Status)
	if err != nil {
		return nil, err
	}
	iv.EndedAt = endedAt
	return &iv, nil
}

func (r *PostgresRepository) CompleteInterview(ctx context.Context, input repository.CompleteInterviewInput) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx,
		`UPDATE interviews
		 SET status = 'completed', ended_at = $2, end_reason = $3,
		     positives = $4, negatives = $5, physical_findings = $6, summary = $7,
		     investigations = $8, assessment = $9, plan = $10, final_comments = $11,
		     updated_at = NOW()
		 WHERE id = $1`,
		input.InterviewID, input.EndedAt, input.EndReason,
		input.Positives, input.Negatives, input.PhysicalFindings, input.Summary,
		input.Investigations, input.Assessment, input.Plan, input.FinalComments); err != nil {
		return err
	}
	for _, msg := range input.Transcript {
		if _, err := tx.Exec(ctx,
			`INSERT INTO interview_messages (interview_id, role, content, position)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (interview_id, position) DO UPDATE SET role = $2, content = $3`,
			input.InterviewID, msg.Role, msg.Content, msg.Position); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PostgresRepository) GetInterview(ctx context.Context, interviewID string) (*repository.Interview, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, patient_email, physician_id, language, first_name, last_name, age, sex, chief_complaint,
		        started_at, ended_at, status, end_reason, created_at, updated_at
		 FROM interviews WHERE id = $1`,
		interviewID)
	var iv repository.Interview
	var endedAt *time.Time
	err := row.Scan(&iv.ID, &iv.PatientEmail, &iv.PhysicianID, &iv.Language, &iv.FirstName, &iv.LastName,
		&iv.Age, &iv.Sex, &iv.ChiefComplaint, &iv.StartedAt, &endedAt, &iv.Status, &iv.EndReason,
		&iv.CreatedAt, &iv.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	iv.EndedAt = endedAt
	return &iv, nil
}
