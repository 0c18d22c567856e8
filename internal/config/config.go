package config

import (
	"fmt"
	"time"
)

const (
	CaptureBackendContinuous = "continuous"
	CaptureBackendBatch      = "batch"
)

type Config struct {
	Env                        string
	Language                   string
	CaptureBackend             string
	AutoSubmit                 bool
	PauseIdleTimeout           time.Duration
	CountdownSeconds           int
	ProtocolURL                string
	PhysicianID                string
	TranscriptionURL           string
	CleanupURL                 string
	SpeechSynthesisURL         string
	MicrophoneDevice           string
	GoogleCloudProjectID       string
	GoogleCloudCredentialsJSON string
	GoogleCloudSpeechLocation  string
	GoogleCloudSpeechModel     string
	DatabaseURL                string
	CompletionWebhookURL       string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	switch c.CaptureBackend {
	case CaptureBackendContinuous:
		if c.GoogleCloudProjectID == "" || c.GoogleCloudCredentialsJSON == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT_ID and GOOGLE_CLOUD_CREDENTIALS_JSON are required when CAPTURE_BACKEND=continuous")
		}
	case CaptureBackendBatch:
		if c.TranscriptionURL == "" {
			return fmt.Errorf("TRANSCRIPTION_URL is required when CAPTURE_BACKEND=batch")
		}
	default:
		return fmt.Errorf("CAPTURE_BACKEND must be %q or %q, got %q", CaptureBackendContinuous, CaptureBackendBatch, c.CaptureBackend)
	}
	if c.PauseIdleTimeout <= 0 {
		return fmt.Errorf("PAUSE_IDLE_TIMEOUT must be positive, got %s", c.PauseIdleTimeout)
	}
	if c.CountdownSeconds <= 0 {
		return fmt.Errorf("COUNTDOWN_SECONDS must be positive, got %d", c.CountdownSeconds)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "INTERVIEW_LANGUAGE", value: c.Language},
		{name: "PROTOCOL_URL", value: c.ProtocolURL},
		{name: "PHYSICIAN_ID", value: c.PhysicianID},
		{name: "DATABASE_URL", value: c.DatabaseURL},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
