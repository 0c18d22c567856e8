package config

import (
	"fmt"
	"time"

	"github.com/MikeMehr/patient-intake/internal/config"
	"github.com/caarlos0/env/v11"
)

type envConfig struct {
	Env                        string        `env:"ENV" envDefault:"production"`
	Language                   string        `env:"INTERVIEW_LANGUAGE,required"`
	CaptureBackend             string        `env:"CAPTURE_BACKEND" envDefault:"continuous"`
	AutoSubmit                 bool          `env:"AUTO_SUBMIT" envDefault:"false"`
	PauseIdleTimeout           time.Duration `env:"PAUSE_IDLE_TIMEOUT" envDefault:"10m"`
	CountdownSeconds           int           `env:"COUNTDOWN_SECONDS" envDefault:"60"`
	ProtocolURL                string        `env:"PROTOCOL_URL,required"`
	PhysicianID                string        `env:"PHYSICIAN_ID,required"`
	TranscriptionURL           string        `env:"TRANSCRIPTION_URL"`
	CleanupURL                 string        `env:"CLEANUP_URL"`
	SpeechSynthesisURL         string        `env:"SPEECH_SYNTHESIS_URL"`
	MicrophoneDevice           string        `env:"MICROPHONE_DEVICE" envDefault:"/dev/intake-mic"`
	GoogleCloudProjectID       string        `env:"GOOGLE_CLOUD_PROJECT_ID"`
	GoogleCloudCredentialsJSON string        `env:"GOOGLE_CLOUD_CREDENTIALS_JSON"`
	GoogleCloudSpeechLocation  string        `env:"GOOGLE_CLOUD_SPEECH_LOCATION" envDefault:"global"`
	GoogleCloudSpeechModel     string        `env:"GOOGLE_CLOUD_SPEECH_MODEL" envDefault:"latest_long"`
	DatabaseURL                string        `env:"DATABASE_URL,required"`
	CompletionWebhookURL       string        `env:"COMPLETION_WEBHOOK_URL"`
}

func Load() (*config.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &config.Config{
		Env:                        raw.Env,
		Language:                   raw.Language,
		CaptureBackend:             raw.CaptureBackend,
		AutoSubmit:                 raw.AutoSubmit,
		PauseIdleTimeout:           raw.PauseIdleTimeout,
		CountdownSeconds:           raw.CountdownSeconds,
		ProtocolURL:                raw.ProtocolURL,
		PhysicianID:                raw.PhysicianID,
		TranscriptionURL:           raw.TranscriptionURL,
		CleanupURL:                 raw.CleanupURL,
		SpeechSynthesisURL:         raw.SpeechSynthesisURL,
		MicrophoneDevice:           raw.MicrophoneDevice,
		GoogleCloudProjectID:       raw.GoogleCloudProjectID,
		GoogleCloudCredentialsJSON: raw.GoogleCloudCredentialsJSON,
		GoogleCloudSpeechLocation:  raw.GoogleCloudSpeechLocation,
		GoogleCloudSpeechModel:     raw.GoogleCloudSpeechModel,
		DatabaseURL:                raw.DatabaseURL,
		CompletionWebhookURL:       raw.CompletionWebhookURL,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
