package transcriber

import (
	"github.com/MikeMehr/patient-intake/internal/config"
	"github.com/MikeMehr/patient-intake/internal/transcriber"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (transcriber.Streamer, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewCloudSpeechStreamer(CloudSpeechConfig{
			ProjectID:       c.GoogleCloudProjectID,
			CredentialsJSON: c.GoogleCloudCredentialsJSON,
			Language:        c.Language,
			Location:        c.GoogleCloudSpeechLocation,
			Model:           c.GoogleCloudSpeechModel,
		}), nil
	})
	do.Provide(injector, func(i do.Injector) (transcriber.Batch, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewHTTPBatchTranscriber(c.TranscriptionURL), nil
	})
}
