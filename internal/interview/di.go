package interview

import (
	"github.com/MikeMehr/patient-intake/internal/audio"
	"github.com/MikeMehr/patient-intake/internal/capture"
	"github.com/MikeMehr/patient-intake/internal/config"
	"github.com/MikeMehr/patient-intake/internal/draft"
	"github.com/MikeMehr/patient-intake/internal/notify"
	"github.com/MikeMehr/patient-intake/internal/protocol"
	"github.com/MikeMehr/patient-intake/internal/repository"
	"github.com/MikeMehr/patient-intake/internal/speech"
	"github.com/MikeMehr/patient-intake/internal/transcriber"
	"github.com/MikeMehr/patient-intake/internal/transcript"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*transcript.Buffer, error) {
		c := do.MustInvoke[*config.Config](i)
		cleaner := do.MustInvoke[transcript.Cleaner](i)
		return transcript.NewBuffer(cleaner, c.Language), nil
	})
	do.Provide(injector, func(i do.Injector) (*draft.Review, error) {
		return draft.NewReview(do.MustInvoke[*transcript.Buffer](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (capture.Backend, error) {
		c := do.MustInvoke[*config.Config](i)
		mic := do.MustInvoke[capture.Microphone](i)
		if c.CaptureBackend == config.CaptureBackendBatch {
			encoder := do.MustInvoke[*audio.Encoder](i)
			batch := do.MustInvoke[transcriber.Batch](i)
			return capture.NewBatchBackend(mic, encoder, batch), nil
		}
		streamer := do.MustInvoke[transcriber.Streamer](i)
		newDecoder := do.MustInvoke[audio.DecoderFactory](i)
		return capture.NewContinuousBackend(mic, streamer, newDecoder), nil
	})
	do.Provide(injector, func(i do.Injector) (*capture.Controller, error) {
		c := do.MustInvoke[*config.Config](i)
		backend := do.MustInvoke[capture.Backend](i)
		speaker := do.MustInvoke[speech.Speaker](i)
		review := do.MustInvoke[*draft.Review](i)
		return capture.NewController(backend, speaker, review, c.Language), nil
	})
	do.Provide(injector, func(i do.Injector) (Events, error) {
		return LogEvents{}, nil
	})
	do.Provide(injector, func(i do.Injector) (*Controller, error) {
		return NewController(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[protocol.Client](i),
			do.MustInvoke[repository.Repository](i),
			do.MustInvoke[notify.Notifier](i),
			do.MustInvoke[speech.Speaker](i),
			do.MustInvoke[*capture.Controller](i),
			do.MustInvoke[Events](i),
		), nil
	})
	do.Provide(injector, func(i do.Injector) (*Engine, error) {
		return NewEngine(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*Controller](i),
			do.MustInvoke[*capture.Controller](i),
			do.MustInvoke[*draft.Review](i),
			do.MustInvoke[Events](i),
		), nil
	})
}
