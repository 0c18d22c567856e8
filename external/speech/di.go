package speech

import (
	"github.com/MikeMehr/patient-intake/internal/config"
	"github.com/MikeMehr/patient-intake/internal/speech"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (Playback, error) {
		return DiscardPlayback{}, nil
	})
	do.Provide(injector, func(i do.Injector) (speech.Speaker, error) {
		c := do.MustInvoke[*config.Config](i)
		if c.SpeechSynthesisURL == "" {
			return speech.NoopSpeaker{}, nil
		}
		return NewHTTPSpeaker(c.SpeechSynthesisURL, c.Language, do.MustInvoke[Playback](i)), nil
	})
}
