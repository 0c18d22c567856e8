package audio

import (
	"github.com/MikeMehr/patient-intake/internal/audio"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.ProvideValue(injector, audio.DecoderFactory(NewOpusDecoder))
	do.Provide(injector, func(i do.Injector) (*audio.Encoder, error) {
		return audio.NewEncoder(do.MustInvoke[audio.DecoderFactory](i)), nil
	})
}
