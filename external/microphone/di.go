package microphone

import (
	"github.com/MikeMehr/patient-intake/internal/capture"
	"github.com/MikeMehr/patient-intake/internal/config"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (capture.Microphone, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewDeviceMicrophone(c.MicrophoneDevice), nil
	})
}
