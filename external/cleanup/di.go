package cleanup

import (
	"github.com/MikeMehr/patient-intake/internal/config"
	"github.com/MikeMehr/patient-intake/internal/transcript"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (transcript.Cleaner, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewHTTPCleaner(c.CleanupURL), nil
	})
}
