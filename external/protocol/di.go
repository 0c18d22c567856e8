package protocol

import (
	"github.com/MikeMehr/patient-intake/internal/config"
	"github.com/MikeMehr/patient-intake/internal/protocol"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (protocol.Client, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewHTTPClient(c.ProtocolURL), nil
	})
}
