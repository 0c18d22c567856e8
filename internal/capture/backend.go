package capture

import (
	"context"

	"github.com/MikeMehr/patient-intake/internal/transcript"
)

// Backend is one of the two interchangeable capture implementations,
// selected once at configuration time. Both deliver speech into the same
// transcript buffer, so everything downstream is backend-agnostic.
type Backend interface {
	Start(ctx context.Context, sessionID, language string, buf *transcript.Buffer) (Session, error)
}

// Session is one live hold-to-talk capture. Stop tears down hardware capture
// and flushes any pending recognition into the buffer before returning.
type Session interface {
	Stop(ctx context.Context) error
}
