package capture

import "context"

// Microphone opens the capture feed for one hold-to-talk gesture. Open
// failures are classified into ErrPermissionDenied or ErrDeviceUnavailable by
// the adapter.
type Microphone interface {
	Open(ctx context.Context) (MicStream, error)
}

// MicStream delivers captured audio frames. The channel closes when the
// stream ends or Close is called.
type MicStream interface {
	Chunks() <-chan []byte
	Close() error
}
