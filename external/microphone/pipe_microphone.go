package microphone

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/MikeMehr/patient-intake/internal/capture"
)

// maxFrameBytes bounds a single length-prefixed frame read from the feed.
const maxFrameBytes = 8192

// StreamProvider opens the raw capture feed. The default implementation
// opens a device pipe; tests substitute an in-memory reader.
type StreamProvider func(ctx context.Context) (io.ReadCloser, error)

// PipeMicrophone reads length-prefixed audio frames from a capture feed and
// delivers them on a channel. Each frame is one opus packet: a 2-byte
// little-endian length followed by the packet bytes.
type PipeMicrophone struct {
	provider StreamProvider
}

func NewPipeMicrophone(provider StreamProvider) capture.Microphone {
	return &PipeMicrophone{provider: provider}
}

func NewDeviceMicrophone(path string) capture.Microphone {
	return NewPipeMicrophone(func(_ context.Context) (io.ReadCloser, error) {
		return os.Open(path)
	})
}

func (m *PipeMicrophone) Open(ctx context.Context) (capture.MicStream, error) {
	rc, err := m.provider(ctx)
	if err != nil {
		return nil, classifyOpenError(err)
	}
	s := &pipeStream{rc: rc, ch: make(chan []byte, 32)}
	go s.read()
	return s, nil
}

func classifyOpenError(err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %v", capture.ErrPermissionDenied, err)
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %v", capture.ErrDeviceUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", capture.ErrDeviceUnavailable, err)
	}
}

type pipeStream struct {
	rc io.ReadCloser
	ch chan []byte
}

func (s *pipeStream) Chunks() <-chan []byte { return s.ch }

func (s *pipeStream) Close() error {
	return s.rc.Close()
}

func (s *pipeStream) read() {
	defer close(s.ch)
	var lenBuf [2]byte
	for {
		if _, err := io.ReadFull(s.rc, lenBuf[:]); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, fs.ErrClosed) {
				slog.Warn("microphone feed read failed", "error", err)
			}
			return
		}
		n := int(binary.LittleEndian.Uint16(lenBuf[:]))
		if n == 0 || n > maxFrameBytes {
			slog.Warn("microphone feed produced invalid frame length", "length", n)
			return
		}
		frame := make([]byte, n)
		if _, err := io.ReadFull(s.rc, frame); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, fs.ErrClosed) {
				slog.Warn("microphone feed read failed", "error", err)
			}
			return
		}
		s.ch <- frame
	}
}
