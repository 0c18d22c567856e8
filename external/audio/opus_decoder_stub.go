//go:build !opus

package audio

import (
	"errors"

	"github.com/MikeMehr/patient-intake/internal/audio"
)

var errOpusNotCompiled = errors.New("opus support not compiled in (build with -tags opus)")

type stubDecoder struct{}

func NewOpusDecoder() (audio.Decoder, error) {
	return &stubDecoder{}, nil
}

func (d *stubDecoder) DecodeFloat32(_ []byte) ([]float32, error) {
	return nil, errOpusNotCompiled
}

func (d *stubDecoder) SampleRate() int { return 48000 }
func (d *stubDecoder) Channels() int   { return 2 }
func (d *stubDecoder) Close()          {}
