//go:build opus

package audio

import (
	"github.com/MikeMehr/patient-intake/internal/audio"
	"github.com/hraban/opus"
)

const (
	sampleRate      = 48000
	channels        = 2
	frameSizeMs     = 20
	samplesPerFrame = sampleRate * frameSizeMs * channels / 1000
)

// opusDecoder decodes the 48 kHz stereo opus frames the microphone feed
// delivers into interleaved float samples for the encoder.
type opusDecoder struct {
	dec *opus.Decoder
}

func NewOpusDecoder() (audio.Decoder, error) {
	dec, err := opus.NewDecoder(sampleRate, channels)
	if err != nil {
		return nil, err
	}
	return &opusDecoder{dec: dec}, nil
}

func (d *opusDecoder) DecodeFloat32(frame []byte) ([]float32, error) {
	pcm := make([]float32, samplesPerFrame)
	n, err := d.dec.DecodeFloat32(frame, pcm)
	if err != nil {
		return nil, err
	}
	return pcm[:n*channels], nil
}

func (d *opusDecoder) SampleRate() int { return sampleRate }
func (d *opusDecoder) Channels() int   { return channels }
func (d *opusDecoder) Close()          {}
