package audio

import (
	"encoding/binary"
	"fmt"
	"time"
)

const (
	// TargetSampleRate is the sample rate the remote transcription service
	// expects; every clip is resampled to it before upload.
	TargetSampleRate = 16000

	containerHeaderBytes = 44
	bitsPerSample        = 16
	targetChannels       = 1
)

// Decoder turns one captured frame into interleaved float32 samples at the
// source rate and channel count.
type Decoder interface {
	DecodeFloat32(frame []byte) ([]float32, error)
	SampleRate() int
	Channels() int
	Close()
}

type DecoderFactory func() (Decoder, error)

// Encoder converts a captured clip into the canonical mono 16 kHz 16-bit PCM
// container for remote transcription.
type Encoder struct {
	newDecoder DecoderFactory
}

func NewEncoder(newDecoder DecoderFactory) *Encoder {
	return &Encoder{newDecoder: newDecoder}
}

// Encode decodes the frames, mixes stereo down to mono, resamples to 16 kHz
// and returns the full container. A decode failure returns an error with no
// partial output.
func (e *Encoder) Encode(frames [][]byte) ([]byte, error) {
	dec, err := e.newDecoder()
	if err != nil {
		return nil, fmt.Errorf("open audio decoder: %w", err)
	}
	defer dec.Close()

	var samples []float32
	for _, frame := range frames {
		if len(frame) == 0 {
			continue
		}
		pcm, err := dec.DecodeFloat32(frame)
		if err != nil {
			return nil, fmt.Errorf("decode audio frame: %w", err)
		}
		samples = append(samples, pcm...)
	}

	mono := mixDown(samples, dec.Channels())
	resampled := resampleNearest(mono, dec.SampleRate(), TargetSampleRate)
	return writeContainer(quantize(resampled)), nil
}

// mixDown averages the channels of interleaved samples into one channel.
func mixDown(samples []float32, channels int) []float32 {
	if channels <= 1 {
		return samples
	}
	out := make([]float32, 0, len(samples)/channels)
	for i := 0; i+channels <= len(samples); i += channels {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += samples[i+c]
		}
		out = append(out, sum/float32(channels))
	}
	return out
}

// resampleNearest picks the nearest source index for each output sample.
// Deliberately not interpolated: the transcription service was tuned against
// this exact policy, so the output must match it sample for sample.
func resampleNearest(samples []float32, sourceRate, targetRate int) []float32 {
	if sourceRate == targetRate || len(samples) == 0 {
		return samples
	}
	outLen := int((int64(len(samples))*int64(targetRate) + int64(sourceRate)/2) / int64(sourceRate))
	out := make([]float32, outLen)
	for i := range out {
		idx := int((int64(i)*int64(sourceRate) + int64(targetRate)/2) / int64(targetRate))
		if idx >= len(samples) {
			idx = len(samples) - 1
		}
		out[i] = samples[idx]
	}
	return out
}

// quantize clamps each sample to [-1, 1] and scales to signed 16-bit. The
// positive and negative ranges scale asymmetrically so 1.0 maps to 32767 and
// -1.0 to -32768 without overflow.
func quantize(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		}
		if s < -1 {
			s = -1
		}
		if s >= 0 {
			out[i] = int16(s * 32767)
		} else {
			out[i] = int16(s * 32768)
		}
	}
	return out
}

func writeContainer(samples []int16) []byte {
	dataLen := len(samples) * 2
	buf := make([]byte, containerHeaderBytes+dataLen)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(containerHeaderBytes+dataLen-8))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1)
	binary.LittleEndian.PutUint16(buf[22:24], targetChannels)
	binary.LittleEndian.PutUint32(buf[24:28], TargetSampleRate)
	binary.LittleEndian.PutUint32(buf[28:32], TargetSampleRate*targetChannels*bitsPerSample/8)
	binary.LittleEndian.PutUint16(buf[32:34], targetChannels*bitsPerSample/8)
	binary.LittleEndian.PutUint16(buf[34:36], bitsPerSample)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[containerHeaderBytes+i*2:], uint16(s))
	}
	return buf
}

// PCMBytes converts float samples to interleaved little-endian 16-bit PCM
// with the same clamp-and-scale policy the encoder uses. The continuous
// recognizer stream consumes this form directly, without a container.
func PCMBytes(samples []float32) []byte {
	q := quantize(samples)
	buf := make([]byte, len(q)*2)
	for i, s := range q {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

// ParseContainer validates a container produced by Encode and returns its
// samples. Used for round-trip checks and diagnostics.
func ParseContainer(b []byte) ([]int16, error) {
	if len(b) < containerHeaderBytes {
		return nil, fmt.Errorf("container too short: %d bytes", len(b))
	}
	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" || string(b[12:16]) != "fmt " || string(b[36:40]) != "data" {
		return nil, fmt.Errorf("container magic bytes are invalid")
	}
	if format := binary.LittleEndian.Uint16(b[20:22]); format != 1 {
		return nil, fmt.Errorf("unexpected audio format %d, want PCM", format)
	}
	if channels := binary.LittleEndian.Uint16(b[22:24]); channels != targetChannels {
		return nil, fmt.Errorf("unexpected channel count %d", channels)
	}
	if rate := binary.LittleEndian.Uint32(b[24:28]); rate != TargetSampleRate {
		return nil, fmt.Errorf("unexpected sample rate %d", rate)
	}
	dataLen := int(binary.LittleEndian.Uint32(b[40:44]))
	if containerHeaderBytes+dataLen > len(b) {
		return nil, fmt.Errorf("declared data length %d exceeds container", dataLen)
	}
	samples := make([]int16, dataLen/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(b[containerHeaderBytes+i*2:]))
	}
	return samples, nil
}

// Duration reports the playback length of a clip with the given sample count
// at the target rate.
func Duration(sampleCount int) time.Duration {
	return time.Duration(sampleCount) * time.Second / TargetSampleRate
}
