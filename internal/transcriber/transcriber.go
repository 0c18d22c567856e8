package transcriber

import "context"

type StreamWriter interface {
	Write(pcm []byte) error
	Close() error
}

// ResultReceiver consumes recognition results. OnEnd reports stream
// termination; a nil error means the provider ended the stream on its own
// (silence timeout or per-utterance close), which the capture backend may
// answer with a restart.
type ResultReceiver interface {
	OnResult(text string, isFinal bool)
	OnEnd(err error)
}

type Streamer interface {
	StartStreaming(ctx context.Context, sessionID, language string, receiver ResultReceiver) (StreamWriter, error)
}

// Batch transcribes a complete clip in the canonical PCM container. An empty
// result string is valid: the clip contained no recognizable speech.
type Batch interface {
	Transcribe(ctx context.Context, wavContainer []byte, language string) (string, error)
}
