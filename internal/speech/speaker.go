package speech

import "context"

// Speaker reads an interview question aloud. Capture is blocked while
// Speaking reports true so the recognizer never hears the system's own voice.
type Speaker interface {
	Speak(ctx context.Context, text string) error
	Cancel()
	Speaking() bool
}

// NoopSpeaker is used when speech synthesis is not configured.
type NoopSpeaker struct{}

func (NoopSpeaker) Speak(context.Context, string) error { return nil }
func (NoopSpeaker) Cancel()                             {}
func (NoopSpeaker) Speaking() bool                      { return false }
