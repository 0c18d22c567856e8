package transcript

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
)

// ErrNoSpeech is returned by Finalize when nothing usable was captured.
var ErrNoSpeech = errors.New("no speech detected")

// Cleaner is the optional remote cleanup pass. Failure or an empty result
// must never block finalization; the locally cleaned text is used instead.
type Cleaner interface {
	Clean(ctx context.Context, text, language string) (string, error)
}

// Buffer accumulates speech fragments for one draft answer. Final fragments
// only grow the buffer; the interim fragment is replaceable and is cleared
// whenever a final fragment subsumes it.
type Buffer struct {
	mu       sync.Mutex
	raw      string
	interim  string
	cleaner  Cleaner
	language string
}

func NewBuffer(cleaner Cleaner, language string) *Buffer {
	return &Buffer{cleaner: cleaner, language: language}
}

func (b *Buffer) AppendFinal(text string) {
	text = collapseWhitespace(text)
	if text == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.raw == "" {
		b.raw = text
	} else {
		b.raw += " " + text
	}
	b.interim = ""
}

func (b *Buffer) SetInterim(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.interim = collapseWhitespace(text)
}

func (b *Buffer) ClearInterim() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.interim = ""
}

func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.raw = ""
	b.interim = ""
}

// Snapshot returns the current raw and interim text for display.
func (b *Buffer) Snapshot() (raw, interim string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.raw, b.interim
}

func (b *Buffer) Empty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.raw == "" && b.interim == ""
}

// Finalize concatenates the buffer with any still-pending interim fragment so
// speech that was recognized but not yet finalized when capture stopped is not
// lost, then runs the two-stage cleanup. The buffer itself is left intact; the
// caller clears it on submit or redo.
func (b *Buffer) Finalize(ctx context.Context) (string, error) {
	b.mu.Lock()
	combined := collapseWhitespace(b.raw + " " + b.interim)
	b.mu.Unlock()
	if combined == "" {
		return "", ErrNoSpeech
	}

	text := cleanLocal(combined)
	if b.cleaner != nil {
		cleaned, err := b.cleaner.Clean(ctx, text, b.language)
		if err != nil {
			slog.Warn("remote transcript cleanup failed; using local cleanup", "error", err)
		} else if strings.TrimSpace(cleaned) != "" {
			text = collapseWhitespace(cleaned)
		}
	}
	return normalizePunctuation(text), nil
}
