package speech

import "context"

// Synthesizer turns text into WAV audio in the player's format.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	// Voice names the voice; it is part of every cache key.
	Voice() string
}

// Sink plays WAV audio. Play blocks until playback finishes or Stop is
// called.
type Sink interface {
	Play(wav []byte) error
	Stop()
}
