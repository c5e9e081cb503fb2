package speech

import (
	"bytes"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/proctor/internal/logger"
)

// Compile-time interface check.
var _ Sink = (*Player)(nil)

// Player handles audio playback of WAV/PCM data via oto. Exam halls are
// large, so the volume is configurable rather than left at the OS default.
type Player struct {
	ctx    *oto.Context
	log    *logger.Logger
	volume float64
	mu     sync.Mutex
	active *oto.Player // currently playing, nil when idle
}

// NewPlayer creates an audio player with volume in [0, 1]. Initializes the
// system audio context. Returns an error if the audio device is unavailable.
func NewPlayer(volume float64, log *logger.Logger) (*Player, error) {
	if volume <= 0 || volume > 1 {
		volume = 1
	}

	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-readyChan

	log.Debug("audio player initialized (rate=%d, channels=%d, volume=%.2f)", SampleRate, ChannelCount, volume)
	return &Player{ctx: ctx, log: log, volume: volume}, nil
}

// Play plays WAV audio data synchronously. Blocks until playback finishes
// or Stop is called.
func (p *Player) Play(wavData []byte) error {
	pcm, err := extractPCM(wavData)
	if err != nil {
		return err
	}

	player := p.ctx.NewPlayer(bytes.NewReader(pcm))
	player.SetVolume(p.volume)

	p.mu.Lock()
	p.active = player
	p.mu.Unlock()

	player.Play()
	p.log.Debug("audio player: playing %d bytes of PCM", len(pcm))

	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}

	p.mu.Lock()
	p.active = nil
	p.mu.Unlock()

	return player.Close()
}

// Stop interrupts the currently playing audio, if any. Safe to call
// concurrently and when nothing is playing.
func (p *Player) Stop() {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()

	if active != nil {
		active.Pause()
		p.log.Debug("audio player: interrupted")
	}
}
