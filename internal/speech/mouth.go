package speech

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/hammamikhairi/proctor/internal/logger"
)

// Compile-time interface check.
var _ Voice = (*Mouth)(nil)

// MouthOption configures the Mouth.
type MouthOption func(*Mouth)

// WithChunkSize sets the approximate max character count per TTS chunk.
// Text longer than this is split at sentence boundaries and synthesized
// in parallel so playback doesn't stall between sentences.
func WithChunkSize(n int) MouthOption {
	return func(m *Mouth) {
		m.chunkSize = n
	}
}

// WithCacheDir sets the filesystem directory used for persistent audio
// caching. If empty, the disk layer is disabled (pure in-memory).
func WithCacheDir(dir string) MouthOption {
	return func(m *Mouth) {
		m.cacheDir = dir
	}
}

// WithDiskWrite controls whether new cache entries are written to disk.
// Even when false, existing on-disk entries are still read.
func WithDiskWrite(enabled bool) MouthOption {
	return func(m *Mouth) {
		m.diskWrite = enabled
	}
}

// WithMemoryTTL sets how long audio stays in the in-memory cache tier.
func WithMemoryTTL(d time.Duration) MouthOption {
	return func(m *Mouth) {
		m.memTTL = d
	}
}

// WithSynthTimeout bounds a single synthesis request.
func WithSynthTimeout(d time.Duration) MouthOption {
	return func(m *Mouth) {
		m.synthTimeout = d
	}
}

// Mouth is the central speech dispatcher. It serializes all speech output
// through a single pipeline: queue -> chunk -> synthesize (parallel) -> play
// (sequential). Only one thing speaks at a time and higher priority items
// are spoken first.
//
// A phrase that is already queued or playing is not queued again, so a
// repeated reminder never overlaps itself.
type Mouth struct {
	tts    Synthesizer
	player Sink
	log    *logger.Logger
	cache  *AudioCache

	mu           sync.Mutex
	queue        []SpeechRequest
	current      *SpeechRequest // being synthesized or played
	notify       chan struct{}
	interrupted  bool
	chunkSize    int
	cacheDir     string
	diskWrite    bool
	memTTL       time.Duration
	synthTimeout time.Duration
}

// NewMouth creates a speech dispatcher with the given synthesizer and sink.
func NewMouth(tts Synthesizer, player Sink, log *logger.Logger, opts ...MouthOption) *Mouth {
	m := &Mouth{
		tts:          tts,
		player:       player,
		log:          log,
		notify:       make(chan struct{}, 1),
		chunkSize:    googleMaxChars,
		diskWrite:    true,
		memTTL:       DefaultMemoryTTL,
		synthTimeout: 20 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	// Build the cache after options are applied so cacheDir/diskWrite
	// are settled.
	m.cache = NewAudioCache(tts.Voice(), m.cacheDir, m.diskWrite, m.memTTL, log)
	return m
}

// Announce queues text at normal priority. It never blocks on playback and
// never fails; synthesis and playback errors are logged by the pipeline.
func (m *Mouth) Announce(ctx context.Context, text string) error {
	m.Say(text, PriorityNormal)
	return nil
}

// AnnounceWait queues text at normal priority and waits at most timeout
// for it to be spoken.
func (m *Mouth) AnnounceWait(ctx context.Context, text string, timeout time.Duration) bool {
	return m.SayWait(ctx, text, PriorityNormal, timeout)
}

// Say queues text to be spoken at the given priority. Non-blocking.
func (m *Mouth) Say(text string, priority Priority) {
	m.enqueue(text, priority)
}

// SayWait queues text and waits until it has been spoken, the timeout
// elapses, or ctx is done, whichever comes first. It reports whether the
// phrase finished. Returning early does not cancel the phrase.
func (m *Mouth) SayWait(ctx context.Context, text string, priority Priority, timeout time.Duration) bool {
	done := m.enqueue(text, priority)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-timer.C:
		m.log.Debug("mouth: stopped waiting after %s: %s", timeout, truncate(text, 60))
		return false
	case <-ctx.Done():
		return false
	}
}

// enqueue adds a request unless the same text is already pending or
// playing, and returns the channel closed when that phrase completes.
func (m *Mouth) enqueue(text string, priority Priority) <-chan struct{} {
	text = strings.TrimSpace(text)

	m.mu.Lock()
	if text == "" {
		m.mu.Unlock()
		return closedChan
	}
	if m.current != nil && m.current.Text == text {
		done := m.current.done
		m.mu.Unlock()
		m.log.Debug("mouth: already speaking, not requeued: %s", truncate(text, 60))
		return done
	}
	for i := range m.queue {
		if m.queue[i].Text == text {
			if priority > m.queue[i].Priority {
				m.queue[i].Priority = priority
			}
			done := m.queue[i].done
			m.mu.Unlock()
			m.log.Debug("mouth: already queued: %s", truncate(text, 60))
			return done
		}
	}

	req := SpeechRequest{
		Text:     text,
		Priority: priority,
		QueuedAt: time.Now(),
		done:     make(chan struct{}),
	}
	m.queue = append(m.queue, req)
	qLen := len(m.queue)
	m.mu.Unlock()

	m.log.Debug("mouth: queued (priority=%d, queue_len=%d): %s", priority, qLen, truncate(text, 60))

	select {
	case m.notify <- struct{}{}:
	default: // already signaled
	}
	return req.done
}

var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// IsSpeaking returns true if the mouth is currently synthesizing or playing audio.
func (m *Mouth) IsSpeaking() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}

// Idle reports whether nothing is playing or queued.
func (m *Mouth) Idle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current == nil && len(m.queue) == 0
}

// QueueLen returns the number of pending speech requests.
func (m *Mouth) QueueLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Interrupt stops the currently playing audio, clears the queue, and
// causes any in-progress multi-chunk playback to abort. Used when the
// operator leaves the exam screen.
func (m *Mouth) Interrupt() {
	m.mu.Lock()
	for _, req := range m.queue {
		close(req.done)
	}
	m.queue = m.queue[:0]
	m.interrupted = true
	m.mu.Unlock()

	m.player.Stop()

	m.log.Debug("mouth: interrupted, queue cleared, playback stopped")
}

// Start begins the speech processing goroutine. Non-blocking.
func (m *Mouth) Start(ctx context.Context) {
	go m.processLoop(ctx)
	m.log.Info("mouth started (voice=%s)", m.tts.Voice())
}

func (m *Mouth) processLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			m.log.Info("mouth stopped")
			return
		case <-m.notify:
			m.drain(ctx)
		}
	}
}

// drain processes all queued items, highest priority first.
func (m *Mouth) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		m.mu.Lock()
		m.interrupted = false
		m.mu.Unlock()

		item, ok := m.dequeue()
		if !ok {
			return
		}

		m.process(ctx, item)

		m.mu.Lock()
		m.current = nil
		m.mu.Unlock()
		close(item.done)
	}
}

// dequeue removes the highest priority item (oldest first among equals)
// and marks it current.
func (m *Mouth) dequeue() (SpeechRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) == 0 {
		return SpeechRequest{}, false
	}

	bestIdx := 0
	for i, item := range m.queue {
		if item.Priority > m.queue[bestIdx].Priority {
			bestIdx = i
		}
	}

	item := m.queue[bestIdx]
	m.queue = append(m.queue[:bestIdx], m.queue[bestIdx+1:]...)
	m.current = &item
	return item, true
}

// process synthesizes and plays a single speech request, using chunked
// parallel synthesis for long text.
func (m *Mouth) process(ctx context.Context, req SpeechRequest) {
	waitTime := time.Since(req.QueuedAt).Round(time.Millisecond)
	m.log.Debug("mouth: speaking (priority=%d, waited=%s): %s", req.Priority, waitTime, truncate(req.Text, 60))

	chunks := m.splitChunks(req.Text)

	type result struct {
		idx   int
		audio []byte
		err   error
	}
	results := make(chan result, len(chunks))

	for i, chunk := range chunks {
		go func(idx int, text string) {
			audio, err := m.synthesizeWithCache(ctx, text)
			results <- result{idx: idx, audio: audio, err: err}
		}(i, chunk)
	}

	audioSlots := make([][]byte, len(chunks))
	for range chunks {
		r := <-results
		if r.err != nil {
			m.log.Error("mouth: chunk %d synthesis failed: %v", r.idx, r.err)
			continue
		}
		audioSlots[r.idx] = r.audio
	}

	for i, audio := range audioSlots {
		if audio == nil {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		m.mu.Lock()
		abort := m.interrupted
		m.mu.Unlock()
		if abort {
			m.log.Debug("mouth: aborting chunk playback (interrupted)")
			return
		}
		if err := m.player.Play(audio); err != nil {
			m.log.Error("mouth: chunk %d playback failed: %v", i, err)
		}
	}
}

// synthesizeWithCache checks the cache first, otherwise calls the
// synthesizer and stores the result. Thread-safe.
func (m *Mouth) synthesizeWithCache(ctx context.Context, text string) ([]byte, error) {
	if audio, ok := m.cache.Get(text); ok {
		return audio, nil
	}

	sctx, cancel := context.WithTimeout(ctx, m.synthTimeout)
	defer cancel()

	audio, err := m.tts.Synthesize(sctx, text)
	if err != nil {
		return nil, err
	}
	m.cache.Put(text, audio)
	return audio, nil
}

// splitChunks breaks text into sentence-boundary chunks of approximately
// m.chunkSize characters. Sentences longer than the limit are split again
// at word boundaries.
func (m *Mouth) splitChunks(text string) []string {
	if m.chunkSize <= 0 || len(text) <= m.chunkSize {
		return []string{text}
	}

	var pieces []string
	for _, s := range splitSentences(text) {
		if len(s) > m.chunkSize {
			pieces = append(pieces, splitWords(s, m.chunkSize)...)
			continue
		}
		pieces = append(pieces, s)
	}

	var chunks []string
	var current strings.Builder
	for _, s := range pieces {
		if current.Len() > 0 && current.Len()+len(s) > m.chunkSize {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(s)
	}
	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}

	out := chunks[:0]
	for _, c := range chunks {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// splitSentences splits text at sentence boundaries (. ! ?) keeping the
// punctuation attached to the preceding sentence.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		current.WriteRune(runes[i])
		if isSentenceEnd(runes[i]) {
			for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				i++
				current.WriteRune(runes[i])
			}
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}
	return sentences
}

// splitWords packs whitespace-separated words into pieces of at most limit
// bytes. A single word longer than limit is emitted on its own.
func splitWords(s string, limit int) []string {
	var out []string
	var b strings.Builder
	for _, w := range strings.Fields(s) {
		if b.Len() > 0 && b.Len()+1+len(w) > limit {
			out = append(out, b.String()+" ")
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
	}
	if b.Len() > 0 {
		out = append(out, b.String()+" ")
	}
	return out
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// truncate shortens a string for logging to at most maxLen runes.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// Prefetch pre-synthesizes the given texts in background goroutines and
// stores the results in the audio cache, skipping texts already cached.
// Non-blocking. Call it for phrases known in advance (reminders, the
// time-up line) so they play the moment they are due.
func (m *Mouth) Prefetch(ctx context.Context, texts ...string) {
	for _, text := range texts {
		if text == "" {
			continue
		}
		for _, chunk := range m.splitChunks(text) {
			if m.cache.Has(chunk) {
				m.log.Debug("prefetch: already cached: %s", truncate(chunk, 50))
				continue
			}
			go func(t string) {
				if _, err := m.synthesizeWithCache(ctx, t); err != nil {
					m.log.Error("prefetch: synthesis failed: %v", err)
				}
			}(chunk)
		}
	}
}

// CacheStats returns the audio cache hit and miss counts.
func (m *Mouth) CacheStats() (hits, misses int64) { return m.cache.Stats() }
