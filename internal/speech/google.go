package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hajimehoshi/go-mp3"

	"github.com/hammamikhairi/proctor/internal/logger"
)

// Compile-time interface check.
var _ Synthesizer = (*GoogleClient)(nil)

// googleMaxChars is the longest text the translate TTS endpoint accepts in
// one request. The Mouth's chunk size must stay at or below it.
const googleMaxChars = 200

// GoogleOption configures the Google TTS client.
type GoogleOption func(*GoogleClient)

// WithLanguage sets the spoken language (e.g. "en", "ar", "fr").
func WithLanguage(lang string) GoogleOption {
	return func(c *GoogleClient) {
		if lang != "" {
			c.lang = lang
		}
	}
}

// WithGoogleEndpoint overrides the TTS URL. Used by tests.
func WithGoogleEndpoint(u string) GoogleOption {
	return func(c *GoogleClient) {
		c.endpoint = u
	}
}

// GoogleClient synthesizes speech with the keyless Google Translate TTS
// endpoint. It returns MP3, which is decoded and converted to the player's
// WAV format. No credentials are needed, which makes it the default when
// Azure keys are absent.
type GoogleClient struct {
	endpoint   string
	lang       string
	httpClient *http.Client
	log        *logger.Logger
}

// NewGoogleClient creates a Google Translate TTS client.
func NewGoogleClient(log *logger.Logger, opts ...GoogleOption) *GoogleClient {
	c := &GoogleClient{
		endpoint:   "https://translate.google.com/translate_tts",
		lang:       DefaultLanguage,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Voice returns the cache identity of this synthesizer.
func (c *GoogleClient) Voice() string { return "google:" + c.lang }

// Synthesize fetches MP3 audio for text and returns it as mono WAV.
func (c *GoogleClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if len(text) > googleMaxChars {
		return nil, fmt.Errorf("google tts: text is %d chars, limit %d", len(text), googleMaxChars)
	}

	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", c.lang)
	q.Set("q", text)
	q.Set("ttsspeed", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Proctor/1.0)")

	c.log.Debug("google tts: synthesizing %d chars (lang=%s)", len(text), c.lang)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("google tts error %d: %s", resp.StatusCode, string(body))
	}

	mp3Data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio data: %w", err)
	}

	return mp3ToWAV(mp3Data)
}

// mp3ToWAV decodes MP3 (always 16-bit stereo out of go-mp3) into the
// player's mono layout and sample rate.
func mp3ToWAV(data []byte) ([]byte, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding mp3: %w", err)
	}
	stereo, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decoding mp3: %w", err)
	}

	mono := downmixStereo(stereo)
	mono = resampleMono(mono, dec.SampleRate(), SampleRate)
	return encodeWAV(mono, SampleRate, ChannelCount), nil
}
