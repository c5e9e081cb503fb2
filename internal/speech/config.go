package speech

import "time"

// Default voice for Azure TTS. Full list:
// https://learn.microsoft.com/en-us/azure/ai-services/speech-service/language-support
const DefaultVoice = "en-US-AvaNeural"

// DefaultLanguage is the language passed to the Google TTS endpoint.
const DefaultLanguage = "en"

// Audio format requested from Azure and expected by the player.
const DefaultAudioFormat = "riff-24khz-16bit-mono-pcm"

// Audio parameters matching the default format. Every synthesizer converts
// its output to this layout before it reaches the player.
const (
	SampleRate   = 24000
	ChannelCount = 1
	BitDepth     = 16
)

// Env var names for Azure Speech credentials.
const (
	EnvAzureSpeechKey    = "AZURE_SPEECH_KEY"
	EnvAzureSpeechRegion = "AZURE_SPEECH_REGION"
)

// Priority levels for speech requests. Higher value = speaks first.
type Priority int

const (
	PriorityLow      Priority = iota // pause/resume acknowledgements
	PriorityNormal                   // welcome, rules, reminders
	PriorityHigh                     // time is up
	PriorityCritical                 // operator alerts
)

// SpeechRequest is a queued item waiting to be spoken.
type SpeechRequest struct {
	Text     string
	Priority Priority
	QueuedAt time.Time

	// done is closed once the request has been played or dropped. Shared
	// by every caller that asked for the same phrase.
	done chan struct{}
}
