package transcribe

import (
	"fmt"
	"time"

	"github.com/angangwa/azure-speech-to-text/core/audio"
)

// Provider selects which realtime endpoint variant a session dials. Both
// speak the same wire protocol and differ only in addressing and
// authentication.
type Provider string

const (
	ProviderAzure  Provider = "azure"
	ProviderOpenAI Provider = "openai"
)

// NoiseReduction configures the service-side input noise filter.
type NoiseReduction string

const (
	NoiseReductionNone      NoiseReduction = "none"
	NoiseReductionNearField NoiseReduction = "near_field"
	NoiseReductionFarField  NoiseReduction = "far_field"
)

const (
	ModelGPT4oTranscribe     = "gpt-4o-transcribe"
	ModelGPT4oMiniTranscribe = "gpt-4o-mini-transcribe"
)

// SessionConfig describes one streaming transcription run. It is built
// once at session start and stays immutable for the session's lifetime.
type SessionConfig struct {
	Provider       Provider
	Model          string
	NoiseReduction NoiseReduction

	// VADThreshold tunes server-side voice activity detection, in [0, 1].
	VADThreshold    float64
	PrefixPadding   time.Duration
	SilenceDuration time.Duration

	// IncludeConfidence requests per-token logprobs on delta messages.
	IncludeConfidence bool

	// MaxDuration bounds the session; the controller completes the session
	// when it elapses.
	MaxDuration time.Duration

	Encoding audio.EncodingInfo
}

// TurnDetection is the server VAD tuning of a session, with paddings in
// the milliseconds the service expects.
type TurnDetection struct {
	Threshold         float64
	PrefixPaddingMs   int
	SilenceDurationMs int
}

// TurnDetection collects the VAD fields of the config, converting the
// durations into whole milliseconds.
func (c SessionConfig) TurnDetection() TurnDetection {
	return TurnDetection{
		Threshold:         c.VADThreshold,
		PrefixPaddingMs:   int(c.PrefixPadding.Milliseconds()),
		SilenceDurationMs: int(c.SilenceDuration.Milliseconds()),
	}
}

// DefaultSessionConfig returns the configuration used when no options are
// given: Azure endpoint, gpt-4o-transcribe, VAD threshold 0.5, 300ms prefix
// padding, 500ms silence, confidence scores on, 60 second limit.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Provider:          ProviderAzure,
		Model:             ModelGPT4oTranscribe,
		NoiseReduction:    NoiseReductionNone,
		VADThreshold:      0.5,
		PrefixPadding:     300 * time.Millisecond,
		SilenceDuration:   500 * time.Millisecond,
		IncludeConfidence: true,
		MaxDuration:       60 * time.Second,
		Encoding:          audio.GetDefaultEncodingInfo(),
	}
}

// Validate reports configuration values the service would reject.
func (c SessionConfig) Validate() error {
	switch c.Provider {
	case ProviderAzure, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	switch c.NoiseReduction {
	case NoiseReductionNone, NoiseReductionNearField, NoiseReductionFarField:
	default:
		return fmt.Errorf("invalid noise reduction %q, must be none, near_field or far_field", c.NoiseReduction)
	}
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if c.VADThreshold < 0 || c.VADThreshold > 1 {
		return fmt.Errorf("VAD threshold %v out of range [0, 1]", c.VADThreshold)
	}
	if c.MaxDuration <= 0 {
		return fmt.Errorf("max duration must be positive, got %v", c.MaxDuration)
	}
	return nil
}

type SessionOption func(*SessionConfig)

func WithProvider(provider Provider) SessionOption {
	return func(c *SessionConfig) {
		c.Provider = provider
	}
}

func WithModel(model string) SessionOption {
	return func(c *SessionConfig) {
		c.Model = model
	}
}

func WithNoiseReduction(mode NoiseReduction) SessionOption {
	return func(c *SessionConfig) {
		c.NoiseReduction = mode
	}
}

func WithVADThreshold(threshold float64) SessionOption {
	return func(c *SessionConfig) {
		c.VADThreshold = threshold
	}
}

func WithPrefixPadding(padding time.Duration) SessionOption {
	return func(c *SessionConfig) {
		c.PrefixPadding = padding
	}
}

func WithSilenceDuration(silence time.Duration) SessionOption {
	return func(c *SessionConfig) {
		c.SilenceDuration = silence
	}
}

func WithConfidence(include bool) SessionOption {
	return func(c *SessionConfig) {
		c.IncludeConfidence = include
	}
}

func WithMaxDuration(duration time.Duration) SessionOption {
	return func(c *SessionConfig) {
		c.MaxDuration = duration
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) SessionOption {
	return func(c *SessionConfig) {
		c.Encoding = encodingInfo
	}
}
