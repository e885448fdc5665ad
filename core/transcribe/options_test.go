package transcribe

import (
	"testing"
	"time"
)

func TestDefaultSessionConfig(t *testing.T) {
	config := DefaultSessionConfig()

	if config.Provider != ProviderAzure {
		t.Fatalf("expected azure default provider, got %q", config.Provider)
	}
	if config.Model != ModelGPT4oTranscribe {
		t.Fatalf("expected default model %q, got %q", ModelGPT4oTranscribe, config.Model)
	}
	if config.VADThreshold != 0.5 {
		t.Fatalf("expected VAD threshold 0.5, got %v", config.VADThreshold)
	}
	if config.PrefixPadding != 300*time.Millisecond {
		t.Fatalf("expected 300ms prefix padding, got %v", config.PrefixPadding)
	}
	if config.SilenceDuration != 500*time.Millisecond {
		t.Fatalf("expected 500ms silence duration, got %v", config.SilenceDuration)
	}
	if config.MaxDuration != 60*time.Second {
		t.Fatalf("expected 60s max duration, got %v", config.MaxDuration)
	}
	if config.Encoding.SampleRate != 24000 {
		t.Fatalf("expected 24kHz default encoding, got %d", config.Encoding.SampleRate)
	}
	if err := config.Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

func TestOptionsOverrideDefaults(t *testing.T) {
	config := DefaultSessionConfig()
	for _, opt := range []SessionOption{
		WithProvider(ProviderOpenAI),
		WithModel(ModelGPT4oMiniTranscribe),
		WithNoiseReduction(NoiseReductionFarField),
		WithVADThreshold(0.8),
		WithPrefixPadding(100 * time.Millisecond),
		WithSilenceDuration(time.Second),
		WithConfidence(false),
		WithMaxDuration(5 * time.Second),
	} {
		opt(&config)
	}

	if config.Provider != ProviderOpenAI {
		t.Fatalf("expected openai provider, got %q", config.Provider)
	}
	if config.Model != ModelGPT4oMiniTranscribe {
		t.Fatalf("expected mini model, got %q", config.Model)
	}
	if config.NoiseReduction != NoiseReductionFarField {
		t.Fatalf("expected far_field noise reduction, got %q", config.NoiseReduction)
	}
	if config.VADThreshold != 0.8 {
		t.Fatalf("expected VAD threshold 0.8, got %v", config.VADThreshold)
	}
	if config.IncludeConfidence {
		t.Fatalf("expected confidence scores disabled")
	}
	if config.MaxDuration != 5*time.Second {
		t.Fatalf("expected 5s max duration, got %v", config.MaxDuration)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	testCases := []struct {
		name   string
		mutate SessionOption
	}{
		{name: "unknown provider", mutate: WithProvider(Provider("whisper"))},
		{name: "invalid noise reduction", mutate: WithNoiseReduction(NoiseReduction("studio"))},
		{name: "empty model", mutate: WithModel("")},
		{name: "threshold above range", mutate: WithVADThreshold(1.5)},
		{name: "threshold below range", mutate: WithVADThreshold(-0.1)},
		{name: "non-positive duration", mutate: WithMaxDuration(0)},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			config := DefaultSessionConfig()
			testCase.mutate(&config)
			if err := config.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
