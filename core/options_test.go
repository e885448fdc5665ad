package transcription

import (
	"testing"
	"time"

	"github.com/angangwa/azure-speech-to-text/core/transcribe"
)

func TestControllerDefaults(t *testing.T) {
	controller := NewController()

	if controller.drainTimeout != defaultDrainTimeout {
		t.Fatalf("expected default drain timeout %v, got %v", defaultDrainTimeout, controller.drainTimeout)
	}
	if controller.clientFactory == nil {
		t.Fatalf("expected a default client factory")
	}
	if controller.audioInput.IsConfigured() {
		t.Fatalf("expected no audio source by default")
	}
}

func TestWithDrainTimeoutOverridesDefault(t *testing.T) {
	controller := NewController(WithDrainTimeout(5 * time.Second))

	if controller.drainTimeout != 5*time.Second {
		t.Fatalf("expected drain timeout 5s, got %v", controller.drainTimeout)
	}
}

func TestWithDrainTimeoutRejectsNonPositive(t *testing.T) {
	controller := NewController(WithDrainTimeout(0))

	if controller.drainTimeout != defaultDrainTimeout {
		t.Fatalf("expected non-positive timeout to keep the default, got %v", controller.drainTimeout)
	}
}

func TestWithClientFactoryNilIsNoop(t *testing.T) {
	controller := NewController(WithClientFactory(nil))

	if controller.clientFactory == nil {
		t.Fatalf("expected nil factory to keep the default")
	}
}

func TestWithSessionOptionsAccumulates(t *testing.T) {
	opts := StartOptions{}
	WithSessionOptions(transcribe.WithMaxDuration(10 * time.Second))(&opts)
	WithSessionOptions(transcribe.WithModel(transcribe.ModelGPT4oMiniTranscribe))(&opts)

	config := transcribe.DefaultSessionConfig()
	for _, opt := range opts.sessionOptions {
		opt(&config)
	}

	if config.MaxDuration != 10*time.Second {
		t.Fatalf("expected max duration 10s, got %v", config.MaxDuration)
	}
	if config.Model != transcribe.ModelGPT4oMiniTranscribe {
		t.Fatalf("expected the mini model, got %q", config.Model)
	}
}
