package realtime

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/invopop/jsonschema"
	jsonschemav5 "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/angangwa/azure-speech-to-text/core/transcribe"
)

// compileFrameSchema reflects a JSON schema from the frame struct and
// compiles it with an independent validator, so the checks below do not
// share encoding/json's view of the frame.
func compileFrameSchema(t *testing.T, name string, frame any) *jsonschemav5.Schema {
	t.Helper()

	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(frame)
	schemaJSON, err := schema.MarshalJSON()
	if err != nil {
		t.Fatalf("failed to marshal %s schema: %v", name, err)
	}

	compiler := jsonschemav5.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(schemaJSON)); err != nil {
		t.Fatalf("failed to add %s schema resource: %v", name, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		t.Fatalf("failed to compile %s schema: %v", name, err)
	}
	return compiled
}

func asPayload(t *testing.T, frame any) any {
	t.Helper()

	raw, err := json.Marshal(frame)
	if err != nil {
		t.Fatalf("failed to marshal frame: %v", err)
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed to decode frame for validation: %v", err)
	}
	return payload
}

func TestSessionUpdateFrameSatisfiesItsSchema(t *testing.T) {
	schema := compileFrameSchema(t, "transcription_session_update.json", sessionUpdateFrame{})

	config := transcribe.DefaultSessionConfig()
	minimal, err := newSessionUpdateFrame(config)
	if err != nil {
		t.Fatalf("newSessionUpdateFrame failed: %v", err)
	}
	if err := schema.Validate(asPayload(t, minimal)); err != nil {
		t.Errorf("default configuration frame does not satisfy the schema: %v", err)
	}

	config.NoiseReduction = transcribe.NoiseReductionFarField
	config.IncludeConfidence = true
	full, err := newSessionUpdateFrame(config)
	if err != nil {
		t.Fatalf("newSessionUpdateFrame failed: %v", err)
	}
	if err := schema.Validate(asPayload(t, full)); err != nil {
		t.Errorf("full configuration frame does not satisfy the schema: %v", err)
	}
}

func TestSessionUpdateSchemaRejectsMalformedFrames(t *testing.T) {
	schema := compileFrameSchema(t, "transcription_session_update.json", sessionUpdateFrame{})

	frame, err := newSessionUpdateFrame(transcribe.DefaultSessionConfig())
	if err != nil {
		t.Fatalf("newSessionUpdateFrame failed: %v", err)
	}

	payload := asPayload(t, frame).(map[string]any)
	session := payload["session"].(map[string]any)
	session["turn_detection"].(map[string]any)["threshold"] = "loud"
	if err := schema.Validate(payload); err == nil {
		t.Error("expected the schema to reject a non-numeric VAD threshold")
	}

	if err := schema.Validate(map[string]any{"type": typeSessionUpdate}); err == nil {
		t.Error("expected the schema to reject a frame without a session payload")
	}
}

func TestAudioAppendFrameSatisfiesItsSchema(t *testing.T) {
	schema := compileFrameSchema(t, "input_audio_buffer_append.json", audioAppendFrame{})

	frame := newAudioAppendFrame([]byte{0x00, 0x01, 0x7f, 0x80})
	if err := schema.Validate(asPayload(t, frame)); err != nil {
		t.Errorf("audio append frame does not satisfy the schema: %v", err)
	}

	if err := schema.Validate(map[string]any{"type": typeAudioAppend}); err == nil {
		t.Error("expected the schema to reject an append frame without audio")
	}
}
