package transcribe

import "testing"

func TestParseMessageReadsEnvelopeType(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"type":"conversation.item.input_audio_transcription.delta","delta":"hel"}`))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	if msg.Type != TypeTranscriptDelta {
		t.Fatalf("expected type %q, got %q", TypeTranscriptDelta, msg.Type)
	}
	if got := msg.Delta(); got != "hel" {
		t.Fatalf("expected delta %q, got %q", "hel", got)
	}
}

func TestParseMessageRejectsMalformedJSON(t *testing.T) {
	if _, err := ParseMessage([]byte(`{"type":`)); err == nil {
		t.Fatalf("expected parse error for malformed frame")
	}
}

func TestParseMessageRejectsMissingType(t *testing.T) {
	if _, err := ParseMessage([]byte(`{"delta":"hel"}`)); err == nil {
		t.Fatalf("expected parse error for frame without type")
	}
}

func TestTranscriptDecodesNestedPayload(t *testing.T) {
	testCases := []struct {
		name     string
		frame    string
		expected string
	}{
		{
			name:     "plain transcript",
			frame:    `{"type":"conversation.item.input_audio_transcription.completed","transcript":"hello world"}`,
			expected: "hello world",
		},
		{
			name:     "nested JSON transcript",
			frame:    `{"type":"conversation.item.input_audio_transcription.completed","transcript":"{\"text\":\"hello world\"}"}`,
			expected: "hello world",
		},
		{
			name:     "malformed nested transcript falls back to raw",
			frame:    `{"type":"conversation.item.input_audio_transcription.completed","transcript":"{\"text\":unterminated"}`,
			expected: `{"text":unterminated`,
		},
		{
			name:     "nested object without text",
			frame:    `{"type":"conversation.item.input_audio_transcription.completed","transcript":"{}"}`,
			expected: "",
		},
		{
			name:     "utterance that resembles a JSON literal",
			frame:    `{"type":"conversation.item.input_audio_transcription.completed","transcript":"null"}`,
			expected: "null",
		},
		{
			name:     "empty transcript",
			frame:    `{"type":"conversation.item.input_audio_transcription.completed","transcript":""}`,
			expected: "",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			msg, err := ParseMessage([]byte(testCase.frame))
			if err != nil {
				t.Fatalf("unexpected parse error: %v", err)
			}
			if got := msg.Transcript(); got != testCase.expected {
				t.Fatalf("expected transcript %q, got %q", testCase.expected, got)
			}
		})
	}
}

func TestErrorMessageDefaultsWhenAbsent(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"type":"error"}`))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	if got := msg.ErrorMessage(); got != "Unknown error" {
		t.Fatalf("expected default error message, got %q", got)
	}
}

func TestErrorMessageReadsPayload(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"type":"error","message":"session expired"}`))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	if got := msg.ErrorMessage(); got != "session expired" {
		t.Fatalf("expected %q, got %q", "session expired", got)
	}
}

func TestLogprobsDecodeWhenPresent(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"type":"conversation.item.input_audio_transcription.delta","delta":"hi","logprobs":[{"token":"hi","logprob":-0.02}]}`))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	logprobs := msg.Logprobs()
	if len(logprobs) != 1 {
		t.Fatalf("expected 1 logprob entry, got %d", len(logprobs))
	}
	if logprobs[0].Token != "hi" || logprobs[0].Logprob != -0.02 {
		t.Fatalf("unexpected logprob entry: %+v", logprobs[0])
	}
}

func TestLogprobsNilWhenAbsent(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"type":"conversation.item.input_audio_transcription.delta","delta":"hi"}`))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	if got := msg.Logprobs(); got != nil {
		t.Fatalf("expected nil logprobs, got %v", got)
	}
}
