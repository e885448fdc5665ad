// Package transcribe defines the provider-agnostic contract of the
// realtime transcription protocol: the session configuration, the inbound
// message envelope, and the handler types clients register against.
package transcribe

import (
	"encoding/json"
	"fmt"
)

// Inbound message types the protocol recognizes. Anything else is routed
// to the default handler and surfaced as a status event carrying the raw
// type name.
const (
	TypeTranscriptDelta     = "conversation.item.input_audio_transcription.delta"
	TypeTranscriptCompleted = "conversation.item.input_audio_transcription.completed"
	TypeSpeechStarted       = "input_audio_buffer.speech_started"
	TypeSpeechStopped       = "input_audio_buffer.speech_stopped"
	TypeError               = "error"
)

// Handler processes one decoded inbound message. Handlers run on the
// receive goroutine, so dispatch is single-threaded and FIFO.
type Handler func(msg Message)

// Message is one inbound protocol frame: the envelope type plus the raw
// payload. Field accessors decode lazily and never fail; malformed
// payloads degrade to zero values or raw text, by the protocol's
// resilience policy.
type Message struct {
	Type string
	Raw  json.RawMessage
}

// ParseMessage decodes the envelope of an inbound frame.
func ParseMessage(data []byte) (Message, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Message{}, fmt.Errorf("failed to decode message envelope: %w", err)
	}
	if envelope.Type == "" {
		return Message{}, fmt.Errorf("message has no type field")
	}

	raw := make(json.RawMessage, len(data))
	copy(raw, data)
	return Message{Type: envelope.Type, Raw: raw}, nil
}

// Delta returns the incremental transcript fragment of a delta message.
func (m Message) Delta() string {
	var payload struct {
		Delta string `json:"delta"`
	}
	if err := json.Unmarshal(m.Raw, &payload); err != nil {
		return ""
	}
	return payload.Delta
}

// Transcript returns the finalized utterance of a completed message. One
// endpoint variant wraps the transcript in a JSON-encoded {"text": ...}
// string; when that inner decode fails the raw string is returned as-is
// rather than dropping the utterance.
func (m Message) Transcript() string {
	var payload struct {
		Transcript string `json:"transcript"`
	}
	if err := json.Unmarshal(m.Raw, &payload); err != nil {
		return ""
	}

	var nested map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload.Transcript), &nested); err != nil || nested == nil {
		return payload.Transcript
	}

	var text string
	if rawText, ok := nested["text"]; ok {
		_ = json.Unmarshal(rawText, &text)
	}
	return text
}

// ErrorMessage returns the message of an error frame, or "Unknown error"
// when the frame carries none.
func (m Message) ErrorMessage() string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(m.Raw, &payload); err != nil || payload.Message == "" {
		return "Unknown error"
	}
	return payload.Message
}

// Logprob is one per-token confidence entry attached to delta messages
// when the session requested confidence scores.
type Logprob struct {
	Token   string  `json:"token"`
	Logprob float64 `json:"logprob"`
}

// Logprobs returns the per-token confidence entries of a delta message,
// nil when absent.
func (m Message) Logprobs() []Logprob {
	var payload struct {
		Logprobs []Logprob `json:"logprobs"`
	}
	if err := json.Unmarshal(m.Raw, &payload); err != nil {
		return nil
	}
	return payload.Logprobs
}
