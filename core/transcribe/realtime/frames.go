package realtime

import (
	"encoding/base64"
	"fmt"

	"github.com/angangwa/azure-speech-to-text/core/audio"
	"github.com/angangwa/azure-speech-to-text/core/transcribe"
	"github.com/jinzhu/copier"
)

const (
	typeSessionUpdate = "transcription_session.update"
	typeAudioAppend   = "input_audio_buffer.append"

	logprobsInclude = "item.input_audio_transcription.logprobs"
)

type sessionUpdateFrame struct {
	Type    string         `json:"type"`
	Session sessionPayload `json:"session"`
}

type sessionPayload struct {
	InputAudioFormat         string               `json:"input_audio_format"`
	InputAudioTranscription  transcriptionSetting `json:"input_audio_transcription"`
	TurnDetection            turnDetection        `json:"turn_detection"`
	InputAudioNoiseReduction *noiseReduction      `json:"input_audio_noise_reduction,omitempty"`
	Include                  []string             `json:"include,omitempty"`
}

type transcriptionSetting struct {
	Model string `json:"model"`
}

type turnDetection struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold"`
	PrefixPaddingMs   int     `json:"prefix_padding_ms"`
	SilenceDurationMs int     `json:"silence_duration_ms"`
}

type noiseReduction struct {
	Type string `json:"type"`
}

// wireAudioFormat translates the capture encoding into the format names
// the realtime endpoint understands.
func wireAudioFormat(encoding audio.EncodingInfo) string {
	switch encoding.Format {
	case audio.EncodingMulaw:
		return "g711_ulaw"
	case audio.EncodingALaw:
		return "g711_alaw"
	default:
		return "pcm16"
	}
}

// newSessionUpdateFrame builds the configuration frame sent once right
// after the websocket opens. Noise reduction is omitted entirely when
// disabled, matching what the service expects.
func newSessionUpdateFrame(config transcribe.SessionConfig) (sessionUpdateFrame, error) {
	vadConfig := config.TurnDetection()
	var vad turnDetection
	if err := copier.Copy(&vad, &vadConfig); err != nil {
		return sessionUpdateFrame{}, fmt.Errorf("failed to map turn detection settings: %w", err)
	}
	vad.Type = "server_vad"

	frame := sessionUpdateFrame{
		Type: typeSessionUpdate,
		Session: sessionPayload{
			InputAudioFormat:        wireAudioFormat(config.Encoding),
			InputAudioTranscription: transcriptionSetting{Model: config.Model},
			TurnDetection:           vad,
		},
	}
	if config.NoiseReduction != transcribe.NoiseReductionNone {
		frame.Session.InputAudioNoiseReduction = &noiseReduction{Type: string(config.NoiseReduction)}
	}
	if config.IncludeConfidence {
		frame.Session.Include = []string{logprobsInclude}
	}
	return frame, nil
}

type audioAppendFrame struct {
	Type  string `json:"type"`
	Audio string `json:"audio"`
}

func newAudioAppendFrame(pcm []byte) audioAppendFrame {
	return audioAppendFrame{
		Type:  typeAudioAppend,
		Audio: base64.StdEncoding.EncodeToString(pcm),
	}
}
