package transcription

import (
	"errors"

	"github.com/angangwa/azure-speech-to-text/core/events"
)

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(opts StartOptions) eventEmitter {
	return func(event events.Event) {
		if opts.onEvent != nil {
			opts.onEvent(event)
		}
		switch typedEvent := event.(type) {
		case events.TranscriptDelta:
			if opts.onPartialTranscription != nil {
				opts.onPartialTranscription(typedEvent.Text)
			}
		case events.TranscriptCompleted:
			if opts.onTranscription != nil {
				opts.onTranscription(typedEvent.Text)
			}
		case events.Status:
			if opts.onStatus != nil {
				opts.onStatus(typedEvent.Message)
			}
		case events.Error:
			if opts.onError != nil {
				opts.onError(errors.New(typedEvent.Message))
			}
		case events.SessionEnded:
			if opts.onSessionEnded != nil {
				opts.onSessionEnded(typedEvent.Reason)
			}
		}
	}
}
