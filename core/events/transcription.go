package events

const (
	// KindTranscriptDelta identifies an incremental fragment of the
	// utterance currently being transcribed.
	KindTranscriptDelta Kind = "transcript.delta"
	// KindTranscriptCompleted identifies a finalized utterance appended to
	// the transcript history.
	KindTranscriptCompleted Kind = "transcript.completed"
)

// TranscriptDelta carries a not-yet-finalized transcript fragment. Deltas
// are display-only; the finalized turn text arrives whole in
// TranscriptCompleted.
type TranscriptDelta struct {
	Base
	Text string
}

func (e TranscriptDelta) String() string { return e.Text + "..." }

// NewTranscriptDelta creates an incremental transcript fragment event.
func NewTranscriptDelta(text string) TranscriptDelta {
	return TranscriptDelta{Base: NewBase(KindTranscriptDelta), Text: text}
}

// TranscriptCompleted carries one finalized utterance. Sequence is the
// turn's insertion index in the transcript history, strictly increasing
// within a session.
type TranscriptCompleted struct {
	Base
	Text     string
	Sequence int
}

func (e TranscriptCompleted) String() string { return e.Text }

// NewTranscriptCompleted creates a finalized utterance event.
func NewTranscriptCompleted(text string, sequence int) TranscriptCompleted {
	return TranscriptCompleted{Base: NewBase(KindTranscriptCompleted), Text: text, Sequence: sequence}
}
