package transcription

import (
	"strings"
	"sync"
)

// Turn is one finalized utterance in the transcript history. Turns are
// append-only: once created, neither the text nor the sequence changes.
type Turn struct {
	Text     string
	Sequence int
}

// TranscriptSnapshot is a point-in-time view of transcript state: the
// partial text of the utterance in progress plus the finalized history in
// insertion order.
type TranscriptSnapshot struct {
	Partial string
	Turns   []Turn
}

// transcript aggregates decoded protocol events into transcript state.
// The receive path is the only mutator; snapshots may be taken from any
// goroutine and never observe a half-applied update.
type transcript struct {
	mu      sync.RWMutex
	partial string
	turns   []Turn
}

func newTranscript() *transcript {
	return &transcript{}
}

// applyDelta appends an incremental fragment to the partial text. The
// history is untouched; deltas are display-only and never become turn
// text themselves.
func (t *transcript) applyDelta(text string) {
	t.mu.Lock()
	t.partial += text
	t.mu.Unlock()
}

// completeTurn finalizes the utterance in progress. Completions with no
// visible text are ignored entirely: no turn is appended and accumulated
// partial text stays as it is, since the service emits empty completions
// for silence. Otherwise the turn append and the partial reset happen in
// the same critical section, so no snapshot sees the text in both places.
func (t *transcript) completeTurn(text string) (Turn, bool) {
	if strings.TrimSpace(text) == "" {
		return Turn{}, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	turn := Turn{Text: text, Sequence: len(t.turns)}
	t.turns = append(t.turns, turn)
	t.partial = ""
	return turn, true
}

// Snapshot returns a consistent copy of the current transcript state,
// safe to call concurrently with mutation.
func (t *transcript) Snapshot() TranscriptSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	turns := make([]Turn, len(t.turns))
	copy(turns, t.turns)
	return TranscriptSnapshot{Partial: t.partial, Turns: turns}
}
