package transcription

import (
	"fmt"
	"sync"
	"testing"
)

func TestDeltasAccumulateIntoPartial(t *testing.T) {
	transcript := newTranscript()

	transcript.applyDelta("hel")
	transcript.applyDelta("lo")

	snapshot := transcript.Snapshot()
	if snapshot.Partial != "hello" {
		t.Fatalf("expected partial %q, got %q", "hello", snapshot.Partial)
	}
	if len(snapshot.Turns) != 0 {
		t.Fatalf("expected deltas to leave history untouched, got %d turns", len(snapshot.Turns))
	}
}

func TestCompleteTurnAppendsAndClearsPartial(t *testing.T) {
	transcript := newTranscript()
	transcript.applyDelta("hel")
	transcript.applyDelta("lo")

	turn, ok := transcript.completeTurn("hello")
	if !ok {
		t.Fatalf("expected completion to append a turn")
	}
	if turn.Text != "hello" || turn.Sequence != 0 {
		t.Fatalf("expected turn {hello 0}, got %+v", turn)
	}

	snapshot := transcript.Snapshot()
	if snapshot.Partial != "" {
		t.Fatalf("expected partial cleared after completion, got %q", snapshot.Partial)
	}
	if len(snapshot.Turns) != 1 || snapshot.Turns[0].Text != "hello" {
		t.Fatalf("expected history [hello], got %v", snapshot.Turns)
	}
}

func TestCompletionTextIsNotBuiltFromDeltas(t *testing.T) {
	transcript := newTranscript()
	transcript.applyDelta("hel")
	transcript.applyDelta("lo")

	// The completion payload is authoritative; deltas are display-only.
	turn, ok := transcript.completeTurn("hello there")
	if !ok {
		t.Fatalf("expected completion to append a turn")
	}
	if turn.Text != "hello there" {
		t.Fatalf("expected turn text to equal the completion payload, got %q", turn.Text)
	}
}

func TestEmptyCompletionIsIgnored(t *testing.T) {
	testCases := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "whitespace only", text: "   \t\n"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			transcript := newTranscript()
			transcript.applyDelta("in progress")

			if _, ok := transcript.completeTurn(testCase.text); ok {
				t.Fatalf("expected empty completion to be ignored")
			}

			snapshot := transcript.Snapshot()
			if len(snapshot.Turns) != 0 {
				t.Fatalf("expected no turn for empty completion, got %v", snapshot.Turns)
			}
			if snapshot.Partial != "in progress" {
				t.Fatalf("expected partial to survive empty completion, got %q", snapshot.Partial)
			}
		})
	}
}

func TestSequencesStrictlyIncrease(t *testing.T) {
	transcript := newTranscript()

	for i := range 5 {
		turn, ok := transcript.completeTurn(fmt.Sprintf("turn %d", i))
		if !ok {
			t.Fatalf("expected completion %d to append a turn", i)
		}
		if turn.Sequence != i {
			t.Fatalf("expected sequence %d, got %d", i, turn.Sequence)
		}
	}

	snapshot := transcript.Snapshot()
	for i, turn := range snapshot.Turns {
		if turn.Sequence != i {
			t.Fatalf("expected stable ordering, turn at %d has sequence %d", i, turn.Sequence)
		}
	}
}

func TestSnapshotIsIsolatedFromLaterMutation(t *testing.T) {
	transcript := newTranscript()
	transcript.completeTurn("first")

	snapshot := transcript.Snapshot()
	transcript.completeTurn("second")

	if len(snapshot.Turns) != 1 {
		t.Fatalf("expected snapshot to stay at 1 turn, got %d", len(snapshot.Turns))
	}
}

func TestConcurrentSnapshotsDoNotTearState(t *testing.T) {
	transcript := newTranscript()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			snapshot := transcript.Snapshot()
			for i, turn := range snapshot.Turns {
				if turn.Sequence != i {
					t.Errorf("torn snapshot: turn at %d has sequence %d", i, turn.Sequence)
					return
				}
			}
		}
	}()

	for i := range 200 {
		transcript.applyDelta("x")
		transcript.completeTurn(fmt.Sprintf("turn %d", i))
	}
	close(stop)
	wg.Wait()
}
