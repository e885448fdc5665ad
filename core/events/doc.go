// Package events defines the typed event contract of a streaming
// transcription session.
//
// Event kinds are grouped by sink-facing namespaces:
//
//   - transcript.*
//   - session.*
//
// Semantics used across the package:
//
//   - Delta: incremental, not-yet-finalized fragment of the current
//     utterance, display-only.
//   - Completed: terminal immutable text for one utterance (a turn).
//   - Status: informational progress update, never an error.
//   - Ended: lifecycle boundary; exactly one per session.
//
// transcript events
//
//   - TranscriptDelta (transcript.delta): incremental fragment of the
//     utterance currently being transcribed.
//   - TranscriptCompleted (transcript.completed): finalized utterance with
//     its insertion index in the transcript history.
//
// session events
//
//   - Status (session.status): progress update; carries the time remaining
//     before the deadline while one is armed.
//   - Error (session.error): recoverable or terminal session error,
//     delivered through the same stream as every other event.
//   - SessionEnded (session.ended): the single guaranteed terminal event;
//     the event stream closes after it.
package events
