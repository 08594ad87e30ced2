// Package event defines the closed vocabulary of narrative facts.
//
// Every change the engine derives from a transcript is represented as
// an immutable, typed event tied to the transcript turn (and swipe)
// that produced it. Aggregate state is never edited in place; it is
// reconstructed by replaying active events over an initial snapshot
// (see the projection package).
package event
