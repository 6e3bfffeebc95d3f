// Package sequencer drives one question at a time through its audio
// segments: lead-in, then the optional cue and clue, then the answer. A buzz
// jumps straight to the answer of the question in flight.
package sequencer
