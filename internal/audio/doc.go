// Package audio plays decoded question segments on the sound device. The
// Engine owns at most one playback handle at a time; starting a segment
// releases the previous one first, and completion is reported only when a
// segment runs to its end.
package audio
