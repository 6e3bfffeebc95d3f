// Package segment resolves quiz questions to their audio segments.
//
// A question is made of up to three remote MP3 segments: the lead-in
// (part 1), an optional mid-question clue (part 2) and the answer
// (part 3). A short transition cue ships inside the binary. The [Store]
// builds locators for those segments, probes whether the optional part
// exists, and downloads segment audio through a rate limiter and an
// optional byte cache.
package segment
