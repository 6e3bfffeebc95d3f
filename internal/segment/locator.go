package segment

import (
	"fmt"
	"net/url"
	"strings"
)

// Part numbers a segment within a question.
type Part int

const (
	// PartLeadIn is the opening of the question. Always present.
	PartLeadIn Part = 1
	// PartClue is the optional mid-question segment, introduced by the cue.
	PartClue Part = 2
	// PartAnswer is the answer reveal. Always present.
	PartAnswer Part = 3
)

// String returns the string representation of the part.
func (p Part) String() string {
	switch p {
	case PartLeadIn:
		return "lead-in"
	case PartClue:
		return "clue"
	case PartAnswer:
		return "answer"
	default:
		return fmt.Sprintf("part(%d)", int(p))
	}
}

// Valid reports whether p is one of the three known parts.
func (p Part) Valid() bool {
	return p >= PartLeadIn && p <= PartAnswer
}

// Locator addresses one playable audio resource: either a remote question
// segment or an asset bundled with the binary.
type Locator struct {
	Category string
	Index    int
	Part     Part

	// URL is set for remote segments.
	URL string
	// Asset is set for bundled resources and names the embedded file.
	Asset string
}

// Bundled reports whether the locator refers to an embedded asset.
func (l Locator) Bundled() bool {
	return l.Asset != ""
}

// Optional reports whether the segment may be missing and must be probed.
func (l Locator) Optional() bool {
	return !l.Bundled() && l.Part == PartClue
}

// Key identifies the locator for caching and request deduplication.
func (l Locator) Key() string {
	if l.Bundled() {
		return "asset:" + l.Asset
	}
	return l.URL
}

// String returns a short human readable form, e.g. "science#4/answer".
func (l Locator) String() string {
	if l.Bundled() {
		return "bundled:" + l.Asset
	}
	return fmt.Sprintf("%s#%d/%s", l.Category, l.Index, l.Part)
}

// segmentURL formats {base}/{category}/{category}-{index}-{part}.mp3.
func segmentURL(base, category string, index int, part Part) string {
	c := url.PathEscape(category)
	return fmt.Sprintf("%s/%s/%s-%d-%d.mp3", strings.TrimRight(base, "/"), c, c, index, int(part))
}
