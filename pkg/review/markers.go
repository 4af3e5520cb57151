package review

import "strings"

const (
	// AnnotationGlyph marks a message that carries editor notes.
	AnnotationGlyph = "🔏"
	// MandatoryEditMarker is the reviewer's yaml verdict requesting a rewrite.
	MandatoryEditMarker = "edit: true"
)

// hasMarker reports whether a review asks for changes.
func hasMarker(text string) bool {
	return strings.Contains(text, AnnotationGlyph) || strings.Contains(text, MandatoryEditMarker)
}

// NeedsRevision inspects a draft and its review. It reports whether another revision
// round is required and returns the text handed to the editor: the draft, followed by
// the review when the review itself asks for changes. Only the glyph counts in the
// draft; the mandatory edit marker is read from the review alone.
func NeedsRevision(response string, review string) (bool, string) {
	draft := response
	flag := strings.Contains(response, AnnotationGlyph)
	if hasMarker(review) {
		draft = response + "\n" + review
		flag = true
	}
	return flag, draft
}
