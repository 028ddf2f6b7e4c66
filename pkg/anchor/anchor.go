// Package anchor maps fiscal classification codes to the stable element
// identifiers used throughout the rendering and navigation engine, and
// normalizes free-form user queries to the canonical position granularity.
//
// The id scheme is the one format contract shared with whatever produced
// the document payload upstream: position anchors are "pos-" followed by
// the code with separators canonicalized to dashes ("84.17" -> "pos-84-17"),
// chapter anchors use the "cap-" namespace.
package anchor

import (
	"regexp"
	"strings"
)

const (
	// PositionPrefix namespaces anchors derived from position codes.
	PositionPrefix = "pos-"

	// ChapterPrefix namespaces chapter-level anchors.
	ChapterPrefix = "cap-"
)

var (
	// separatorPattern matches code separators that are canonicalized to a dash.
	separatorPattern = regexp.MustCompile(`[.\s/_]+`)

	// unsafePattern matches characters that are stripped from identifiers.
	unsafePattern = regexp.MustCompile(`[^0-9A-Za-z-]`)

	// dashRunPattern collapses runs of dashes left over after stripping.
	dashRunPattern = regexp.MustCompile(`-{2,}`)

	// nonDigitPattern strips everything that is not a decimal digit.
	nonDigitPattern = regexp.MustCompile(`[^0-9]`)
)

// slug canonicalizes a code fragment: separators become dashes, unsafe
// characters are removed, dash runs collapse, and edge dashes are trimmed.
func slug(fragment string) string {
	fragment = separatorPattern.ReplaceAllString(strings.TrimSpace(fragment), "-")
	fragment = unsafePattern.ReplaceAllString(fragment, "")
	fragment = dashRunPattern.ReplaceAllString(fragment, "-")
	return strings.Trim(fragment, "-")
}

// namespaced reports whether the identifier already carries one of the
// anchor namespaces, which makes the codec idempotent.
func namespaced(identifier string) bool {
	return strings.HasPrefix(identifier, PositionPrefix) ||
		strings.HasPrefix(identifier, ChapterPrefix)
}

// ToAnchorID converts a classification code to its position anchor id.
// Empty or whitespace-only input yields an empty string; already-namespaced
// identifiers pass through unchanged apart from canonicalization, so
// ToAnchorID(ToAnchorID(x)) == ToAnchorID(x) for all inputs.
func ToAnchorID(code string) string {
	cleaned := slug(code)
	if cleaned == "" {
		return ""
	}
	if namespaced(cleaned) {
		return cleaned
	}
	return PositionPrefix + cleaned
}

// ToChapterAnchorID converts a chapter number to its chapter anchor id.
// The same idempotence and empty-input rules as ToAnchorID apply.
func ToChapterAnchorID(chapterNumber string) string {
	cleaned := slug(chapterNumber)
	if cleaned == "" {
		return ""
	}
	if namespaced(cleaned) {
		return cleaned
	}
	return ChapterPrefix + cleaned
}

// SectionAnchorID builds the deterministic chapter-scoped anchor for a
// structured metadata section, e.g. SectionAnchorID("84", "notas") ->
// "cap-84-notas". Either argument empty yields an empty string.
func SectionAnchorID(chapterNumber, section string) string {
	chapterAnchor := ToChapterAnchorID(chapterNumber)
	sectionSlug := slug(strings.ToLower(section))
	if chapterAnchor == "" || sectionSlug == "" {
		return ""
	}
	return chapterAnchor + "-" + sectionSlug
}

// Digits returns only the decimal digits of a code or query, the undotted
// form used by navigable links and the navigation index.
func Digits(code string) string {
	return nonDigitPattern.ReplaceAllString(code, "")
}

// NormalizeQuery extracts the digits of a raw user query and forms the
// canonical two-segment position code from the first four ("NCM 8417,10"
// -> "84.17"). Queries with fewer than four digits cannot identify a
// position and yield an empty string.
func NormalizeQuery(rawQuery string) string {
	digits := Digits(rawQuery)
	if len(digits) < 4 {
		return ""
	}
	return digits[:2] + "." + digits[2:4]
}
