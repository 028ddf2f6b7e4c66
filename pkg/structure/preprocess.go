// Package structure converts raw fiscal-classification text into safe,
// structured markup: content is escaped, noise from the upstream document
// scans is stripped, blocks are classified into headings, lists and
// paragraphs, and cross-reference links and stable per-entry anchors are
// injected. The processing order is fixed and matters for correctness:
// escaping must happen before any markup is introduced, and reference
// injection operates on assembled markup while skipping existing tags.
package structure

import (
	"html"
	"regexp"
	"strings"
)

var (
	// pageNumberPattern matches lines containing only a page number,
	// a common artifact of the scanned tariff tables.
	pageNumberPattern = regexp.MustCompile(`^\d{1,4}\s*$`)

	// folioPattern matches folio markers like "fls. 12" or "- 12 -".
	folioPattern = regexp.MustCompile(`(?i)^(fls?\.\s*\d+|-\s*\d+\s*-)\s*$`)

	// strayBulletPattern matches lines that carry only a list bullet.
	strayBulletPattern = regexp.MustCompile(`^[-*•]\s*$`)

	// bareCodePattern matches stand-alone classification-code lines with
	// no body text; these are table fragments, not headings.
	bareCodePattern = regexp.MustCompile(`^\d{2,4}\.\d{2}(\.\d{1,2})?\s*$`)
)

// EscapeText HTML-escapes raw legal text. It must run before any markup is
// introduced so injected content can never be misinterpreted as structure.
func EscapeText(raw string) string {
	return html.EscapeString(raw)
}

// StripNoise removes known noise patterns line by line: pagination
// artifacts, folio markers, stray list bullets, and stand-alone
// classification-code lines with no body.
func StripNoise(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if pageNumberPattern.MatchString(trimmed) ||
			folioPattern.MatchString(trimmed) ||
			strayBulletPattern.MatchString(trimmed) ||
			bareCodePattern.MatchString(trimmed) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// SplitBlocks splits cleaned text into blocks on blank-line boundaries.
// Blocks are trimmed; empty blocks are dropped.
func SplitBlocks(text string) []string {
	var blocks []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, strings.Join(current, "\n"))
			current = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, strings.TrimSpace(line))
	}
	flush()
	return blocks
}
