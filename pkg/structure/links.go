package structure

import (
	"fmt"
	"regexp"

	"github.com/coolbeans/pauta/pkg/anchor"
)

var (
	// markupTagPattern matches complete markup tags; reference injection
	// splits on these boundaries and only transforms the text runs between
	// them, so attributes are never corrupted and already-linked text is
	// never double-wrapped.
	markupTagPattern = regexp.MustCompile(`<[^>]*>`)

	// noteRefPattern matches note cross-references like "Nota 2" and
	// "Nota 4 do Capítulo 85".
	noteRefPattern = regexp.MustCompile(`\bNotas?\s+(\d+)(?:\s+do\s+Capítulo\s+(\d+))?`)

	// codeMentionPattern matches classification-code mentions in running
	// text, dotted at position or subposition granularity.
	codeMentionPattern = regexp.MustCompile(`\b(\d{2}\.\d{2}\.\d{1,2}|\d{4}\.\d{1,2}|\d{2}\.\d{2})\b`)

	// exclusionPattern matches the exclusion phrases highlighted for the
	// reader.
	exclusionPattern = regexp.MustCompile(`(?i)\b(exceto|excluem-se|não compreende|não abrange|não se aplica)\b`)
)

// mapOutsideTags applies transform to every text run of markup that lies
// outside tag boundaries, leaving the tags themselves untouched.
func mapOutsideTags(markup string, transform func(string) string) string {
	tagSpans := markupTagPattern.FindAllStringIndex(markup, -1)
	if tagSpans == nil {
		return transform(markup)
	}

	var builder []byte
	cursor := 0
	for _, span := range tagSpans {
		if span[0] > cursor {
			builder = append(builder, transform(markup[cursor:span[0]])...)
		}
		builder = append(builder, markup[span[0]:span[1]]...)
		cursor = span[1]
	}
	if cursor < len(markup) {
		builder = append(builder, transform(markup[cursor:])...)
	}
	return string(builder)
}

// InjectReferences post-processes assembled markup: note cross-references
// are wrapped in an inline tag carrying the note number and optional
// chapter, classification-code mentions become navigable links carrying
// the undotted code, and exclusion phrases are highlighted. Existing tags
// are skipped at every step.
func InjectReferences(markup string) string {
	markup = mapOutsideTags(markup, injectNoteRefs)
	markup = mapOutsideTags(markup, injectCodeLinks)
	markup = mapOutsideTags(markup, injectExclusions)
	return markup
}

func injectNoteRefs(text string) string {
	return noteRefPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := noteRefPattern.FindStringSubmatch(match)
		if groups[2] != "" {
			return fmt.Sprintf(`<span class="note-ref" data-note="%s" data-chapter="%s">%s</span>`,
				groups[1], groups[2], match)
		}
		return fmt.Sprintf(`<span class="note-ref" data-note="%s">%s</span>`, groups[1], match)
	})
}

func injectCodeLinks(text string) string {
	return codeMentionPattern.ReplaceAllStringFunc(text, func(code string) string {
		return fmt.Sprintf(`<a class="code-link" href="#%s" data-code="%s">%s</a>`,
			anchor.ToAnchorID(code), anchor.Digits(code), code)
	})
}

func injectExclusions(text string) string {
	return exclusionPattern.ReplaceAllString(text, `<em class="exclusion">$1</em>`)
}
