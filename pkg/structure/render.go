package structure

import (
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"github.com/coolbeans/pauta/pkg/anchor"
	"github.com/coolbeans/pauta/pkg/document"
)

// metaSection pairs a structured-section key with its display label.
type metaSection struct {
	key   string
	label string
}

// metaSections fixes the render order of the structured metadata blocks.
var metaSections = []metaSection{
	{"titulo", "Título"},
	{"notas", "Notas"},
	{"consideracoes", "Considerações"},
	{"definicoes", "Definições"},
}

// Pipeline renders document payloads to trusted markup. The zero logger is
// replaced with a no-op; a render failure in one chapter is recovered into
// a placeholder so sibling chapters are unaffected.
type Pipeline struct {
	log *zap.SugaredLogger

	// chapterMarkup is the per-chapter renderer, indirected so the
	// recovery path is testable.
	chapterMarkup func(document.ChapterRecord) string
}

// NewPipeline creates a rendering pipeline. A nil logger disables logging.
func NewPipeline(log *zap.SugaredLogger) *Pipeline {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	pipeline := &Pipeline{log: log}
	pipeline.chapterMarkup = pipeline.renderChapter
	return pipeline
}

// RenderDocument renders all chapters in numeric order. The result is
// trusted markup: everything user-controlled passed through EscapeText.
func (pipeline *Pipeline) RenderDocument(chapters map[string]document.ChapterRecord) string {
	var builder strings.Builder
	for _, chapterNumber := range document.SortedChapterNumbers(chapters) {
		builder.WriteString(pipeline.renderChapterSafe(chapters[chapterNumber]))
	}
	return builder.String()
}

// renderChapterSafe recovers a panicking chapter render into a one-line
// error placeholder for that chapter only.
func (pipeline *Pipeline) renderChapterSafe(chapter document.ChapterRecord) (markup string) {
	defer func() {
		if cause := recover(); cause != nil {
			pipeline.log.Warnw("chapter render failed",
				"chapter", chapter.ChapterNumber, "cause", cause)
			markup = errorPlaceholder(chapter.ChapterNumber)
		}
	}()
	return pipeline.chapterMarkup(chapter)
}

func errorPlaceholder(chapterNumber string) string {
	return fmt.Sprintf("<section class=\"chapter chapter-error\"><p class=\"render-error\">Não foi possível exibir o Capítulo %s.</p></section>\n",
		html.EscapeString(chapterNumber))
}

// renderChapter emits one chapter: the chapter section with its anchor,
// the chapter heading, structured metadata sections (or the legacy
// general-notes fallback), and the position headings.
func (pipeline *Pipeline) renderChapter(chapter document.ChapterRecord) string {
	chapterAnchor := anchor.ToChapterAnchorID(chapter.ChapterNumber)

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("<section class=\"chapter\" id=%q>\n", chapterAnchor))

	headingText := "Capítulo " + html.EscapeString(chapter.ChapterNumber)
	if chapter.Title != "" {
		headingText += " - " + html.EscapeString(chapter.Title)
	}
	builder.WriteString(fmt.Sprintf("<h2 class=\"chapter-title\">%s</h2>\n", headingText))

	if !chapter.Sections.Empty() {
		pipeline.renderMetaSections(&builder, chapter)
	} else if chapter.GeneralNotes != "" {
		// Legacy payloads carry a single unstructured notes block.
		renderMetaBlock(&builder, chapter.ChapterNumber, "notas-gerais", "Notas Gerais", chapter.GeneralNotes)
	}

	for _, position := range chapter.Positions {
		builder.WriteString(renderPosition(position))
	}

	builder.WriteString("</section>\n")
	return builder.String()
}

// renderMetaSections emits the structured metadata sections present on the
// chapter, each as a labeled block with its deterministic chapter-scoped
// anchor.
func (pipeline *Pipeline) renderMetaSections(builder *strings.Builder, chapter document.ChapterRecord) {
	texts := map[string]string{
		"titulo":        chapter.Sections.Titulo,
		"notas":         chapter.Sections.Notas,
		"consideracoes": chapter.Sections.Consideracoes,
		"definicoes":    chapter.Sections.Definicoes,
	}
	for _, section := range metaSections {
		if texts[section.key] == "" {
			continue
		}
		renderMetaBlock(builder, chapter.ChapterNumber, section.key, section.label, texts[section.key])
	}
}

func renderMetaBlock(builder *strings.Builder, chapterNumber, key, label, raw string) {
	builder.WriteString(fmt.Sprintf("<section class=\"chapter-meta\" id=%q>\n",
		anchor.SectionAnchorID(chapterNumber, key)))
	builder.WriteString(fmt.Sprintf("<h4 class=\"meta-label\">%s</h4>\n", label))
	builder.WriteString(StructureText(raw))
	builder.WriteString("</section>\n")
}

// renderPosition emits one position heading anchored by its effective id.
// Two-segment codes render as position headings, anything deeper as
// subposition headings; an attached rate renders as a trailing block.
func renderPosition(position document.PositionRecord) string {
	level, class := 3, "section"
	if len(anchor.Digits(position.Code)) > 4 || position.Level > 1 {
		level, class = 4, "subsection"
	}

	text := html.EscapeString(position.Code)
	if position.Description != "" {
		text += " - " + InjectReferences(convertBold(EscapeText(position.Description)))
	}

	markup := fmt.Sprintf("<h%d class=%q id=%q>%s</h%d>\n",
		level, class, position.EffectiveAnchorID(), text, level)
	if position.Rate != "" {
		markup += fmt.Sprintf("<p class=\"position-rate\">Alíquota: %s</p>\n",
			html.EscapeString(position.Rate))
	}
	return markup
}
