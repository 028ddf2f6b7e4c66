package structure

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/coolbeans/pauta/pkg/anchor"
)

// BlockKind tags the variant a block classified into.
type BlockKind int

const (
	// BlockHeading is a classification code followed by a dash and a title.
	BlockHeading BlockKind = iota
	// BlockOrderedList is a list led by letter, digit or roman-numeral markers.
	BlockOrderedList
	// BlockUnorderedList is a list led by dashes or asterisks.
	BlockUnorderedList
	// BlockParagraph is any block no other matcher claimed.
	BlockParagraph
)

// Block is the tagged result of classifying one text block.
type Block struct {
	Kind BlockKind

	// Code and Title are set for headings; Level is the heading level
	// (3 for two-segment positions, 4 for short subpositions).
	Code  string
	Title string
	Level int

	// Items holds the list items for the two list kinds.
	Items []string

	// Lines holds the raw lines of a paragraph block.
	Lines []string
}

var (
	// subpositionHeadingPattern matches short-subposition headings such as
	// "8417.10 - Fornos de padaria". Three-segment granularity renders one
	// heading level below positions.
	subpositionHeadingPattern = regexp.MustCompile(`(?s)^(\d{4}\.\d{1,2}(?:\.\d{1,2})?|\d{2}\.\d{2}\.\d{1,2})\s*[-–]\s*(.+)$`)

	// positionHeadingPattern matches two-segment position headings such as
	// "84.17 - Fornos industriais".
	positionHeadingPattern = regexp.MustCompile(`(?s)^(\d{2}\.\d{2})\s*[-–]\s*(.+)$`)

	// orderedLeaderPattern matches ordered-list item leaders: "a)", "3.",
	// "12)", "iv)" and similar.
	orderedLeaderPattern = regexp.MustCompile(`(?i)^([a-z]\)|\d{1,3}[.)]|[ivxlcdm]+[.)])\s+`)

	// unorderedLeaderPattern matches unordered-list item leaders.
	unorderedLeaderPattern = regexp.MustCompile(`^[-*]\s+`)

	// boldPattern matches inline **bold** markup; conversion happens after
	// list/paragraph classification so the markers never affect it.
	boldPattern = regexp.MustCompile(`\*\*([^*]+)\*\*`)
)

// blockMatcher attempts to classify a block, reporting whether it claimed it.
type blockMatcher func(block string) (Block, bool)

// blockMatchers are evaluated top-to-bottom per block. The patterns are not
// mutually exclusive, so this order is part of the pipeline contract.
var blockMatchers = []blockMatcher{
	matchSubpositionHeading,
	matchPositionHeading,
	matchOrderedList,
	matchUnorderedList,
}

// ClassifyBlock runs the ordered matchers over one block and returns the
// tagged variant; blocks nothing claims become paragraphs.
func ClassifyBlock(block string) Block {
	for _, match := range blockMatchers {
		if classified, ok := match(block); ok {
			return classified
		}
	}
	return Block{Kind: BlockParagraph, Lines: strings.Split(block, "\n")}
}

func matchSubpositionHeading(block string) (Block, bool) {
	groups := subpositionHeadingPattern.FindStringSubmatch(block)
	if groups == nil {
		return Block{}, false
	}
	return Block{
		Kind:  BlockHeading,
		Code:  groups[1],
		Title: collapseLines(groups[2]),
		Level: 4,
	}, true
}

func matchPositionHeading(block string) (Block, bool) {
	groups := positionHeadingPattern.FindStringSubmatch(block)
	if groups == nil {
		return Block{}, false
	}
	return Block{
		Kind:  BlockHeading,
		Code:  groups[1],
		Title: collapseLines(groups[2]),
		Level: 3,
	}, true
}

func matchOrderedList(block string) (Block, bool) {
	return matchList(block, orderedLeaderPattern, BlockOrderedList, false)
}

func matchUnorderedList(block string) (Block, bool) {
	return matchList(block, unorderedLeaderPattern, BlockUnorderedList, true)
}

// matchList claims a block when its first line carries a list leader.
// Lines with a leader start a new item; continuation lines are folded into
// the previous item. Ordered leaders ("a)", "3.") stay in the item text
// because legal cross-references cite them; unordered markers are dropped.
func matchList(block string, leader *regexp.Regexp, kind BlockKind, stripLeader bool) (Block, bool) {
	lines := strings.Split(block, "\n")
	if !leader.MatchString(lines[0]) {
		return Block{}, false
	}

	var items []string
	for _, line := range lines {
		if leader.MatchString(line) {
			if stripLeader {
				line = leader.ReplaceAllString(line, "")
			}
			items = append(items, line)
			continue
		}
		if len(items) == 0 {
			// A continuation before any item means this is not a list.
			return Block{}, false
		}
		items[len(items)-1] += " " + line
	}
	return Block{Kind: kind, Items: items}, true
}

// collapseLines folds a multi-line fragment into a single line.
func collapseLines(fragment string) string {
	return strings.Join(strings.Fields(fragment), " ")
}

// convertBold converts inline **bold** markup to <strong> tags.
func convertBold(text string) string {
	return boldPattern.ReplaceAllString(text, "<strong>$1</strong>")
}

// renderBlock emits the markup for one classified block. Headings receive
// the anchor id derived from their code; list and paragraph content gets
// cross-references injected (step 6 runs on assembled markup, per block).
func renderBlock(block Block) string {
	switch block.Kind {
	case BlockHeading:
		return renderHeading(block)
	case BlockOrderedList:
		return renderList("ol", block.Items)
	case BlockUnorderedList:
		return renderList("ul", block.Items)
	default:
		text := InjectReferences(convertBold(collapseLines(strings.Join(block.Lines, "\n"))))
		return fmt.Sprintf("<p>%s</p>\n", text)
	}
}

func renderHeading(block Block) string {
	class := "section"
	if block.Level == 4 {
		class = "subsection"
	}
	// The leading code is kept literal so the heading never links to itself;
	// the title still gets note references and code mentions injected.
	title := InjectReferences(convertBold(block.Title))
	return fmt.Sprintf("<h%d class=%q id=%q>%s - %s</h%d>\n",
		block.Level, class, anchor.ToAnchorID(block.Code), block.Code, title, block.Level)
}

func renderList(tag string, items []string) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("<%s class=\"legal-list\">\n", tag))
	for _, item := range items {
		builder.WriteString(fmt.Sprintf("<li>%s</li>\n", InjectReferences(convertBold(item))))
	}
	builder.WriteString(fmt.Sprintf("</%s>\n", tag))
	return builder.String()
}

// StructureText runs the full pipeline over raw legal text: escape, strip
// noise, split into blocks, classify, and emit markup with references and
// anchors injected. It is also the legacy free-text conversion used when a
// cached document arrives without pre-rendered markup.
func StructureText(raw string) string {
	cleaned := StripNoise(EscapeText(raw))
	var builder strings.Builder
	for _, blockText := range SplitBlocks(cleaned) {
		builder.WriteString(renderBlock(ClassifyBlock(blockText)))
	}
	return builder.String()
}
