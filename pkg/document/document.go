// Package document defines the immutable payload model consumed by the
// rendering and navigation engine: chapters of a fiscal classification
// table and the positions they contain. Records are created by the
// (external) search collaborator and are read-only for this engine.
package document

import (
	"sort"
	"strconv"

	"github.com/coolbeans/pauta/pkg/anchor"
)

// Kind distinguishes the two document kinds the navigation index supports.
type Kind int

const (
	// KindPosition normalizes queries to position granularity ("84.17").
	KindPosition Kind = iota
	// KindRaw normalizes queries to their raw digit form.
	KindRaw
)

// PositionRecord is the finest-grained classification entry in a chapter.
type PositionRecord struct {
	// Code is the dotted domain identifier, e.g. "8417.10".
	Code string `json:"code" yaml:"code"`

	// Description is the legal text describing the position.
	Description string `json:"description" yaml:"description"`

	// AnchorID, when present, overrides the id derived from Code.
	AnchorID string `json:"anchorId,omitempty" yaml:"anchorId,omitempty"`

	// Level is the nesting depth within the chapter, when known.
	Level int `json:"level,omitempty" yaml:"level,omitempty"`

	// Rate is the tax rate attached to the position, when known.
	Rate string `json:"rate,omitempty" yaml:"rate,omitempty"`
}

// EffectiveAnchorID returns the explicit anchor id when the payload
// provided one, or the id derived deterministically from the code.
func (position PositionRecord) EffectiveAnchorID() string {
	if position.AnchorID != "" {
		return anchor.ToAnchorID(position.AnchorID)
	}
	return anchor.ToAnchorID(position.Code)
}

// ChapterSections holds the structured metadata sections of a chapter.
// All fields are optional raw legal text.
type ChapterSections struct {
	Titulo        string `json:"titulo,omitempty" yaml:"titulo,omitempty"`
	Notas         string `json:"notas,omitempty" yaml:"notas,omitempty"`
	Consideracoes string `json:"consideracoes,omitempty" yaml:"consideracoes,omitempty"`
	Definicoes    string `json:"definicoes,omitempty" yaml:"definicoes,omitempty"`
}

// Empty reports whether no structured section carries any text.
func (sections *ChapterSections) Empty() bool {
	return sections == nil ||
		(sections.Titulo == "" && sections.Notas == "" &&
			sections.Consideracoes == "" && sections.Definicoes == "")
}

// ChapterRecord is the top-level grouping of positions. Chapters compose a
// document map keyed by chapter number, unordered in storage and sorted
// numerically for display.
type ChapterRecord struct {
	ChapterNumber string           `json:"chapterNumber" yaml:"chapterNumber"`
	Title         string           `json:"title,omitempty" yaml:"title,omitempty"`
	GeneralNotes  string           `json:"generalNotes,omitempty" yaml:"generalNotes,omitempty"`
	Sections      *ChapterSections `json:"sections,omitempty" yaml:"sections,omitempty"`
	Positions     []PositionRecord `json:"positions" yaml:"positions"`
}

// Payload is the document payload delivered by the search collaborator.
// Markup, when present, is trusted final HTML and skips structuring.
type Payload struct {
	Query    string                   `json:"query" yaml:"query"`
	Chapters map[string]ChapterRecord `json:"chapters" yaml:"chapters"`
	Markup   string                   `json:"markup,omitempty" yaml:"markup,omitempty"`
}

// Empty reports whether the payload carries neither chapters nor markup.
func (payload Payload) Empty() bool {
	return len(payload.Chapters) == 0 && payload.Markup == ""
}

// SortedChapterNumbers returns the chapter numbers in numeric order.
// Non-numeric chapter numbers sort after numeric ones, lexicographically.
func SortedChapterNumbers(chapters map[string]ChapterRecord) []string {
	numbers := make([]string, 0, len(chapters))
	for number := range chapters {
		numbers = append(numbers, number)
	}
	sort.Slice(numbers, func(i, j int) bool {
		left, leftErr := strconv.Atoi(numbers[i])
		right, rightErr := strconv.Atoi(numbers[j])
		switch {
		case leftErr == nil && rightErr == nil:
			return left < right
		case leftErr == nil:
			return true
		case rightErr == nil:
			return false
		default:
			return numbers[i] < numbers[j]
		}
	})
	return numbers
}
