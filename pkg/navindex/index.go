// Package navindex builds the flattened navigation index over a document
// payload and drives the virtualized list that displays it: chapter header
// rows interleaved with position rows, addressable by code, by query and
// by anchor id.
package navindex

import (
	"strings"

	"github.com/coolbeans/pauta/pkg/anchor"
	"github.com/coolbeans/pauta/pkg/document"
)

// EntryKind distinguishes the two row kinds of the flattened index.
type EntryKind int

const (
	// EntryHeader is a chapter header row.
	EntryHeader EntryKind = iota
	// EntryItem is a position row.
	EntryItem
)

// Entry is one row of the flattened index. Header rows carry the chapter
// number and its position count; item rows carry the position record.
type Entry struct {
	Kind          EntryKind
	ChapterNumber string
	Count         int
	Position      document.PositionRecord
}

// AnchorID returns the document anchor the row navigates to.
func (entry Entry) AnchorID() string {
	if entry.Kind == EntryHeader {
		return anchor.ToChapterAnchorID(entry.ChapterNumber)
	}
	return entry.Position.EffectiveAnchorID()
}

// Label returns the display text for the row.
func (entry Entry) Label() string {
	if entry.Kind == EntryHeader {
		return "Capítulo " + entry.ChapterNumber
	}
	if entry.Position.Description == "" {
		return entry.Position.Code
	}
	return entry.Position.Code + " - " + entry.Position.Description
}

// Index is the flattened, ordered navigation index over one payload. It is
// built in a single pass and immutable afterwards; lookups never rescan
// the payload.
type Index struct {
	kind    document.Kind
	entries []Entry

	// byCode maps both the dotted code and its digit form to the first
	// row carrying it, so document order decides between duplicates.
	byCode   map[string]int
	byAnchor map[string]int
}

// Build flattens the chapters into the ordered index. Chapters appear in
// numeric order, each header followed by its positions in payload order.
func Build(chapters map[string]document.ChapterRecord, kind document.Kind) *Index {
	index := &Index{
		kind:     kind,
		byCode:   make(map[string]int),
		byAnchor: make(map[string]int),
	}

	for _, number := range document.SortedChapterNumbers(chapters) {
		chapter := chapters[number]
		index.entries = append(index.entries, Entry{
			Kind:          EntryHeader,
			ChapterNumber: number,
			Count:         len(chapter.Positions),
		})
		index.registerAnchor(anchor.ToChapterAnchorID(number), len(index.entries)-1)

		for _, position := range chapter.Positions {
			index.entries = append(index.entries, Entry{
				Kind:          EntryItem,
				ChapterNumber: number,
				Position:      position,
			})
			row := len(index.entries) - 1
			index.registerCode(position.Code, row)
			index.registerCode(anchor.Digits(position.Code), row)
			index.registerAnchor(position.EffectiveAnchorID(), row)
		}
	}
	return index
}

func (index *Index) registerCode(code string, row int) {
	if code == "" {
		return
	}
	if _, taken := index.byCode[code]; !taken {
		index.byCode[code] = row
	}
}

func (index *Index) registerAnchor(anchorID string, row int) {
	if anchorID == "" {
		return
	}
	if _, taken := index.byAnchor[anchorID]; !taken {
		index.byAnchor[anchorID] = row
	}
}

// Len returns the number of rows.
func (index *Index) Len() int { return len(index.entries) }

// At returns the row at the given position.
func (index *Index) At(row int) Entry { return index.entries[row] }

// normalize maps a raw query to the index's lookup form.
func (index *Index) normalize(query string) string {
	if index.kind == document.KindRaw {
		return anchor.Digits(query)
	}
	return anchor.NormalizeQuery(query)
}

// ResolveQuery maps a raw user query to the row it identifies. The query
// is normalized per the index kind, then matched exactly; failing that,
// the first row whose digit form extends the query's digits wins, which
// in document order is the shallowest match ("8417" resolves to the
// "84.17" position, not to "8417.10").
func (index *Index) ResolveQuery(query string) (int, bool) {
	normalized := index.normalize(query)
	if normalized == "" {
		return 0, false
	}
	if row, ok := index.byCode[normalized]; ok {
		return row, true
	}

	digits := anchor.Digits(normalized)
	if digits == "" {
		return 0, false
	}
	for row, entry := range index.entries {
		if entry.Kind != EntryItem {
			continue
		}
		if strings.HasPrefix(anchor.Digits(entry.Position.Code), digits) {
			return row, true
		}
	}
	return 0, false
}

// ResolveAnchor maps a document anchor id to its row.
func (index *Index) ResolveAnchor(anchorID string) (int, bool) {
	row, ok := index.byAnchor[anchorID]
	return row, ok
}
