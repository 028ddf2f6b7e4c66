package navindex

import (
	"time"

	"go.uber.org/zap"

	"github.com/coolbeans/pauta/pkg/sched"
)

// Default geometry and timing for the virtualized list. Heights are in
// layout lines; durations run on the engine scheduler's virtual clock.
const (
	DefaultItemHeight        = 2
	DefaultListViewport      = 20
	DefaultHighlightDuration = 2 * time.Second
)

// List is the virtualized presenter over an Index: a fixed-height window
// onto the full row set. Only the rows inside the window are materialized;
// scrolling, query tracking and reading-position tracking move the window
// without ever touching off-screen rows.
type List struct {
	scheduler *sched.Scheduler
	log       *zap.SugaredLogger
	index     *Index

	itemHeight        int
	viewportHeight    int
	scrollOffset      int
	highlightDuration time.Duration

	selected    int
	highlighted int

	// lastSatisfied suppresses re-centering when the same query arrives
	// again; pendingQuery coalesces rapid query changes to one frame.
	lastSatisfied   string
	pendingQuery    sched.Cancel
	highlightCancel sched.Cancel
}

// NewList creates a list over the index. A nil logger defaults to a no-op.
func NewList(index *Index, scheduler *sched.Scheduler, log *zap.SugaredLogger) *List {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &List{
		scheduler:         scheduler,
		log:               log,
		index:             index,
		itemHeight:        DefaultItemHeight,
		viewportHeight:    DefaultListViewport,
		highlightDuration: DefaultHighlightDuration,
		selected:          -1,
		highlighted:       -1,
	}
}

// SetGeometry overrides row and viewport heights. Non-positive values keep
// the current geometry.
func (list *List) SetGeometry(itemHeight, viewportHeight int) {
	if itemHeight > 0 {
		list.itemHeight = itemHeight
	}
	if viewportHeight > 0 {
		list.viewportHeight = viewportHeight
	}
}

// SetHighlightDuration overrides how long a query hit stays highlighted.
func (list *List) SetHighlightDuration(duration time.Duration) {
	if duration > 0 {
		list.highlightDuration = duration
	}
}

// SetIndex swaps in a new index and resets all positional state.
func (list *List) SetIndex(index *Index) {
	if list.pendingQuery != nil {
		list.pendingQuery()
		list.pendingQuery = nil
	}
	list.clearHighlight()
	list.index = index
	list.scrollOffset = 0
	list.selected = -1
	list.lastSatisfied = ""
}

// Index returns the list's current index.
func (list *List) Index() *Index { return list.index }

// ContentHeight returns the total height of all rows.
func (list *List) ContentHeight() int {
	return list.index.Len() * list.itemHeight
}

// ScrollOffset returns the current window top.
func (list *List) ScrollOffset() int { return list.scrollOffset }

// Selected returns the selected row, or -1.
func (list *List) Selected() int { return list.selected }

// Highlighted returns the transiently highlighted row, or -1.
func (list *List) Highlighted() int { return list.highlighted }

// VisibleRange returns the half-open row range intersecting the window.
func (list *List) VisibleRange() (first, last int) {
	if list.index.Len() == 0 || list.itemHeight <= 0 {
		return 0, 0
	}
	first = list.scrollOffset / list.itemHeight
	last = (list.scrollOffset + list.viewportHeight + list.itemHeight - 1) / list.itemHeight
	if last > list.index.Len() {
		last = list.index.Len()
	}
	return first, last
}

// Window materializes only the visible rows.
func (list *List) Window() []Entry {
	first, last := list.VisibleRange()
	window := make([]Entry, 0, last-first)
	for row := first; row < last; row++ {
		window = append(window, list.index.At(row))
	}
	return window
}

// ScrollToIndex centers the row in the window, clamped to the scrollable
// range.
func (list *List) ScrollToIndex(row int) {
	if row < 0 || row >= list.index.Len() {
		return
	}
	offset := row*list.itemHeight - (list.viewportHeight-list.itemHeight)/2
	maxOffset := list.ContentHeight() - list.viewportHeight
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}
	list.scrollOffset = offset
}

// QueryChanged tracks the search box. The reaction is deferred one frame
// so a burst of keystrokes coalesces; a query equal to the last satisfied
// one is ignored, and a query that resolves to nothing changes nothing.
func (list *List) QueryChanged(query string) {
	if query == list.lastSatisfied {
		return
	}
	if list.pendingQuery != nil {
		list.pendingQuery()
	}
	list.pendingQuery = list.scheduler.OnFrame(func() {
		list.pendingQuery = nil
		row, ok := list.index.ResolveQuery(query)
		if !ok {
			list.log.Debugw("query resolves to no index row", "query", query)
			return
		}
		list.lastSatisfied = query
		list.selected = row
		list.ScrollToIndex(row)
		list.highlightRow(row)
	})
}

// SetActiveAnchor tracks the reading position reported by the document
// view. This path is independent of query tracking: it moves the
// selection and window but neither highlights nor records a satisfied
// query.
func (list *List) SetActiveAnchor(anchorID string) {
	row, ok := list.index.ResolveAnchor(anchorID)
	if !ok {
		return
	}
	if row == list.selected {
		return
	}
	list.selected = row
	list.ScrollToIndex(row)
}

func (list *List) highlightRow(row int) {
	list.clearHighlight()
	list.highlighted = row
	list.highlightCancel = list.scheduler.After(list.highlightDuration, func() {
		if list.highlighted == row {
			list.highlighted = -1
		}
		list.highlightCancel = nil
	})
}

func (list *List) clearHighlight() {
	if list.highlightCancel != nil {
		list.highlightCancel()
		list.highlightCancel = nil
	}
	list.highlighted = -1
}
