package navindex

import (
	"testing"
	"time"

	"github.com/coolbeans/pauta/pkg/document"
	"github.com/coolbeans/pauta/pkg/sched"
)

// tallChapters builds enough rows that the list actually scrolls.
func tallChapters() map[string]document.ChapterRecord {
	positions := make([]document.PositionRecord, 0, 30)
	for minor := 10; minor < 40; minor++ {
		positions = append(positions, document.PositionRecord{
			Code: "84." + itoa(minor),
		})
	}
	return map[string]document.ChapterRecord{
		"84": {ChapterNumber: "84", Positions: positions},
	}
}

func itoa(value int) string {
	return string([]byte{byte('0' + value/10), byte('0' + value%10)})
}

func newTestList(t *testing.T) (*List, *sched.Scheduler) {
	t.Helper()
	scheduler := sched.New()
	list := NewList(Build(tallChapters(), document.KindPosition), scheduler, nil)
	list.SetGeometry(2, 10)
	return list, scheduler
}

func TestScrollToIndex_CentersAndClamps(t *testing.T) {
	list, _ := newTestList(t)

	list.ScrollToIndex(15)
	// Row top is 30; centering in a 10-line window with 2-line rows
	// shifts up by (10-2)/2 = 4.
	if got := list.ScrollOffset(); got != 26 {
		t.Errorf("centered offset = %d, want 26", got)
	}

	list.ScrollToIndex(0)
	if list.ScrollOffset() != 0 {
		t.Errorf("top row should clamp to 0, got %d", list.ScrollOffset())
	}

	list.ScrollToIndex(list.Index().Len() - 1)
	if got, want := list.ScrollOffset(), list.ContentHeight()-10; got != want {
		t.Errorf("bottom row should clamp to %d, got %d", want, got)
	}

	before := list.ScrollOffset()
	list.ScrollToIndex(1000)
	if list.ScrollOffset() != before {
		t.Error("out-of-range rows must be ignored")
	}
}

func TestVisibleRange_WindowsOnlyVisibleRows(t *testing.T) {
	list, _ := newTestList(t)

	first, last := list.VisibleRange()
	if first != 0 || last != 5 {
		t.Errorf("initial range = [%d,%d), want [0,5)", first, last)
	}
	if got := len(list.Window()); got != 5 {
		t.Errorf("window rows = %d, want 5", got)
	}

	list.ScrollToIndex(15)
	first, last = list.VisibleRange()
	if first != 13 || last != 18 {
		t.Errorf("centered range = [%d,%d), want [13,18)", first, last)
	}
}

func TestQueryChanged_DefersOneFrameAndHighlights(t *testing.T) {
	list, scheduler := newTestList(t)

	list.QueryChanged("84.20")
	if list.Selected() != -1 {
		t.Fatal("query reaction must be deferred one frame")
	}

	scheduler.Step()
	row, _ := list.Index().ResolveQuery("84.20")
	if list.Selected() != row {
		t.Errorf("selected = %d, want %d", list.Selected(), row)
	}
	if list.Highlighted() != row {
		t.Error("query hit should be transiently highlighted")
	}

	scheduler.Advance(DefaultHighlightDuration + time.Second)
	if list.Highlighted() != -1 {
		t.Error("highlight must fade after its duration")
	}
}

func TestQueryChanged_BurstCoalescesToLastQuery(t *testing.T) {
	list, scheduler := newTestList(t)

	list.QueryChanged("84.11")
	list.QueryChanged("84.25")
	scheduler.Run()

	row, _ := list.Index().ResolveQuery("84.25")
	if list.Selected() != row {
		t.Errorf("selected = %d, want the last query of the burst (%d)", list.Selected(), row)
	}
}

func TestQueryChanged_RepeatOfSatisfiedQueryKeepsManualScroll(t *testing.T) {
	list, scheduler := newTestList(t)

	list.QueryChanged("84.20")
	scheduler.Run()

	list.ScrollToIndex(0)
	list.QueryChanged("84.20")
	scheduler.Run()
	if list.ScrollOffset() != 0 {
		t.Error("a repeat of the satisfied query must not re-center the window")
	}

	list.QueryChanged("84.30")
	scheduler.Run()
	if list.ScrollOffset() == 0 {
		t.Error("a genuinely new query should move the window again")
	}
}

func TestQueryChanged_MissIsSilent(t *testing.T) {
	list, scheduler := newTestList(t)
	list.ScrollToIndex(15)
	offset := list.ScrollOffset()

	list.QueryChanged("99.99")
	scheduler.Run()

	if list.ScrollOffset() != offset || list.Selected() != -1 || list.Highlighted() != -1 {
		t.Error("an unresolvable query must change nothing")
	}
}

func TestSetActiveAnchor_TracksReadingPositionWithoutHighlight(t *testing.T) {
	list, scheduler := newTestList(t)

	list.SetActiveAnchor("pos-84-30")
	row, _ := list.Index().ResolveAnchor("pos-84-30")
	if list.Selected() != row {
		t.Errorf("selected = %d, want %d", list.Selected(), row)
	}
	if list.Highlighted() != -1 {
		t.Error("reading-position tracking must not highlight")
	}

	// The active anchor path leaves query tracking alone: the same query
	// later must still be treated as new.
	list.QueryChanged("84.30")
	scheduler.Run()
	if list.Highlighted() == -1 {
		t.Error("query tracking should be independent of anchor tracking")
	}

	list.SetActiveAnchor("pos-99-99")
	if list.Selected() != row {
		t.Error("unknown anchors must be ignored")
	}
}

func TestSetIndex_ResetsState(t *testing.T) {
	list, scheduler := newTestList(t)
	list.QueryChanged("84.20")
	scheduler.Run()

	list.SetIndex(Build(nil, document.KindPosition))
	if list.ScrollOffset() != 0 || list.Selected() != -1 || list.Highlighted() != -1 {
		t.Error("swapping the index must reset positional state")
	}
	list.QueryChanged("84.20")
	scheduler.Run()
	if list.Selected() != -1 {
		t.Error("queries against an empty index must stay silent")
	}
}
