package view

// Events is the sink through which the engine reports to its collaborators:
// the tab-persistence collaborator consumes scroll offsets, a navigation
// panel consumes the active anchor, and downstream consumers gate on
// content readiness. Implementations must be cheap and non-blocking; they
// run inline on the engine's single thread.
type Events interface {
	// ContentReady fires once per committed content key, at minimum once
	// per document.
	ContentReady(viewID string)

	// ScrollSettled fires once after a successful or abandoned scroll
	// attempt, with the offset the view came to rest at.
	ScrollSettled(viewID string, offset int)

	// ActiveAnchor fires when the entry currently in view changes.
	ActiveAnchor(anchorID string)
}

// NopEvents discards all signals.
type NopEvents struct{}

func (NopEvents) ContentReady(string)       {}
func (NopEvents) ScrollSettled(string, int) {}
func (NopEvents) ActiveAnchor(string)       {}
