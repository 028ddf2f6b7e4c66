// Package scroll resolves anchor targets against a live view and scrolls
// to them. Resolution is robust against content that arrives after the
// request: a miss arms a mutation watch with a bounded timeout, and a hit
// is re-resolved after a settle delay so late insertions above the target
// cannot leave the viewport on stale coordinates.
package scroll

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/coolbeans/pauta/pkg/anchor"
	"github.com/coolbeans/pauta/pkg/sched"
	"github.com/coolbeans/pauta/pkg/view"
)

// Default timing for highlight, settle re-resolution and the mutation
// watch. Durations are virtual-clock time on the engine scheduler.
const (
	DefaultHighlightDuration = 2 * time.Second
	DefaultSettleDelay       = 150 * time.Millisecond
	DefaultWatchTimeout      = 5 * time.Second
)

// DefaultHighlightClass marks the resolved element while the transient
// highlight is active.
const DefaultHighlightClass = "anchor-highlight"

// Options configures a Resolver.
type Options struct {
	// TagPriority ranks element kinds competing for the same anchor id.
	// Elements whose tag is absent from the map are not acceptable
	// targets and are discarded.
	TagPriority map[string]int

	HighlightClass    string
	HighlightDuration time.Duration
	SettleDelay       time.Duration
	WatchTimeout      time.Duration
}

// DefaultOptions ranks headings above text blocks and text blocks above
// generic containers, so a duplicated id resolves to the element a reader
// would call "the entry" rather than its wrapper.
func DefaultOptions() Options {
	return Options{
		TagPriority: map[string]int{
			"h4": 60, "h3": 50, "h2": 40, "h1": 30,
			"p": 20, "li": 15,
			"span": 5, "div": 1, "section": 1,
		},
		HighlightClass:    DefaultHighlightClass,
		HighlightDuration: DefaultHighlightDuration,
		SettleDelay:       DefaultSettleDelay,
		WatchTimeout:      DefaultWatchTimeout,
	}
}

func (options Options) withDefaults() Options {
	defaults := DefaultOptions()
	if options.TagPriority == nil {
		options.TagPriority = defaults.TagPriority
	}
	if options.HighlightClass == "" {
		options.HighlightClass = defaults.HighlightClass
	}
	if options.HighlightDuration <= 0 {
		options.HighlightDuration = defaults.HighlightDuration
	}
	if options.SettleDelay <= 0 {
		options.SettleDelay = defaults.SettleDelay
	}
	if options.WatchTimeout <= 0 {
		options.WatchTimeout = defaults.WatchTimeout
	}
	return options
}

// activation is one in-flight resolution attempt. A resolver holds at
// most one; a new Resolve abandons the previous activation first.
type activation struct {
	target   anchor.Target
	view     *view.View
	done     func(bool)
	finished bool

	disconnect func()
	cancels    []sched.Cancel
}

// Resolver scrolls a view to an anchor target, waiting for the target to
// appear when it is not in the tree yet. Each activation completes exactly
// once: one done callback, and one ScrollSettled signal on success.
type Resolver struct {
	scheduler *sched.Scheduler
	events    view.Events
	log       *zap.SugaredLogger
	options   Options

	current *activation
}

// NewResolver creates a resolver. Nil events and logger default to no-ops.
func NewResolver(scheduler *sched.Scheduler, events view.Events, log *zap.SugaredLogger, options Options) *Resolver {
	if events == nil {
		events = view.NopEvents{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Resolver{
		scheduler: scheduler,
		events:    events,
		log:       log,
		options:   options.withDefaults(),
	}
}

// Gate reports whether a pending scroll request may run. All four
// conditions must hold; callers re-check the gate whenever one of them
// changes rather than queueing a scroll that would misfire.
func Gate(targetPresent, tabActive, newSearch, contentReady bool) bool {
	return targetPresent && tabActive && newSearch && contentReady
}

// Resolve starts resolving the target against the view. A resolution
// already in flight is abandoned and completed with false before the new
// one starts. The done callback is optional.
func (resolver *Resolver) Resolve(targetView *view.View, target anchor.Target, done func(bool)) {
	resolver.abandon()

	if done == nil {
		done = func(bool) {}
	}
	current := &activation{target: target, view: targetView, done: done}
	resolver.current = current

	if target.Empty() {
		resolver.finish(current, false)
		return
	}
	if node := resolver.findBest(current); node != nil {
		resolver.scrollAndSettle(current, node)
		return
	}
	resolver.armWatch(current)
}

// abandon completes the in-flight activation, if any, with failure.
func (resolver *Resolver) abandon() {
	if resolver.current != nil && !resolver.current.finished {
		resolver.finish(resolver.current, false)
	}
	resolver.current = nil
}

// finish completes an activation exactly once, tearing down its watcher
// and pending tasks. The transient highlight removal is deliberately not
// part of the teardown; it outlives the activation. Settling is reported
// for abandoned attempts too, at whatever offset the view holds, so the
// position-persistence collaborator always hears back.
func (resolver *Resolver) finish(current *activation, ok bool) {
	if current.finished {
		return
	}
	current.finished = true
	if current.disconnect != nil {
		current.disconnect()
		current.disconnect = nil
	}
	for _, cancel := range current.cancels {
		cancel()
	}
	current.cancels = nil
	current.done(ok)
	resolver.events.ScrollSettled(current.view.ID(), current.view.ScrollOffset())
}

// findBest resolves the target's candidate ids in order. For one id, all
// carriers compete by tag priority; the first-encountered element wins
// ties, and elements with unranked tags are discarded.
func (resolver *Resolver) findBest(current *activation) *html.Node {
	document := current.view.Document()
	for _, candidate := range current.target.Candidates() {
		var best *html.Node
		bestRank := 0
		for _, node := range document.Find(`[id="` + candidate + `"]`).Nodes {
			rank, acceptable := resolver.options.TagPriority[node.Data]
			if !acceptable {
				resolver.log.Debugw("discarding anchor carrier with unranked tag",
					"anchor", candidate, "tag", node.Data)
				continue
			}
			if best == nil || rank > bestRank {
				best = node
				bestRank = rank
			} else if rank == bestRank {
				resolver.log.Debugw("duplicate anchor id loses on document order",
					"anchor", candidate, "tag", node.Data)
			}
		}
		if best != nil {
			return best
		}
	}
	return nil
}

// scrollAndSettle scrolls to the node, highlights it, and after the
// settle delay re-resolves the target and corrects the scroll position.
// Content injected above the target between the two passes would
// otherwise leave the viewport pointing at the wrong entry.
func (resolver *Resolver) scrollAndSettle(current *activation, node *html.Node) {
	current.view.ScrollTo(current.view.OffsetOf(node))
	resolver.highlight(node)

	cancel := resolver.scheduler.After(resolver.options.SettleDelay, func() {
		if current.finished {
			return
		}
		final := node
		if resolved := resolver.findBest(current); resolved != nil {
			final = resolved
		}
		current.view.ScrollTo(current.view.OffsetOf(final))
		resolver.finish(current, true)
	})
	current.cancels = append(current.cancels, cancel)
}

// highlight applies the transient highlight class and schedules its
// removal. Removal is keyed to the node, not the activation, so a
// superseding resolution cannot strand a stale highlight.
func (resolver *Resolver) highlight(node *html.Node) {
	view.AddClass(node, resolver.options.HighlightClass)
	resolver.scheduler.After(resolver.options.HighlightDuration, func() {
		view.RemoveClass(node, resolver.options.HighlightClass)
	})
}

// armWatch retries resolution on every insertion batch until the target
// appears or the watch times out.
func (resolver *Resolver) armWatch(current *activation) {
	current.disconnect = current.view.Watch(func() {
		if current.finished {
			return
		}
		node := resolver.findBest(current)
		if node == nil {
			return
		}
		current.disconnect()
		current.disconnect = nil
		for _, cancel := range current.cancels {
			cancel() // the watch timeout must not race the settle pass
		}
		current.cancels = nil
		resolver.scrollAndSettle(current, node)
	})

	cancel := resolver.scheduler.After(resolver.options.WatchTimeout, func() {
		if current.finished {
			return
		}
		resolver.log.Debugw("anchor never appeared before the watch timeout",
			"view", current.view.ID(), "candidates", current.target.Candidates())
		resolver.finish(current, false)
	})
	current.cancels = append(current.cancels, cancel)
}
