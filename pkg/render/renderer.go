package render

import (
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"github.com/coolbeans/pauta/pkg/sched"
	"github.com/coolbeans/pauta/pkg/structure"
	"github.com/coolbeans/pauta/pkg/view"
)

// DefaultChunkThreshold is the final-markup size, in bytes, above which
// injection switches from a single frame commit to progressive chunks.
const DefaultChunkThreshold = 64 * 1024

// Content is one rendering input for a view.
type Content struct {
	Mode ParseMode
	Raw  string
}

// viewState tracks the injection state machine for one view.
type viewState struct {
	lastKey   ContentKey
	committed bool
	ready     bool

	// generation invalidates in-flight frame/idle work when superseding
	// content arrives; pending holds their cancel handles.
	generation int
	pending    []sched.Cancel
}

// Renderer drives markup injection for any number of views against one
// shared cache pair and one scheduler. All methods run on the engine's
// single thread.
type Renderer struct {
	cache     *MarkupCache
	scheduler *sched.Scheduler
	events    view.Events
	log       *zap.SugaredLogger

	// convert is the legacy free-text conversion, indirected for tests.
	convert func(string) string

	chunkThreshold int
	states         map[string]*viewState
}

// NewRenderer creates a renderer. Nil events and logger default to no-ops;
// a nil cache gets a private default-sized pair.
func NewRenderer(cache *MarkupCache, scheduler *sched.Scheduler, events view.Events, log *zap.SugaredLogger) *Renderer {
	if cache == nil {
		cache = NewMarkupCache(0, 0)
	}
	if events == nil {
		events = view.NopEvents{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Renderer{
		cache:          cache,
		scheduler:      scheduler,
		events:         events,
		log:            log,
		convert:        structure.StructureText,
		chunkThreshold: DefaultChunkThreshold,
		states:         make(map[string]*viewState),
	}
}

// SetChunkThreshold overrides the progressive-injection threshold.
func (renderer *Renderer) SetChunkThreshold(threshold int) {
	if threshold > 0 {
		renderer.chunkThreshold = threshold
	}
}

// Ready reports whether the view's current content has been committed.
func (renderer *Renderer) Ready(viewID string) bool {
	state, ok := renderer.states[viewID]
	return ok && state.ready
}

func (renderer *Renderer) stateFor(viewID string) *viewState {
	state, ok := renderer.states[viewID]
	if !ok {
		state = &viewState{}
		renderer.states[viewID] = state
	}
	return state
}

func (renderer *Renderer) cancelPending(state *viewState) {
	for _, cancel := range state.pending {
		cancel()
	}
	state.pending = nil
	state.generation++
}

// Teardown cancels all pending work for a view. It must be called when a
// view is unmounted; stale chunks appended to a replaced view are a
// correctness bug, not just a leak.
func (renderer *Renderer) Teardown(targetView *view.View) {
	if state, ok := renderer.states[targetView.ID()]; ok {
		renderer.cancelPending(state)
		state.ready = false
		state.committed = false
	}
}

// Render runs the injection state machine for one view and content pair.
//
// Inactive views are cleared and marked not-ready; the re-render happens
// when the tab becomes visible again, against warm caches. A repeat of the
// last committed key with children still present is a pure cache hit with
// no work at all. Otherwise raw and sanitized markup are resolved through
// the shared caches and the result is committed on the next frame, in one
// pass or in chunks depending on size.
func (renderer *Renderer) Render(targetView *view.View, content Content) {
	state := renderer.stateFor(targetView.ID())

	if !targetView.Active() {
		renderer.cancelPending(state)
		targetView.Clear()
		state.ready = false
		state.committed = false
		return
	}

	key := KeyFor(content.Mode, content.Raw)
	if state.committed && state.lastKey == key && targetView.HasChildren() {
		state.ready = true
		return
	}

	final := renderer.resolveFinal(key, content)
	renderer.commit(targetView, state, key, final)
}

// resolveFinal produces the final markup for the content, reusing both
// cache tiers where possible.
func (renderer *Renderer) resolveFinal(key ContentKey, content Content) string {
	raw, ok := renderer.cache.Raw(key)
	if !ok {
		if content.Mode == ModeLegacyText {
			raw = renderer.convert(content.Raw)
		} else {
			raw = content.Raw
		}
		renderer.cache.StoreRaw(key, raw)
	}

	// Structured markup is trusted pipeline output; sanitizing it again
	// would only burn the budget the second cache exists to protect.
	if content.Mode == ModeStructured {
		return raw
	}
	if sanitized, ok := renderer.cache.Sanitized(key); ok {
		return sanitized
	}
	sanitized := Sanitize(raw)
	renderer.cache.StoreSanitized(key, sanitized)
	return sanitized
}

// commit injects final markup into the view. Superseding content always
// invalidates the prior generation's pending work before new work starts,
// so two generations' chunks never interleave.
func (renderer *Renderer) commit(targetView *view.View, state *viewState, key ContentKey, final string) {
	renderer.cancelPending(state)
	generation := state.generation
	state.lastKey = key
	state.committed = false
	state.ready = false

	chunks := splitChunks(final, renderer.chunkThreshold)

	cancel := renderer.scheduler.OnFrame(func() {
		if state.generation != generation {
			return
		}
		if err := targetView.SetContent(chunks[0]); err != nil {
			renderer.log.Warnw("markup injection failed, falling back to plain text",
				"view", targetView.ID(), "err", err)
			renderer.fallback(targetView, err)
			chunks = chunks[:1]
		}
		// Ready fires after the first chunk so downstream consumers can
		// proceed against partial content.
		state.committed = true
		state.ready = true
		renderer.events.ContentReady(targetView.ID())
		renderer.scheduleChunk(targetView, state, generation, chunks, 1)
	})
	state.pending = append(state.pending, cancel)
}

// scheduleChunk appends chunk index on the next idle slice and chains the
// one after it, one chunk per slice.
func (renderer *Renderer) scheduleChunk(targetView *view.View, state *viewState, generation int, chunks []string, index int) {
	if index >= len(chunks) {
		return
	}
	cancel := renderer.scheduler.OnIdle(func() {
		if state.generation != generation {
			return
		}
		if err := targetView.AppendContent(chunks[index]); err != nil {
			renderer.log.Warnw("chunk injection failed",
				"view", targetView.ID(), "chunk", index, "err", err)
			return
		}
		renderer.scheduleChunk(targetView, state, generation, chunks, index+1)
	})
	state.pending = append(state.pending, cancel)
}

// fallback replaces the view content with a plain-text error message. The
// view is still marked ready; a render failure must never leave a view
// stuck in a permanent loading state.
func (renderer *Renderer) fallback(targetView *view.View, cause error) {
	message := fmt.Sprintf("<p class=\"render-error\">Não foi possível exibir o documento: %s</p>",
		html.EscapeString(cause.Error()))
	if err := targetView.SetContent(message); err != nil {
		targetView.Clear()
	}
}

// splitChunks splits final markup on top-level section boundaries when it
// exceeds the threshold. Markup without such boundaries stays whole.
func splitChunks(markup string, threshold int) []string {
	if threshold <= 0 || len(markup) <= threshold {
		return []string{markup}
	}

	const openTag, closeTag = "<section", "</section>"
	var chunks []string
	depth := 0
	start := 0
	for index := 0; index < len(markup); {
		switch {
		case strings.HasPrefix(markup[index:], closeTag):
			depth--
			index += len(closeTag)
			if depth == 0 {
				chunks = append(chunks, markup[start:index])
				start = index
			}
		case strings.HasPrefix(markup[index:], openTag):
			depth++
			index += len(openTag)
		default:
			index++
		}
	}
	if start < len(markup) && strings.TrimSpace(markup[start:]) != "" {
		chunks = append(chunks, markup[start:])
	}
	if len(chunks) == 0 {
		return []string{markup}
	}
	return chunks
}
