package browse

import (
	"go.uber.org/zap"

	"github.com/coolbeans/pauta/pkg/anchor"
	"github.com/coolbeans/pauta/pkg/document"
	"github.com/coolbeans/pauta/pkg/navindex"
	"github.com/coolbeans/pauta/pkg/render"
	"github.com/coolbeans/pauta/pkg/sched"
	"github.com/coolbeans/pauta/pkg/scroll"
	"github.com/coolbeans/pauta/pkg/structure"
	"github.com/coolbeans/pauta/pkg/view"
)

// Engine is the composition root: one view, one renderer over the shared
// cache pair, one scroll resolver, one navigation list, all driven by a
// single deterministic scheduler. The engine sits between the renderer's
// signals and the external sink so that anchor scrolls fire only when the
// gate conditions hold.
type Engine struct {
	scheduler *sched.Scheduler
	log       *zap.SugaredLogger
	events    view.Events

	pipeline *structure.Pipeline
	renderer *render.Renderer
	resolver *scroll.Resolver
	list     *navindex.List
	view     *view.View

	kind document.Kind

	lastContent     render.Content
	haveLastContent bool

	// pendingTarget waits behind the gate; lastTarget suppresses
	// re-triggering the scroll the same search already caused.
	pendingTarget anchor.Target
	lastTarget    anchor.Target
	newSearch     bool
}

// NewEngine builds an engine from the config. The events sink receives
// the engine's outward signals; nil means discard. A nil logger disables
// logging.
func NewEngine(config Config, events view.Events, log *zap.SugaredLogger) (*Engine, error) {
	if events == nil {
		events = view.NopEvents{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	kind, err := config.Kind()
	if err != nil {
		return nil, err
	}

	scheduler := sched.New()
	engine := &Engine{
		scheduler: scheduler,
		log:       log,
		events:    events,
		kind:      kind,
	}

	engine.view = view.New("", scheduler)
	engine.view.SetViewportHeight(config.ViewportHeight)

	engine.pipeline = structure.NewPipeline(log)

	cache := render.NewMarkupCache(config.RawCacheSize, config.SanitizedCacheSize)
	engine.renderer = render.NewRenderer(cache, scheduler, engine, log)
	engine.renderer.SetChunkThreshold(config.ChunkThreshold)

	engine.resolver = scroll.NewResolver(scheduler, engine, log, config.scrollOptions())

	engine.list = navindex.NewList(navindex.Build(nil, kind), scheduler, log)
	engine.list.SetGeometry(config.ListItemHeight, config.ListViewport)
	engine.list.SetHighlightDuration(config.scrollOptions().HighlightDuration)

	return engine, nil
}

// Scheduler returns the engine's scheduler; callers drive it.
func (engine *Engine) Scheduler() *sched.Scheduler { return engine.scheduler }

// View returns the document view.
func (engine *Engine) View() *view.View { return engine.view }

// List returns the navigation list.
func (engine *Engine) List() *navindex.List { return engine.list }

// ShowPayload displays a document payload: the navigation index is
// rebuilt, the markup is rendered (or fetched from cache) into the view,
// and the query's anchor target is queued behind the scroll gate. An
// empty payload renders an empty document with no scroll and no error.
func (engine *Engine) ShowPayload(payload document.Payload) {
	engine.lastContent = engine.contentFor(payload)
	engine.haveLastContent = true

	engine.list.SetIndex(navindex.Build(payload.Chapters, engine.kind))
	if payload.Query != "" {
		engine.list.QueryChanged(payload.Query)
	}

	if target := engine.deriveTarget(payload); !target.Equal(engine.lastTarget) {
		engine.pendingTarget = target
		engine.newSearch = true
	}

	engine.renderer.Render(engine.view, engine.lastContent)
	// The repeat-key cache hit marks the view ready without emitting
	// ContentReady, so the gate is re-checked here as well.
	engine.maybeScroll()
}

// SetActive tracks tab visibility. Deactivation clears the view and
// cancels in-flight injection; reactivation re-renders the last content
// from the warm caches, which re-opens the scroll gate via ContentReady.
func (engine *Engine) SetActive(active bool) {
	engine.view.SetActive(active)
	if !engine.haveLastContent {
		return
	}
	engine.renderer.Render(engine.view, engine.lastContent)
}

// contentFor picks the parse mode: payload markup is external and must be
// sanitized; chapters go through the trusted structuring pipeline.
func (engine *Engine) contentFor(payload document.Payload) render.Content {
	if payload.Markup != "" {
		return render.Content{Mode: render.ModeFinalMarkup, Raw: payload.Markup}
	}
	if len(payload.Chapters) > 0 {
		return render.Content{Mode: render.ModeStructured, Raw: engine.pipeline.RenderDocument(payload.Chapters)}
	}
	return render.Content{Mode: render.ModeStructured, Raw: ""}
}

// deriveTarget builds the anchor candidates for the payload's query: the
// anchor of a position whose code matches the query exactly, then the id
// derived from the normalized query, then the chapter guessed from the
// query's first two digits.
func (engine *Engine) deriveTarget(payload document.Payload) anchor.Target {
	var candidates []string

	if normalized := anchor.NormalizeQuery(payload.Query); normalized != "" {
		if exact := findExactPosition(payload.Chapters, normalized); exact != "" {
			candidates = append(candidates, exact)
		}
		candidates = append(candidates, anchor.ToAnchorID(normalized))
	}
	if digits := anchor.Digits(payload.Query); len(digits) >= 2 {
		candidates = append(candidates, anchor.ToChapterAnchorID(digits[:2]))
	}
	return anchor.NewTarget(candidates...)
}

// findExactPosition returns the anchor of the first position, in chapter
// order, whose code normalizes to the query's position code.
func findExactPosition(chapters map[string]document.ChapterRecord, normalized string) string {
	for _, chapterNumber := range document.SortedChapterNumbers(chapters) {
		for _, position := range chapters[chapterNumber].Positions {
			if anchor.NormalizeQuery(position.Code) == normalized {
				return position.EffectiveAnchorID()
			}
		}
	}
	return ""
}

// maybeScroll runs the pending anchor scroll once every gate condition
// holds. The new-search flag is consumed on activation so settling once
// per search is guaranteed even when readiness signals repeat.
func (engine *Engine) maybeScroll() {
	ready := engine.renderer.Ready(engine.view.ID())
	if !scroll.Gate(!engine.pendingTarget.Empty(), engine.view.Active(), engine.newSearch, ready) {
		return
	}
	target := engine.pendingTarget
	engine.newSearch = false
	engine.lastTarget = target
	engine.resolver.Resolve(engine.view, target, func(ok bool) {
		if !ok {
			engine.log.Debugw("anchor scroll did not resolve", "candidates", target.Candidates())
		}
	})
}

// ContentReady re-checks the scroll gate and forwards the signal.
func (engine *Engine) ContentReady(viewID string) {
	engine.maybeScroll()
	engine.events.ContentReady(viewID)
}

// ScrollSettled forwards the signal and reports the anchor now at the top
// of the viewport as the active reading position.
func (engine *Engine) ScrollSettled(viewID string, offset int) {
	engine.events.ScrollSettled(viewID, offset)
	if anchorID := engine.view.AnchorAt(offset); anchorID != "" {
		engine.ActiveAnchor(anchorID)
	}
}

// ActiveAnchor keeps the navigation list in step with the reading
// position and forwards the signal.
func (engine *Engine) ActiveAnchor(anchorID string) {
	engine.list.SetActiveAnchor(anchorID)
	engine.events.ActiveAnchor(anchorID)
}
