// Package view models the document container the engine renders into: a
// parsed markup tree with deterministic line-based geometry, a scroll
// position, and watchers that observe structural insertions. It replaces
// the browser DOM for this engine; collaborators receive the engine's
// output through the Events sink rather than a real page.
package view

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/coolbeans/pauta/pkg/sched"
)

// DefaultViewportHeight is the viewport height, in layout lines, used when
// a view is created without explicit geometry.
const DefaultViewportHeight = 40

// lineWidth is the layout width used to estimate how many lines a block
// occupies.
const lineWidth = 80

// lineBlocks are the element kinds that occupy vertical space in the
// line-based layout. Containers (section, div) position their children but
// add no height of their own.
var lineBlocks = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"p": true, "li": true,
}

// View is one browsing tab's document container.
type View struct {
	id             string
	active         bool
	scheduler      *sched.Scheduler
	root           *html.Node
	scrollOffset   int
	viewportHeight int

	watchers    map[int]func()
	nextWatcher int
}

// New creates a view bound to the scheduler. An empty id is replaced with
// a generated one; views start active.
func New(id string, scheduler *sched.Scheduler) *View {
	if id == "" {
		id = uuid.NewString()
	}
	return &View{
		id:             id,
		active:         true,
		scheduler:      scheduler,
		root:           newRoot(),
		viewportHeight: DefaultViewportHeight,
		watchers:       make(map[int]func()),
	}
}

func newRoot() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
}

// ID returns the view identifier used to namespace emitted signals.
func (view *View) ID() string { return view.id }

// Active reports whether the owning tab is currently visible.
func (view *View) Active() bool { return view.active }

// SetActive records tab visibility; rendering work is skipped while a view
// is inactive.
func (view *View) SetActive(active bool) { view.active = active }

// SetViewportHeight overrides the viewport height in layout lines.
func (view *View) SetViewportHeight(height int) {
	if height > 0 {
		view.viewportHeight = height
	}
}

// ViewportHeight returns the viewport height in layout lines.
func (view *View) ViewportHeight() int { return view.viewportHeight }

func parseFragment(fragment string) ([]*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	return html.ParseFragment(strings.NewReader(fragment), context)
}

// SetContent replaces the view's children with the parsed fragment and
// notifies watchers of the insertion batch.
func (view *View) SetContent(fragment string) error {
	nodes, err := parseFragment(fragment)
	if err != nil {
		return err
	}
	view.root = newRoot()
	for _, node := range nodes {
		view.root.AppendChild(node)
	}
	view.notifyWatchers()
	return nil
}

// AppendContent parses the fragment and appends it after the current
// children, notifying watchers once for the whole batch.
func (view *View) AppendContent(fragment string) error {
	nodes, err := parseFragment(fragment)
	if err != nil {
		return err
	}
	for _, node := range nodes {
		view.root.AppendChild(node)
	}
	view.notifyWatchers()
	return nil
}

// Clear removes all children. Removal is not a structural insertion, so
// watchers are not notified.
func (view *View) Clear() {
	view.root = newRoot()
	view.scrollOffset = 0
}

// HasChildren reports whether any content is committed to the view.
func (view *View) HasChildren() bool {
	return view.root.FirstChild != nil
}

// Document returns a query handle over the view's current tree.
func (view *View) Document() *goquery.Document {
	return goquery.NewDocumentFromNode(view.root)
}

// TextContent returns the concatenated text of the view.
func (view *View) TextContent() string {
	return view.Document().Text()
}

// Watch registers a callback observing structural insertions. Callbacks
// are delivered asynchronously through the scheduler, once per insertion
// batch. The returned function disconnects the watcher; a disconnected
// watcher never fires again, even for batches already queued.
func (view *View) Watch(onInsert func()) (disconnect func()) {
	watcherID := view.nextWatcher
	view.nextWatcher++
	view.watchers[watcherID] = onInsert
	return func() { delete(view.watchers, watcherID) }
}

func (view *View) notifyWatchers() {
	for watcherID := range view.watchers {
		id := watcherID
		view.scheduler.OnFrame(func() {
			if onInsert, ok := view.watchers[id]; ok {
				onInsert()
			}
		})
	}
}

// blockHeight estimates the layout lines occupied by a line block.
func blockHeight(node *html.Node) int {
	length := len([]rune(nodeText(node)))
	return 1 + length/lineWidth
}

func nodeText(node *html.Node) string {
	var builder strings.Builder
	var walk func(*html.Node)
	walk = func(current *html.Node) {
		if current.Type == html.TextNode {
			builder.WriteString(current.Data)
		}
		for child := current.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return builder.String()
}

// OffsetOf returns the layout top of the target node, or 0 when the node
// is not in the tree. Descendants of a line block share the block's top.
func (view *View) OffsetOf(target *html.Node) int {
	offset := 0
	top := 0
	var walk func(*html.Node) bool
	walk = func(current *html.Node) bool {
		if current == target {
			offset = top
			return true
		}
		for child := current.FirstChild; child != nil; child = child.NextSibling {
			if walk(child) {
				return true
			}
		}
		if current.Type == html.ElementNode && lineBlocks[current.Data] {
			top += blockHeight(current)
		}
		return false
	}
	walk(view.root)
	return offset
}

// ContentHeight returns the total layout height of the view's content.
func (view *View) ContentHeight() int {
	top := 0
	var walk func(*html.Node)
	walk = func(current *html.Node) {
		for child := current.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if current.Type == html.ElementNode && lineBlocks[current.Data] {
			top += blockHeight(current)
		}
	}
	walk(view.root)
	return top
}

// ScrollTo moves the scroll position, clamped to the scrollable range.
func (view *View) ScrollTo(offset int) {
	maxOffset := view.ContentHeight() - view.viewportHeight
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset < 0 {
		offset = 0
	}
	if offset > maxOffset {
		offset = maxOffset
	}
	view.scrollOffset = offset
}

// ScrollOffset returns the current scroll position.
func (view *View) ScrollOffset() int { return view.scrollOffset }

// AnchorAt returns the id of the last anchored element at or above the
// given offset — the entry a reader at that position is looking at.
// Returns an empty string when no anchored element precedes the offset.
func (view *View) AnchorAt(offset int) string {
	top := 0
	current := ""
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && top <= offset {
			if id := Attr(node, "id"); id != "" {
				current = id
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if node.Type == html.ElementNode && lineBlocks[node.Data] {
			top += blockHeight(node)
		}
	}
	walk(view.root)
	return current
}

// Attr returns the value of the named attribute, or an empty string.
func Attr(node *html.Node, name string) string {
	for _, attribute := range node.Attr {
		if attribute.Key == name {
			return attribute.Val
		}
	}
	return ""
}

// AddClass appends a class token to the node, once.
func AddClass(node *html.Node, class string) {
	for index, attribute := range node.Attr {
		if attribute.Key != "class" {
			continue
		}
		if hasToken(attribute.Val, class) {
			return
		}
		node.Attr[index].Val = strings.TrimSpace(attribute.Val + " " + class)
		return
	}
	node.Attr = append(node.Attr, html.Attribute{Key: "class", Val: class})
}

// RemoveClass removes a class token from the node, if present.
func RemoveClass(node *html.Node, class string) {
	for index, attribute := range node.Attr {
		if attribute.Key != "class" {
			continue
		}
		var kept []string
		for _, token := range strings.Fields(attribute.Val) {
			if token != class {
				kept = append(kept, token)
			}
		}
		node.Attr[index].Val = strings.Join(kept, " ")
		return
	}
}

// HasClass reports whether the node carries the class token.
func HasClass(node *html.Node, class string) bool {
	return hasToken(Attr(node, "class"), class)
}

func hasToken(classList, class string) bool {
	for _, token := range strings.Fields(classList) {
		if token == class {
			return true
		}
	}
	return false
}
