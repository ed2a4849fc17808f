package scanner

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed page whose host-driven insertions are reported to
// observers. It is not safe for concurrent use: a Session owns it and only
// touches it from its event loop.
type Document struct {
	root      *html.Node
	observers map[int]MutationObserver
	nextID    int
}

// ParseDocument parses a full HTML page.
func ParseDocument(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return &Document{root: root, observers: make(map[int]MutationObserver)}, nil
}

// Root returns the document node.
func (d *Document) Root() *html.Node { return d.root }

// Body returns the <body> element. The HTML parser always synthesises one.
func (d *Document) Body() *html.Node {
	body := queryFirst(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Body
	})
	if body == nil {
		return d.root
	}
	return body
}

// Observe subscribes o to insertion batches. The returned function cancels
// the subscription.
func (d *Document) Observe(o MutationObserver) func() {
	id := d.nextID
	d.nextID++
	d.observers[id] = o
	return func() { delete(d.observers, id) }
}

// AppendHTML parses fragment in the context of parent and appends the
// resulting nodes to it as a single mutation batch.
func (d *Document) AppendHTML(parent *html.Node, fragment io.Reader) error {
	nodes, err := d.parseFragment(parent, fragment)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	d.notify(MutationRecord{Target: parent, AddedNodes: nodes})
	return nil
}

// ReplaceWithHTML swaps old for the nodes parsed from fragment, the way a host
// page re-renders a whole diff container.
func (d *Document) ReplaceWithHTML(old *html.Node, fragment io.Reader) error {
	parent := old.Parent
	if parent == nil {
		return fmt.Errorf("node <%s> is detached", old.Data)
	}
	nodes, err := d.parseFragment(parent, fragment)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		parent.InsertBefore(n, old)
	}
	parent.RemoveChild(old)
	d.notify(MutationRecord{Target: parent, AddedNodes: nodes, RemovedNodes: []*html.Node{old}})
	return nil
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

func (d *Document) parseFragment(parent *html.Node, fragment io.Reader) ([]*html.Node, error) {
	ctxNode := parent
	if ctxNode.Type != html.ElementNode {
		ctxNode = d.Body()
	}
	nodes, err := html.ParseFragment(fragment, ctxNode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fragment: %w", err)
	}
	return nodes, nil
}

func (d *Document) notify(record MutationRecord) {
	batch := []MutationRecord{record}
	for _, o := range d.observers {
		o.OnMutation(batch)
	}
}

// queryAll returns the descendants of n matching match, in document order.
func queryAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if match(c) {
				found = append(found, c)
			}
			walk(c)
		}
	}
	walk(n)
	return found
}

// queryFirst returns the first descendant of n matching match, or nil.
func queryFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if match(c) {
			return c
		}
		if found := queryFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func byTestID(id string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "data-testid") == id
	}
}

func byClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && hasClass(n, class)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// textContent concatenates every text node under n.
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for _, t := range textNodes(n) {
		sb.WriteString(t.Data)
	}
	return sb.String()
}

// textNodes returns the text nodes under n in document order.
func textNodes(n *html.Node) []*html.Node {
	return queryAll(n, func(c *html.Node) bool { return c.Type == html.TextNode })
}
