package spawn

import (
	"golang.org/x/net/html"

	"github.com/vango-dev/spawn/pkg/dom"
	"github.com/vango-dev/spawn/pkg/selector"
	"github.com/vango-dev/spawn/pkg/shorthand"
)

// Node is a handle on one element or fragment made by a Builder. The
// handle stays valid after the node is mounted; a mounted fragment is
// simply empty.
type Node struct {
	b    *Builder
	n    *html.Node
	desc shorthand.Descriptor
}

// HTMLNode returns the underlying node.
func (n *Node) HTMLNode() *html.Node { return n.n }

// Descriptor returns the shorthand descriptor the node was created from.
// Wrapped nodes have a zero descriptor.
func (n *Node) Descriptor() shorthand.Descriptor { return n.desc }

// Builder returns the builder that made the handle.
func (n *Node) Builder() *Builder { return n.b }

func (n *Node) IsFragment() bool { return n.b.doc.IsFragment(n.n) }

// Apply runs configuration entries against the node.
func (n *Node) Apply(cfg any) *Node { return n.b.Apply(n, cfg) }

// Set runs one configuration entry.
func (n *Node) Set(key string, value any) *Node {
	n.b.applyEntry(n, key, value)
	return n
}

// Update applies configuration and appends children like Build does.
func (n *Node) Update(args ...any) *Node { return n.b.Update(n, args...) }

// Append appends each child in order.
func (n *Node) Append(children ...any) *Node {
	return n.b.AppendAll(n, children)
}

// Prepend inserts children before the first child, keeping their order.
func (n *Node) Prepend(children ...any) *Node {
	return n.b.AppendAll(n, children, dom.AfterBegin)
}

// Before inserts children as preceding siblings.
func (n *Node) Before(children ...any) *Node {
	return n.b.AppendAll(n, children, dom.BeforeBegin)
}

// After inserts children as following siblings.
func (n *Node) After(children ...any) *Node {
	return n.b.AppendAll(n, children, dom.AfterEnd)
}

// Text returns the text content.
func (n *Node) Text() string { return dom.TextContent(n.n) }

// SetText replaces the content with text.
func (n *Node) SetText(v any) *Node { return n.Set("text", v) }

// HTML returns the serialized node and its subtree. A fragment serializes
// as its children.
func (n *Node) HTML() string { return dom.OuterHTML(n.n) }

// InnerHTML returns the serialized children.
func (n *Node) InnerHTML() string { return dom.InnerHTML(n.n) }

// SetHTML replaces the content with parsed markup.
func (n *Node) SetHTML(markup string) *Node { return n.Set("html", markup) }

func (n *Node) Attr(name string) (string, bool) { return dom.GetAttribute(n.n, name) }

func (n *Node) SetAttr(name string, value any) *Node {
	return n.Set("attr", Config{{Key: name, Value: value}})
}

func (n *Node) Prop(name string) (any, bool) { return n.b.doc.Property(n.n, name) }

func (n *Node) SetProp(name string, value any) *Node {
	return n.Set("prop", Config{{Key: name, Value: value}})
}

func (n *Node) Style(property string) string { return dom.StyleProperty(n.n, property) }

func (n *Node) Data(key string) (string, bool) { return dom.Data(n.n, key) }

func (n *Node) ID() string {
	id, _ := dom.GetAttribute(n.n, "id")
	return id
}

func (n *Node) SetID(id string) *Node { return n.Set("id", id) }

func (n *Node) Classes() []string { return dom.Classes(n.n) }

func (n *Node) HasClass(class string) bool { return dom.HasClass(n.n, class) }

func (n *Node) AddClass(classes ...string) *Node { return n.Set("addClass", classes) }

func (n *Node) RemoveClass(classes ...string) *Node { return n.Set("removeClass", classes) }

// SetClassName replaces the class list.
func (n *Node) SetClassName(classes ...string) *Node { return n.Set("className", classes) }

// On binds handler to event. Handlers are dom.Listener, func(*dom.Event)
// or func().
func (n *Node) On(event string, handler any) *Node {
	return n.Set("on", Binding{Event: event, Handler: handler})
}

// Off removes a handler bound with On.
func (n *Node) Off(event string, handler any) *Node {
	return n.Set("off", Binding{Event: event, Handler: handler})
}

// Trigger dispatches an event at the node and reports whether its default
// action was left alone.
func (n *Node) Trigger(event string, detail any) bool {
	return n.b.doc.Dispatch(n.n, &dom.Event{Type: event, Detail: detail})
}

// Get calls fn with the underlying node, if fn is not nil, and returns it.
func (n *Node) Get(fn func(*html.Node)) *html.Node {
	if fn != nil {
		fn(n.n)
	}
	return n.n
}

// Children returns the element children.
func (n *Node) Children() []*html.Node { return dom.Children(n.n) }

// Query runs a prefix query under the node.
func (n *Node) Query(query string) []*html.Node {
	found, err := selector.Select(n.b.doc, query, n.n)
	if err != nil {
		n.b.warn("S007", "query", query, err, "")
	}
	return found
}

// Clone returns a detached deep copy. Listeners and expando properties
// are not copied.
func (n *Node) Clone() *Node {
	return &Node{b: n.b, n: cloneTree(n.n), desc: n.desc}
}

// Remove detaches the node from its parent.
func (n *Node) Remove() { n.b.doc.Remove(n.n) }

// Render replaces the target's children with this node.
func (n *Node) Render(target any) *Node {
	n.b.Render(n, target)
	return n
}

// AppendTo appends this node to the target.
func (n *Node) AppendTo(target any) *Node {
	n.b.AppendTo(n, target)
	return n
}

func cloneTree(src *html.Node) *html.Node {
	dst := &html.Node{
		Type:      src.Type,
		DataAtom:  src.DataAtom,
		Data:      src.Data,
		Namespace: src.Namespace,
	}
	if len(src.Attr) > 0 {
		dst.Attr = make([]html.Attribute, len(src.Attr))
		copy(dst.Attr, src.Attr)
	}
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		dst.AppendChild(cloneTree(c))
	}
	return dst
}
