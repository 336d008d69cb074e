package spawn

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/spawn/pkg/dom"
	"github.com/vango-dev/spawn/pkg/shorthand"
)

// String children with these prefixes are inserted as parsed markup or
// as plain text. Unmarked strings are always plain text.
const (
	MarkupPrefix   = "__HTML__"
	FragmentPrefix = "__FRAG__"
)

// Markup marks s for insertion as HTML.
func Markup(s string) string { return MarkupPrefix + s }

// maxDepth bounds nested descriptors and child functions that return
// more child functions.
const maxDepth = 256

// Append classifies child and inserts it at pos (BeforeEnd when omitted):
//
//	[]any whose first item is a string   nested descriptor, built and inserted
//	"__HTML__..."                        parsed markup
//	"__FRAG__..."                        text
//	string, number                       text
//	*html.Node, *Node                    inserted (attached nodes move)
//	[]*Node, []*html.Node, []string      each item, in order
//	func(*Node) any, func() any          called; the result is appended
//	func(*Node)                          called for its side effects
//	nil                                  ignored
//
// Anything else is reported and ignored.
func (b *Builder) Append(n *Node, child any, pos ...dom.Position) *Node {
	if n == nil {
		return nil
	}
	at := position(pos)
	b.guard("append", func() {
		b.insert(n, n.n, at, contextFor(n.n, at), child, 0)
	})
	return n
}

// AppendAll inserts every item of a list at pos, in list order, so the
// items end up in the document in the order given for every position. A
// value that is not a list is appended on its own.
func (b *Builder) AppendAll(n *Node, children any, pos ...dom.Position) *Node {
	if n == nil {
		return nil
	}
	at := position(pos)
	b.guard("append", func() {
		ctx := contextFor(n.n, at)
		if list, ok := children.([]any); ok {
			b.insertList(n, n.n, at, ctx, list, 0)
			return
		}
		b.insert(n, n.n, at, ctx, children, 0)
	})
	return n
}

// insert places one child into "into". owner is the handle child
// functions receive; ctx is the element whose content model applies to
// parsed markup.
func (b *Builder) insert(owner *Node, into *html.Node, pos dom.Position, ctx *html.Node, child any, depth int) {
	if depth > maxDepth {
		b.warn("S005", "append", "", nil, "children nested deeper than %d levels", maxDepth)
		return
	}

	switch c := child.(type) {
	case nil:
		return

	case []any:
		if !isDescriptor(c) {
			b.insertList(owner, into, pos, ctx, c, depth+1)
			return
		}
		built := b.build(c, depth+1)
		b.place(into, pos, built.n)

	case string:
		b.insertString(into, pos, ctx, c)

	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		b.place(into, pos, b.doc.CreateText(dom.FormatValue(c)))

	case *html.Node:
		if c != nil {
			b.place(into, pos, c)
		}

	case *Node:
		if c != nil {
			b.place(into, pos, c.n)
		}

	case []*Node:
		items := make([]any, len(c))
		for i, x := range c {
			items[i] = x
		}
		b.insertList(owner, into, pos, ctx, items, depth)

	case []*html.Node:
		items := make([]any, len(c))
		for i, x := range c {
			items[i] = x
		}
		b.insertList(owner, into, pos, ctx, items, depth)

	case []string:
		items := make([]any, len(c))
		for i, x := range c {
			items[i] = x
		}
		b.insertList(owner, into, pos, ctx, items, depth)

	case shorthand.Descriptor:
		b.place(into, pos, b.Create(c).n)

	case func(*Node) any:
		b.insert(owner, into, pos, ctx, c(owner), depth+1)

	case func() any:
		b.insert(owner, into, pos, ctx, c(), depth+1)

	case func(*Node):
		c(owner)

	case fmt.Stringer:
		b.place(into, pos, b.doc.CreateText(c.String()))

	default:
		b.warn("S005", "append", fmt.Sprintf("%T", child), nil, "cannot append a %T", child)
	}
}

// insertList stages items in a fragment and inserts the fragment once, so
// list order survives positions like AfterBegin that would otherwise
// reverse it.
func (b *Builder) insertList(owner *Node, into *html.Node, pos dom.Position, ctx *html.Node, items []any, depth int) {
	frag := b.doc.CreateFragment()
	for _, item := range items {
		b.insert(owner, frag, dom.BeforeEnd, ctx, item, depth)
	}
	if frag.FirstChild == nil {
		return
	}
	b.place(into, pos, frag)
}

func (b *Builder) insertString(into *html.Node, pos dom.Position, ctx *html.Node, s string) {
	switch {
	case strings.HasPrefix(s, MarkupPrefix):
		frag, err := b.doc.ParseFragment(strings.TrimPrefix(s, MarkupPrefix), ctx)
		if err != nil {
			b.warn("S008", "append", "markup", err, "")
			return
		}
		b.place(into, pos, frag)
	case strings.HasPrefix(s, FragmentPrefix):
		b.place(into, pos, b.doc.CreateText(strings.TrimPrefix(s, FragmentPrefix)))
	default:
		b.place(into, pos, b.doc.CreateText(s))
	}
}

func (b *Builder) place(into *html.Node, pos dom.Position, child *html.Node) {
	if err := b.doc.InsertAdjacent(into, pos, child); err != nil {
		b.warn("S008", "append", string(pos), err, "")
	}
}

// guard reports a panic in fn instead of letting it escape.
func (b *Builder) guard(op string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			b.warn("S008", op, "", recovered(r), "")
		}
	}()
	fn()
}

// isDescriptor reports whether list reads as [tag, config?, children?]
// rather than as a list of children.
func isDescriptor(list []any) bool {
	if len(list) == 0 {
		return false
	}
	_, ok := list[0].(string)
	return ok
}

func position(pos []dom.Position) dom.Position {
	if len(pos) == 0 || pos[0] == "" {
		return dom.BeforeEnd
	}
	return pos[0]
}

// contextFor returns the element that will receive nodes inserted at pos.
func contextFor(target *html.Node, pos dom.Position) *html.Node {
	if pos == dom.BeforeBegin || pos == dom.AfterEnd {
		return target.Parent
	}
	return target
}
