package spawn

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/spawn/pkg/dom"
)

// Mount inserts toRender at the end of target. With clearFirst the target
// is emptied first.
//
// target may be a CSS selector (first match), a *Node or *html.Node, or
// nil. Selectors that match nothing, and nil, fall back to the body. When
// there is no body either, Mount reports S006 and does nothing.
//
// toRender is classified like a child of Append, so nodes, descriptor
// arrays, lists and marked strings all work. Mount reports whether a
// target was found.
func (b *Builder) Mount(toRender, target any, clearFirst bool) bool {
	mounted := false
	b.guard("mount", func() {
		dst := b.resolveTarget(target)
		if dst == nil {
			b.warn("S006", "mount", "", nil, "no match for %v and the document has no body", target)
			return
		}
		if clearFirst {
			b.doc.RemoveChildren(dst)
		}
		b.insert(b.wrap(dst), dst, dom.BeforeEnd, dst, toRender, 0)
		mounted = true
	})
	return mounted
}

// Render replaces the target's children with toRender.
func (b *Builder) Render(toRender, target any) bool {
	return b.Mount(toRender, target, true)
}

// AppendTo adds toRender after the target's existing children.
func (b *Builder) AppendTo(toRender, target any) bool {
	return b.Mount(toRender, target, false)
}

func (b *Builder) resolveTarget(target any) *html.Node {
	switch t := target.(type) {
	case *html.Node:
		if t != nil {
			return t
		}
	case *Node:
		if t != nil {
			return t.n
		}
	case string:
		if strings.TrimSpace(t) == "" {
			break
		}
		n, err := b.doc.QuerySelector(nil, t)
		if err != nil {
			b.warn("S007", "mount", t, err, "")
			break
		}
		if n != nil {
			return n
		}
	}
	return b.doc.Body()
}
