package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Index maps attribute values to the elements that carry them. It is built
// on first lookup after an invalidation. Mutations made through the
// Document invalidate it; callers that mutate nodes directly must call
// Invalidate themselves.
type Index struct {
	root    *html.Node
	attrs   map[string]struct{}
	entries map[string]map[string][]*html.Node
	valid   bool
	builds  int
}

// EnableIndex attaches an index over the given attribute names. With no
// names, id and name are indexed. Calling it again replaces the index.
func (d *Document) EnableIndex(attrs ...string) *Index {
	if len(attrs) == 0 {
		attrs = []string{"id", "name"}
	}
	ix := &Index{root: d.root, attrs: make(map[string]struct{}, len(attrs))}
	for _, a := range attrs {
		ix.attrs[strings.ToLower(a)] = struct{}{}
	}
	d.index = ix
	return ix
}

// DisableIndex detaches the index.
func (d *Document) DisableIndex() { d.index = nil }

// Index returns the attached index, or nil.
func (d *Document) Index() *Index { return d.index }

// Invalidate marks the index stale.
func (ix *Index) Invalidate() {
	ix.valid = false
	ix.entries = nil
}

// Build walks the tree and fills the index.
func (ix *Index) Build() {
	ix.entries = make(map[string]map[string][]*html.Node, len(ix.attrs))
	for a := range ix.attrs {
		ix.entries[a] = make(map[string][]*html.Node)
	}
	Walk(ix.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		for _, a := range n.Attr {
			if byValue, ok := ix.entries[a.Key]; ok && a.Namespace == "" {
				byValue[a.Val] = append(byValue[a.Val], n)
			}
		}
		return true
	})
	ix.valid = true
	ix.builds++
}

// Builds returns how many times the index has been built.
func (ix *Index) Builds() int { return ix.builds }

// Covers reports whether attr is indexed.
func (ix *Index) Covers(attr string) bool {
	_, ok := ix.attrs[strings.ToLower(attr)]
	return ok
}

// Lookup returns the elements whose attr equals value, in document order.
func (ix *Index) Lookup(attr, value string) []*html.Node {
	if !ix.valid {
		ix.Build()
	}
	return ix.entries[strings.ToLower(attr)][value]
}
