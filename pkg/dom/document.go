package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document owns a node tree and the side tables that hang off its nodes.
type Document struct {
	root *html.Node

	listeners map[*html.Node][]binding
	props     map[*html.Node]map[string]any
	custom    map[string]struct{}
	index     *Index
}

// New returns an empty document with html, head and body elements.
func New() *Document {
	root := &html.Node{Type: html.DocumentNode}
	htmlEl := newElement("html")
	htmlEl.AppendChild(newElement("head"))
	htmlEl.AppendChild(newElement("body"))
	root.AppendChild(htmlEl)

	return newDocument(root)
}

// Parse reads a complete HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return newDocument(root), nil
}

func newDocument(root *html.Node) *Document {
	return &Document{
		root:      root,
		listeners: make(map[*html.Node][]binding),
		props:     make(map[*html.Node]map[string]any),
		custom:    make(map[string]struct{}),
	}
}

// Root returns the document node.
func (d *Document) Root() *html.Node { return d.root }

// DocumentElement returns the <html> element, or nil.
func (d *Document) DocumentElement() *html.Node {
	return childElement(d.root, atom.Html)
}

// Head returns the <head> element, or nil.
func (d *Document) Head() *html.Node {
	return childElement(d.DocumentElement(), atom.Head)
}

// Body returns the <body> element, or nil.
func (d *Document) Body() *html.Node {
	return childElement(d.DocumentElement(), atom.Body)
}

func childElement(n *html.Node, a atom.Atom) *html.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
	}
	return nil
}

// CreateElement returns a detached element. The tag is lower-cased.
func (d *Document) CreateElement(tag string) (*html.Node, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if !validElementName(tag) {
		return nil, fmt.Errorf("dom: invalid element name %q", tag)
	}
	return newElement(tag), nil
}

// CreateFragment returns an empty detached fragment.
func (d *Document) CreateFragment() *html.Node {
	return &html.Node{Type: html.DocumentNode}
}

// CreateText returns a detached text node.
func (d *Document) CreateText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// IsFragment reports whether n is a fragment created by this package.
// The document node itself is not a fragment.
func (d *Document) IsFragment(n *html.Node) bool {
	return n != nil && n.Type == html.DocumentNode && n != d.root
}

// Contains reports whether n is attached to the document tree.
func (d *Document) Contains(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.root {
			return true
		}
	}
	return false
}

// Remove detaches n from its parent.
func (d *Document) Remove(n *html.Node) {
	if n == nil || n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
	d.touch()
}

// RemoveChildren detaches every child of n.
func (d *Document) RemoveChildren(n *html.Node) {
	if n == nil || n.FirstChild == nil {
		return
	}
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
	d.touch()
}

// Children returns the element children of n.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Walk visits n and its descendants in document order until fn returns false.
func Walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !Walk(c, fn) {
			return false
		}
	}
	return true
}

func (d *Document) touch() {
	if d.index != nil {
		d.index.Invalidate()
	}
}

func newElement(tag string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

// validElementName accepts an ASCII letter followed by letters, digits,
// '-', '_', '.' or ':'.
func validElementName(name string) bool {
	if name == "" {
		return false
	}
	if c := name[0]; !(c >= 'a' && c <= 'z') {
		return false
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.', c == ':':
		default:
			return false
		}
	}
	return true
}
