package dom

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Position is an insertion point relative to a target node.
type Position string

const (
	BeforeBegin Position = "beforebegin"
	AfterBegin  Position = "afterbegin"
	BeforeEnd   Position = "beforeend"
	AfterEnd    Position = "afterend"
)

// ParsePosition maps a position name, case-insensitively, to a Position.
// The empty string is BeforeEnd.
func ParsePosition(s string) (Position, bool) {
	switch Position(strings.ToLower(strings.TrimSpace(s))) {
	case "", BeforeEnd:
		return BeforeEnd, true
	case BeforeBegin:
		return BeforeBegin, true
	case AfterBegin:
		return AfterBegin, true
	case AfterEnd:
		return AfterEnd, true
	}
	return BeforeEnd, false
}

var (
	ErrNoParent      = errors.New("dom: target has no parent")
	ErrNotContainer  = errors.New("dom: target cannot have children")
	ErrHierarchy     = errors.New("dom: node would contain itself")
	ErrBadPosition   = errors.New("dom: unknown insert position")
	errNilInsertNode = errors.New("dom: nil node")
)

// InsertAdjacent inserts child at pos relative to target. An attached child
// is moved. A fragment child contributes its children in order and is left
// empty.
func (d *Document) InsertAdjacent(target *html.Node, pos Position, child *html.Node) error {
	if target == nil || child == nil {
		return errNilInsertNode
	}

	var nodes []*html.Node
	if d.IsFragment(child) {
		for c := child.FirstChild; c != nil; c = c.NextSibling {
			nodes = append(nodes, c)
		}
	} else {
		nodes = []*html.Node{child}
	}
	for _, n := range nodes {
		if isInclusiveAncestor(n, target) {
			return ErrHierarchy
		}
	}

	var parent, ref *html.Node
	switch pos {
	case BeforeBegin:
		parent, ref = target.Parent, target
	case AfterBegin:
		parent, ref = target, target.FirstChild
	case BeforeEnd, "":
		parent = target
	case AfterEnd:
		parent, ref = target.Parent, target.NextSibling
	default:
		return fmt.Errorf("%w %q", ErrBadPosition, string(pos))
	}
	if parent == nil {
		return ErrNoParent
	}
	if !canHaveChildren(parent) {
		return ErrNotContainer
	}

	for _, n := range nodes {
		if n == ref {
			ref = ref.NextSibling
		}
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		if ref != nil {
			parent.InsertBefore(n, ref)
		} else {
			parent.AppendChild(n)
		}
	}
	d.touch()
	return nil
}

// InsertAdjacentText inserts a text node at pos relative to target.
func (d *Document) InsertAdjacentText(target *html.Node, pos Position, text string) error {
	return d.InsertAdjacent(target, pos, d.CreateText(text))
}

// InsertAdjacentHTML parses markup in the context of the node that will
// receive it and inserts the result at pos relative to target.
func (d *Document) InsertAdjacentHTML(target *html.Node, pos Position, markup string) error {
	if target == nil {
		return errNilInsertNode
	}
	ctx := target
	if pos == BeforeBegin || pos == AfterEnd {
		ctx = target.Parent
	}
	frag, err := d.ParseFragment(markup, ctx)
	if err != nil {
		return err
	}
	return d.InsertAdjacent(target, pos, frag)
}

// ParseFragment parses markup into a new fragment. The context element
// selects the tokenizer state; non-element contexts parse as body content.
func (d *Document) ParseFragment(markup string, context *html.Node) (*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), fragmentContext(context))
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	frag := d.CreateFragment()
	for _, n := range nodes {
		frag.AppendChild(n)
	}
	return frag, nil
}

// TextContent returns the concatenated text of n and its descendants.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}

// SetTextContent replaces the children of n with a single text node.
// An empty string leaves n empty.
func (d *Document) SetTextContent(n *html.Node, s string) {
	if n.Type == html.TextNode {
		n.Data = s
		return
	}
	d.RemoveChildren(n)
	if s != "" {
		n.AppendChild(d.CreateText(s))
	}
}

// InnerHTML serializes the children of n.
func InnerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return buf.String()
		}
	}
	return buf.String()
}

// OuterHTML serializes n. A fragment serializes as its children.
func OuterHTML(n *html.Node) string {
	if n.Type == html.DocumentNode {
		return InnerHTML(n)
	}
	var buf bytes.Buffer
	_ = html.Render(&buf, n)
	return buf.String()
}

// SetInnerHTML replaces the children of n with parsed markup.
func (d *Document) SetInnerHTML(n *html.Node, markup string) error {
	frag, err := d.ParseFragment(markup, n)
	if err != nil {
		return err
	}
	d.RemoveChildren(n)
	return d.InsertAdjacent(n, BeforeEnd, frag)
}

func fragmentContext(n *html.Node) *html.Node {
	if n == nil || n.Type != html.ElementNode {
		return &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	}
	// A copy keeps DataAtom consistent with Data, which the parser checks.
	return &html.Node{
		Type:      html.ElementNode,
		Data:      n.Data,
		DataAtom:  atom.Lookup([]byte(n.Data)),
		Namespace: n.Namespace,
	}
}

func canHaveChildren(n *html.Node) bool {
	return n.Type == html.ElementNode || n.Type == html.DocumentNode
}

func isInclusiveAncestor(a, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == a {
			return true
		}
	}
	return false
}
