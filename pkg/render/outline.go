package render

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/xlab/treeprint"
	"golang.org/x/net/html"
)

// maxOutlineText is the widest text label, in terminal cells, before it
// is cut.
const maxOutlineText = 40

// Outline returns n and its subtree as an ASCII tree. Elements are
// labelled in shorthand (tag#id.class), text nodes are quoted and
// whitespace-only text is skipped.
func Outline(n *html.Node) string {
	if n == nil {
		return ""
	}
	tree := treeprint.NewWithRoot(Label(n))
	addChildren(tree, n)
	return tree.String()
}

func addChildren(tree treeprint.Tree, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" {
			continue
		}
		if c.FirstChild == nil {
			tree.AddNode(Label(c))
			continue
		}
		addChildren(tree.AddBranch(Label(c)), c)
	}
}

// Label describes one node in shorthand form.
func Label(n *html.Node) string {
	switch n.Type {
	case html.ElementNode:
		var b strings.Builder
		b.WriteString(n.Data)
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val != "" {
				b.WriteString("#" + a.Val)
			}
		}
		for _, a := range n.Attr {
			if a.Key == "class" {
				for _, c := range strings.Fields(a.Val) {
					b.WriteString("." + c)
				}
			}
		}
		return b.String()
	case html.TextNode:
		text := strings.Join(strings.Fields(n.Data), " ")
		if runewidth.StringWidth(text) > maxOutlineText {
			text = runewidth.Truncate(text, maxOutlineText, "") + "..."
		}
		return strconv.Quote(text)
	case html.DocumentNode:
		if n.Parent == nil && hasDoctypeOrHTML(n) {
			return "#document"
		}
		return "<>"
	case html.CommentNode:
		return "<!-- -->"
	case html.DoctypeNode:
		return "<!DOCTYPE " + n.Data + ">"
	}
	return "?"
}

func hasDoctypeOrHTML(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.DoctypeNode || c.Type == html.ElementNode && c.Data == "html" {
			return true
		}
	}
	return false
}
