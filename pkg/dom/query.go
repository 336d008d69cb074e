package dom

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Compile parses a CSS selector group.
func Compile(selector string) (cascadia.SelectorGroup, error) {
	group, err := cascadia.ParseGroup(selector)
	if err != nil {
		return nil, fmt.Errorf("dom: selector %q: %w", selector, err)
	}
	return group, nil
}

// QuerySelector returns the first descendant of scope matching selector.
// A nil scope searches the whole document.
func (d *Document) QuerySelector(scope *html.Node, selector string) (*html.Node, error) {
	group, err := Compile(selector)
	if err != nil {
		return nil, err
	}
	return cascadia.Query(d.scope(scope), group), nil
}

// QuerySelectorAll returns every descendant of scope matching selector.
func (d *Document) QuerySelectorAll(scope *html.Node, selector string) ([]*html.Node, error) {
	group, err := Compile(selector)
	if err != nil {
		return nil, err
	}
	return cascadia.QueryAll(d.scope(scope), group), nil
}

// GetElementByID returns the first element in the document with the id.
func (d *Document) GetElementByID(id string) *html.Node {
	if id == "" {
		return nil
	}
	if d.index != nil && d.index.Covers("id") {
		if found := d.index.Lookup("id", id); len(found) > 0 {
			return found[0]
		}
		return nil
	}
	var found *html.Node
	Walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			if v, ok := GetAttribute(n, "id"); ok && v == id {
				found = n
				return false
			}
		}
		return true
	})
	return found
}

// GetElementsByName returns every element in the document whose name
// attribute equals name.
func (d *Document) GetElementsByName(name string) []*html.Node {
	if d.index != nil && d.index.Covers("name") {
		return append([]*html.Node(nil), d.index.Lookup("name", name)...)
	}
	return collect(d.root, func(n *html.Node) bool {
		v, ok := GetAttribute(n, "name")
		return ok && v == name
	})
}

// GetElementsByClassName returns descendants of scope carrying every class
// in the space-separated list.
func (d *Document) GetElementsByClassName(scope *html.Node, names string) []*html.Node {
	want := strings.Fields(names)
	if len(want) == 0 {
		return nil
	}
	return collect(d.scope(scope), func(n *html.Node) bool {
		for _, c := range want {
			if !HasClass(n, c) {
				return false
			}
		}
		return true
	})
}

// GetElementsByTagName returns descendants of scope with the tag. "*"
// matches every element.
func (d *Document) GetElementsByTagName(scope *html.Node, tag string) []*html.Node {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return nil
	}
	return collect(d.scope(scope), func(n *html.Node) bool {
		return tag == "*" || n.Data == tag
	})
}

func (d *Document) scope(n *html.Node) *html.Node {
	if n == nil {
		return d.root
	}
	return n
}

// collect returns the element descendants of root accepted by keep.
func collect(root *html.Node, keep func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, func(n *html.Node) bool {
			if n.Type == html.ElementNode && keep(n) {
				out = append(out, n)
			}
			return true
		})
	}
	return out
}
