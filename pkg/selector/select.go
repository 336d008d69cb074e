package selector

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/spawn/internal/errors"
	"github.com/vango-dev/spawn/pkg/dom"
	"github.com/vango-dev/spawn/pkg/vocab"
)

// Select resolves query and runs it against doc. A nil scope searches the
// whole document. Invalid CSS yields no matches and an S007 error.
func Select(doc *dom.Document, query string, scope *html.Node) ([]*html.Node, error) {
	return Run(doc, Resolve(query), scope)
}

// Run executes a resolved query.
func Run(doc *dom.Document, q Query, scope *html.Node) ([]*html.Node, error) {
	switch q.Strategy {
	case ByID:
		if n := byID(doc, q.Residual, scope); n != nil {
			return []*html.Node{n}, nil
		}
		return nil, nil

	case ByClass:
		return doc.GetElementsByClassName(scope, q.Residual), nil

	case ByName:
		found := doc.GetElementsByName(q.Residual)
		if scope == nil {
			return found, nil
		}
		return within(found, scope), nil

	case ByTag:
		return doc.GetElementsByTagName(scope, TagName(q.Residual)), nil

	case ByAttr:
		return queryAll(doc, scope, "["+q.Residual+"]")

	case ByValue:
		return byValue(doc, q.Residual, scope), nil

	case BySelector:
		n, err := doc.QuerySelector(scope, q.Residual)
		if err != nil {
			return nil, invalid(q, err)
		}
		if n == nil {
			return nil, nil
		}
		return []*html.Node{n}, nil
	}
	return queryAll(doc, scope, q.Residual)
}

// First returns the first match, or nil.
func First(doc *dom.Document, query string, scope *html.Node) (*html.Node, error) {
	found, err := Select(doc, query, scope)
	if len(found) == 0 {
		return nil, err
	}
	return found[0], err
}

// Last returns the last match, or nil.
func Last(doc *dom.Document, query string, scope *html.Node) (*html.Node, error) {
	found, err := Select(doc, query, scope)
	if len(found) == 0 {
		return nil, err
	}
	return found[len(found)-1], err
}

// Scope resolves a context selector to the node queries should search
// under. An empty context or one that matches nothing yields nil, which
// searches the whole document.
func Scope(doc *dom.Document, context string) *html.Node {
	if strings.TrimSpace(context) == "" {
		return nil
	}
	n, err := doc.QuerySelector(nil, context)
	if err != nil {
		return nil
	}
	return n
}

// TagName strips the decoration a tag query may carry, as in "<p>" or
// "</ p".
func TagName(s string) string {
	s = strings.TrimLeft(s, " \t\n\r\f</|:")
	return strings.TrimRight(s, " \t\n\r\f>")
}

// Value returns the current value of a value-bearing element.
func Value(n *html.Node) string {
	switch n.Data {
	case "textarea":
		return dom.TextContent(n)
	case "select":
		var first, selected *html.Node
		dom.Walk(n, func(c *html.Node) bool {
			if c.Type == html.ElementNode && c.Data == "option" {
				if first == nil {
					first = c
				}
				if dom.HasAttribute(c, "selected") {
					selected = c
					return false
				}
			}
			return true
		})
		if selected == nil {
			selected = first
		}
		if selected == nil {
			return ""
		}
		if v, ok := dom.GetAttribute(selected, "value"); ok {
			return v
		}
		return strings.TrimSpace(dom.TextContent(selected))
	}
	v, _ := dom.GetAttribute(n, "value")
	return v
}

func byID(doc *dom.Document, id string, scope *html.Node) *html.Node {
	if scope == nil {
		return doc.GetElementByID(id)
	}
	var found *html.Node
	for c := scope.FirstChild; c != nil && found == nil; c = c.NextSibling {
		dom.Walk(c, func(n *html.Node) bool {
			if v, ok := dom.GetAttribute(n, "id"); ok && n.Type == html.ElementNode && v == id {
				found = n
				return false
			}
			return true
		})
	}
	return found
}

func byValue(doc *dom.Document, value string, scope *html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range doc.GetElementsByTagName(scope, "*") {
		if !vocab.IsValueElement(n.Data) {
			continue
		}
		if v := Value(n); v != "" && v == value {
			out = append(out, n)
		}
	}
	return out
}

func queryAll(doc *dom.Document, scope *html.Node, css string) ([]*html.Node, error) {
	found, err := doc.QuerySelectorAll(scope, css)
	if err != nil {
		return nil, invalid(Query{Strategy: ByAll, Residual: css}, err)
	}
	return found, nil
}

func within(nodes []*html.Node, scope *html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range nodes {
		for p := n.Parent; p != nil; p = p.Parent {
			if p == scope {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

func invalid(q Query, err error) error {
	return errors.New("S007").
		WithDetailf("%s query %q", q.Strategy, q.Residual).
		Wrap(err)
}
