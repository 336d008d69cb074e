package spawn

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/spawn/pkg/dom"
)

type handler func(b *Builder, n *Node, v any) error

type capability struct {
	fn handler

	// lazy capabilities receive the result of a derived value instead of
	// the function itself.
	lazy bool
}

var (
	capabilities map[string]capability
	aliases      map[string]string
)

// The table is filled in init because handlers reach Apply through the
// append engine.
func init() {
	capabilities = map[string]capability{
		"attr":        {fn: applyAttr, lazy: true},
		"prop":        {fn: applyProp, lazy: true},
		"style":       {fn: applyStyle, lazy: true},
		"data":        {fn: applyData, lazy: true},
		"text":        {fn: applyText, lazy: true},
		"html":        {fn: applyHTML, lazy: true},
		"on":          {fn: applyOn, lazy: true},
		"off":         {fn: applyOff, lazy: true},
		"className":   {fn: applyClassName, lazy: true},
		"addClass":    {fn: applyAddClass, lazy: true},
		"removeClass": {fn: applyRemoveClass, lazy: true},
		"id":          {fn: applyID, lazy: true},
		"children":    {fn: applyChildren, lazy: true},
		"func":        {fn: applyFunc},
	}
	aliases = map[string]string{
		"attrs":       "attr",
		"props":       "prop",
		"css":         "style",
		"dataset":     "data",
		"textContent": "text",
		"innerHTML":   "html",
		"classes":     "className",
		"class":       "className",
		"append":      "children",
		"fn":          "func",
		"call":        "func",
		"apply":       "func",
	}
}

func lookup(key string) (capability, bool) {
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	c, ok := capabilities[key]
	return c, ok
}

// Canonical returns the capability name key resolves to, or "" if key is
// neither a capability nor an alias.
func Canonical(key string) string {
	if canonical, ok := aliases[key]; ok {
		return canonical
	}
	if _, ok := capabilities[key]; ok {
		return key
	}
	return ""
}

// Capabilities returns the canonical capability names, sorted.
func Capabilities() []string {
	names := make([]string, 0, len(capabilities))
	for name := range capabilities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func applyAttr(b *Builder, n *Node, v any) error {
	cfg, ok := asConfig(v)
	if !ok {
		return fmt.Errorf("attr expects a mapping, got %T", v)
	}
	b.each(n, "attr", cfg, func(e Entry) error {
		if e.Value == nil {
			b.doc.RemoveAttribute(n.n, e.Key)
			return nil
		}
		return b.doc.SetAttribute(n.n, e.Key, dom.FormatValue(e.Value))
	})
	return nil
}

func applyProp(b *Builder, n *Node, v any) error {
	cfg, ok := asConfig(v)
	if !ok {
		return fmt.Errorf("prop expects a mapping, got %T", v)
	}
	b.each(n, "prop", cfg, func(e Entry) error {
		return b.doc.SetProperty(n.n, e.Key, e.Value)
	})
	return nil
}

// applyStyle replaces the whole style attribute with a string, or sets
// properties one by one from a mapping.
func applyStyle(b *Builder, n *Node, v any) error {
	if s, ok := v.(string); ok {
		if strings.TrimSpace(s) == "" {
			b.doc.RemoveAttribute(n.n, "style")
			return nil
		}
		return b.doc.SetAttribute(n.n, "style", s)
	}
	cfg, ok := asConfig(v)
	if !ok {
		return fmt.Errorf("style expects a string or mapping, got %T", v)
	}
	if n.n.Type != html.ElementNode {
		return dom.ErrNotContainer
	}
	for _, e := range cfg {
		b.doc.SetStyleProperty(n.n, e.Key, dom.FormatValue(e.Value))
	}
	return nil
}

func applyData(b *Builder, n *Node, v any) error {
	cfg, ok := asConfig(v)
	if !ok {
		return fmt.Errorf("data expects a mapping, got %T", v)
	}
	b.each(n, "data", cfg, func(e Entry) error {
		return b.doc.SetData(n.n, e.Key, dom.FormatValue(e.Value))
	})
	return nil
}

func applyText(b *Builder, n *Node, v any) error {
	b.doc.SetTextContent(n.n, dom.FormatValue(v))
	return nil
}

func applyHTML(b *Builder, n *Node, v any) error {
	return b.doc.SetInnerHTML(n.n, dom.FormatValue(v))
}

func applyOn(b *Builder, n *Node, v any) error {
	list, err := bindings(v)
	if err != nil {
		return err
	}
	for _, bd := range list {
		if err := b.doc.On(n.n, bd.Event, bd.Handler); err != nil {
			b.warn("S002", "apply", "on."+bd.Event, err, "")
		}
	}
	return nil
}

func applyOff(b *Builder, n *Node, v any) error {
	list, err := bindings(v)
	if err != nil {
		return err
	}
	for _, bd := range list {
		if _, err := b.doc.Off(n.n, bd.Event, bd.Handler); err != nil {
			b.warn("S002", "apply", "off."+bd.Event, err, "")
		}
	}
	return nil
}

// applyClassName replaces the class list wholesale.
func applyClassName(b *Builder, n *Node, v any) error {
	classes, err := classList(v)
	if err != nil {
		return err
	}
	return b.doc.SetAttribute(n.n, "class", strings.Join(classes, " "))
}

func applyAddClass(b *Builder, n *Node, v any) error {
	classes, err := classList(v)
	if err != nil {
		return err
	}
	b.doc.AddClass(n.n, classes...)
	return nil
}

func applyRemoveClass(b *Builder, n *Node, v any) error {
	classes, err := classList(v)
	if err != nil {
		return err
	}
	b.doc.RemoveClass(n.n, classes...)
	return nil
}

func applyID(b *Builder, n *Node, v any) error {
	if v == nil {
		b.doc.RemoveAttribute(n.n, "id")
		return nil
	}
	return b.doc.SetAttribute(n.n, "id", dom.FormatValue(v))
}

func applyChildren(b *Builder, n *Node, v any) error {
	b.AppendAll(n, v)
	return nil
}

// applyFunc is the escape hatch: the function receives the node.
func applyFunc(b *Builder, n *Node, v any) error {
	switch fn := v.(type) {
	case func(*Node):
		fn(n)
	case func(*Node) any:
		fn(n)
	case func(*Node) error:
		return fn(n)
	case func(*html.Node):
		fn(n.n)
	case func():
		fn()
	default:
		return fmt.Errorf("func expects a function, got %T", v)
	}
	return nil
}

// each applies fn to every entry, reporting failures per entry so one bad
// entry does not stop the rest.
func (b *Builder) each(n *Node, key string, cfg Config, fn func(Entry) error) {
	for _, e := range cfg {
		if err := fn(e); err != nil {
			b.warn("S002", "apply", key+"."+e.Key, err, "")
		}
	}
}

// classList flattens a string, []string or []any of class names,
// dropping duplicates.
func classList(v any) ([]string, error) {
	var raw []string
	switch x := v.(type) {
	case nil:
	case string:
		raw = strings.Fields(x)
	case []string:
		for _, s := range x {
			raw = append(raw, strings.Fields(s)...)
		}
	case []any:
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("class names must be strings, got %T", item)
			}
			raw = append(raw, strings.Fields(s)...)
		}
	default:
		return nil, fmt.Errorf("class names must be a string or list, got %T", v)
	}

	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, c := range raw {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}
