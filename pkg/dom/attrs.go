package dom

import (
	"fmt"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
)

// GetAttribute returns the value of the named attribute.
func GetAttribute(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	name = strings.ToLower(name)
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttribute reports whether the named attribute is present.
func HasAttribute(n *html.Node, name string) bool {
	_, ok := GetAttribute(n, name)
	return ok
}

// SetAttribute sets or replaces an attribute on an element.
func (d *Document) SetAttribute(n *html.Node, name, value string) error {
	if n == nil || n.Type != html.ElementNode {
		return ErrNotContainer
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if !ValidAttributeName(name) {
		return fmt.Errorf("dom: invalid attribute name %q", name)
	}
	defer d.touch()
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			n.Attr[i].Val = value
			return nil
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
	return nil
}

// ValidAttributeName reports whether name can be serialized as an
// attribute name.
func ValidAttributeName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r <= ' ', r == 0x7f:
			return false
		case strings.ContainsRune("\"'<>/=`", r):
			return false
		}
	}
	return true
}

// RemoveAttribute deletes the named attribute.
func (d *Document) RemoveAttribute(n *html.Node, name string) {
	if n == nil {
		return
	}
	name = strings.ToLower(name)
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			d.touch()
			return
		}
	}
}

// Classes returns the class list of n.
func Classes(n *html.Node) []string {
	v, _ := GetAttribute(n, "class")
	return strings.Fields(v)
}

// HasClass reports whether n carries the class.
func HasClass(n *html.Node, class string) bool {
	for _, c := range Classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass adds classes that are not already present, keeping order.
func (d *Document) AddClass(n *html.Node, classes ...string) {
	list := Classes(n)
	seen := make(map[string]struct{}, len(list))
	for _, c := range list {
		seen[c] = struct{}{}
	}
	changed := false
	for _, c := range classes {
		for _, f := range strings.Fields(c) {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			list = append(list, f)
			changed = true
		}
	}
	if changed {
		d.SetAttribute(n, "class", strings.Join(list, " "))
	}
}

// RemoveClass removes classes. The attribute is kept even when it ends up
// empty.
func (d *Document) RemoveClass(n *html.Node, classes ...string) {
	drop := make(map[string]struct{})
	for _, c := range classes {
		for _, f := range strings.Fields(c) {
			drop[f] = struct{}{}
		}
	}
	list := Classes(n)
	kept := list[:0]
	for _, c := range list {
		if _, ok := drop[c]; !ok {
			kept = append(kept, c)
		}
	}
	if len(kept) != len(list) {
		d.SetAttribute(n, "class", strings.Join(kept, " "))
	}
}

// Style returns the inline style declarations of n.
func Style(n *html.Node) []*css.Declaration {
	text, ok := GetAttribute(n, "style")
	if !ok || strings.TrimSpace(text) == "" {
		return nil
	}
	text = strings.TrimSpace(text)
	if !strings.HasSuffix(text, ";") {
		text += ";"
	}
	decls, err := parser.ParseDeclarations(text)
	if err != nil {
		return nil
	}
	out := decls[:0]
	for _, decl := range decls {
		if decl.Property != "" {
			out = append(out, decl)
		}
	}
	return out
}

// StyleProperty returns one inline style value. The property may be given
// in camelCase.
func StyleProperty(n *html.Node, property string) string {
	property = CSSPropertyName(property)
	for _, decl := range Style(n) {
		if decl.Property == property {
			return decl.Value
		}
	}
	return ""
}

// SetStyleProperty sets one inline style property. An empty value removes
// it. The property may be given in camelCase.
func (d *Document) SetStyleProperty(n *html.Node, property, value string) {
	property = CSSPropertyName(property)
	if property == "" {
		return
	}
	value = strings.TrimSpace(value)
	decls := Style(n)

	found := false
	out := make([]*css.Declaration, 0, len(decls)+1)
	for _, decl := range decls {
		if decl.Property != property {
			out = append(out, decl)
			continue
		}
		found = true
		if value != "" {
			out = append(out, &css.Declaration{Property: property, Value: value})
		}
	}
	if !found && value != "" {
		out = append(out, &css.Declaration{Property: property, Value: value})
	}

	if len(out) == 0 {
		d.RemoveAttribute(n, "style")
		return
	}
	parts := make([]string, len(out))
	for i, decl := range out {
		parts[i] = decl.String()
	}
	d.SetAttribute(n, "style", strings.Join(parts, " "))
}

// CSSPropertyName converts a camelCase property to its hyphenated form.
// Custom properties (--x) and already hyphenated names pass through.
func CSSPropertyName(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "--") {
		return name
	}
	return kebab(name)
}

// Dataset returns the data-* attributes of n keyed by their camelCase name.
func Dataset(n *html.Node) map[string]string {
	out := make(map[string]string)
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.HasPrefix(a.Key, "data-") {
			out[camel(strings.TrimPrefix(a.Key, "data-"))] = a.Val
		}
	}
	return out
}

// SetData sets data-<key>. The key may be camelCase.
func (d *Document) SetData(n *html.Node, key, value string) error {
	return d.SetAttribute(n, DataAttributeName(key), value)
}

// Data returns the value of data-<key>.
func Data(n *html.Node, key string) (string, bool) {
	return GetAttribute(n, DataAttributeName(key))
}

// DataAttributeName maps a dataset key to its attribute name.
func DataAttributeName(key string) string {
	return "data-" + kebab(strings.TrimSpace(key))
}

func kebab(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteByte(c + ('a' - 'A'))
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func camel(s string) string {
	var sb strings.Builder
	upper := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '-' {
			upper = true
			continue
		}
		if upper && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = false
		sb.WriteByte(c)
	}
	return sb.String()
}
