package dom

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// reflected maps a property name to the attribute that backs it.
var reflected = map[string]string{
	"id":          "id",
	"className":   "class",
	"title":       "title",
	"lang":        "lang",
	"dir":         "dir",
	"value":       "value",
	"href":        "href",
	"src":         "src",
	"alt":         "alt",
	"type":        "type",
	"name":        "name",
	"placeholder": "placeholder",
	"htmlFor":     "for",
	"tabIndex":    "tabindex",
	"role":        "role",
	"target":      "target",
	"rel":         "rel",
	"action":      "action",
	"method":      "method",
}

// booleanProps are reflected as present or absent attributes.
var booleanProps = map[string]string{
	"hidden":    "hidden",
	"checked":   "checked",
	"disabled":  "disabled",
	"selected":  "selected",
	"readOnly":  "readonly",
	"required":  "required",
	"multiple":  "multiple",
	"autofocus": "autofocus",
}

var readOnlyProps = map[string]struct{}{
	"tagName":         {},
	"nodeName":        {},
	"nodeType":        {},
	"parentNode":      {},
	"parentElement":   {},
	"childNodes":      {},
	"children":        {},
	"firstChild":      {},
	"lastChild":       {},
	"nextSibling":     {},
	"previousSibling": {},
	"ownerDocument":   {},
	"classList":       {},
	"dataset":         {},
	"isConnected":     {},
}

// ReadOnlyPropertyError is returned when assigning a read-only property.
type ReadOnlyPropertyError struct {
	Name string
}

func (e *ReadOnlyPropertyError) Error() string {
	return fmt.Sprintf("dom: property %q is read-only", e.Name)
}

// SetProperty assigns a property. Reflected properties write the backing
// attribute, textContent and innerHTML replace children, and anything else
// is stored on the node as an expando value.
func (d *Document) SetProperty(n *html.Node, name string, value any) error {
	if n == nil {
		return errNilInsertNode
	}
	if _, ok := readOnlyProps[name]; ok {
		return &ReadOnlyPropertyError{Name: name}
	}
	switch name {
	case "textContent", "innerText":
		d.SetTextContent(n, FormatValue(value))
		return nil
	case "innerHTML":
		return d.SetInnerHTML(n, FormatValue(value))
	}
	if attr, ok := reflected[name]; ok {
		if value == nil {
			d.RemoveAttribute(n, attr)
			return nil
		}
		return d.SetAttribute(n, attr, FormatValue(value))
	}
	if attr, ok := booleanProps[name]; ok {
		if truthy(value) {
			return d.SetAttribute(n, attr, "")
		}
		d.RemoveAttribute(n, attr)
		return nil
	}

	bag := d.props[n]
	if bag == nil {
		bag = make(map[string]any)
		d.props[n] = bag
	}
	bag[name] = value
	return nil
}

// Property reads a property previously set or reflected from attributes.
func (d *Document) Property(n *html.Node, name string) (any, bool) {
	if n == nil {
		return nil, false
	}
	switch name {
	case "tagName", "nodeName":
		if n.Type == html.ElementNode {
			return strings.ToUpper(n.Data), true
		}
		return nil, false
	case "textContent", "innerText":
		return TextContent(n), true
	case "innerHTML":
		return InnerHTML(n), true
	case "outerHTML":
		return OuterHTML(n), true
	}
	if attr, ok := reflected[name]; ok {
		v, ok := GetAttribute(n, attr)
		return v, ok
	}
	if attr, ok := booleanProps[name]; ok {
		return HasAttribute(n, attr), true
	}
	v, ok := d.props[n][name]
	return v, ok
}

// FormatValue converts a property or attribute value to its string form.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != "" && x != "false"
	case int:
		return x != 0
	case float64:
		return x != 0
	}
	return true
}
