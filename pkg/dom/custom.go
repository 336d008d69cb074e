package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

var reservedCustomNames = map[string]struct{}{
	"annotation-xml":   {},
	"color-profile":    {},
	"font-face":        {},
	"font-face-src":    {},
	"font-face-uri":    {},
	"font-face-format": {},
	"font-face-name":   {},
	"missing-glyph":    {},
}

// ValidCustomElementName reports whether name may be defined as a custom
// element: it starts with a lower-case ASCII letter, contains a hyphen,
// has no upper-case letters and is not reserved.
func ValidCustomElementName(name string) bool {
	if name == "" || name[0] < 'a' || name[0] > 'z' {
		return false
	}
	if !strings.Contains(name, "-") || name != strings.ToLower(name) {
		return false
	}
	if _, ok := reservedCustomNames[name]; ok {
		return false
	}
	return validElementName(name)
}

// DefineCustomElement registers name in the document. Defining a name that
// is already registered is a no-op.
func (d *Document) DefineCustomElement(name string) error {
	if !ValidCustomElementName(name) {
		return fmt.Errorf("dom: invalid custom element name %q", name)
	}
	d.custom[name] = struct{}{}
	return nil
}

// IsDefined reports whether name is a registered custom element.
func (d *Document) IsDefined(name string) bool {
	_, ok := d.custom[name]
	return ok
}

// CreateCustomElement defines name if needed and creates an element.
func (d *Document) CreateCustomElement(name string) (*html.Node, error) {
	if err := d.DefineCustomElement(name); err != nil {
		return nil, err
	}
	return d.CreateElement(name)
}
