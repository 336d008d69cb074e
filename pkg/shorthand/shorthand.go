// Package shorthand parses compact element descriptions such as
//
//	div#main.card.wide?contact|role=region,aria-label="Contact form"
//
// into a Descriptor: tag, id, classes, name and extra attributes.
package shorthand

import (
	"strings"
)

// Attr is one attribute pair from the attribute segment. A pair written
// without '=' has an empty Value.
type Attr struct {
	Name  string
	Value string
}

// Descriptor is the parsed form of a shorthand string.
type Descriptor struct {
	// Tag is the lower-cased element name. It is empty only for fragments.
	Tag string

	// Fragment is set for the sentinels "", "!", "#", "<>", "</>" and for
	// input whose tag part is empty.
	Fragment bool

	ID      string
	Classes []string
	Name    string
	Attrs   []Attr
}

// IsFragmentSentinel reports whether s, trimmed, is one of the strings
// that always mean "fragment".
func IsFragmentSentinel(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "!", "#", "<>", "</>":
		return true
	}
	return false
}

// Parse reads a shorthand string. It never fails: input it cannot make
// sense of yields a fragment descriptor.
func Parse(input string) Descriptor {
	s := strings.TrimSpace(input)
	if IsFragmentSentinel(s) {
		return Descriptor{Fragment: true}
	}

	var d Descriptor

	head := s
	if i := strings.IndexAny(s, ",|"); i >= 0 {
		head = s[:i]
		d.Attrs = parseAttrs(s[i+1:])
	}

	if i := strings.IndexByte(head, '?'); i >= 0 {
		d.Name = strings.TrimSpace(head[i+1:])
		head = head[:i]
	}

	if i := strings.IndexByte(head, '.'); i >= 0 {
		d.Classes = uniqueClasses(strings.Split(head[i+1:], "."))
		head = head[:i]
	}

	if i := strings.IndexByte(head, '#'); i >= 0 {
		d.ID = strings.TrimSpace(head[i+1:])
		head = head[:i]
	}

	d.Tag = strings.ToLower(strings.TrimSpace(head))
	if d.Tag == "" {
		d.Fragment = true
	}
	return d
}

// Degraded reports whether the descriptor fell back to a fragment while
// still carrying element parts, such as "#id" or ".class".
func (d Descriptor) Degraded() bool {
	return d.Fragment && (d.ID != "" || d.Name != "" || len(d.Classes) > 0 || len(d.Attrs) > 0)
}

// String re-serializes the descriptor. Parse(d.String()) yields d for
// descriptors produced by Parse whose values contain no delimiters.
func (d Descriptor) String() string {
	if d.Fragment && !d.Degraded() {
		return "<>"
	}
	var sb strings.Builder
	sb.WriteString(d.Tag)
	if d.ID != "" {
		sb.WriteByte('#')
		sb.WriteString(d.ID)
	}
	for _, c := range d.Classes {
		sb.WriteByte('.')
		sb.WriteString(c)
	}
	if d.Name != "" {
		sb.WriteByte('?')
		sb.WriteString(d.Name)
	}
	for _, a := range d.Attrs {
		sb.WriteByte('|')
		sb.WriteString(a.Name)
		if a.Value != "" {
			sb.WriteByte('=')
			sb.WriteString(quoteIfNeeded(a.Value))
		}
	}
	return sb.String()
}

func parseAttrs(s string) []Attr {
	var attrs []Attr
	for _, seg := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' }) {
		name, value, _ := strings.Cut(seg, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		attrs = append(attrs, Attr{Name: name, Value: unquote(strings.TrimSpace(value))})
	}
	return attrs
}

// unquote strips one pair of matching surrounding quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		if q := s[0]; (q == '"' || q == '\'') && s[len(s)-1] == q {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, " \t\"'") && !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	return s
}

func uniqueClasses(parts []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
