package spawn

import (
	"golang.org/x/net/html"

	"github.com/vango-dev/spawn/pkg/shorthand"
	"github.com/vango-dev/spawn/pkg/vocab"
)

const (
	// FallbackTag replaces a standard tag the document refused.
	FallbackTag = "span"

	// FallbackCustomTag replaces an unknown tag that is not a valid custom
	// element name. It is defined once per document.
	FallbackCustomTag = "spawn-element"
)

// Create makes a detached node for d. It never fails: tags the document
// rejects fall back to FallbackTag or FallbackCustomTag.
func (b *Builder) Create(d shorthand.Descriptor) *Node {
	if d.Fragment {
		if d.Degraded() {
			b.warn("S010", "create", "", nil, "%q has no tag", d.String())
		}
		return &Node{b: b, n: b.doc.CreateFragment(), desc: d}
	}

	var n *html.Node
	if vocab.IsTag(d.Tag) {
		n = b.createStandard(d.Tag)
	} else {
		n = b.createCustom(d.Tag)
	}

	if d.ID != "" {
		b.setAttr(n, "id", d.ID)
	}
	if d.Name != "" {
		b.setAttr(n, "name", d.Name)
	}
	if len(d.Classes) > 0 {
		b.doc.AddClass(n, d.Classes...)
	}
	for _, a := range d.Attrs {
		b.setAttr(n, a.Name, a.Value)
	}

	return &Node{b: b, n: n, desc: d}
}

// setAttr sets one shorthand attribute. A rejected attribute is
// reported and skipped; the rest of the node is still built.
func (b *Builder) setAttr(n *html.Node, name, value string) {
	if err := b.doc.SetAttribute(n, name, value); err != nil {
		b.warn("S002", "create", name, err, "")
	}
}

// CreateTag parses s as shorthand and creates the node.
func (b *Builder) CreateTag(s string) *Node {
	return b.Create(shorthand.Parse(s))
}

func (b *Builder) createStandard(tag string) *html.Node {
	n, err := b.doc.CreateElement(tag)
	if err == nil {
		return n
	}
	b.warn("S003", "create", tag, err, "")
	n, _ = b.doc.CreateElement(FallbackTag)
	return n
}

func (b *Builder) createCustom(tag string) *html.Node {
	n, err := b.doc.CreateCustomElement(tag)
	if err == nil {
		return n
	}
	b.warn("S004", "create", tag, err, "")
	n, _ = b.doc.CreateCustomElement(FallbackCustomTag)
	return n
}
