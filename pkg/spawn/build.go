package spawn

import (
	"golang.org/x/net/html"

	"github.com/vango-dev/spawn/pkg/dom"
	"github.com/vango-dev/spawn/pkg/shorthand"
)

// Build constructs a node from a descriptor array:
//
//	[tag]
//	[tag, config]
//	[tag, children]
//	[tag, config, children]
//
// tag is a shorthand string, a shorthand.Descriptor, nil (fragment), or an
// existing *Node or *html.Node to configure in place. The second item is
// configuration only when it is a mapping (Config, map[string]any, ...);
// anything else, and every later item, is children. A []any in a children
// slot is a list of children, each classified on its own.
func (b *Builder) Build(desc []any) *Node {
	var n *Node
	b.guard("build", func() {
		n = b.build(desc, 0)
	})
	if n == nil {
		n = b.Create(shorthand.Descriptor{Fragment: true})
	}
	return n
}

// Spawn is Build with the descriptor spread over arguments.
func (b *Builder) Spawn(tag any, args ...any) *Node {
	return b.Build(append([]any{tag}, args...))
}

// Update applies configuration and appends children to an existing node,
// with the same slot rules as Build.
func (b *Builder) Update(n *Node, args ...any) *Node {
	if n == nil {
		return nil
	}
	b.guard("update", func() {
		b.fill(n, args, 0)
	})
	return n
}

func (b *Builder) build(desc []any, depth int) *Node {
	if len(desc) == 0 {
		return b.Create(shorthand.Descriptor{Fragment: true})
	}

	var n *Node
	switch tag := desc[0].(type) {
	case string:
		n = b.CreateTag(tag)
	case shorthand.Descriptor:
		n = b.Create(tag)
	case nil:
		n = b.Create(shorthand.Descriptor{Fragment: true})
	case *Node:
		n = tag
	case *html.Node:
		n = b.wrap(tag)
	}
	if n == nil {
		b.warn("S005", "build", "", nil, "descriptor tag must be a string or node, got %T", desc[0])
		n = b.Create(shorthand.Descriptor{Fragment: true})
	}

	b.fill(n, desc[1:], depth)
	return n
}

func (b *Builder) fill(n *Node, args []any, depth int) {
	if len(args) > 0 {
		if cfg, ok := asConfig(args[0]); ok {
			b.Apply(n, cfg)
			args = args[1:]
		} else if args[0] == nil {
			args = args[1:]
		}
	}

	ctx := contextFor(n.n, dom.BeforeEnd)
	for _, children := range args {
		if list, ok := children.([]any); ok {
			b.insertList(n, n.n, dom.BeforeEnd, ctx, list, depth)
			continue
		}
		b.insert(n, n.n, dom.BeforeEnd, ctx, children, depth)
	}
}
