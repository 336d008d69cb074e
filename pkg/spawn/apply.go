package spawn

import (
	"strings"

	"github.com/vango-dev/spawn/pkg/vocab"
)

// Apply runs each configuration entry against n in order. cfg must be a
// Config, []Entry, map[string]any or map[string]string. Unknown keys and
// failing entries are reported and skipped; the remaining entries still
// run.
func (b *Builder) Apply(n *Node, cfg any) *Node {
	if n == nil || cfg == nil {
		return n
	}
	entries, ok := asConfig(cfg)
	if !ok {
		b.warn("S002", "apply", "", nil, "configuration must be a mapping, got %T", cfg)
		return n
	}
	for _, e := range entries {
		b.applyEntry(n, e.Key, e.Value)
	}
	return n
}

func (b *Builder) applyEntry(n *Node, key string, value any) {
	defer func() {
		if r := recover(); r != nil {
			b.warn("S002", "apply", key, recovered(r), "")
		}
	}()

	c, ok := lookup(key)
	if !ok {
		if event, ok := eventKey(key); ok {
			if !vocab.IsEventType(event) {
				b.warn("S009", "apply", key, nil, "%q is not a known event type", event)
			}
			if err := b.doc.On(n.n, event, value); err != nil {
				b.warn("S002", "apply", key, err, "")
			}
			return
		}
		b.warn("S001", "apply", key, nil, "")
		return
	}

	if c.lazy {
		value = resolveLazy(n, value)
	}
	if err := c.fn(b, n, value); err != nil {
		b.warn("S002", "apply", key, err, "")
	}
}

// eventKey reports whether key follows the on<Event> convention and
// returns the lower-cased event name.
func eventKey(key string) (string, bool) {
	if len(key) < 3 || !strings.HasPrefix(key, "on") {
		return "", false
	}
	c := key[2]
	if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
		return "", false
	}
	return strings.ToLower(key[2:]), true
}

// resolveLazy calls derived values with the node and returns the result.
func resolveLazy(n *Node, v any) any {
	switch fn := v.(type) {
	case func(*Node) any:
		return fn(n)
	case func() any:
		return fn()
	}
	return v
}
