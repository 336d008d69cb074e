package spawn

import "fmt"

// Binding pairs an event name with a handler. Handlers are dom.Listener,
// func(*dom.Event) or func().
type Binding struct {
	Event   string
	Handler any
}

// bindings normalizes the accepted event forms:
//
//	map or Config             {"click": h, "keyup": h2}
//	one pair                  []any{"click", h}
//	list of pairs or maps     []any{[]any{"click", h}, map[string]any{"click": h2}}
//
// Repeated events are all kept.
func bindings(v any) ([]Binding, error) {
	switch x := v.(type) {
	case Binding:
		return []Binding{x}, nil
	case []Binding:
		return x, nil
	}

	if cfg, ok := asConfig(v); ok {
		out := make([]Binding, 0, len(cfg))
		for _, e := range cfg {
			out = append(out, Binding{Event: e.Key, Handler: e.Value})
		}
		return out, nil
	}

	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("event bindings must be a mapping or list, got %T", v)
	}
	if bd, ok := pair(list); ok {
		return []Binding{bd}, nil
	}

	var out []Binding
	for _, item := range list {
		if inner, ok := item.([]any); ok {
			bd, ok := pair(inner)
			if !ok {
				return nil, fmt.Errorf("event pair must be [name, handler], got %d items", len(inner))
			}
			out = append(out, bd)
			continue
		}
		if bd, ok := item.(Binding); ok {
			out = append(out, bd)
			continue
		}
		cfg, ok := asConfig(item)
		if !ok {
			return nil, fmt.Errorf("unsupported event binding %T", item)
		}
		for _, e := range cfg {
			out = append(out, Binding{Event: e.Key, Handler: e.Value})
		}
	}
	return out, nil
}

func pair(list []any) (Binding, bool) {
	if len(list) != 2 {
		return Binding{}, false
	}
	name, ok := list[0].(string)
	if !ok {
		return Binding{}, false
	}
	return Binding{Event: name, Handler: list[1]}, true
}
