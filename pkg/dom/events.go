package dom

import (
	"fmt"
	"reflect"
	"strings"

	"golang.org/x/net/html"
)

// Event is dispatched to listeners. It bubbles from Target to the root.
type Event struct {
	Type          string
	Target        *html.Node
	CurrentTarget *html.Node
	Detail        any

	stopped   bool
	prevented bool
}

// StopPropagation prevents the event from reaching further ancestors.
func (e *Event) StopPropagation() { e.stopped = true }

// PreventDefault marks the event as handled.
func (e *Event) PreventDefault() { e.prevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.prevented }

// Listener handles an event.
type Listener func(*Event)

type binding struct {
	typ string
	fn  Listener
	id  uintptr
}

// AddEventListener registers fn for events of typ on n. Registering the
// same listener twice keeps both registrations.
func (d *Document) AddEventListener(n *html.Node, typ string, fn Listener) {
	if fn == nil {
		return
	}
	d.addListener(n, typ, fn, funcID(fn))
}

// RemoveEventListener unregisters every registration of fn for typ on n
// and returns how many were removed. Listeners are compared by function
// pointer.
func (d *Document) RemoveEventListener(n *html.Node, typ string, fn Listener) int {
	if fn == nil {
		return 0
	}
	return d.removeListener(n, typ, funcID(fn))
}

// On registers a handler of any supported shape: Listener, func(*Event)
// or func(). Off with the same handler value removes it.
func (d *Document) On(n *html.Node, typ string, handler any) error {
	fn, id, err := adapt(handler)
	if err != nil {
		return err
	}
	d.addListener(n, typ, fn, id)
	return nil
}

// Off removes registrations made with On or AddEventListener.
func (d *Document) Off(n *html.Node, typ string, handler any) (int, error) {
	_, id, err := adapt(handler)
	if err != nil {
		return 0, err
	}
	return d.removeListener(n, typ, id), nil
}

func (d *Document) addListener(n *html.Node, typ string, fn Listener, id uintptr) {
	if n == nil {
		return
	}
	typ = strings.ToLower(typ)
	d.listeners[n] = append(d.listeners[n], binding{typ: typ, fn: fn, id: id})
}

func (d *Document) removeListener(n *html.Node, typ string, id uintptr) int {
	if n == nil {
		return 0
	}
	typ = strings.ToLower(typ)
	list := d.listeners[n]
	kept := list[:0]
	removed := 0
	for _, b := range list {
		if b.typ == typ && b.id == id {
			removed++
			continue
		}
		kept = append(kept, b)
	}
	if len(kept) == 0 {
		delete(d.listeners, n)
	} else {
		d.listeners[n] = kept
	}
	return removed
}

// ListenerCount returns the number of registrations for typ on n.
func (d *Document) ListenerCount(n *html.Node, typ string) int {
	typ = strings.ToLower(typ)
	count := 0
	for _, b := range d.listeners[n] {
		if b.typ == typ {
			count++
		}
	}
	return count
}

// EventTypes returns the event types with listeners on n, in registration
// order.
func (d *Document) EventTypes(n *html.Node) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, b := range d.listeners[n] {
		if _, ok := seen[b.typ]; ok {
			continue
		}
		seen[b.typ] = struct{}{}
		out = append(out, b.typ)
	}
	return out
}

// Dispatch runs listeners for ev on target and its ancestors. It returns
// false if a listener called PreventDefault.
func (d *Document) Dispatch(target *html.Node, ev *Event) bool {
	if target == nil || ev == nil {
		return true
	}
	ev.Type = strings.ToLower(ev.Type)
	ev.Target = target
	for n := target; n != nil && !ev.stopped; n = n.Parent {
		ev.CurrentTarget = n
		// Listeners added during dispatch run on the next event.
		list := append([]binding(nil), d.listeners[n]...)
		for _, b := range list {
			if b.typ == ev.Type {
				b.fn(ev)
			}
		}
	}
	ev.CurrentTarget = nil
	return !ev.prevented
}

// adapt converts a handler to a Listener. The returned id identifies the
// caller's function, not the adapter.
func adapt(handler any) (Listener, uintptr, error) {
	switch fn := handler.(type) {
	case Listener:
		if fn != nil {
			return fn, funcID(fn), nil
		}
	case func(*Event):
		if fn != nil {
			return fn, funcID(fn), nil
		}
	case func():
		if fn != nil {
			return func(*Event) { fn() }, funcID(fn), nil
		}
	}
	return nil, 0, fmt.Errorf("dom: unsupported event handler %T", handler)
}

func funcID(fn any) uintptr {
	return reflect.ValueOf(fn).Pointer()
}
