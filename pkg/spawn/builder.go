// Package spawn builds node trees from shorthand strings, configuration
// entries and nested descriptor arrays.
//
//	b := spawn.New(nil)
//	card := b.Build([]any{"div#card.box", spawn.Config{
//		{Key: "data", Value: map[string]any{"userId": 7}},
//		{Key: "onClick", Value: func() { ... }},
//	}, []any{
//		[]any{"h2", "Title"},
//		"__HTML__<p>body</p>",
//	}})
//	b.Render(card, "#app")
//
// Construction never fails and never panics. Problems are reported as
// Diagnostic values to the builder's reporter and logged at warn level.
package spawn

import (
	"fmt"
	"log/slog"

	"golang.org/x/net/html"

	"github.com/vango-dev/spawn/internal/errors"
	"github.com/vango-dev/spawn/pkg/dom"
)

// Builder creates and mutates nodes in one document.
type Builder struct {
	doc      *dom.Document
	logger   *slog.Logger
	reporter func(Diagnostic)
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger diagnostics are written to.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithReporter sets a callback that receives every diagnostic.
func WithReporter(fn func(Diagnostic)) Option {
	return func(b *Builder) {
		b.reporter = fn
	}
}

// New returns a builder for doc. A nil doc gets a fresh empty document.
func New(doc *dom.Document, opts ...Option) *Builder {
	if doc == nil {
		doc = dom.New()
	}
	b := &Builder{
		doc:    doc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Document returns the builder's document.
func (b *Builder) Document() *dom.Document { return b.doc }

// Diagnostic describes a recovered problem.
type Diagnostic struct {
	// Code is a registered diagnostic code such as "S001".
	Code string

	// Op is the builder operation: create, apply, append or mount.
	Op string

	// Key is the configuration key or child kind involved, if any.
	Key string

	Message string
	Err     error
}

func (d Diagnostic) String() string {
	s := d.Code + " " + d.Op
	if d.Key != "" {
		s += " " + d.Key
	}
	s += ": " + d.Message
	if d.Err != nil {
		s += ": " + d.Err.Error()
	}
	return s
}

// warn builds a diagnostic from the registered code and reports it.
func (b *Builder) warn(code, op, key string, cause error, detail string, args ...any) {
	se := errors.New(code)
	if detail != "" {
		se.WithDetailf(detail, args...)
	}
	if cause != nil {
		se.Wrap(cause)
	}

	d := Diagnostic{
		Code:    code,
		Op:      op,
		Key:     key,
		Message: se.Message,
		Err:     se,
	}

	attrs := []any{"code", code, "op", op}
	if key != "" {
		attrs = append(attrs, "key", key)
	}
	if se.Detail != "" {
		attrs = append(attrs, "detail", se.Detail)
	}
	if cause != nil {
		attrs = append(attrs, "error", cause)
	}
	b.logger.Warn(se.Message, attrs...)

	if b.reporter != nil {
		b.reporter(d)
	}
}

// recovered converts a recovered panic value to an error.
func recovered(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}

// wrap returns the handle for an existing node.
func (b *Builder) wrap(n *html.Node) *Node {
	return &Node{b: b, n: n}
}

// Wrap returns a handle for an existing node, such as one found by a
// query, so it can be configured and appended to.
func (b *Builder) Wrap(n *html.Node) *Node {
	if n == nil {
		return nil
	}
	return b.wrap(n)
}
