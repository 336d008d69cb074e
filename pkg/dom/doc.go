// Package dom is a small host document built on golang.org/x/net/html nodes.
//
// It provides the operations the builder needs from a browser document:
// element and fragment creation, adjacent insertion, text and markup
// access, attributes, classes, inline style, dataset, expando properties,
// event listeners, a custom element registry and query primitives.
//
// A fragment is a detached node of type html.DocumentNode. Inserting a
// fragment moves its children, in order, and leaves the fragment empty.
//
// Selector matching is delegated to cascadia. Inline style declarations
// are parsed with douceur.
//
// A Document is not safe for concurrent use.
package dom
