// Package render serializes node trees built by the spawn builder.
//
// The output differs from html.Render in the ways that matter for
// published pages: void elements are written without a closing slash,
// boolean attributes are written bare, and an optional pretty mode
// indents block content.
//
// # Basic Usage
//
//	r := render.NewRenderer(render.RendererConfig{Pretty: true})
//	out, err := r.RenderToString(node.HTMLNode())
//
// # Full Page Rendering
//
//	page := render.PageData{
//	    Title: "Docs",
//	    Body:  node.HTMLNode(),
//	}
//	err := r.RenderPage(w, page)
//
// # Outlines
//
// Outline prints a tree as an indented list of shorthand labels, which is
// handy when checking what a descriptor document produced:
//
//	div#app
//	└── ul.menu
//	    ├── li
//	    └── li
package render
