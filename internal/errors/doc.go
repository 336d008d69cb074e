// Package errors provides the coded diagnostics used across spawn.
//
// The builder core never returns errors to its caller: malformed shorthand,
// unknown configuration keys, failing handlers and unresolvable mount
// targets are all reported as diagnostics and construction carries on.
// Every diagnostic has a registered code (e.g. "S001") that maps to:
//   - a category (parse, create, config, append, mount, query, cli)
//   - a short message
//   - a longer explanation
//
// Outer layers (descriptor decoding, configuration, CLI) use the same
// codes for real errors so a user sees one vocabulary everywhere.
//
// # Usage
//
//	err := errors.New("S001").
//	    WithDetail(`unknown key "bogus"`).
//	    WithSuggestion("Use one of: attr, prop, style, data, text, html, on, off, className, id")
//
//	fmt.Println(err.Format())
//	// Output:
//	// WARNING S001: Unknown configuration key
//	//
//	//   unknown key "bogus"
//	//
//	//   Hint: Use one of: attr, prop, style, ...
package errors
