// Package server previews a descriptor document over HTTP.
//
// Every request decodes the document and builds it into a fresh
// dom.Document, so requests never share mutable state.
//
// Routes:
//
//	GET  /         the document rendered as a full page
//	GET  /outline  a tree outline of the built body
//	GET  /query    ?q=<query> runs a prefix query, returns JSON
//	POST /render   builds the posted document (JSON, YAML, TOML, MessagePack)
//	GET  /metrics  Prometheus metrics, when configured
//	GET  /ws       live reload websocket, when enabled
//
// With live reload on, Watch sends a reload message to every connected
// browser after the document or a watched path changes, or the decode
// error when the new content does not decode.
//
//	s := server.New("page.yaml", server.DefaultConfig(),
//	    server.WithLogger(logger),
//	    server.WithMetrics(m, reg),
//	)
//	err := s.ListenAndServe(ctx)
package server
