package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	spawnerrors "github.com/vango-dev/spawn/internal/errors"
	"github.com/vango-dev/spawn/pkg/descriptor"
	"github.com/vango-dev/spawn/pkg/dom"
	"github.com/vango-dev/spawn/pkg/render"
	"github.com/vango-dev/spawn/pkg/selector"
	"github.com/vango-dev/spawn/pkg/spawn"
)

// build is one document built from a page.
type build struct {
	page        *descriptor.Page
	doc         *dom.Document
	diagnostics []spawn.Diagnostic
}

func (s *Server) load() (*descriptor.Page, error) {
	return s.cache.Load(s.path)
}

// build creates a fresh document and mounts the page into it.
func (s *Server) build(ctx context.Context, page *descriptor.Page) *build {
	_, span := s.startSpan(ctx, "build")
	done := s.metrics.Track("build")

	out := &build{page: page, doc: dom.New()}
	b := spawn.New(out.doc,
		spawn.WithLogger(s.logger),
		spawn.WithReporter(s.metrics.Reporter(func(d spawn.Diagnostic) {
			out.diagnostics = append(out.diagnostics, d)
		})),
	)
	page.Build(b)

	span.SetAttributes(attribute.Int("spawn.diagnostics", len(out.diagnostics)))
	done(nil)
	endSpan(span, nil)
	return out
}

// loadAndBuild reads the served document and builds it.
func (s *Server) loadAndBuild(ctx context.Context) (*build, error) {
	_, span := s.startSpan(ctx, "load", attribute.String("spawn.document", s.path))
	page, err := s.load()
	endSpan(span, err)
	if err != nil {
		s.metrics.Track("load")(err)
		return nil, err
	}
	return s.build(ctx, page), nil
}

func (s *Server) pageData(bd *build) render.PageData {
	data := bd.page.PageData(bd.doc.Body())
	if data.Lang == "" {
		data.Lang = s.config.Lang
	}
	if s.config.LiveReload {
		data.LiveReload = "/ws"
	}
	return data
}

func (s *Server) renderPage(ctx context.Context, w io.Writer, bd *build) error {
	_, span := s.startSpan(ctx, "render")
	err := render.NewRenderer(s.config.Render).RenderPage(w, s.pageData(bd))
	endSpan(span, err)
	return err
}

// handlePage streams the page; the head is flushed before the body is
// rendered.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	bd, err := s.loadAndBuild(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	setHTMLHeaders(w, bd)

	_, span := s.startSpan(r.Context(), "render")
	sr := render.NewStreamingRenderer(w, s.config.Render)
	err = sr.RenderPage(s.pageData(bd))
	endSpan(span, err)
	if err != nil {
		s.logger.Warn("write page", "error", err)
	}
	s.metrics.RecordRendered(int(sr.Written()))
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	bd, err := s.loadAndBuild(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, render.Outline(bd.doc.Body()))
}

// handleRender builds the posted document. The format comes from the
// format query parameter, then the Content-Type, then sniffing. With
// page=1 the response is a whole page, otherwise the body's content.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		http.Error(w, err.Error(), status)
		return
	}

	f, err := requestFormat(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	_, span := s.startSpan(r.Context(), "decode", attribute.String("spawn.format", f.String()))
	page, err := descriptor.DecodeBytes(data, f)
	endSpan(span, err)
	if err != nil {
		s.metrics.Track("decode")(err)
		s.writeError(w, err)
		return
	}
	bd := s.build(r.Context(), page)

	var buf bytes.Buffer
	if full, _ := strconv.ParseBool(r.URL.Query().Get("page")); full {
		err = s.renderPage(r.Context(), &buf, bd)
	} else {
		err = render.NewRenderer(s.config.Render).RenderChildren(&buf, bd.doc.Body())
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeHTML(w, bd, buf.Bytes())
}

// QueryResult is the JSON body of GET /query.
type QueryResult struct {
	Query    string   `json:"query"`
	Strategy string   `json:"strategy"`
	Residual string   `json:"residual"`
	Count    int      `json:"count"`
	Matches  []string `json:"matches"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		http.Error(w, "missing q parameter", http.StatusBadRequest)
		return
	}

	bd, err := s.loadAndBuild(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	resolved := selector.Resolve(q)
	_, span := s.startSpan(r.Context(), "query",
		attribute.String("spawn.query", q),
		attribute.String("spawn.strategy", resolved.Strategy.String()),
	)
	nodes, err := selector.Run(bd.doc, resolved, nil)
	endSpan(span, err)
	if err != nil {
		s.writeError(w, err)
		return
	}

	res := QueryResult{
		Query:    q,
		Strategy: resolved.Strategy.String(),
		Residual: resolved.Residual,
		Count:    len(nodes),
		Matches:  make([]string, 0, len(nodes)),
	}
	for _, n := range nodes {
		res.Matches = append(res.Matches, dom.OuterHTML(n))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.Warn("write query result", "error", err)
	}
}

func setHTMLHeaders(w http.ResponseWriter, bd *build) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Spawn-Diagnostics", strconv.Itoa(len(bd.diagnostics)))
}

func (s *Server) writeHTML(w http.ResponseWriter, bd *build, body []byte) {
	setHTMLHeaders(w, bd)
	n, err := w.Write(body)
	if err != nil {
		s.logger.Warn("write response", "error", err)
	}
	s.metrics.RecordRendered(n)
}

// writeError maps coded errors to client errors and everything else to
// 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := err.Error()

	var se *spawnerrors.SpawnError
	if errors.As(err, &se) {
		switch se.Code {
		case "S050":
			status = http.StatusUnprocessableEntity
		case "S051":
			status = http.StatusUnsupportedMediaType
		case "S007":
			status = http.StatusBadRequest
		}
		msg = se.FormatCompact()
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	http.Error(w, msg, status)
}

// requestFormat picks the descriptor format of a POST /render body.
func requestFormat(r *http.Request) (descriptor.Format, error) {
	if f := r.URL.Query().Get("format"); f != "" {
		return descriptor.ParseFormat(f)
	}
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return descriptor.FormatAuto, nil
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return descriptor.FormatAuto, spawnerrors.New("S051").WithDetailf("bad content type %q", ct)
	}
	switch mt {
	case "application/json":
		return descriptor.FormatJSON, nil
	case "application/yaml", "application/x-yaml", "text/yaml":
		return descriptor.FormatYAML, nil
	case "application/toml":
		return descriptor.FormatTOML, nil
	case "application/msgpack", "application/x-msgpack", "application/vnd.msgpack":
		return descriptor.FormatMsgPack, nil
	case "text/plain", "application/octet-stream":
		return descriptor.FormatAuto, nil
	}
	return descriptor.FormatAuto, spawnerrors.New("S051").WithDetail(fmt.Sprintf("content type %s", mt))
}
