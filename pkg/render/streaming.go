package render

import (
	"io"
	"net/http"
)

// StreamingRenderer writes pages straight to a response. When the
// destination is an http.Flusher the head is flushed before the body is
// rendered, and again at the end.
type StreamingRenderer struct {
	r       *Renderer
	w       io.Writer
	flusher http.Flusher
	written int64
}

// NewStreamingRenderer creates a streaming renderer writing to w.
func NewStreamingRenderer(w io.Writer, config RendererConfig) *StreamingRenderer {
	flusher, _ := w.(http.Flusher)
	return &StreamingRenderer{
		r:       NewRenderer(config),
		w:       w,
		flusher: flusher,
	}
}

// Write implements io.Writer, counting bytes.
func (s *StreamingRenderer) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	s.written += int64(n)
	return n, err
}

// Written returns the number of bytes written so far.
func (s *StreamingRenderer) Written() int64 { return s.written }

// RenderPage renders a complete HTML document.
func (s *StreamingRenderer) RenderPage(page PageData) error {
	if err := s.r.renderPage(s, page, s.flush); err != nil {
		return err
	}
	s.flush()
	return nil
}

func (s *StreamingRenderer) flush() {
	if s.flusher != nil {
		s.flusher.Flush()
	}
}
