package render

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// PageData contains all data needed to render a complete HTML page.
type PageData struct {
	// Body is rendered inside <body>. A fragment or the body element
	// itself contributes its children; any other node is rendered whole.
	Body *html.Node

	// Title is the page title
	Title string

	// Lang is the language attribute for the html element.
	// Defaults to "en" if not specified.
	Lang string

	// Meta contains meta tags for the page
	Meta []MetaTag

	// Links contains link tags (favicon, preload, ...)
	Links []LinkTag

	// StyleSheets contains paths to external stylesheets
	StyleSheets []string

	// Styles contains inline CSS
	Styles []string

	// Scripts are written at the end of the body, except deferred and
	// async scripts which go in the head.
	Scripts []ScriptTag

	// LiveReload is the websocket path of a reload endpoint. When set, a
	// small script reloads the page on reload messages and logs errors.
	LiveReload string
}

// MetaTag represents a meta element in the document head.
type MetaTag struct {
	Name      string
	Content   string
	Property  string
	HTTPEquiv string
	Charset   string
}

// LinkTag represents a link element in the document head.
type LinkTag struct {
	Rel         string
	Href        string
	Type        string
	Sizes       string
	CrossOrigin string
	Media       string
}

// ScriptTag represents a script element.
type ScriptTag struct {
	Src    string
	Type   string
	Defer  bool
	Async  bool
	Module bool
	Inline string
}

const liveReloadScript = `(function(){var p=location.protocol==="https:"?"wss://":"ws://";` +
	`var s=new WebSocket(p+location.host+%q);s.onmessage=function(e){var m={};` +
	`try{m=JSON.parse(e.data);}catch(_){}` +
	`if(m.type==="error"){console.error("[spawn]",m.error);return;}location.reload();};})();`

// RenderPage renders a complete HTML document to the given writer.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	return r.renderPage(w, page, nil)
}

// renderPage calls headDone, when set, once the head is written.
func (r *Renderer) renderPage(w io.Writer, page PageData, headDone func()) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, `<html lang="%s">`+"\n", escapeAttr(lang)); err != nil {
		return err
	}
	if err := r.renderHead(w, page); err != nil {
		return err
	}
	if headDone != nil {
		headDone()
	}
	if err := r.renderBody(w, page); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</html>\n")
	return err
}

func (r *Renderer) renderHead(w io.Writer, page PageData) error {
	var b strings.Builder

	b.WriteString("<head>\n")
	b.WriteString(`  <meta charset="utf-8">` + "\n")
	b.WriteString(`  <meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	if page.Title != "" {
		fmt.Fprintf(&b, "  <title>%s</title>\n", escapeHTML(page.Title))
	}

	for _, m := range page.Meta {
		writeTag(&b, "meta", [][2]string{
			{"charset", m.Charset},
			{"name", m.Name},
			{"property", m.Property},
			{"http-equiv", m.HTTPEquiv},
			{"content", m.Content},
		})
	}
	for _, l := range page.Links {
		writeTag(&b, "link", [][2]string{
			{"rel", l.Rel},
			{"href", l.Href},
			{"type", l.Type},
			{"sizes", l.Sizes},
			{"crossorigin", l.CrossOrigin},
			{"media", l.Media},
		})
	}
	for _, href := range page.StyleSheets {
		writeTag(&b, "link", [][2]string{{"rel", "stylesheet"}, {"href", href}})
	}
	for _, css := range page.Styles {
		fmt.Fprintf(&b, "  <style>%s</style>\n", css)
	}
	for _, s := range page.Scripts {
		if s.Defer || s.Async {
			writeScript(&b, s)
		}
	}
	b.WriteString("</head>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Renderer) renderBody(w io.Writer, page PageData) error {
	if _, err := io.WriteString(w, "<body>\n"); err != nil {
		return err
	}

	body := page.Body
	if body != nil && (body.Type == html.DocumentNode || body.Type == html.ElementNode && body.Data == "body") {
		if err := r.RenderChildren(w, body); err != nil {
			return err
		}
	} else if err := r.RenderToWriter(w, body); err != nil {
		return err
	}
	if !r.config.Pretty && body != nil {
		io.WriteString(w, "\n")
	}

	var b strings.Builder
	for _, s := range page.Scripts {
		if !s.Defer && !s.Async {
			writeScript(&b, s)
		}
	}
	if page.LiveReload != "" {
		fmt.Fprintf(&b, "  <script>"+liveReloadScript+"</script>\n", page.LiveReload)
	}
	b.WriteString("</body>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// writeTag writes a void head element, skipping empty attributes.
func writeTag(b *strings.Builder, tag string, attrs [][2]string) {
	fmt.Fprintf(b, "  <%s", tag)
	for _, a := range attrs {
		if a[1] != "" {
			fmt.Fprintf(b, ` %s="%s"`, a[0], escapeAttr(a[1]))
		}
	}
	b.WriteString(">\n")
}

func writeScript(b *strings.Builder, s ScriptTag) {
	b.WriteString("  <script")
	if s.Src != "" {
		fmt.Fprintf(b, ` src="%s"`, escapeAttr(s.Src))
	}
	if s.Module {
		b.WriteString(` type="module"`)
	} else if s.Type != "" {
		fmt.Fprintf(b, ` type="%s"`, escapeAttr(s.Type))
	}
	if s.Defer {
		b.WriteString(" defer")
	}
	if s.Async {
		b.WriteString(" async")
	}
	b.WriteString(">")
	b.WriteString(s.Inline)
	b.WriteString("</script>\n")
}
