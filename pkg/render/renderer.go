package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/spawn/pkg/vocab"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables indented output. Elements whose only children are
	// text, and inline elements, stay on one line.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string
}

// Renderer writes node trees as HTML.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders a node and its subtree. Fragments and documents
// render their children.
func (r *Renderer) RenderToString(node *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a node and its subtree to w.
func (r *Renderer) RenderToWriter(w io.Writer, node *html.Node) error {
	return r.renderNode(w, node, 0, r.config.Pretty)
}

// RenderChildren renders only the children of node.
func (r *Renderer) RenderChildren(w io.Writer, node *html.Node) error {
	if node == nil {
		return nil
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if err := r.renderNode(w, c, 0, r.config.Pretty); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderNode(w io.Writer, node *html.Node, depth int, pretty bool) error {
	if node == nil {
		return nil
	}

	switch node.Type {
	case html.ElementNode:
		return r.renderElement(w, node, depth, pretty)
	case html.TextNode:
		return r.renderText(w, node, depth, pretty)
	case html.DocumentNode:
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if err := r.renderNode(w, c, depth, pretty); err != nil {
				return err
			}
		}
		return nil
	case html.CommentNode:
		_, err := fmt.Fprintf(w, "<!--%s-->", node.Data)
		return err
	case html.DoctypeNode:
		_, err := fmt.Fprintf(w, "<!DOCTYPE %s>\n", node.Data)
		return err
	case html.RawNode:
		_, err := io.WriteString(w, node.Data)
		return err
	case html.ErrorNode:
		return fmt.Errorf("render: error node %q", node.Data)
	default:
		return fmt.Errorf("render: unknown node type %d", node.Type)
	}
}

func (r *Renderer) renderElement(w io.Writer, node *html.Node, depth int, pretty bool) error {
	tag := node.Data

	if pretty && depth > 0 {
		r.writeIndent(w, depth)
	}

	if _, err := fmt.Fprintf(w, "<%s", tag); err != nil {
		return err
	}
	if err := r.renderAttributes(w, node); err != nil {
		return err
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}

	if vocab.IsVoidElement(tag) {
		if pretty {
			io.WriteString(w, "\n")
		}
		return nil
	}

	if isRawText(tag) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if _, err := io.WriteString(w, c.Data); err != nil {
				return err
			}
		}
	} else {
		block := pretty && !vocab.IsInlineElement(tag) && hasElementChild(node)
		if block {
			io.WriteString(w, "\n")
		}

		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if err := r.renderNode(w, c, depth+1, block); err != nil {
				return err
			}
		}

		if block {
			r.writeIndent(w, depth)
		}
	}

	if _, err := fmt.Fprintf(w, "</%s>", tag); err != nil {
		return err
	}
	if pretty {
		io.WriteString(w, "\n")
	}
	return nil
}

// renderText escapes text. In block context text is trimmed and written on
// its own line; whitespace-only text is dropped there.
func (r *Renderer) renderText(w io.Writer, node *html.Node, depth int, pretty bool) error {
	text := node.Data
	if pretty && depth > 0 {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil
		}
		r.writeIndent(w, depth)
		_, err := fmt.Fprintf(w, "%s\n", escapeHTML(text))
		return err
	}
	_, err := io.WriteString(w, escapeHTML(text))
	return err
}

// renderAttributes writes attributes in document order. Boolean attributes
// whose value is empty or repeats the name are written bare.
func (r *Renderer) renderAttributes(w io.Writer, node *html.Node) error {
	for _, a := range node.Attr {
		key := a.Key
		if a.Namespace != "" {
			key = a.Namespace + ":" + key
		}

		if vocab.IsBooleanAttr(a.Key) && (a.Val == "" || strings.EqualFold(a.Val, a.Key)) {
			if _, err := fmt.Fprintf(w, " %s", key); err != nil {
				return err
			}
			continue
		}

		if _, err := fmt.Fprintf(w, ` %s="%s"`, key, escapeAttr(a.Val)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) writeIndent(w io.Writer, depth int) {
	io.WriteString(w, strings.Repeat(r.config.Indent, depth))
}

func hasElementChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
	}
	return false
}

// isRawText reports whether the element's text is written unescaped.
func isRawText(tag string) bool {
	switch tag {
	case "script", "style", "xmp", "iframe", "noembed", "noframes", "plaintext":
		return true
	}
	return false
}
