package descriptor

import (
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/text/language"

	"github.com/vango-dev/spawn/pkg/render"
	"github.com/vango-dev/spawn/pkg/spawn"
)

// Page is a decoded document. A document that is a bare descriptor array
// becomes a page with only Body set.
type Page struct {
	Title string
	Lang  string

	// Mount is the selector Body is mounted into. Empty means the body.
	Mount string

	// Clear empties the mount target first.
	Clear bool

	StyleSheets []string
	Styles      []string

	// Body is anything the builder can append: a descriptor array, a list
	// of children, or a string.
	Body any
}

// FromValue interprets a decoded document.
func FromValue(v any) (*Page, error) {
	switch x := v.(type) {
	case nil:
		return nil, fmt.Errorf("empty document")
	case spawn.Config:
		return pageFromConfig(x)
	}
	return &Page{Body: v}, nil
}

func pageFromConfig(cfg spawn.Config) (*Page, error) {
	p := &Page{}
	for _, e := range cfg {
		var err error
		switch e.Key {
		case "title":
			p.Title, err = stringValue(e.Value)
		case "lang":
			p.Lang, err = langValue(e.Value)
		case "mount":
			p.Mount, err = stringValue(e.Value)
		case "clear":
			b, ok := e.Value.(bool)
			if !ok {
				err = fmt.Errorf("want a boolean, got %T", e.Value)
			}
			p.Clear = b
		case "stylesheets":
			p.StyleSheets, err = stringList(e.Value)
		case "styles":
			p.Styles, err = stringList(e.Value)
		case "body":
			p.Body = e.Value
		default:
			err = fmt.Errorf("unknown page key")
		}
		if err != nil {
			return nil, fmt.Errorf("page key %q: %w", e.Key, err)
		}
	}
	return p, nil
}

// Value returns the page as a document value, the inverse of FromValue.
func (p *Page) Value() spawn.Config {
	var cfg spawn.Config
	add := func(key string, v any) { cfg = append(cfg, spawn.Entry{Key: key, Value: v}) }

	if p.Title != "" {
		add("title", p.Title)
	}
	if p.Lang != "" {
		add("lang", p.Lang)
	}
	if p.Mount != "" {
		add("mount", p.Mount)
	}
	if p.Clear {
		add("clear", true)
	}
	if len(p.StyleSheets) > 0 {
		add("stylesheets", anyList(p.StyleSheets))
	}
	if len(p.Styles) > 0 {
		add("styles", anyList(p.Styles))
	}
	add("body", p.Body)
	return cfg
}

// Build mounts the body with b and reports whether a target was found.
func (p *Page) Build(b *spawn.Builder) bool {
	var target any
	if p.Mount != "" {
		target = p.Mount
	}
	return b.Mount(p.Body, target, p.Clear)
}

// PageData returns render data for the page with body as content.
func (p *Page) PageData(body *html.Node) render.PageData {
	return render.PageData{
		Title:       p.Title,
		Lang:        p.Lang,
		Body:        body,
		StyleSheets: p.StyleSheets,
		Styles:      p.Styles,
	}
}

func stringValue(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("want a string, got %T", v)
	}
	return s, nil
}

func stringList(v any) ([]string, error) {
	switch x := v.(type) {
	case string:
		return []string{x}, nil
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			s, err := stringValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("want a string or list, got %T", v)
}

func anyList(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// langValue canonicalizes a BCP 47 language tag, so "en_us" becomes
// "en-US".
func langValue(v any) (string, error) {
	s, err := stringValue(v)
	if err != nil || s == "" {
		return s, err
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", err
	}
	return tag.String(), nil
}
