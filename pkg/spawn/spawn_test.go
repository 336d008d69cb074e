package spawn

import (
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/vango-dev/spawn/pkg/dom"
)

type recorder struct {
	diags []Diagnostic
}

func (r *recorder) codes() []string {
	out := make([]string, len(r.diags))
	for i, d := range r.diags {
		out[i] = d.Code
	}
	return out
}

func (r *recorder) has(code string) bool {
	for _, d := range r.diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

func newBuilder(doc *dom.Document) (*Builder, *recorder) {
	rec := &recorder{}
	b := New(doc,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithReporter(func(d Diagnostic) { rec.diags = append(rec.diags, d) }),
	)
	return b, rec
}

type label string

func (l label) String() string { return "label:" + string(l) }

func TestCreateRoundTrip(t *testing.T) {
	b, rec := newBuilder(nil)

	n := b.CreateTag("div#foo.bar.baz?qux|title=Hello")

	want := `<div id="foo" name="qux" class="bar baz" title="Hello"></div>`
	if got := n.HTML(); got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
	if n.ID() != "foo" {
		t.Errorf("ID() = %q", n.ID())
	}
	if !reflect.DeepEqual(n.Classes(), []string{"bar", "baz"}) {
		t.Errorf("Classes() = %v", n.Classes())
	}
	if v, _ := n.Attr("title"); v != "Hello" {
		t.Errorf("title = %q", v)
	}
	if len(rec.diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", rec.codes())
	}
}

func TestCreateFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantTag  string
		wantCode string
	}{
		{"standard", "section", "section", ""},
		{"custom element", "my-card.x", "my-card", ""},
		{"invalid custom name", "widget", FallbackCustomTag, "S004"},
		{"reserved custom name", "font-face", FallbackCustomTag, "S004"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, rec := newBuilder(nil)
			n := b.CreateTag(tt.input)
			if n.HTMLNode().Data != tt.wantTag {
				t.Errorf("tag = %q, want %q", n.HTMLNode().Data, tt.wantTag)
			}
			if tt.wantCode == "" && len(rec.diags) != 0 {
				t.Errorf("unexpected diagnostics: %v", rec.codes())
			}
			if tt.wantCode != "" && !rec.has(tt.wantCode) {
				t.Errorf("diagnostics = %v, want %s", rec.codes(), tt.wantCode)
			}
		})
	}
}

func TestCreateDefinesCustomElements(t *testing.T) {
	b, _ := newBuilder(nil)
	b.CreateTag("my-card")
	b.CreateTag("my-card")
	if !b.Document().IsDefined("my-card") {
		t.Error("my-card should be defined")
	}

	b.CreateTag("not valid")
	if !b.Document().IsDefined(FallbackCustomTag) {
		t.Errorf("%s should be defined after a fallback", FallbackCustomTag)
	}
}

func TestCreateFragments(t *testing.T) {
	b, rec := newBuilder(nil)

	for _, s := range []string{"", "!", "#", "<>", "</>"} {
		if n := b.CreateTag(s); !n.IsFragment() {
			t.Errorf("CreateTag(%q) should be a fragment", s)
		}
	}
	if len(rec.diags) != 0 {
		t.Errorf("sentinels should not report: %v", rec.codes())
	}

	if n := b.CreateTag(".orphan"); !n.IsFragment() {
		t.Error(".orphan should degrade to a fragment")
	}
	if !rec.has("S010") {
		t.Errorf("diagnostics = %v, want S010", rec.codes())
	}
}

func TestApplyUnknownKey(t *testing.T) {
	b, rec := newBuilder(nil)
	n := b.CreateTag("p")

	n.Apply(Config{{Key: "bogus", Value: 1}, {Key: "text", Value: "hi"}})

	if n.Text() != "hi" {
		t.Errorf("Text() = %q, want hi", n.Text())
	}
	if len(rec.diags) != 1 || rec.diags[0].Code != "S001" || rec.diags[0].Key != "bogus" {
		t.Errorf("diagnostics = %+v, want one S001 for bogus", rec.diags)
	}
}

func TestApplyFailureDoesNotStopLaterKeys(t *testing.T) {
	b, rec := newBuilder(nil)
	n := b.CreateTag("p")

	n.Apply(Config{
		{Key: "prop", Value: Config{{Key: "tagName", Value: "X"}, {Key: "title", Value: "t"}}},
		{Key: "func", Value: func(*Node) { panic("boom") }},
		{Key: "text", Value: "after"},
	})

	if n.Text() != "after" {
		t.Errorf("Text() = %q, want after", n.Text())
	}
	if v, _ := n.Attr("title"); v != "t" {
		t.Errorf("title = %q, want t", v)
	}
	want := []string{"S002", "S002"}
	if !reflect.DeepEqual(rec.codes(), want) {
		t.Fatalf("codes = %v, want %v", rec.codes(), want)
	}
	if rec.diags[0].Key != "prop.tagName" {
		t.Errorf("first key = %q, want prop.tagName", rec.diags[0].Key)
	}
	if rec.diags[1].Key != "func" {
		t.Errorf("second key = %q, want func", rec.diags[1].Key)
	}
}

func TestApplyNonMapping(t *testing.T) {
	b, rec := newBuilder(nil)
	n := b.CreateTag("p")
	n.Apply("text")
	if !rec.has("S002") {
		t.Errorf("diagnostics = %v, want S002", rec.codes())
	}
}

func TestApplyMapOrder(t *testing.T) {
	b, _ := newBuilder(nil)
	n := b.CreateTag("p")
	n.Apply(map[string]any{"attr": map[string]any{"title": "b"}, "id": "a", "text": "c"})
	// Keys run in sorted order: attr, id, text.
	if got := n.HTML(); got != `<p title="b" id="a">c</p>` {
		t.Errorf("HTML() = %q", got)
	}
}

func TestCreateReportsRejectedAttributes(t *testing.T) {
	b, rec := newBuilder(nil)
	n := b.CreateTag("div|a<b=1|title=ok")

	if got := n.HTML(); got != `<div title="ok"></div>` {
		t.Errorf("HTML() = %q", got)
	}
	if len(rec.diags) != 1 || rec.diags[0].Code != "S002" || rec.diags[0].Op != "create" {
		t.Fatalf("diagnostics = %v, want one S002 create", rec.diags)
	}
	if !strings.Contains(rec.diags[0].Key, "<") {
		t.Errorf("Key = %q, want the rejected name", rec.diags[0].Key)
	}
}

func TestAppendSelfReferencingList(t *testing.T) {
	b, rec := newBuilder(nil)
	n := b.CreateTag("div")

	loop := []any{1, nil}
	loop[1] = loop
	n.Append(loop)

	if !rec.has("S005") {
		t.Errorf("diagnostics = %v, want S005", rec.codes())
	}
	if !strings.HasPrefix(n.Text(), "11") {
		t.Errorf("Text() = %q", n.Text())
	}
}

func TestClassNameIdempotent(t *testing.T) {
	b, _ := newBuilder(nil)
	n := b.CreateTag("div.x")

	n.Apply(C("className", "a b a"))
	first := n.HTML()
	n.Apply(C("className", "a b a"))

	if n.HTML() != first {
		t.Errorf("second apply changed %q to %q", first, n.HTML())
	}
	if !reflect.DeepEqual(n.Classes(), []string{"a", "b"}) {
		t.Errorf("Classes() = %v", n.Classes())
	}

	n.Apply(C("addClass", []string{"b", "c"}, "removeClass", "a"))
	if !reflect.DeepEqual(n.Classes(), []string{"b", "c"}) {
		t.Errorf("Classes() after add/remove = %v", n.Classes())
	}
}

func TestApplyCapabilities(t *testing.T) {
	b, rec := newBuilder(nil)
	n := b.CreateTag("div")

	n.Apply(Config{
		{Key: "attrs", Value: map[string]any{"role": "note", "tabindex": 2}},
		{Key: "css", Value: map[string]any{"backgroundColor": "red"}},
		{Key: "dataset", Value: map[string]any{"userId": 7}},
		{Key: "props", Value: map[string]any{"hidden": true, "answer": 42}},
		{Key: "id", Value: "main"},
	})

	if v, _ := n.Attr("role"); v != "note" {
		t.Errorf("role = %q", v)
	}
	if v, _ := n.Attr("tabindex"); v != "2" {
		t.Errorf("tabindex = %q", v)
	}
	if got := n.Style("background-color"); got != "red" {
		t.Errorf("background-color = %q", got)
	}
	if v, _ := n.Attr("data-user-id"); v != "7" {
		t.Errorf("data-user-id = %q", v)
	}
	if v, _ := n.Data("userId"); v != "7" {
		t.Errorf("Data(userId) = %q", v)
	}
	if v, _ := n.Attr("hidden"); v != "" {
		t.Errorf("hidden = %q", v)
	}
	if v, ok := n.Prop("answer"); !ok || v != 42 {
		t.Errorf("Prop(answer) = %v, %v", v, ok)
	}
	if n.ID() != "main" {
		t.Errorf("ID() = %q", n.ID())
	}

	n.Apply(C("style", "color: blue", "attr", map[string]any{"role": nil}))
	if v, _ := n.Attr("style"); v != "color: blue" {
		t.Errorf("style = %q", v)
	}
	if _, ok := n.Attr("role"); ok {
		t.Error("nil attribute value should remove role")
	}

	n.Apply(C("html", "<b>x</b>"))
	if n.InnerHTML() != "<b>x</b>" {
		t.Errorf("InnerHTML() = %q", n.InnerHTML())
	}
	n.Apply(C("textContent", "<b>x</b>"))
	if n.InnerHTML() != "&lt;b&gt;x&lt;/b&gt;" {
		t.Errorf("InnerHTML() after text = %q", n.InnerHTML())
	}

	if len(rec.diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", rec.codes())
	}
}

func TestApplyLazyValues(t *testing.T) {
	b, _ := newBuilder(nil)
	n := b.CreateTag("p#intro")

	n.Apply(Config{
		{Key: "text", Value: func(n *Node) any { return "id is " + n.ID() }},
		{Key: "attr", Value: func() any { return map[string]any{"lang": "en"} }},
	})

	if n.Text() != "id is intro" {
		t.Errorf("Text() = %q", n.Text())
	}
	if v, _ := n.Attr("lang"); v != "en" {
		t.Errorf("lang = %q", v)
	}

	var got *Node
	n.Apply(C("fn", func(n *Node) { got = n }))
	if got != n {
		t.Error("func capability should receive the node")
	}
}

func TestEventBindings(t *testing.T) {
	b, rec := newBuilder(nil)
	n := b.CreateTag("button")
	doc := b.Document()

	count := 0
	click := func() { count++ }

	n.Apply(Config{
		{Key: "on", Value: []any{"click", click}},
		{Key: "on", Value: map[string]any{"click": click}},
		{Key: "on", Value: []any{[]any{"click", click}, map[string]any{"click": click}}},
		{Key: "onClick", Value: click},
	})

	if got := doc.ListenerCount(n.HTMLNode(), "click"); got != 5 {
		t.Fatalf("ListenerCount = %d, want 5", got)
	}
	n.Trigger("click", nil)
	if count != 5 {
		t.Errorf("count = %d, want 5", count)
	}

	n.Apply(C("off", []any{"click", click}))
	if got := doc.ListenerCount(n.HTMLNode(), "click"); got != 0 {
		t.Errorf("ListenerCount after off = %d, want 0", got)
	}
	if len(rec.diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", rec.codes())
	}
}

func TestEventUnknownType(t *testing.T) {
	b, rec := newBuilder(nil)
	n := b.CreateTag("div")

	fired := false
	n.Apply(C("onBlastoff", func(e *dom.Event) { fired = e.Type == "blastoff" }))

	if !rec.has("S009") {
		t.Errorf("diagnostics = %v, want S009", rec.codes())
	}
	n.Trigger("blastoff", nil)
	if !fired {
		t.Error("listener for an unknown event type should still be bound")
	}
}

func TestEventBubbles(t *testing.T) {
	b, _ := newBuilder(nil)
	var order []string

	outer := b.Spawn("div", C("onClick", func() { order = append(order, "outer") }), []any{
		[]any{"button", C("onClick", func() { order = append(order, "inner") })},
	})
	inner := b.Wrap(outer.Children()[0])
	inner.Trigger("click", nil)

	if !reflect.DeepEqual(order, []string{"inner", "outer"}) {
		t.Errorf("order = %v", order)
	}
}

func TestBuildNested(t *testing.T) {
	b, rec := newBuilder(nil)

	n := b.Build([]any{"div", map[string]any{}, []any{
		[]any{"p", map[string]any{}, []any{
			[]any{"b", map[string]any{}, []any{"x"}},
		}},
	}})

	if got := n.HTML(); got != "<div><p><b>x</b></p></div>" {
		t.Errorf("HTML() = %q", got)
	}

	texts := 0
	dom.Walk(n.HTMLNode(), func(c *html.Node) bool {
		if c.Type == html.TextNode {
			texts++
			if c.Data != "x" {
				t.Errorf("unexpected text %q", c.Data)
			}
		}
		return true
	})
	if texts != 1 {
		t.Errorf("text nodes = %d, want 1", texts)
	}
	if len(rec.diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", rec.codes())
	}
}

func TestBuildSlots(t *testing.T) {
	tests := []struct {
		name string
		desc []any
		want string
	}{
		{"tag only", []any{"hr"}, "<hr/>"},
		{"text child", []any{"b", "bold"}, "<b>bold</b>"},
		{"nil config", []any{"p", nil, "x"}, "<p>x</p>"},
		{
			"child list",
			[]any{"ul", []any{[]any{"li", "a"}, []any{"li", "b"}}},
			"<ul><li>a</li><li>b</li></ul>",
		},
		{
			"config and children",
			[]any{"a", C("attr", C("href", "/x")), "go", []any{" ", []any{"i", "now"}}},
			`<a href="/x">go <i>now</i></a>`,
		},
		{"fragment", []any{nil, "a", []any{[]any{"b", "c"}}}, "a<b>c</b>"},
		{"list slot is never a descriptor", []any{"p", []any{"b", "c"}}, "<p>bc</p>"},
		{"empty", []any{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, rec := newBuilder(nil)
			n := b.Build(tt.desc)
			if got := n.HTML(); got != tt.want {
				t.Errorf("HTML() = %q, want %q", got, tt.want)
			}
			if len(rec.diags) != 0 {
				t.Errorf("unexpected diagnostics: %v", rec.codes())
			}
		})
	}
}

func TestBuildBadTag(t *testing.T) {
	b, rec := newBuilder(nil)
	n := b.Build([]any{42, "x"})
	if !n.IsFragment() {
		t.Error("a bad tag should build a fragment")
	}
	if n.HTML() != "x" {
		t.Errorf("HTML() = %q", n.HTML())
	}
	if !rec.has("S005") {
		t.Errorf("diagnostics = %v, want S005", rec.codes())
	}
}

func TestUpdate(t *testing.T) {
	b, _ := newBuilder(nil)
	n := b.Spawn("p", "a")
	n.Update(C("addClass", "z"), "b")
	if got := n.HTML(); got != `<p class="z">ab</p>` {
		t.Errorf("HTML() = %q", got)
	}
}

func TestAppendClassification(t *testing.T) {
	b, rec := newBuilder(nil)
	n := b.CreateTag("div")

	b.Append(n, Markup("<i>a</i>"))
	b.Append(n, FragmentPrefix+"<b>")
	b.Append(n, "<u>")
	b.Append(n, 42)
	b.Append(n, 1.5)
	b.Append(n, nil)
	b.Append(n, label("x"))
	b.Append(n, b.CreateTag("em"))
	b.Append(n, func(o *Node) any { return []any{"span", o.HTMLNode().Data} })

	want := "<i>a</i>&lt;b&gt;&lt;u&gt;421.5label:x<em></em><span>div</span>"
	if got := n.InnerHTML(); got != want {
		t.Errorf("InnerHTML() = %q, want %q", got, want)
	}
	if len(rec.diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", rec.codes())
	}

	b.Append(n, true)
	b.Append(n, struct{}{})
	if !reflect.DeepEqual(rec.codes(), []string{"S005", "S005"}) {
		t.Errorf("codes = %v, want two S005", rec.codes())
	}
	if got := n.InnerHTML(); got != want {
		t.Errorf("unsupported children changed the node: %q", got)
	}
}

func TestAppendMarkupUsesContext(t *testing.T) {
	b, _ := newBuilder(nil)
	n := b.CreateTag("ul")
	b.Append(n, Markup("<li>a</li><li>b</li>"))
	if got := n.HTML(); got != "<ul><li>a</li><li>b</li></ul>" {
		t.Errorf("HTML() = %q", got)
	}
}

func TestAppendAllKeepsOrder(t *testing.T) {
	tests := []struct {
		name string
		pos  dom.Position
		want string
	}{
		{"beforeend", dom.BeforeEnd, "<section>[<p>x123</p>]</section>"},
		{"afterbegin", dom.AfterBegin, "<section>[<p>123x</p>]</section>"},
		{"beforebegin", dom.BeforeBegin, "<section>[123<p>x</p>]</section>"},
		{"afterend", dom.AfterEnd, "<section>[<p>x</p>123]</section>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, rec := newBuilder(nil)
			p := b.Spawn("p", "x")
			b.Spawn("section", "[", p, "]")

			b.AppendAll(p, []any{"1", "2", "3"}, tt.pos)

			parent := b.Wrap(p.HTMLNode().Parent)
			if got := parent.HTML(); got != tt.want {
				t.Errorf("HTML() = %q, want %q", got, tt.want)
			}
			if len(rec.diags) != 0 {
				t.Errorf("unexpected diagnostics: %v", rec.codes())
			}
		})
	}
}

func TestNodeInsertionHelpers(t *testing.T) {
	b, _ := newBuilder(nil)
	list := b.Spawn("ol", []any{[]any{"li", "2"}})
	item := b.Wrap(list.Children()[0])

	list.Prepend([]any{"li", "1"})
	list.Append([]any{"li", "4"})
	item.After([]any{"li", "3"})
	item.Before("·")

	want := "<ol><li>1</li>·<li>2</li><li>3</li><li>4</li></ol>"
	if got := list.HTML(); got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
}

func TestAppendMovesAttachedNodes(t *testing.T) {
	b, _ := newBuilder(nil)
	child := b.Spawn("b", "x")
	first := b.Spawn("div", child)
	second := b.Spawn("div")

	second.Append(child)

	if first.InnerHTML() != "" {
		t.Errorf("first = %q, want empty", first.InnerHTML())
	}
	if second.InnerHTML() != "<b>x</b>" {
		t.Errorf("second = %q", second.InnerHTML())
	}
}

func TestAppendRecoversPanics(t *testing.T) {
	b, rec := newBuilder(nil)
	n := b.CreateTag("div")

	b.Append(n, func() any { panic("boom") })
	if !rec.has("S008") {
		t.Errorf("diagnostics = %v, want S008", rec.codes())
	}

	var loop func() any
	loop = func() any { return loop }
	b.Append(n, loop)
	if !rec.has("S005") {
		t.Errorf("diagnostics = %v, want S005 for runaway nesting", rec.codes())
	}

	b.Append(n, n)
	if !rec.has("S008") {
		t.Errorf("diagnostics = %v, want S008 for a cycle", rec.codes())
	}
}

func TestMount(t *testing.T) {
	b, rec := newBuilder(nil)
	body := b.Wrap(b.Document().Body())

	if !b.AppendTo([]any{"p", "old"}, nil) {
		t.Fatal("AppendTo(nil) should mount into body")
	}
	if !b.AppendTo(b.CreateTag("div#app"), "body") {
		t.Fatal("AppendTo(body) failed")
	}
	if got := body.InnerHTML(); got != `<p>old</p><div id="app"></div>` {
		t.Errorf("body = %q", got)
	}

	b.Render([]any{"h1", "title"}, "#app")
	b.Render([]any{"h1", "again"}, "#app")
	if got := body.InnerHTML(); got != `<p>old</p><div id="app"><h1>again</h1></div>` {
		t.Errorf("body after render = %q", got)
	}

	b.Render("fresh", "#nowhere")
	if got := body.InnerHTML(); got != "fresh" {
		t.Errorf("unmatched selector should fall back to body, got %q", got)
	}

	if len(rec.diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", rec.codes())
	}
}

func TestMountFragment(t *testing.T) {
	b, _ := newBuilder(nil)
	frag := b.Build([]any{"", []any{[]any{"b", "1"}, []any{"i", "2"}}})

	b.Render(frag, nil)

	if got := dom.InnerHTML(b.Document().Body()); got != "<b>1</b><i>2</i>" {
		t.Errorf("body = %q", got)
	}
	if frag.HTMLNode().FirstChild != nil {
		t.Error("a mounted fragment should be empty")
	}
}

func TestMountWithoutBody(t *testing.T) {
	doc := dom.New()
	doc.Remove(doc.Body())
	b, rec := newBuilder(doc)

	if b.Render([]any{"p"}, "#missing") {
		t.Error("Render should report no target")
	}
	if !reflect.DeepEqual(rec.codes(), []string{"S006"}) {
		t.Errorf("codes = %v, want [S006]", rec.codes())
	}
}

func TestMountInvalidSelector(t *testing.T) {
	b, rec := newBuilder(nil)
	if !b.AppendTo("x", "div[") {
		t.Error("an invalid selector should fall back to body")
	}
	if !rec.has("S007") {
		t.Errorf("diagnostics = %v, want S007", rec.codes())
	}
}

func TestNodeQueryAndClone(t *testing.T) {
	b, _ := newBuilder(nil)
	n := b.Spawn("div", []any{
		[]any{"p.x", "a"},
		[]any{"p.x", "b"},
		[]any{"p", "c"},
	})

	if got := len(n.Query("p.x")); got != 2 {
		t.Errorf("Query(p.x) = %d, want 2", got)
	}
	if got := len(n.Query(".. x")); got != 2 {
		t.Errorf("Query(.. x) = %d, want 2", got)
	}

	c := n.Clone()
	c.SetAttr("title", "copy")
	if _, ok := n.Attr("title"); ok {
		t.Error("clone should not share attributes")
	}
	if c.InnerHTML() != n.InnerHTML() {
		t.Errorf("clone children = %q, want %q", c.InnerHTML(), n.InnerHTML())
	}
	if c.HTMLNode().Parent != nil {
		t.Error("clone should be detached")
	}
}

func TestCanonical(t *testing.T) {
	tests := map[string]string{
		"attr":      "attr",
		"attrs":     "attr",
		"css":       "style",
		"dataset":   "data",
		"class":     "className",
		"classes":   "className",
		"innerHTML": "html",
		"append":    "children",
		"call":      "func",
		"onClick":   "",
		"nope":      "",
	}
	for key, want := range tests {
		if got := Canonical(key); got != want {
			t.Errorf("Canonical(%q) = %q, want %q", key, got, want)
		}
	}

	caps := Capabilities()
	if len(caps) != 14 {
		t.Errorf("Capabilities() = %v", caps)
	}
	for _, c := range caps {
		if Canonical(c) != c {
			t.Errorf("capability %q is not canonical", c)
		}
	}
}

func TestDiagnosticString(t *testing.T) {
	b, rec := newBuilder(nil)
	b.CreateTag("p").Apply(C("bogus", 1))
	if len(rec.diags) != 1 {
		t.Fatalf("diagnostics = %v", rec.codes())
	}
	s := rec.diags[0].String()
	if !strings.HasPrefix(s, "S001 apply bogus: ") {
		t.Errorf("String() = %q", s)
	}
}
