package shorthand

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Descriptor
	}{
		{"empty", "", Descriptor{Fragment: true}},
		{"bang", "!", Descriptor{Fragment: true}},
		{"hash", "#", Descriptor{Fragment: true}},
		{"angle", "<>", Descriptor{Fragment: true}},
		{"closing angle", "</>", Descriptor{Fragment: true}},
		{"blank", "   ", Descriptor{Fragment: true}},
		{"bare tag", "div", Descriptor{Tag: "div"}},
		{"upper tag", "  SECTION ", Descriptor{Tag: "section"}},
		{"id", "p#intro", Descriptor{Tag: "p", ID: "intro"}},
		{
			"classes collapse",
			"span.a.b.a..c",
			Descriptor{Tag: "span", Classes: []string{"a", "b", "c"}},
		},
		{"name", "input?email", Descriptor{Tag: "input", Name: "email"}},
		{
			"everything",
			`div#main.card.wide?contact|role=region,aria-label="Contact form"|hidden`,
			Descriptor{
				Tag:     "div",
				ID:      "main",
				Classes: []string{"card", "wide"},
				Name:    "contact",
				Attrs: []Attr{
					{Name: "role", Value: "region"},
					{Name: "aria-label", Value: "Contact form"},
					{Name: "hidden", Value: ""},
				},
			},
		},
		{
			"single quotes and first equals",
			"a|href='/x?y=1'",
			Descriptor{Tag: "a", Attrs: []Attr{{Name: "href", Value: "/x?y=1"}}},
		},
		{
			"empty attr names skipped",
			"b|,=x, |title = t ",
			Descriptor{Tag: "b", Attrs: []Attr{{Name: "title", Value: "t"}}},
		},
		{
			"reference example",
			"div#foo.bar.baz?qux|title=Hello",
			Descriptor{
				Tag:     "div",
				ID:      "foo",
				Classes: []string{"bar", "baz"},
				Name:    "qux",
				Attrs:   []Attr{{Name: "title", Value: "Hello"}},
			},
		},
		{"custom element", "my-card", Descriptor{Tag: "my-card"}},
		{
			"empty tag degrades",
			"#only-id.c",
			Descriptor{Fragment: true, ID: "only-id", Classes: []string{"c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDegraded(t *testing.T) {
	if Parse("<>").Degraded() {
		t.Error("a sentinel fragment is not degraded")
	}
	if !Parse(".x").Degraded() {
		t.Error(".x should be a degraded fragment")
	}
	if Parse("div.x").Degraded() {
		t.Error("div.x is an element")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "<>"},
		{"DIV#a.b.c?n", "div#a.b.c?n"},
		{`a,href=/x,title="two words"`, `a|href=/x|title="two words"`},
		{"input|required", "input|required"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Parse(tt.input).String()
			if got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if again := Parse(got); !reflect.DeepEqual(again, Parse(tt.input)) {
				t.Errorf("round trip changed descriptor: %+v", again)
			}
		})
	}
}
