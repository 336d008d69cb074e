// Package selector implements the prefix query grammar: a short prefix
// picks a lookup strategy and the rest of the query is its argument.
//
//	"|# main"    element with id "main"
//	".. card"    elements with class "card"
//	"?| email"   elements named "email"
//	"~ p"        <p> elements
//	"@ href"     elements with an href attribute
//	"== 42"      form controls whose value is "42"
//	"^ nav > a"  first match of a CSS selector
//	"li.active"  every match of a CSS selector
package selector

import "strings"

// Strategy is a lookup method.
type Strategy int

const (
	ByAll Strategy = iota
	ByID
	ByClass
	ByName
	ByTag
	ByAttr
	ByValue
	BySelector
)

var strategyNames = [...]string{
	ByAll:      "all",
	ByID:       "id",
	ByClass:    "class",
	ByName:     "name",
	ByTag:      "tag",
	ByAttr:     "attr",
	ByValue:    "value",
	BySelector: "selector",
}

func (s Strategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return "unknown"
}

// prefixes maps one- and two-character prefixes to strategies. Several
// spellings map to the same strategy.
var prefixes = map[string]Strategy{
	"|#": ByID, "#|": ByID, ":#": ByID, "#:": ByID, "##": ByID, "# ": ByID, "#": ByID,

	"|.": ByClass, ".|": ByClass, ":.": ByClass, ".:": ByClass, "..": ByClass, ". ": ByClass, ".": ByClass,

	"|?": ByName, "?|": ByName, ":?": ByName, "?:": ByName, "??": ByName, "? ": ByName, "?": ByName,

	"|~": ByTag, "~|": ByTag, "~:": ByTag, "~ ": ByTag, "~": ByTag,
	"|<": ByTag, "<|": ByTag, ":<": ByTag, "<:": ByTag, "</": ByTag, "<>": ByTag,
	"< ": ByTag, "> ": ByTag, "<": ByTag, ">": ByTag,

	"|@": ByAttr, "@|": ByAttr, "@:": ByAttr, "@ ": ByAttr, "@": ByAttr,

	"|=": ByValue, "=|": ByValue, "=:": ByValue, "==": ByValue, "= ": ByValue, "=": ByValue,

	"|^": BySelector, "^|": BySelector, ":^": BySelector, "^:": BySelector, "^ ": BySelector,
	"|/": BySelector, "/|": BySelector, "/ ": BySelector,
	"^": BySelector, "/": BySelector,

	"|*": ByAll, "*|": ByAll, "*:": ByAll, "**": ByAll, "* ": ByAll, "*": ByAll, " ": ByAll,
	"//": ByAll,
}

// Query is a resolved query.
type Query struct {
	Strategy Strategy
	Residual string

	// Prefix is the text that selected the strategy, empty when none did.
	Prefix string
}

func (q Query) String() string {
	return q.Strategy.String() + "(" + q.Residual + ")"
}

// Resolve picks a strategy for query. The first two characters are tried
// first and consumed on a match. Failing that, a match on the first
// character alone keeps that character as the residual. Anything else is
// ByAll over the whole trimmed query.
func Resolve(query string) Query {
	s := strings.TrimSpace(query)

	head := s
	if len(head) > 2 {
		head = head[:2]
	}
	if st, ok := prefixes[head]; ok && head != "" {
		return Query{Strategy: st, Residual: strings.TrimSpace(s[len(head):]), Prefix: head}
	}
	if s != "" {
		if st, ok := prefixes[s[:1]]; ok {
			return Query{Strategy: st, Residual: s[:1], Prefix: s[:1]}
		}
	}
	return Query{Strategy: ByAll, Residual: s}
}
