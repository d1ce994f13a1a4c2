// Package extract turns one line of shorthand text into a Result.
//
// Four rules run in a fixed order over a shared buffer: target, urls,
// supertags, fields. Each rule removes what it matched before the next one
// runs, so no piece of text is ever classified twice. Whatever is left,
// with whitespace collapsed, becomes the node name.
package extract

import (
	"strings"

	"github.com/gerunddev/text2tana/internal/schema"
)

// FieldRef is a field key paired with the node key it points at
type FieldRef struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Result is the parsed form of one input line. Target, URLs, Supertags
// and Fields are left zero when nothing of that kind was found. Name is
// always set, possibly to "".
type Result struct {
	Target    string     `json:"target,omitempty"`
	Type      string     `json:"type,omitempty"`
	URLs      []string   `json:"urls,omitempty"`
	Supertags []string   `json:"supertags,omitempty"`
	Fields    []FieldRef `json:"fields,omitempty"`
	Name      string     `json:"name"`
}

// HasTarget reports whether the input named a target node
func (r Result) HasTarget() bool {
	return r.Target != ""
}

// Grammar is the compiled rule set for one schema and settings pair. It is
// read-only after Compile and safe for concurrent use.
type Grammar struct {
	rules []Rule

	// lowercase key -> key as written in the schema
	nodes     map[string]string
	supertags map[string]string
	fields    map[string]string
}

// Compile builds the extraction rules from the current schema keys.
// Keys added to the schema afterwards are not picked up.
func Compile(s schema.Schema, st schema.Settings) *Grammar {
	return &Grammar{
		rules: []Rule{
			TargetRule(s.Nodes, st),
			URLRule(),
			SupertagRule(s.Supertags, st),
			FieldRule(s.Fields, s.Nodes, st),
		},
		nodes:     canonicalKeys(s.Nodes),
		supertags: canonicalKeys(s.Supertags),
		fields:    canonicalKeys(s.Fields),
	}
}

// Parse compiles a grammar and parses text with it. Callers parsing many
// lines should Compile once and reuse the Grammar.
func Parse(text string, s schema.Schema, st schema.Settings) Result {
	return Compile(s, st).Parse(text)
}

// Rules returns the rules in the order they are applied
func (g *Grammar) Rules() []Rule {
	rules := make([]Rule, len(g.rules))
	copy(rules, g.rules)
	return rules
}

// Parse folds the rules over text and returns what they extracted
func (g *Grammar) Parse(text string) Result {
	var res Result

	buf := " " + text + " "
	for _, rule := range g.rules {
		var matches [][]string
		matches, buf = rule.Apply(buf)
		g.collect(&res, rule.Kind, matches)
	}

	res.Name = Normalize(buf)
	return res
}

func (g *Grammar) collect(res *Result, kind Kind, matches [][]string) {
	for _, m := range matches {
		switch kind {
		case KindTarget:
			if res.Target == "" {
				res.Target = canonical(g.nodes, m[0])
			}
		case KindURL:
			res.URLs = append(res.URLs, m[0])
		case KindSupertag:
			res.Supertags = append(res.Supertags, canonical(g.supertags, m[0]))
		case KindField:
			if len(m) < 2 {
				continue
			}
			res.Fields = append(res.Fields, FieldRef{
				Field: canonical(g.fields, m[0]),
				Value: canonical(g.nodes, m[1]),
			})
		}
	}
}

// Normalize collapses runs of whitespace to one space and trims the ends.
// It is idempotent.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func canonicalKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for _, k := range schema.Keys(m) {
		lower := strings.ToLower(k)
		if _, ok := out[lower]; !ok {
			out[lower] = k
		}
	}
	return out
}

func canonical(keys map[string]string, matched string) string {
	if k, ok := keys[strings.ToLower(matched)]; ok {
		return k
	}
	return strings.ToLower(matched)
}
