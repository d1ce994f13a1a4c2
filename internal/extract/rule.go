package extract

import (
	"regexp"
	"strings"

	"github.com/gerunddev/text2tana/internal/schema"
)

// Kind identifies what an extraction rule pulls out of the text
type Kind int

const (
	KindTarget Kind = iota
	KindURL
	KindSupertag
	KindField
)

func (k Kind) String() string {
	switch k {
	case KindTarget:
		return "target"
	case KindURL:
		return "url"
	case KindSupertag:
		return "supertag"
	case KindField:
		return "field"
	default:
		return "unknown"
	}
}

// Rule is one extraction pass. Applying it returns the captured values of
// every match and the buffer with each matched span replaced by a single
// space.
type Rule struct {
	Kind Kind
	re   *regexp.Regexp
}

// Pattern returns the compiled expression, or "" for a rule that never
// matches.
func (r Rule) Pattern() string {
	if r.re == nil {
		return ""
	}
	return r.re.String()
}

// Apply runs the rule over buf. For each match the capture groups are
// returned; a pattern without groups yields the full match. Matches whose
// last value is empty are ignored and left in the buffer.
func (r Rule) Apply(buf string) ([][]string, string) {
	if r.re == nil {
		return nil, buf
	}

	locs := r.re.FindAllStringSubmatchIndex(buf, -1)
	if len(locs) == 0 {
		return nil, buf
	}

	var (
		matches [][]string
		rest    strings.Builder
		prev    int
	)
	rest.Grow(len(buf))

	for _, loc := range locs {
		values := submatches(buf, loc)
		if len(values) == 0 || values[len(values)-1] == "" {
			continue
		}
		matches = append(matches, values)
		rest.WriteString(buf[prev:loc[0]])
		rest.WriteByte(' ')
		prev = loc[1]
	}
	rest.WriteString(buf[prev:])

	return matches, rest.String()
}

func submatches(buf string, loc []int) []string {
	if len(loc) == 2 {
		return []string{buf[loc[0]:loc[1]]}
	}
	values := make([]string, 0, len(loc)/2-1)
	for i := 2; i+1 < len(loc); i += 2 {
		if loc[i] < 0 {
			values = append(values, "")
			continue
		}
		values = append(values, buf[loc[i]:loc[i+1]])
	}
	return values
}

var urlPattern = regexp.MustCompile(`(?i)https?://\S+`)

// TargetRule matches the node symbol followed by a node key, only at the
// very start of the text.
func TargetRule(nodes map[string]string, st schema.Settings) Rule {
	alt := alternation(nodes)
	if alt == "" {
		return Rule{Kind: KindTarget}
	}
	return Rule{
		Kind: KindTarget,
		re:   regexp.MustCompile(`(?i)^\s*` + regexp.QuoteMeta(st.Symbols.Node) + `(` + alt + `)\b`),
	}
}

// URLRule matches http(s) URLs. URLs end at the first whitespace.
func URLRule() Rule {
	return Rule{Kind: KindURL, re: urlPattern}
}

// SupertagRule matches the supertag symbol followed by a supertag key
// anywhere in the text. The symbol must start the text or follow a
// character of the opposite word class, so "a#task" is not a tag.
func SupertagRule(supertags map[string]string, st schema.Settings) Rule {
	alt := alternation(supertags)
	if alt == "" {
		return Rule{Kind: KindSupertag}
	}
	sym := st.Symbols.Supertag
	return Rule{
		Kind: KindSupertag,
		re:   regexp.MustCompile(`(?i)` + leadingBoundary(sym) + regexp.QuoteMeta(sym) + `(` + alt + `)\b`),
	}
}

// FieldRule matches "field<sep>node" pairs such as "due:library".
func FieldRule(fields, nodes map[string]string, st schema.Settings) Rule {
	fieldAlt, nodeAlt := alternation(fields), alternation(nodes)
	if fieldAlt == "" || nodeAlt == "" {
		return Rule{Kind: KindField}
	}
	return Rule{
		Kind: KindField,
		re: regexp.MustCompile(`(?i)\b(` + fieldAlt + `)` + regexp.QuoteMeta(st.Symbols.Field) +
			`(` + nodeAlt + `)\b`),
	}
}

// alternation joins the quoted keys of m, longest first.
func alternation(m map[string]string) string {
	keys := schema.Keys(m)
	for i, k := range keys {
		keys[i] = regexp.QuoteMeta(k)
	}
	return strings.Join(keys, "|")
}

// leadingBoundary returns the assertion that keeps a symbol from matching
// in the middle of a word.
func leadingBoundary(sym string) string {
	if sym != "" && isWordByte(sym[0]) {
		return `\b`
	}
	return `\B`
}

// isWordByte matches the ASCII word class used by \b in RE2.
func isWordByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
