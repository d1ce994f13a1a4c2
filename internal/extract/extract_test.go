package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gerunddev/text2tana/internal/schema"
)

func testSchema() schema.Schema {
	return schema.Resolve(schema.DefaultSchema(), schema.Schema{
		Supertags: map[string]string{"task": "vGqW", "incoming": "8mMb"},
	})
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Result
	}{
		{
			name:  "all kinds",
			input: "@inbox #task check https://x.co/a due:library",
			want: Result{
				Target:    "inbox",
				URLs:      []string{"https://x.co/a"},
				Supertags: []string{"task"},
				Fields:    []FieldRef{{Field: "due", Value: "library"}},
				Name:      "check",
			},
		},
		{
			name:  "target not at start",
			input: "check @inbox",
			want:  Result{Name: "check @inbox"},
		},
		{
			name:  "target after leading whitespace",
			input: "   @library   read   later ",
			want:  Result{Target: "library", Name: "read later"},
		},
		{
			name:  "target is case insensitive",
			input: "@INBOX hello",
			want:  Result{Target: "inbox", Name: "hello"},
		},
		{
			name:  "unknown target key stays in name",
			input: "@inboxes hello",
			want:  Result{Name: "@inboxes hello"},
		},
		{
			name:  "url with hash is not a tag",
			input: "read https://x.co/page#task later #task",
			want: Result{
				URLs:      []string{"https://x.co/page#task"},
				Supertags: []string{"task"},
				Name:      "read later",
			},
		},
		{
			name:  "several urls in order",
			input: "http://a.io and HTTPS://b.io/x?y=1",
			want: Result{
				URLs: []string{"http://a.io", "HTTPS://b.io/x?y=1"},
				Name: "and",
			},
		},
		{
			name:  "repeated tags are kept",
			input: "#task call #incoming bob #TASK",
			want: Result{
				Supertags: []string{"task", "incoming", "task"},
				Name:      "call bob",
			},
		},
		{
			name:  "tag inside a word is not a tag",
			input: "foo#task bar",
			want:  Result{Name: "foo#task bar"},
		},
		{
			name:  "unknown tag stays in name",
			input: "buy milk #shopping",
			want:  Result{Name: "buy milk #shopping"},
		},
		{
			name:  "fields after urls in text",
			input: "https://a.io DUE:Schema x",
			want: Result{
				URLs:   []string{"https://a.io"},
				Fields: []FieldRef{{Field: "due", Value: "schema"}},
				Name:   "x",
			},
		},
		{
			name:  "unknown field key stays in name",
			input: "owner:inbox review",
			want:  Result{Name: "owner:inbox review"},
		},
		{
			name:  "field value must be a node key",
			input: "due:tomorrow review",
			want:  Result{Name: "due:tomorrow review"},
		},
		{
			name:  "empty input",
			input: "",
			want:  Result{Name: ""},
		},
		{
			name:  "whitespace only",
			input: " \t  ",
			want:  Result{Name: ""},
		},
	}

	g := Compile(testSchema(), schema.DefaultSettings())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Parse(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestParseEmptySupertags(t *testing.T) {
	got := Parse("buy milk #task", schema.DefaultSchema(), schema.DefaultSettings())

	if got.Supertags != nil {
		t.Errorf("Expected no supertags, got %v", got.Supertags)
	}
	if got.Name != "buy milk #task" {
		t.Errorf("Expected #task to stay in name, got %q", got.Name)
	}
}

func TestParseEmptyNodes(t *testing.T) {
	s := schema.Schema{
		Nodes:  map[string]string{},
		Fields: map[string]string{"due": "SYS_A61"},
	}

	got := Parse("@inbox due:inbox", s, schema.DefaultSettings())
	want := Result{Name: "@inbox due:inbox"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCustomSymbols(t *testing.T) {
	st := schema.ResolveSettings(schema.DefaultSettings(), schema.Settings{
		Symbols: schema.Symbols{Supertag: "+", Field: "=", Node: "!"},
	})

	got := Parse("!library +task due=inbox hello #task", testSchema(), st)
	want := Result{
		Target:    "library",
		Supertags: []string{"task"},
		Fields:    []FieldRef{{Field: "due", Value: "inbox"}},
		Name:      "hello #task",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseQuotesKeys(t *testing.T) {
	s := schema.Schema{Supertags: map[string]string{"to.do": "T"}}

	got := Parse("#toXdo and #to.do now", s, schema.DefaultSettings())
	want := Result{
		Supertags: []string{"to.do"},
		Name:      "#toXdo and now",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseKeepsSchemaKeyCase(t *testing.T) {
	s := schema.Schema{Supertags: map[string]string{"MyTag": "T"}}

	got := Parse("#mytag note", s, schema.DefaultSettings())
	if diff := cmp.Diff([]string{"MyTag"}, got.Supertags); diff != "" {
		t.Errorf("Supertags mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePrefersLongestKey(t *testing.T) {
	s := schema.Schema{Nodes: map[string]string{"in": "A", "inbox": "B"}}

	got := Parse("@inbox note", s, schema.DefaultSettings())
	if got.Target != "inbox" {
		t.Errorf("Expected target inbox, got %q", got.Target)
	}
}

func TestParseIsDeterministic(t *testing.T) {
	g := Compile(testSchema(), schema.DefaultSettings())
	input := "@library #incoming #task due:inbox see https://example.com/a b"

	first := g.Parse(input)
	for i := 0; i < 20; i++ {
		if diff := cmp.Diff(first, g.Parse(input)); diff != "" {
			t.Fatalf("Parse() not deterministic on run %d:\n%s", i, diff)
		}
	}
}

func TestCompileIgnoresLaterSchemaChanges(t *testing.T) {
	s := testSchema()
	g := Compile(s, schema.DefaultSettings())
	s.Supertags["late"] = "L"

	got := g.Parse("#late arrival")
	if got.Supertags != nil {
		t.Errorf("Expected key added after Compile to be ignored, got %v", got.Supertags)
	}
}

func TestRuleApply(t *testing.T) {
	matches, rest := URLRule().Apply("a https://x b https://y")

	want := [][]string{{"https://x"}, {"https://y"}}
	if diff := cmp.Diff(want, matches); diff != "" {
		t.Errorf("Apply() matches mismatch (-want +got):\n%s", diff)
	}
	if Normalize(rest) != "a b" {
		t.Errorf("Expected rest to normalize to %q, got %q", "a b", rest)
	}
}

func TestRuleApplyEmptyKeySet(t *testing.T) {
	rule := SupertagRule(map[string]string{}, schema.DefaultSettings())

	if rule.Pattern() != "" {
		t.Errorf("Expected no pattern for empty key set, got %q", rule.Pattern())
	}
	matches, rest := rule.Apply(" #task ")
	if matches != nil || rest != " #task " {
		t.Errorf("Apply() = (%v, %q), want (nil, %q)", matches, rest, " #task ")
	}
}

func TestRulesOrder(t *testing.T) {
	g := Compile(testSchema(), schema.DefaultSettings())

	var got []string
	for _, r := range g.Rules() {
		got = append(got, r.Kind.String())
	}
	want := []string{"target", "url", "supertag", "field"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rules() order mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"  a  ", "a"},
		{"a \t\n b", "a b"},
		{"already clean", "already clean"},
	}

	for _, tt := range tests {
		got := Normalize(tt.input)
		if got != tt.expected {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
		}
		if again := Normalize(got); again != got {
			t.Errorf("Normalize not idempotent: %q -> %q", got, again)
		}
	}
}
