package payload

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gerunddev/text2tana/internal/extract"
	"github.com/gerunddev/text2tana/internal/schema"
)

func testSchema() schema.Schema {
	return schema.Resolve(schema.DefaultSchema(), schema.Schema{
		Nodes:     map[string]string{"myproject": "VSGhe"},
		Supertags: map[string]string{"task": "vGqW", "incoming": "8mMb"},
		Fields:    map[string]string{"project": "C_Q2"},
	})
}

func TestConvertWireFormat(t *testing.T) {
	p := Convert("@inbox #task check https://x.co/a due:library", testSchema(), schema.DefaultSettings())

	got, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}

	expected := `{"targetNodeId":"INBOX","nodes":[{"name":"check","dataType":"plain",` +
		`"supertags":[{"id":"vGqW"}],"children":[` +
		`{"attributeId":"SYS_A61","type":"field","children":[{"id":"LIBRARY","dataType":"reference"}]},` +
		`{"name":"https://x.co/a","dataType":"url"}]}]}`

	if string(got) != expected {
		t.Errorf("Wire format mismatch.\nExpected:\n%s\n\nGot:\n%s", expected, got)
	}
}

func TestConvertEmptyInput(t *testing.T) {
	p := Convert("", testSchema(), schema.DefaultSettings())

	want := Payload{
		TargetNodeID: "INBOX",
		Nodes: []Node{{
			Name:      "",
			DataType:  "plain",
			Supertags: []Ref{},
			Children:  []Child{},
		}},
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("Convert(\"\") mismatch (-want +got):\n%s", diff)
	}

	got, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}
	expected := `{"targetNodeId":"INBOX","nodes":[{"name":"","dataType":"plain","supertags":[],"children":[]}]}`
	if string(got) != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

func TestBuildTarget(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		settings schema.Settings
		expected string
	}{
		{
			name:     "parsed target",
			input:    "@myproject write docs",
			settings: schema.DefaultSettings(),
			expected: "VSGhe",
		},
		{
			name:     "target not at start uses default",
			input:    "check @library",
			settings: schema.DefaultSettings(),
			expected: "INBOX",
		},
		{
			name:  "configured default target",
			input: "note",
			settings: schema.ResolveSettings(schema.DefaultSettings(), schema.Settings{
				Default: schema.Defaults{Target: "library"},
			}),
			expected: "LIBRARY",
		},
		{
			name:  "default target missing from schema",
			input: "note",
			settings: schema.ResolveSettings(schema.DefaultSettings(), schema.Settings{
				Default: schema.Defaults{Target: "nowhere"},
			}),
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Convert(tt.input, testSchema(), tt.settings)
			if p.TargetNodeID != tt.expected {
				t.Errorf("TargetNodeID = %q, want %q", p.TargetNodeID, tt.expected)
			}
		})
	}
}

func TestBuildChildrenOrder(t *testing.T) {
	input := "https://first.io see https://second.io project:myproject due:inbox #task #task"
	p := Convert(input, testSchema(), schema.DefaultSettings())

	if len(p.Nodes) != 1 {
		t.Fatalf("Expected exactly one node, got %d", len(p.Nodes))
	}
	node := p.Nodes[0]

	want := []Child{
		{AttributeID: "C_Q2", Type: TypeField, Children: []Ref{{ID: "VSGhe", DataType: DataTypeReference}}},
		{AttributeID: "SYS_A61", Type: TypeField, Children: []Ref{{ID: "INBOX", DataType: DataTypeReference}}},
		{Name: "https://first.io", DataType: DataTypeURL},
		{Name: "https://second.io", DataType: DataTypeURL},
	}
	if diff := cmp.Diff(want, node.Children); diff != "" {
		t.Errorf("Children mismatch (-want +got):\n%s", diff)
	}

	wantTags := []Ref{{ID: "vGqW"}, {ID: "vGqW"}}
	if diff := cmp.Diff(wantTags, node.Supertags); diff != "" {
		t.Errorf("Supertags mismatch (-want +got):\n%s", diff)
	}
	if node.Name != "see" {
		t.Errorf("Expected name %q, got %q", "see", node.Name)
	}
}

func TestBuildChildCount(t *testing.T) {
	inputs := []string{
		"",
		"plain text only",
		"due:inbox",
		"https://a.io https://b.io due:library project:schema",
		"@library #incoming https://a.io",
	}

	c := NewConverter(testSchema(), schema.DefaultSettings())
	for _, input := range inputs {
		res := c.Parse(input)
		p := c.Build(res)

		children := p.Nodes[0].Children
		if len(children) != len(res.Fields)+len(res.URLs) {
			t.Errorf("%q: expected %d children, got %d", input, len(res.Fields)+len(res.URLs), len(children))
		}
		for i, child := range children {
			if child.IsField() != (i < len(res.Fields)) {
				t.Errorf("%q: child %d out of order: %+v", input, i, child)
			}
		}
	}
}

func TestBuildType(t *testing.T) {
	s := testSchema()
	st := schema.DefaultSettings()

	node := BuildNode(extract.Result{Name: "x"}, s, st)
	if node.DataType != "plain" {
		t.Errorf("Expected default type plain, got %q", node.DataType)
	}

	node = BuildNode(extract.Result{Name: "x", Type: "boolean"}, s, st)
	if node.DataType != "boolean" {
		t.Errorf("Expected parsed type boolean, got %q", node.DataType)
	}
}

func TestCheck(t *testing.T) {
	s := testSchema()
	st := schema.DefaultSettings()

	if err := Check(extract.Parse("@inbox #task due:library x", s, st), s, st); err != nil {
		t.Errorf("Check() on known keys returned %v", err)
	}

	res := extract.Result{
		Target:    "nowhere",
		Supertags: []string{"ghost"},
		Fields:    []extract.FieldRef{{Field: "due", Value: "void"}},
	}
	err := Check(res, s, st)
	if err == nil {
		t.Fatal("Check() should report unknown keys")
	}

	var unknown *UnknownKeyError
	if !errors.As(err, &unknown) {
		t.Fatalf("Expected UnknownKeyError, got %T", err)
	}

	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("Expected joined errors, got %T", err)
	}
	if n := len(joined.Unwrap()); n != 3 {
		t.Errorf("Expected 3 unknown keys, got %d: %v", n, err)
	}
}

func TestCheckDefaultTarget(t *testing.T) {
	st := schema.ResolveSettings(schema.DefaultSettings(), schema.Settings{
		Default: schema.Defaults{Target: "nowhere"},
	})

	err := Check(extract.Result{Name: "x"}, testSchema(), st)
	var unknown *UnknownKeyError
	if !errors.As(err, &unknown) || unknown.Key != "nowhere" {
		t.Errorf("Expected unknown default target, got %v", err)
	}
}

func TestConverterSnapshotsSchema(t *testing.T) {
	s := testSchema()
	c := NewConverter(s, schema.DefaultSettings())

	s.Nodes["inbox"] = "CHANGED"

	if got := c.Convert("note").TargetNodeID; got != "INBOX" {
		t.Errorf("Converter should not see later schema changes, got %q", got)
	}
	if c.Schema().Nodes["inbox"] != "INBOX" {
		t.Errorf("Schema() returned unexpected value %q", c.Schema().Nodes["inbox"])
	}
}

func TestConverterConcurrentUse(t *testing.T) {
	c := NewConverter(testSchema(), schema.DefaultSettings())
	want := c.Convert("@library #task read https://go.dev due:inbox")

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := c.Convert("@library #task read https://go.dev due:inbox")
			if diff := cmp.Diff(want, got); diff != "" {
				errs <- diff
			}
		}()
	}
	wg.Wait()
	close(errs)

	for diff := range errs {
		t.Errorf("Concurrent Convert mismatch:\n%s", diff)
	}
}
