// Package diff shows how a configured schema differs from the built-in one.
package diff

import (
	"fmt"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"gopkg.in/yaml.v3"

	"github.com/gerunddev/text2tana/internal/schema"
)

// document is the YAML form both sides are rendered to before diffing
type document struct {
	Schema   schema.Schema   `yaml:"schema"`
	Settings schema.Settings `yaml:"settings"`
}

// Unified returns a unified diff from oldText to newText, or "" when they
// are equal
func Unified(oldName, newName, oldText, newText string) string {
	if oldText == newText {
		return ""
	}
	edits := myers.ComputeEdits(span.URIFromPath(oldName), oldText, newText)
	return fmt.Sprint(gotextdiff.ToUnified(oldName, newName, oldText, edits))
}

// Effective diffs the built-in schema and settings against s and st.
// The result is a markdown diff code fence, or "" when nothing differs.
func Effective(s schema.Schema, st schema.Settings) (string, error) {
	before, err := render(schema.DefaultSchema(), schema.DefaultSettings())
	if err != nil {
		return "", fmt.Errorf("failed to render defaults: %w", err)
	}
	after, err := render(s, st)
	if err != nil {
		return "", fmt.Errorf("failed to render configuration: %w", err)
	}

	unified := Unified("defaults.yaml", "effective.yaml", before, after)
	if unified == "" {
		return "", nil
	}

	// Wrap in markdown diff code fence
	return fmt.Sprintf("```diff\n%s```\n", unified), nil
}

// render marshals to YAML; map keys come out sorted so the diff is stable
func render(s schema.Schema, st schema.Settings) (string, error) {
	data, err := yaml.Marshal(document{Schema: s, Settings: st})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
