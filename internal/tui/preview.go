package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gerunddev/text2tana/internal/extract"
	"github.com/gerunddev/text2tana/internal/schema"
	"github.com/gerunddev/text2tana/internal/styles"
)

// RenderPreview renders a parse result as labelled lines. The default
// target from st is shown, dimmed, when the text names no target.
func RenderPreview(res extract.Result, st schema.Settings) string {
	var lines []string
	row := func(label, value string) {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, styles.LabelStyle.Render(label), value))
	}

	if res.HasTarget() {
		row("target", styles.TargetStyle.Render(st.Symbols.Node+res.Target))
	} else {
		row("target", styles.DimStyle.Render(st.Symbols.Node+st.Default.Target+" (default)"))
	}

	if res.Name == "" {
		row("name", styles.DimStyle.Render("(empty)"))
	} else {
		row("name", styles.NameStyle.Render(res.Name))
	}

	if len(res.Supertags) > 0 {
		tags := make([]string, len(res.Supertags))
		for i, tag := range res.Supertags {
			tags[i] = styles.SupertagStyle.Render(st.Symbols.Supertag + tag)
		}
		row("supertags", strings.Join(tags, " "))
	}
	for _, f := range res.Fields {
		row("field", styles.FieldStyle.Render(f.Field+" → "+f.Value))
	}
	for _, u := range res.URLs {
		row("url", styles.URLStyle.Render(u))
	}

	return strings.Join(lines, "\n")
}
