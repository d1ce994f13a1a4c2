package styles

import "github.com/charmbracelet/glamour"

// RenderMarkdown renders markdown for the terminal. It returns the input
// unchanged if glamour cannot render it.
func RenderMarkdown(md string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}

	rendered, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return rendered
}
