package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/gerunddev/text2tana/internal/schema"
	"github.com/gerunddev/text2tana/internal/styles"
)

// Syntax prints a cheat sheet of the shorthand and the configured keys
func Syntax(args []string) {
	f, _, err := parseArgs(args)
	if err != nil {
		fail("Invalid arguments", err)
	}

	s := openSession()
	defer s.cleanup()

	md := SyntaxMarkdown(s.conv.Schema(), s.conv.Settings())
	if f.Raw {
		fmt.Print(md)
		return
	}
	fmt.Fprint(os.Stdout, styles.RenderMarkdown(md))
}

// SyntaxMarkdown describes the shorthand for the given schema and settings
func SyntaxMarkdown(s schema.Schema, st schema.Settings) string {
	var b strings.Builder

	b.WriteString("# text2tana syntax\n\n")
	b.WriteString("| Write | Meaning |\n|---|---|\n")
	fmt.Fprintf(&b, "| `%s<node>` | target node, only at the very start |\n", st.Symbols.Node)
	fmt.Fprintf(&b, "| `%s<tag>` | supertag, anywhere |\n", st.Symbols.Supertag)
	fmt.Fprintf(&b, "| `<field>%s<node>` | field pointing at a node |\n", st.Symbols.Field)
	b.WriteString("| `http(s)://...` | url child |\n\n")

	fmt.Fprintf(&b, "Without a target the node goes to `%s`. Node type is `%s`.\n",
		st.Default.Target, st.Default.Type)

	writeKeyTable(&b, "Nodes", s.Nodes)
	writeKeyTable(&b, "Supertags", s.Supertags)
	writeKeyTable(&b, "Fields", s.Fields)

	return b.String()
}

func writeKeyTable(b *strings.Builder, title string, m map[string]string) {
	fmt.Fprintf(b, "\n## %s\n\n", title)
	keys := schema.Keys(m)
	if len(keys) == 0 {
		b.WriteString("_none configured_\n")
		return
	}
	b.WriteString("| Key | ID |\n|---|---|\n")
	for _, k := range keys {
		fmt.Fprintf(b, "| %s | `%s` |\n", k, m[k])
	}
}
