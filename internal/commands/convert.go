package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gerunddev/text2tana/internal/payload"
	"github.com/gerunddev/text2tana/internal/styles"
	"github.com/gerunddev/text2tana/internal/tui"
)

// Parse shows what the extraction finds in each input line
func Parse(args []string) {
	f, words, err := parseArgs(args)
	if err != nil {
		fail("Invalid arguments", err)
	}
	lines, err := inputLines(words, os.Stdin)
	if err != nil {
		fail("Error reading input", err)
	}

	s := openSession()
	defer s.cleanup()

	for i, line := range lines {
		res := s.conv.Parse(line)
		if f.JSON {
			if err := writeJSON(os.Stdout, res); err != nil {
				fail("Error writing output", err)
			}
			continue
		}
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(styles.PreviewStyle.Render(tui.RenderPreview(res, s.conv.Settings())))
	}
}

// Payload prints the API payload for each input line as JSON
func Payload(args []string) {
	f, words, err := parseArgs(args)
	if err != nil {
		fail("Invalid arguments", err)
	}
	lines, err := inputLines(words, os.Stdin)
	if err != nil {
		fail("Error reading input", err)
	}

	s := openSession()
	defer s.cleanup()

	for _, line := range lines {
		p, err := build(s, line, f.Strict)
		if err != nil {
			fail("Unknown keys", err)
		}
		if err := writeJSON(os.Stdout, p); err != nil {
			fail("Error writing output", err)
		}
	}
}

// build converts one line, failing on unknown keys when strict is set
func build(s *session, line string, strict bool) (payload.Payload, error) {
	res := s.conv.Parse(line)
	if err := s.conv.Check(res); err != nil {
		if strict {
			return payload.Payload{}, err
		}
		s.log.UnknownKeys(err)
	}

	p := s.conv.Build(res)
	node := p.Nodes[0]
	s.log.PayloadBuilt(res.Target, node.Name, len(node.Children), len(node.Supertags))
	return p, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
