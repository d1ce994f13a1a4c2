package payload

import (
	"github.com/gerunddev/text2tana/internal/extract"
	"github.com/gerunddev/text2tana/internal/schema"
)

// Converter holds a resolved schema, settings and the grammar compiled
// from them. It never changes after NewConverter, so one Converter can
// serve concurrent callers.
type Converter struct {
	schema   schema.Schema
	settings schema.Settings
	grammar  *extract.Grammar
}

// NewConverter snapshots s and st and compiles the extraction grammar
func NewConverter(s schema.Schema, st schema.Settings) *Converter {
	s = schema.Resolve(s, schema.Schema{})
	return &Converter{
		schema:   s,
		settings: st,
		grammar:  extract.Compile(s, st),
	}
}

// Schema returns a copy of the converter's schema
func (c *Converter) Schema() schema.Schema {
	return schema.Resolve(c.schema, schema.Schema{})
}

// Settings returns the converter's settings
func (c *Converter) Settings() schema.Settings {
	return c.settings
}

// Parse extracts target, urls, supertags and fields from text
func (c *Converter) Parse(text string) extract.Result {
	return c.grammar.Parse(text)
}

// Build turns a parse result into a payload
func (c *Converter) Build(res extract.Result) Payload {
	return Build(res, c.schema, c.settings)
}

// Check reports keys in res that have no identifier
func (c *Converter) Check(res extract.Result) error {
	return Check(res, c.schema, c.settings)
}

// Convert parses text and builds the payload
func (c *Converter) Convert(text string) Payload {
	return c.Build(c.Parse(text))
}

// Convert parses text and builds its payload in one step
func Convert(text string, s schema.Schema, st schema.Settings) Payload {
	return Build(extract.Parse(text, s, st), s, st)
}
