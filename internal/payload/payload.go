// Package payload builds Tana Input API request bodies from parsed text.
package payload

import (
	"errors"
	"fmt"

	"github.com/gerunddev/text2tana/internal/extract"
	"github.com/gerunddev/text2tana/internal/schema"
)

// Data types and child types used on the wire
const (
	DataTypeURL       = "url"
	DataTypeReference = "reference"
	TypeField         = "field"
)

// Payload is the body posted to the Tana Input API.
// An unresolved target leaves TargetNodeID empty and it is omitted on the
// wire.
type Payload struct {
	TargetNodeID string `json:"targetNodeId,omitempty"`
	Nodes        []Node `json:"nodes"`
}

// Node is one node to create
type Node struct {
	Name      string  `json:"name"`
	DataType  string  `json:"dataType"`
	Supertags []Ref   `json:"supertags"`
	Children  []Child `json:"children"`
}

// Ref points at an existing Tana node or supertag by ID
type Ref struct {
	ID       string `json:"id,omitempty"`
	DataType string `json:"dataType,omitempty"`
}

// Child is either a field (AttributeID, Type and Children set) or a url
// (Name and DataType set).
type Child struct {
	Name        string `json:"name,omitempty"`
	DataType    string `json:"dataType,omitempty"`
	AttributeID string `json:"attributeId,omitempty"`
	Type        string `json:"type,omitempty"`
	Children    []Ref  `json:"children,omitempty"`
}

// IsField reports whether c is a field child
func (c Child) IsField() bool {
	return c.Type == TypeField
}

// Build turns a parse result into a payload with one node. The target is
// the parsed target, or the default target from settings. Keys that are
// not in the schema produce empty identifiers; use Check to find them.
func Build(res extract.Result, s schema.Schema, st schema.Settings) Payload {
	targetKey := res.Target
	if targetKey == "" {
		targetKey = st.Default.Target
	}
	_, targetID, _ := schema.Lookup(s.Nodes, targetKey)

	return Payload{
		TargetNodeID: targetID,
		Nodes:        []Node{BuildNode(res, s, st)},
	}
}

// BuildNode converts one parse result into a node. Field children come
// first, then url children, each in parse order.
func BuildNode(res extract.Result, s schema.Schema, st schema.Settings) Node {
	dataType := res.Type
	if dataType == "" {
		dataType = st.Default.Type
	}

	supertags := make([]Ref, 0, len(res.Supertags))
	for _, tag := range res.Supertags {
		_, id, _ := schema.Lookup(s.Supertags, tag)
		supertags = append(supertags, Ref{ID: id})
	}

	children := make([]Child, 0, len(res.Fields)+len(res.URLs))
	for _, f := range res.Fields {
		_, attrID, _ := schema.Lookup(s.Fields, f.Field)
		_, nodeID, _ := schema.Lookup(s.Nodes, f.Value)
		children = append(children, Child{
			AttributeID: attrID,
			Type:        TypeField,
			Children:    []Ref{{ID: nodeID, DataType: DataTypeReference}},
		})
	}
	for _, u := range res.URLs {
		children = append(children, Child{Name: u, DataType: DataTypeURL})
	}

	return Node{
		Name:      res.Name,
		DataType:  dataType,
		Supertags: supertags,
		Children:  children,
	}
}

// UnknownKeyError reports a key with no identifier in the schema
type UnknownKeyError struct {
	Category string
	Key      string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown %s key %q", e.Category, e.Key)
}

// Check returns an error for every key in res (and the default target
// when res has none) that has no identifier in s. Build never fails, so
// callers that want strict behavior call Check first.
func Check(res extract.Result, s schema.Schema, st schema.Settings) error {
	var errs []error
	missing := func(category string, m map[string]string, key string) {
		if _, _, ok := schema.Lookup(m, key); !ok {
			errs = append(errs, &UnknownKeyError{Category: category, Key: key})
		}
	}

	if res.Target != "" {
		missing("node", s.Nodes, res.Target)
	} else {
		missing("node", s.Nodes, st.Default.Target)
	}
	for _, tag := range res.Supertags {
		missing("supertag", s.Supertags, tag)
	}
	for _, f := range res.Fields {
		missing("field", s.Fields, f.Field)
		missing("node", s.Nodes, f.Value)
	}

	return errors.Join(errs...)
}
