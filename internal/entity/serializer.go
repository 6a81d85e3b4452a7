package entity

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
)

// Serializer renders an entity tree into a wire document.
type Serializer interface {
	Serialize(root *Entity) (string, error)
}

// XMLSerializer renders MessageML v1 entity XML wrapped in <messageML>.
type XMLSerializer struct{}

// Serialize validates root and marshals it as a <messageML> document.
func (XMLSerializer) Serialize(root *Entity) (string, error) {
	if err := root.Validate(); err != nil {
		return "", fmt.Errorf("serialize entity: %w", err)
	}
	x := toXML(root)
	out, err := xml.Marshal(xmlMessageML{Entity: &x})
	if err != nil {
		return "", fmt.Errorf("marshal entity xml: %w", err)
	}
	return string(out), nil
}

// JSONSerializer renders the entity data object used by MessageML v2.
// The tree is placed under Key in the top-level object.
type JSONSerializer struct {
	Key string
}

// Serialize validates root and marshals {Key: ToMap(root)}.
func (s JSONSerializer) Serialize(root *Entity) (string, error) {
	if err := root.Validate(); err != nil {
		return "", fmt.Errorf("serialize entity: %w", err)
	}
	out, err := json.Marshal(map[string]any{s.Key: ToMap(root)})
	if err != nil {
		return "", fmt.Errorf("marshal entity json: %w", err)
	}
	return string(out), nil
}

// ToMap converts a tree into plain JSON values. The shape is lossless:
//
//	{"type", "version", "name"?, "presentationML"?,
//	 "attributes"?: {name: value}, "entities"?: [child...], "nested"?: {key: entity}}
//
// Children keep their document order and carry their own name, so siblings
// sharing a name never collapse.
func ToMap(e *Entity) map[string]any {
	m := map[string]any{
		"type":    e.Type,
		"version": e.Version,
	}
	if e.Name != "" {
		m["name"] = e.Name
	}
	if e.Presentation != "" {
		m["presentationML"] = e.Presentation
	}
	if len(e.Attributes) > 0 {
		attrs := make(map[string]any, len(e.Attributes))
		for _, a := range e.Attributes {
			attrs[a.Name] = a.Value
		}
		m["attributes"] = attrs
	}
	if len(e.Entities) > 0 {
		list := make([]any, 0, len(e.Entities))
		for _, c := range e.Entities {
			list = append(list, ToMap(c))
		}
		m["entities"] = list
	}
	if len(e.Nested) > 0 {
		nested := make(map[string]any, len(e.Nested))
		for _, k := range e.nestedKeys() {
			nested[k] = ToMap(e.Nested[k])
		}
		m["nested"] = nested
	}
	return m
}
