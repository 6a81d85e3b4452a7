package entity

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

type xmlAttribute struct {
	Name  string `xml:"name,attr"`
	Type  string `xml:"type,attr,omitempty"`
	Value string `xml:"value,attr"`
}

type xmlPresentation struct {
	Inner string `xml:",innerxml"`
}

type xmlEntity struct {
	XMLName      xml.Name         `xml:"entity"`
	Name         string           `xml:"name,attr,omitempty"`
	Type         string           `xml:"type,attr,omitempty"`
	Version      string           `xml:"version,attr,omitempty"`
	Presentation *xmlPresentation `xml:"presentationML"`
	Attributes   []xmlAttribute   `xml:"attribute"`
	Entities     []xmlEntity      `xml:"entity"`
}

type xmlMessageML struct {
	XMLName xml.Name   `xml:"messageML"`
	Entity  *xmlEntity `xml:"entity"`
}

// ErrNoEntity is returned when a markup document carries no root entity.
var ErrNoEntity = errors.New("markup has no entity")

// Parse reads a MessageML document (or a bare <entity> element) into a tree.
func Parse(body []byte) (*Entity, error) {
	d := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil, ErrNoEntity
		}
		if err != nil {
			return nil, fmt.Errorf("read markup: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "messageML":
			var doc xmlMessageML
			if err := d.DecodeElement(&doc, &start); err != nil {
				return nil, fmt.Errorf("decode messageML: %w", err)
			}
			if doc.Entity == nil {
				return nil, ErrNoEntity
			}
			return fromXML(doc.Entity), nil
		case "entity":
			var x xmlEntity
			if err := d.DecodeElement(&x, &start); err != nil {
				return nil, fmt.Errorf("decode entity: %w", err)
			}
			return fromXML(&x), nil
		default:
			return nil, fmt.Errorf("unexpected root element <%s>", start.Name.Local)
		}
	}
}

// PeekType returns the type of the root entity. It stops at the first
// entity start tag, so the rest of the document is neither read nor checked.
func PeekType(body []byte) (string, error) {
	d := xml.NewDecoder(bytes.NewReader(body))
	inDoc := false
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return "", ErrNoEntity
		}
		if err != nil {
			return "", fmt.Errorf("read markup: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch {
		case start.Name.Local == "entity":
			return attr(start, "type"), nil
		case start.Name.Local == "messageML" && !inDoc:
			inDoc = true
		case inDoc:
			if err := d.Skip(); err != nil {
				return "", fmt.Errorf("read markup: %w", err)
			}
		default:
			return "", fmt.Errorf("unexpected root element <%s>", start.Name.Local)
		}
	}
}

func attr(start xml.StartElement, name string) string {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func fromXML(x *xmlEntity) *Entity {
	e := &Entity{Name: x.Name, Type: x.Type, Version: x.Version}
	if x.Presentation != nil {
		e.Presentation = x.Presentation.Inner
	}
	for _, a := range x.Attributes {
		e.Attributes = append(e.Attributes, Attribute{Name: a.Name, Type: a.Type, Value: a.Value})
	}
	for i := range x.Entities {
		e.Entities = append(e.Entities, fromXML(&x.Entities[i]))
	}
	return e
}

// toXML flattens annotations into child entities, after the regular children.
func toXML(e *Entity) xmlEntity {
	x := xmlEntity{Name: e.Name, Type: e.Type, Version: e.Version}
	if e.Presentation != "" {
		x.Presentation = &xmlPresentation{Inner: e.Presentation}
	}
	for _, a := range e.Attributes {
		x.Attributes = append(x.Attributes, xmlAttribute{Name: a.Name, Type: a.Type, Value: a.Value})
	}
	for _, c := range e.Entities {
		x.Entities = append(x.Entities, toXML(c))
	}
	for _, k := range e.nestedKeys() {
		x.Entities = append(x.Entities, toXML(e.Nested[k]))
	}
	return x
}
