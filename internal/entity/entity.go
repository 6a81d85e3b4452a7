package entity

import (
	"fmt"
	"sort"
)

const (
	DefaultVersion = "1.0"

	AttrTypeString = "org.symphonyoss.string"
	AttrTypeLong   = "org.symphony.oss.number.long"
)

// Attribute is a typed name/value pair on an Entity.
type Attribute struct {
	Name  string
	Type  string
	Value string
}

// Entity is a node in a message entity tree.
// Trees are built per request and owned by a single goroutine; nothing here is locked.
type Entity struct {
	Name         string
	Type         string
	Version      string
	Presentation string // inner presentationML, kept verbatim
	Attributes   []Attribute
	Entities     []*Entity
	Nested       map[string]*Entity // annotations attached after parsing, keyed by owner
}

// New creates an entity with the default version.
func New(name, typ string) *Entity {
	return &Entity{Name: name, Type: typ, Version: DefaultVersion}
}

// Attr returns the value of the named attribute.
func (e *Entity) Attr(name string) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, a := range e.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr replaces an attribute of the same name or appends a new one.
func (e *Entity) SetAttr(name, typ, value string) *Entity {
	for i := range e.Attributes {
		if e.Attributes[i].Name == name {
			e.Attributes[i] = Attribute{Name: name, Type: typ, Value: value}
			return e
		}
	}
	e.Attributes = append(e.Attributes, Attribute{Name: name, Type: typ, Value: value})
	return e
}

// Add appends children in order.
func (e *Entity) Add(children ...*Entity) *Entity {
	e.Entities = append(e.Entities, children...)
	return e
}

// ByName returns the first direct child with the given name.
func (e *Entity) ByName(name string) *Entity {
	if e == nil {
		return nil
	}
	for _, c := range e.Entities {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ByType returns the first descendant (depth-first, excluding e) with the given type.
func (e *Entity) ByType(typ string) *Entity {
	if e == nil {
		return nil
	}
	for _, c := range e.Entities {
		if c.Type == typ {
			return c
		}
		if found := c.ByType(typ); found != nil {
			return found
		}
	}
	return nil
}

// ChildrenOfType returns the direct children with the given type.
func (e *Entity) ChildrenOfType(typ string) []*Entity {
	if e == nil {
		return nil
	}
	var out []*Entity
	for _, c := range e.Entities {
		if c.Type == typ {
			out = append(out, c)
		}
	}
	return out
}

// Attach stores an annotation under key, replacing any previous one.
func (e *Entity) Attach(key string, n *Entity) {
	if e.Nested == nil {
		e.Nested = make(map[string]*Entity)
	}
	e.Nested[key] = n
}

// NestedEntity returns the annotation stored under key.
func (e *Entity) NestedEntity(key string) (*Entity, bool) {
	if e == nil || e.Nested == nil {
		return nil, false
	}
	n, ok := e.Nested[key]
	return n, ok
}

// nestedKeys returns annotation keys in a stable order so serialization is deterministic.
func (e *Entity) nestedKeys() []string {
	keys := make([]string, 0, len(e.Nested))
	for k := range e.Nested {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks the tree is serializable: every entity has a type and
// every attribute has a name.
func (e *Entity) Validate() error {
	return e.validate("entity")
}

func (e *Entity) validate(path string) error {
	if e == nil {
		return fmt.Errorf("%s: nil entity", path)
	}
	if e.Type == "" {
		return fmt.Errorf("%s: type is required", path)
	}
	for i, a := range e.Attributes {
		if a.Name == "" {
			return fmt.Errorf("%s.attribute[%d]: name is required", path, i)
		}
	}
	for i, c := range e.Entities {
		if err := c.validate(fmt.Sprintf("%s.entity[%d]", path, i)); err != nil {
			return err
		}
	}
	for _, k := range e.nestedKeys() {
		if err := e.Nested[k].validate(fmt.Sprintf("%s.nested[%s]", path, k)); err != nil {
			return err
		}
	}
	return nil
}
