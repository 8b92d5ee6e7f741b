// Package schema reads the form schema describing every mushroom attribute
// collected from a user. The schema is a JSON object keyed by field name. Its
// key order is the declared field order, which is also the column order
// agreed between training and inference.
//
//	{
//	    "cap-diameter": {"type": "number"},
//	    "cap-shape": {"type": "text", "possible_values": ["..."], "image": "resources/cap-shape.jpg"},
//	    "has-ring": {"type": "bool"},
//	    "ring-type": {"type": "text", "possible_values": ["..."], "prerequisites": ["has-ring"]}
//	}
package schema

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/xh3b4sd/tracer"

	"github.com/xh3b4sd/mushroom/batch"
)

type Type string

const (
	Bool   Type = "bool"
	List   Type = "list"
	Number Type = "number"
	Text   Type = "text"
)

type Field struct {
	Name string `json:"-"`
	Type Type   `json:"type"`
	// Values are the display values offered to the user, if the field is a
	// closed choice.
	Values []string `json:"possible_values,omitempty"`
	Image  string   `json:"image,omitempty"`
	// Prerequisites are bool fields that must be true for this field to be
	// shown, and thus to be required.
	Prerequisites []string `json:"prerequisites,omitempty"`
}

type Schema struct {
	Fields []Field
}

func ReadFile(pat string) (*Schema, error) {
	byt, err := os.ReadFile(pat)
	if err != nil {
		return nil, tracer.Mask(err)
	}

	s, err := Read(bytes.NewReader(byt))
	if err != nil {
		return nil, tracer.Mask(err)
	}

	return s, nil
}

// Read decodes a schema while preserving the declared key order.
func Read(r io.Reader) (*Schema, error) {
	dec := json.NewDecoder(r)

	{
		tok, err := dec.Token()
		if err != nil {
			return nil, tracer.Mask(err)
		}
		if tok != json.Delim('{') {
			return nil, tracer.Maskf(invalidSchemaError, "expected object, got %v", tok)
		}
	}

	s := &Schema{}
	see := map[string]bool{}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, tracer.Mask(err)
		}

		nam, ok := tok.(string)
		if !ok {
			return nil, tracer.Maskf(invalidSchemaError, "expected field name, got %v", tok)
		}
		if see[nam] {
			return nil, tracer.Maskf(invalidSchemaError, "field %q is declared twice", nam)
		}
		see[nam] = true

		var f Field
		err = dec.Decode(&f)
		if err != nil {
			return nil, tracer.Mask(err)
		}

		f.Name = nam
		s.Fields = append(s.Fields, f)
	}

	{
		_, err := dec.Token()
		if err != nil {
			return nil, tracer.Mask(err)
		}
	}

	{
		err := s.verify()
		if err != nil {
			return nil, tracer.Mask(err)
		}
	}

	return s, nil
}

func (s *Schema) verify() error {
	for _, f := range s.Fields {
		switch f.Type {
		case Bool, List, Number, Text:
		default:
			return tracer.Maskf(invalidSchemaError, "field %q has invalid type %q", f.Name, f.Type)
		}

		for _, p := range f.Prerequisites {
			par, ok := s.Field(p)
			if !ok {
				return tracer.Maskf(invalidSchemaError, "field %q requires unknown field %q", f.Name, p)
			}
			if par.Type != Bool {
				return tracer.Maskf(invalidSchemaError, "field %q requires %q which is not a bool", f.Name, p)
			}
		}
	}

	return nil
}

func (s *Schema) Field(nam string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == nam {
			return f, true
		}
	}

	return Field{}, false
}

// Names returns the field names in declared order.
func (s *Schema) Names() []string {
	var nam []string
	for _, f := range s.Fields {
		nam = append(nam, f.Name)
	}

	return nam
}

// Kinds maps every field to the batch column kind it is stored as.
func (s *Schema) Kinds() map[string]batch.Kind {
	kin := map[string]batch.Kind{}
	for _, f := range s.Fields {
		if f.Type == Number {
			kin[f.Name] = batch.Numeric
		} else {
			kin[f.Name] = batch.Text
		}
	}

	return kin
}

// Visible reports whether field nam is shown for the given submission, i.e.
// every prerequisite is true.
func (s *Schema) Visible(nam string, sub map[string]any) bool {
	f, ok := s.Field(nam)
	if !ok {
		return false
	}

	for _, p := range f.Prerequisites {
		if !truthy(sub[p]) {
			return false
		}
	}

	return true
}

// Incomplete returns the visible fields without a value in sub, in declared
// order. Hidden fields never count as incomplete.
func (s *Schema) Incomplete(sub map[string]any) []string {
	var mis []string

	for _, f := range s.Fields {
		if !s.Visible(f.Name, sub) {
			continue
		}

		if empty(sub[f.Name]) {
			mis = append(mis, f.Name)
		}
	}

	return mis
}

func empty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	case []string:
		return len(x) == 0
	}

	return false
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x == "true"
	}

	return false
}
