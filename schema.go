// Package kev is a schema-validated document mapper presenting a uniform
// CRUD and query surface over heterogeneous backing stores. A schema is an
// ordered table of field specifications; a collection binds one schema to a
// backend capability handler and keeps that handler's secondary indexes
// consistent with document state.
package kev

import (
	"fmt"

	"github.com/grimmjow8/kev/field"
)

// Schema is the named, ordered set of field specifications defining a
// document type. Built once at startup and treated as immutable after.
type Schema struct {
	name   string
	fields []*field.Spec
	byName map[string]*field.Spec
}

// NewSchema builds a schema from ordered field specs. Field names must be
// unique and non-empty.
func NewSchema(name string, specs ...*field.Spec) (*Schema, error) {
	if name == "" {
		return nil, fmt.Errorf("schema name is required")
	}
	s := &Schema{
		name:   name,
		fields: make([]*field.Spec, 0, len(specs)),
		byName: make(map[string]*field.Spec, len(specs)),
	}
	for _, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("schema %s: field with empty name", name)
		}
		if _, dup := s.byName[spec.Name]; dup {
			return nil, fmt.Errorf("schema %s: duplicate field %s", name, spec.Name)
		}
		s.fields = append(s.fields, spec)
		s.byName[spec.Name] = spec
	}
	return s, nil
}

// Compose builds a new schema from a base schema's fields plus extras,
// merging by name with the extras winning. It replaces type inheritance for
// sharing field declarations across related document types.
func Compose(name string, base *Schema, extra ...*field.Spec) (*Schema, error) {
	merged := make([]*field.Spec, 0, len(base.fields)+len(extra))
	replaced := make(map[string]*field.Spec, len(extra))
	for _, spec := range extra {
		replaced[spec.Name] = spec
	}
	for _, spec := range base.fields {
		if r, ok := replaced[spec.Name]; ok {
			merged = append(merged, r)
			delete(replaced, spec.Name)
			continue
		}
		merged = append(merged, spec)
	}
	for _, spec := range extra {
		if _, pending := replaced[spec.Name]; pending {
			merged = append(merged, spec)
		}
	}
	return NewSchema(name, merged...)
}

func (s *Schema) Name() string { return s.name }

// Fields returns the specs in declaration order.
func (s *Schema) Fields() []*field.Spec { return s.fields }

// Field returns the spec for name, or nil when the schema has no such field.
func (s *Schema) Field(name string) *field.Spec { return s.byName[name] }

// IndexedFields returns the names of fields carrying a secondary index, in
// declaration order.
func (s *Schema) IndexedFields() []string {
	var names []string
	for _, spec := range s.fields {
		if spec.Indexed() {
			names = append(names, spec.Name)
		}
	}
	return names
}

// UniqueFields returns the names of fields marked unique, in declaration
// order.
func (s *Schema) UniqueFields() []string {
	var names []string
	for _, spec := range s.fields {
		if spec.Unique {
			names = append(names, spec.Name)
		}
	}
	return names
}
