package kev

import (
	"time"

	"github.com/grimmjow8/kev/backend"
	"github.com/grimmjow8/kev/index"
)

// Document is one instance of a schema: a field-value mapping plus an
// opaque identity assigned by the backend on first save. The snapshot holds
// the last-persisted values and is what index deltas are computed against.
type Document struct {
	schema   *Schema
	id       string
	values   map[string]any
	snapshot map[string]any
}

func newDocument(schema *Schema, values map[string]any) *Document {
	d := &Document{
		schema: schema,
		values: make(map[string]any, len(schema.fields)),
	}
	now := time.Now().UTC()
	for _, spec := range schema.fields {
		if v, ok := values[spec.Name]; ok && v != nil {
			d.values[spec.Name] = v
			continue
		}
		if def := spec.DefaultValue(now); def != nil {
			d.values[spec.Name] = def
		}
	}
	return d
}

// ID returns the document identity, empty until the first successful save.
func (d *Document) ID() string { return d.id }

// Get returns the current value of the named field, nil when unset.
func (d *Document) Get(name string) any { return d.values[name] }

// Set assigns a field value. Validation happens at save time.
func (d *Document) Set(name string, value any) {
	if value == nil {
		delete(d.values, name)
		return
	}
	d.values[name] = value
}

// Raw returns a copy of the underlying field-value mapping.
func (d *Document) Raw() map[string]any {
	return copyValues(d.values)
}

// String returns the field as a string, "" when unset or of another kind.
func (d *Document) String(name string) string {
	v, _ := d.values[name].(string)
	return v
}

func (d *Document) Bool(name string) bool {
	v, _ := d.values[name].(bool)
	return v
}

func (d *Document) Int(name string) int64 {
	switch v := d.values[name].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

func (d *Document) Float(name string) float64 {
	switch v := d.values[name].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	}
	return 0
}

func (d *Document) Time(name string) time.Time {
	v, _ := d.values[name].(time.Time)
	return v
}

// DirtyIndexFields lists the indexed fields whose normalized value changed
// since the document was last loaded or saved.
func (d *Document) DirtyIndexFields() []string {
	changes := index.Diff(d.schema.fields, d.snapshot, d.values)
	names := make([]string, 0, len(changes))
	for _, c := range changes {
		names = append(names, c.Field)
	}
	return names
}

// IndexValue renders the current value of the named field as its index key,
// or "" when unset.
func (d *Document) IndexValue(name string) string {
	spec := d.schema.Field(name)
	v := d.values[name]
	if spec == nil || v == nil {
		return ""
	}
	return backend.Normalize(v, spec.Fold())
}

func copyValues(m map[string]any) map[string]any {
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
