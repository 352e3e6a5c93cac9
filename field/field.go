// Package field defines the typed field specifications a document schema is
// built from: primitive kind, validation rules and index/uniqueness flags.
package field

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind is the primitive kind of a field value.
type Kind int

const (
	TypeText Kind = iota
	TypeBoolean
	TypeInteger
	TypeFloat
	TypeDate
	TypeDateTime
)

func (k Kind) String() string {
	switch k {
	case TypeText:
		return "text"
	case TypeBoolean:
		return "boolean"
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeDate:
		return "date"
	case TypeDateTime:
		return "datetime"
	}
	return "unknown"
}

// ValidationError reports a single field failing validation. The message
// format is stable; callers match on it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Opts holds the optional rules shared by every field constructor. Zero
// values mean "not set"; Min/Max bounds for numeric kinds use pointers so a
// bound of 0 stays expressible.
type Opts struct {
	Required      bool
	Unique        bool
	Index         bool
	StoreAsString bool

	// Text bounds.
	MinLength int
	MaxLength int

	// Numeric bounds.
	MinValue *float64
	MaxValue *float64

	// Static default, or a function evaluated at construction time.
	Default     any
	DefaultFunc func() any

	// Timestamp population: AutoNowAdd sets the value once when the document
	// is constructed, AutoNow refreshes it on every save.
	AutoNow    bool
	AutoNowAdd bool
}

// Spec is one named, typed attribute of a document schema.
type Spec struct {
	Name string
	Kind Kind
	Opts
}

// Bound returns a float64 pointer for use as a MinValue/MaxValue option.
func Bound(v float64) *float64 { return &v }

func Char(name string, opts Opts) *Spec  { return &Spec{Name: name, Kind: TypeText, Opts: opts} }
func Bool(name string, opts Opts) *Spec  { return &Spec{Name: name, Kind: TypeBoolean, Opts: opts} }
func Int(name string, opts Opts) *Spec   { return &Spec{Name: name, Kind: TypeInteger, Opts: opts} }
func Float(name string, opts Opts) *Spec { return &Spec{Name: name, Kind: TypeFloat, Opts: opts} }
func Date(name string, opts Opts) *Spec  { return &Spec{Name: name, Kind: TypeDate, Opts: opts} }
func DateTime(name string, opts Opts) *Spec {
	return &Spec{Name: name, Kind: TypeDateTime, Opts: opts}
}

// Fold reports whether index keys for this field are case-folded.
func (s *Spec) Fold() bool { return s.Kind == TypeText }

// Indexed reports whether the field carries a secondary index. Unique
// fields are always indexed: uniqueness needs an index to check against.
func (s *Spec) Indexed() bool { return s.Index || s.Unique }

// DefaultValue returns the construction-time value for an unset field, or
// nil when the field has no default. Auto-now kinds yield the current time
// (truncated for Date).
func (s *Spec) DefaultValue(now time.Time) any {
	if s.AutoNow || s.AutoNowAdd {
		if s.Kind == TypeDate {
			return truncateDate(now)
		}
		return now
	}
	if s.DefaultFunc != nil {
		return s.DefaultFunc()
	}
	return s.Default
}

// Validate checks value against the spec and returns the normalized value.
// It is a pure function: auto-now population happens in the document layer
// before validation runs.
func (s *Spec) Validate(value any) (any, error) {
	if value == nil {
		if s.Required {
			return nil, &ValidationError{Field: s.Name, Reason: "This value is required."}
		}
		return nil, nil
	}

	switch s.Kind {
	case TypeText:
		v, ok := value.(string)
		if !ok {
			return nil, &ValidationError{Field: s.Name, Reason: "This value should be a string."}
		}
		if s.Required && strings.TrimSpace(v) == "" {
			return nil, &ValidationError{Field: s.Name, Reason: "This value is required."}
		}
		if s.MinLength > 0 && len(v) < s.MinLength {
			return nil, &ValidationError{Field: s.Name,
				Reason: fmt.Sprintf("This value should be at least %d characters long.", s.MinLength)}
		}
		if s.MaxLength > 0 && len(v) > s.MaxLength {
			return nil, &ValidationError{Field: s.Name,
				Reason: fmt.Sprintf("This value should be no more than %d characters long.", s.MaxLength)}
		}
		return v, nil

	case TypeBoolean:
		v, ok := value.(bool)
		if !ok {
			return nil, &ValidationError{Field: s.Name, Reason: "This value should be True or False."}
		}
		return v, nil

	case TypeInteger:
		v, ok := toInt64(value)
		if !ok {
			return nil, &ValidationError{Field: s.Name, Reason: "This value should be an integer"}
		}
		if err := s.checkNumericBounds(float64(v)); err != nil {
			return nil, err
		}
		return v, nil

	case TypeFloat:
		var v float64
		switch f := value.(type) {
		case float64:
			v = f
		case float32:
			v = float64(f)
		default:
			return nil, &ValidationError{Field: s.Name, Reason: "This value should be a float."}
		}
		if err := s.checkNumericBounds(v); err != nil {
			return nil, err
		}
		return v, nil

	case TypeDate:
		v, ok := value.(time.Time)
		if !ok {
			return nil, &ValidationError{Field: s.Name, Reason: "This value should be a valid date object."}
		}
		return truncateDate(v), nil

	case TypeDateTime:
		v, ok := value.(time.Time)
		if !ok {
			return nil, &ValidationError{Field: s.Name, Reason: "This value should be a valid datetime object."}
		}
		return v, nil
	}
	return nil, &ValidationError{Field: s.Name, Reason: "This value has an unknown kind."}
}

func (s *Spec) checkNumericBounds(v float64) error {
	if s.MinValue != nil && v < *s.MinValue {
		return &ValidationError{Field: s.Name,
			Reason: fmt.Sprintf("This value should be at least %s.", formatBound(*s.MinValue))}
	}
	if s.MaxValue != nil && v > *s.MaxValue {
		return &ValidationError{Field: s.Name,
			Reason: fmt.Sprintf("This value should be no more than %s.", formatBound(*s.MaxValue))}
	}
	return nil
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true
	}
	return 0, false
}

func truncateDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
