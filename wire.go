package kev

import (
	"strconv"
	"time"

	"github.com/grimmjow8/kev/field"
)

const dateLayout = "2006-01-02"

// encodeWire renders typed field values as a JSON-safe map for the handler.
// Dates and datetimes become strings; StoreAsString numbers are rendered as
// decimal strings for backends without native numeric support.
func encodeWire(schema *Schema, values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for _, spec := range schema.fields {
		v, ok := values[spec.Name]
		if !ok || v == nil {
			continue
		}
		switch spec.Kind {
		case field.TypeDate:
			if t, ok := v.(time.Time); ok {
				out[spec.Name] = t.UTC().Format(dateLayout)
			}
		case field.TypeDateTime:
			if t, ok := v.(time.Time); ok {
				out[spec.Name] = t.UTC().Format(time.RFC3339Nano)
			}
		case field.TypeInteger:
			if spec.StoreAsString {
				if n, ok := v.(int64); ok {
					out[spec.Name] = strconv.FormatInt(n, 10)
					continue
				}
			}
			out[spec.Name] = v
		case field.TypeFloat:
			if spec.StoreAsString {
				if f, ok := v.(float64); ok {
					out[spec.Name] = strconv.FormatFloat(f, 'f', -1, 64)
					continue
				}
			}
			out[spec.Name] = v
		default:
			out[spec.Name] = v
		}
	}
	return out
}

// decodeWire coerces a freshly loaded raw map back into the typed values
// the field specs expect. JSON decoding hands every number back as float64
// and every timestamp as a string; this undoes that.
func decodeWire(schema *Schema, raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for _, spec := range schema.fields {
		v, ok := raw[spec.Name]
		if !ok || v == nil {
			continue
		}
		switch spec.Kind {
		case field.TypeDate:
			if s, ok := v.(string); ok {
				if t, err := time.Parse(dateLayout, s); err == nil {
					out[spec.Name] = t
					continue
				}
			}
			out[spec.Name] = v
		case field.TypeDateTime:
			if s, ok := v.(string); ok {
				if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
					out[spec.Name] = t
					continue
				}
			}
			out[spec.Name] = v
		case field.TypeInteger:
			switch n := v.(type) {
			case float64:
				out[spec.Name] = int64(n)
			case int64:
				out[spec.Name] = n
			case int:
				out[spec.Name] = int64(n)
			case string:
				if parsed, err := strconv.ParseInt(n, 10, 64); err == nil {
					out[spec.Name] = parsed
				} else {
					out[spec.Name] = v
				}
			default:
				out[spec.Name] = v
			}
		case field.TypeFloat:
			switch f := v.(type) {
			case float64:
				out[spec.Name] = f
			case string:
				if parsed, err := strconv.ParseFloat(f, 64); err == nil {
					out[spec.Name] = parsed
				} else {
					out[spec.Name] = v
				}
			default:
				out[spec.Name] = v
			}
		default:
			out[spec.Name] = v
		}
	}
	return out
}
