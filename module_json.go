// module_json.go
//
// JSON words. Decoding uses json.Number so integers survive as ints
// instead of collapsing to float64. Temporal values encode as their ISO
// strings; in-process values (variables, modules, options) are encoding
// errors.
package forthic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

func newJSONModule() *Module {
	m := NewModule("json")

	m.AddExportedNative(">JSON", "( value -- string )",
		"Serialize a value as compact JSON.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			s, err := EncodeJSON(args[0], false)
			if err != nil {
				return nil, err
			}
			v := Str(s)
			return &v, nil
		})

	m.AddExportedNative("JSON>", "( string -- value )",
		"Parse a JSON string into a value.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			s, err := asString("JSON>", args[0])
			if err != nil {
				return nil, err
			}
			v, derr := DecodeJSON(s)
			if derr != nil {
				return nil, fmt.Errorf("JSON>: %w", derr)
			}
			return &v, nil
		})

	m.AddExportedNative("JSON-PRETTIFY", "( string -- string )",
		"Reformat a JSON string with indentation.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			s, err := asString("JSON-PRETTIFY", args[0])
			if err != nil {
				return nil, err
			}
			var buf bytes.Buffer
			if jerr := json.Indent(&buf, []byte(s), "", "  "); jerr != nil {
				return nil, fmt.Errorf("JSON-PRETTIFY: %w", jerr)
			}
			v := Str(buf.String())
			return &v, nil
		})

	return m
}

// EncodeJSON serializes a value. Record key order is preserved.
func EncodeJSON(v Value, pretty bool) (string, error) {
	var buf bytes.Buffer
	if err := encodeJSONInto(&buf, v); err != nil {
		return "", err
	}
	if !pretty {
		return buf.String(), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return "", err
	}
	return out.String(), nil
}

func encodeJSONInto(buf *bytes.Buffer, v Value) error {
	switch v.Tag {
	case VTNull:
		buf.WriteString("null")
	case VTBool, VTInt, VTFloat, VTStr:
		b, err := json.Marshal(v.Data)
		if err != nil {
			return err
		}
		buf.Write(b)
	case VTArray:
		buf.WriteByte('[')
		for i, item := range v.Data.([]Value) {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeJSONInto(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case VTRecord:
		ro := v.Data.(*RecordObject)
		buf.WriteByte('{')
		for i, k := range ro.Keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := encodeJSONInto(buf, ro.Entries[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case VTInstant, VTDate, VTZoned, VTTime:
		b, err := json.Marshal(FormatValue(v))
		if err != nil {
			return err
		}
		buf.Write(b)
	default:
		return fmt.Errorf("cannot serialize %s value as JSON", TagName(v.Tag))
	}
	return nil
}

// DecodeJSON parses JSON into a value. Numbers without a fraction or
// exponent that fit in int64 become ints; everything else numeric becomes
// a float.
func DecodeJSON(s string) (Value, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Null, err
	}
	return fromJSONValue(raw)
}

func fromJSONValue(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null, nil
	case bool:
		return Bool(x), nil
	case string:
		return Str(x), nil
	case json.Number:
		text := x.String()
		if !strings.ContainsAny(text, ".eE") {
			if n, err := x.Int64(); err == nil {
				return Int(n), nil
			}
		}
		f, err := x.Float64()
		if err != nil {
			return Null, err
		}
		return Float(f), nil
	case []any:
		out := make([]Value, len(x))
		for i, item := range x {
			v, err := fromJSONValue(item)
			if err != nil {
				return Null, err
			}
			out[i] = v
		}
		return Arr(out), nil
	case map[string]any:
		// encoding/json loses object key order; sort for determinism.
		return recFromMap(x)
	default:
		return Null, fmt.Errorf("unexpected JSON value %T", raw)
	}
}

func recFromMap(x map[string]any) (Value, error) {
	m := make(map[string]Value, len(x))
	for k, item := range x {
		v, err := fromJSONValue(item)
		if err != nil {
			return Null, err
		}
		m[k] = v
	}
	return Rec(m), nil
}
