// wire.go
//
// Wire codec for Forthic values: a JSON tagged union covering the ten
// serializable variants. Ints are int64 on the wire; callers needing
// arbitrary precision integers must pass strings. Encoding an in-process
// value (variable, module handle, options, clock time) is an error, not a
// silent null.
//
// Record fields are an ordered list of key/value pairs, so insertion order
// survives the round trip. Decoding always builds fresh values, which gives
// the deep-copy-at-the-boundary guarantee for free.
package remote

import (
	"fmt"
	"time"

	"github.com/forthic-lang/forthic"
)

// Wire type tags.
const (
	TypeNull    = "null"
	TypeBool    = "bool"
	TypeInt     = "int"
	TypeFloat   = "float"
	TypeString  = "string"
	TypeArray   = "array"
	TypeRecord  = "record"
	TypeInstant = "instant"
	TypeDate    = "plain_date"
	TypeZoned   = "zoned_datetime"
)

// WireValue is one serialized Forthic value.
type WireValue struct {
	Type     string      `json:"type"`
	Bool     bool        `json:"bool,omitempty"`
	Int      int64       `json:"int,omitempty"`
	Float    float64     `json:"float,omitempty"`
	Str      string      `json:"string,omitempty"`
	Items    []WireValue `json:"items,omitempty"`
	Fields   []WireField `json:"fields,omitempty"`
	Datetime string      `json:"datetime,omitempty"`
	Date     string      `json:"date,omitempty"`
	Timezone string      `json:"timezone,omitempty"`
}

// WireField is one ordered record field.
type WireField struct {
	Key   string    `json:"key"`
	Value WireValue `json:"value"`
}

const (
	instantLayout = "2006-01-02T15:04:05.999999999Z07:00"
	zonedLayout   = "2006-01-02T15:04:05.999999999"
	dateLayout    = "2006-01-02"
)

// Encode serializes a value. In-process variants are an error.
func Encode(v forthic.Value) (WireValue, error) {
	switch v.Tag {
	case forthic.VTNull:
		return WireValue{Type: TypeNull}, nil
	case forthic.VTBool:
		return WireValue{Type: TypeBool, Bool: v.Data.(bool)}, nil
	case forthic.VTInt:
		return WireValue{Type: TypeInt, Int: v.Data.(int64)}, nil
	case forthic.VTFloat:
		return WireValue{Type: TypeFloat, Float: v.Data.(float64)}, nil
	case forthic.VTStr:
		return WireValue{Type: TypeString, Str: v.Data.(string)}, nil
	case forthic.VTArray:
		items := v.Data.([]forthic.Value)
		out := make([]WireValue, len(items))
		for i, item := range items {
			wv, err := Encode(item)
			if err != nil {
				return WireValue{}, err
			}
			out[i] = wv
		}
		return WireValue{Type: TypeArray, Items: out}, nil
	case forthic.VTRecord:
		ro := v.Data.(*forthic.RecordObject)
		fields := make([]WireField, 0, ro.Len())
		for _, k := range ro.Keys {
			wv, err := Encode(ro.Entries[k])
			if err != nil {
				return WireValue{}, err
			}
			fields = append(fields, WireField{Key: k, Value: wv})
		}
		return WireValue{Type: TypeRecord, Fields: fields}, nil
	case forthic.VTInstant:
		t := v.Data.(time.Time)
		return WireValue{Type: TypeInstant, Datetime: t.UTC().Format(instantLayout)}, nil
	case forthic.VTDate:
		return WireValue{Type: TypeDate, Date: v.Data.(forthic.PlainDate).String()}, nil
	case forthic.VTZoned:
		z := v.Data.(forthic.ZonedTime)
		return WireValue{
			Type:     TypeZoned,
			Datetime: z.Time.Format(zonedLayout),
			Timezone: z.Zone,
		}, nil
	default:
		return WireValue{}, fmt.Errorf("cannot serialize %s value", forthic.TagName(v.Tag))
	}
}

// Decode deserializes a wire value.
func Decode(wv WireValue) (forthic.Value, error) {
	switch wv.Type {
	case TypeNull:
		return forthic.Null, nil
	case TypeBool:
		return forthic.Bool(wv.Bool), nil
	case TypeInt:
		return forthic.Int(wv.Int), nil
	case TypeFloat:
		return forthic.Float(wv.Float), nil
	case TypeString:
		return forthic.Str(wv.Str), nil
	case TypeArray:
		out := make([]forthic.Value, len(wv.Items))
		for i, item := range wv.Items {
			v, err := Decode(item)
			if err != nil {
				return forthic.Null, err
			}
			out[i] = v
		}
		return forthic.Arr(out), nil
	case TypeRecord:
		ro := forthic.NewRecordObject()
		for _, field := range wv.Fields {
			v, err := Decode(field.Value)
			if err != nil {
				return forthic.Null, err
			}
			ro.Set(field.Key, v)
		}
		return forthic.Value{Tag: forthic.VTRecord, Data: ro}, nil
	case TypeInstant:
		t, err := time.Parse(instantLayout, wv.Datetime)
		if err != nil {
			return forthic.Null, fmt.Errorf("bad instant %q: %w", wv.Datetime, err)
		}
		return forthic.Instant(t), nil
	case TypeDate:
		t, err := time.Parse(dateLayout, wv.Date)
		if err != nil {
			return forthic.Null, fmt.Errorf("bad date %q: %w", wv.Date, err)
		}
		return forthic.Date(forthic.DateOf(t)), nil
	case TypeZoned:
		loc, err := time.LoadLocation(wv.Timezone)
		if err != nil {
			return forthic.Null, fmt.Errorf("bad timezone %q: %w", wv.Timezone, err)
		}
		t, err := time.ParseInLocation(zonedLayout, wv.Datetime, loc)
		if err != nil {
			return forthic.Null, fmt.Errorf("bad datetime %q: %w", wv.Datetime, err)
		}
		z, err := forthic.NewZonedTime(t, wv.Timezone)
		if err != nil {
			return forthic.Null, err
		}
		return forthic.Zoned(z), nil
	default:
		return forthic.Null, fmt.Errorf("unknown wire type %q", wv.Type)
	}
}

// EncodeStack serializes a stack bottom-first.
func EncodeStack(values []forthic.Value) ([]WireValue, error) {
	out := make([]WireValue, len(values))
	for i, v := range values {
		wv, err := Encode(v)
		if err != nil {
			return nil, err
		}
		out[i] = wv
	}
	return out, nil
}

// DecodeStack deserializes a stack bottom-first.
func DecodeStack(wvs []WireValue) ([]forthic.Value, error) {
	out := make([]forthic.Value, len(wvs))
	for i, wv := range wvs {
		v, err := Decode(wv)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
