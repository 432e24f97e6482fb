// values.go
//
// Runtime value model for the Forthic interpreter.
//
// Every operand on the stack is a Value: a small tagged union whose Data
// field holds the Go representation appropriate for its Tag. The first ten
// tags (VTNull..VTZoned) are the serializable set understood by the wire
// codec in package remote; the remaining tags exist only inside a running
// interpreter and are rejected at the serialization boundary.
//
// Invariants:
//   - When Tag==VTNull, Data is nil.
//   - When Tag==VTRecord, Data is *RecordObject preserving insertion order.
//   - VTInt carries int64, VTFloat carries float64. There is no implicit
//     numeric coercion anywhere in the engine; conversions happen only
//     through explicit words (>INT, >FLOAT).
//   - VTInstant carries a time.Time normalized to UTC. VTZoned carries a
//     ZonedTime whose Zone is an IANA timezone name.
package forthic

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ValueTag identifies the variant held by a Value.
type ValueTag int

const (
	VTNull    ValueTag = iota // null (no payload)
	VTBool                    // bool
	VTInt                     // int64
	VTFloat                   // float64
	VTStr                     // string
	VTArray                   // []Value
	VTRecord                  // *RecordObject (ordered string-keyed map)
	VTInstant                 // time.Time in UTC (absolute point in time)
	VTDate                    // PlainDate (calendar date, no time, no zone)
	VTZoned                   // ZonedTime (wall-clock time + IANA zone)

	// In-process-only tags. Values with these tags never cross the wire.
	VTTime      // TimeOfDay (clock time without a date)
	VTVariable  // *Variable (module-scoped storage cell)
	VTModule    // *Module (module handle)
	VTWord      // Word (word handle)
	VTOptions   // *WordOptions (keyword options for native words)
	vtArrayOpen // internal marker pushed by "[" and collected by "]"
)

// Value is the universal operand type.
type Value struct {
	Tag  ValueTag
	Data any
}

// Null is the canonical null value.
var Null = Value{Tag: VTNull}

// Constructors.
func Bool(b bool) Value          { return Value{Tag: VTBool, Data: b} }
func Int(n int64) Value          { return Value{Tag: VTInt, Data: n} }
func Float(f float64) Value      { return Value{Tag: VTFloat, Data: f} }
func Str(s string) Value         { return Value{Tag: VTStr, Data: s} }
func Arr(xs []Value) Value       { return Value{Tag: VTArray, Data: xs} }
func Instant(t time.Time) Value  { return Value{Tag: VTInstant, Data: t.UTC()} }
func Date(d PlainDate) Value     { return Value{Tag: VTDate, Data: d} }
func Zoned(z ZonedTime) Value    { return Value{Tag: VTZoned, Data: z} }
func Clock(t TimeOfDay) Value    { return Value{Tag: VTTime, Data: t} }
func WordVal(w Word) Value       { return Value{Tag: VTWord, Data: w} }
func ModuleVal(m *Module) Value  { return Value{Tag: VTModule, Data: m} }
func VariableVal(v *Variable) Value {
	return Value{Tag: VTVariable, Data: v}
}

// Rec constructs a VTRecord from a plain Go map. Key order is sorted so that
// records built from unordered maps render deterministically; records built
// token by token keep their insertion order instead (see RecordObject.Set).
func Rec(m map[string]Value) Value {
	ro := NewRecordObject()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ro.Set(k, m[k])
	}
	return Value{Tag: VTRecord, Data: ro}
}

// RecordObject is an insertion-ordered string-keyed map. Writing an existing
// key overwrites in place (last write wins) without moving the key.
type RecordObject struct {
	Entries map[string]Value
	Keys    []string
}

func NewRecordObject() *RecordObject {
	return &RecordObject{Entries: map[string]Value{}}
}

func (r *RecordObject) Len() int { return len(r.Keys) }

func (r *RecordObject) Get(key string) (Value, bool) {
	v, ok := r.Entries[key]
	return v, ok
}

func (r *RecordObject) Set(key string, v Value) {
	if _, exists := r.Entries[key]; !exists {
		r.Keys = append(r.Keys, key)
	}
	r.Entries[key] = v
}

func (r *RecordObject) Delete(key string) {
	if _, exists := r.Entries[key]; !exists {
		return
	}
	delete(r.Entries, key)
	for i, k := range r.Keys {
		if k == key {
			r.Keys = append(r.Keys[:i], r.Keys[i+1:]...)
			break
		}
	}
}

func (r *RecordObject) Clone() *RecordObject {
	out := NewRecordObject()
	for _, k := range r.Keys {
		out.Set(k, r.Entries[k])
	}
	return out
}

// PlainDate is a calendar date with no time-of-day and no timezone.
type PlainDate struct {
	Year  int
	Month time.Month
	Day   int
}

func NewPlainDate(y int, m time.Month, d int) PlainDate {
	return PlainDate{Year: y, Month: m, Day: d}
}

// DateOf truncates a time.Time to its calendar date in its own location.
func DateOf(t time.Time) PlainDate {
	y, m, d := t.Date()
	return PlainDate{Year: y, Month: m, Day: d}
}

func (d PlainDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Midnight returns the start of the date in loc (UTC when loc is nil).
func (d PlainDate) Midnight(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// ZonedTime is a wall-clock datetime paired with the IANA zone it was
// expressed in. The zone name survives round-trips through the wire codec,
// which a bare fixed-offset time.Time would not.
type ZonedTime struct {
	Time time.Time
	Zone string
}

func NewZonedTime(t time.Time, zone string) (ZonedTime, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return ZonedTime{}, fmt.Errorf("unknown timezone %q: %w", zone, err)
	}
	return ZonedTime{Time: t.In(loc), Zone: zone}, nil
}

func (z ZonedTime) String() string {
	return z.Time.Format("2006-01-02T15:04:05.999999999-07:00") + "[" + z.Zone + "]"
}

// TimeOfDay is a clock time with no date attached.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Variable is a module-scoped storage cell created by VARIABLES and
// accessed with ! and @.
type Variable struct {
	Name  string
	Value Value
}

// TagName returns the human-readable name of a tag, used in error messages
// and module introspection.
func TagName(tag ValueTag) string {
	switch tag {
	case VTNull:
		return "null"
	case VTBool:
		return "bool"
	case VTInt:
		return "int"
	case VTFloat:
		return "float"
	case VTStr:
		return "string"
	case VTArray:
		return "array"
	case VTRecord:
		return "record"
	case VTInstant:
		return "instant"
	case VTDate:
		return "date"
	case VTZoned:
		return "zoned_datetime"
	case VTTime:
		return "time"
	case VTVariable:
		return "variable"
	case VTModule:
		return "module"
	case VTWord:
		return "word"
	case VTOptions:
		return "options"
	default:
		return "unknown"
	}
}

// Truthy reports the boolean interpretation used by >BOOL and the boolean
// words: null and false are false, zero numbers are false, empty strings,
// arrays and records are false, everything else is true.
func Truthy(v Value) bool {
	switch v.Tag {
	case VTNull:
		return false
	case VTBool:
		return v.Data.(bool)
	case VTInt:
		return v.Data.(int64) != 0
	case VTFloat:
		return v.Data.(float64) != 0
	case VTStr:
		return v.Data.(string) != ""
	case VTArray:
		return len(v.Data.([]Value)) > 0
	case VTRecord:
		return v.Data.(*RecordObject).Len() > 0
	default:
		return true
	}
}

// DeepEqual compares two values structurally. Int and Float never compare
// equal to each other even when numerically identical.
func DeepEqual(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTNull:
		return true
	case VTBool:
		return a.Data.(bool) == b.Data.(bool)
	case VTInt:
		return a.Data.(int64) == b.Data.(int64)
	case VTFloat:
		return a.Data.(float64) == b.Data.(float64)
	case VTStr:
		return a.Data.(string) == b.Data.(string)
	case VTArray:
		xs, ys := a.Data.([]Value), b.Data.([]Value)
		if len(xs) != len(ys) {
			return false
		}
		for i := range xs {
			if !DeepEqual(xs[i], ys[i]) {
				return false
			}
		}
		return true
	case VTRecord:
		ra, rb := a.Data.(*RecordObject), b.Data.(*RecordObject)
		if ra.Len() != rb.Len() {
			return false
		}
		for k, va := range ra.Entries {
			vb, ok := rb.Entries[k]
			if !ok || !DeepEqual(va, vb) {
				return false
			}
		}
		return true
	case VTInstant:
		return a.Data.(time.Time).Equal(b.Data.(time.Time))
	case VTDate:
		return a.Data.(PlainDate) == b.Data.(PlainDate)
	case VTZoned:
		za, zb := a.Data.(ZonedTime), b.Data.(ZonedTime)
		return za.Zone == zb.Zone && za.Time.Equal(zb.Time)
	case VTTime:
		return a.Data.(TimeOfDay) == b.Data.(TimeOfDay)
	default:
		return a.Data == b.Data
	}
}

// DeepCopy returns a value sharing no mutable state with the input.
// Scalars are returned as-is; arrays and records are copied element-wise.
func DeepCopy(v Value) Value {
	switch v.Tag {
	case VTArray:
		xs := v.Data.([]Value)
		out := make([]Value, len(xs))
		for i, x := range xs {
			out[i] = DeepCopy(x)
		}
		return Arr(out)
	case VTRecord:
		ro := v.Data.(*RecordObject)
		out := NewRecordObject()
		for _, k := range ro.Keys {
			out.Set(k, DeepCopy(ro.Entries[k]))
		}
		return Value{Tag: VTRecord, Data: out}
	default:
		return v
	}
}

// FormatValue renders a value for PRINT, >STR interpolation and the REPL.
// Strings render bare (no quotes) at the top level, quoted when nested.
func FormatValue(v Value) string {
	return formatValue(v, false)
}

func formatValue(v Value, nested bool) string {
	switch v.Tag {
	case VTNull:
		return "NULL"
	case VTBool:
		if v.Data.(bool) {
			return "TRUE"
		}
		return "FALSE"
	case VTInt:
		return strconv.FormatInt(v.Data.(int64), 10)
	case VTFloat:
		return strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
	case VTStr:
		if nested {
			return strconv.Quote(v.Data.(string))
		}
		return v.Data.(string)
	case VTArray:
		xs := v.Data.([]Value)
		parts := make([]string, len(xs))
		for i, x := range xs {
			parts[i] = formatValue(x, true)
		}
		return "[" + strings.Join(parts, " ") + "]"
	case VTRecord:
		ro := v.Data.(*RecordObject)
		parts := make([]string, 0, ro.Len())
		for _, k := range ro.Keys {
			parts = append(parts, k+"="+formatValue(ro.Entries[k], true))
		}
		return "{" + strings.Join(parts, " ") + "}"
	case VTInstant:
		return v.Data.(time.Time).Format(time.RFC3339Nano)
	case VTDate:
		return v.Data.(PlainDate).String()
	case VTZoned:
		return v.Data.(ZonedTime).String()
	case VTTime:
		return v.Data.(TimeOfDay).String()
	case VTVariable:
		return "<variable " + v.Data.(*Variable).Name + ">"
	case VTModule:
		return "<module " + v.Data.(*Module).Name + ">"
	case VTWord:
		return "<word " + v.Data.(Word).Name() + ">"
	case VTOptions:
		return "<options>"
	default:
		return "<value>"
	}
}
