// module_boolean.go
//
// Comparison and boolean words. == and != use structural equality, so an
// int never equals a float even when numerically identical. The ordering
// words compare numbers numerically (int and float may be compared to each
// other), strings lexicographically and temporals chronologically.
package forthic

import (
	"fmt"
	"time"
)

func newBooleanModule() *Module {
	m := NewModule("boolean")

	m.AddExportedNative("==", "( a b -- bool )",
		"Structural equality.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			v := Bool(DeepEqual(args[0], args[1]))
			return &v, nil
		})

	m.AddExportedNative("!=", "( a b -- bool )",
		"Structural inequality.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			v := Bool(!DeepEqual(args[0], args[1]))
			return &v, nil
		})

	m.AddExportedNative("<", "( a b -- bool )", "Ordered comparison.", comparison("<", func(c int) bool { return c < 0 }))
	m.AddExportedNative("<=", "( a b -- bool )", "Ordered comparison.", comparison("<=", func(c int) bool { return c <= 0 }))
	m.AddExportedNative(">", "( a b -- bool )", "Ordered comparison.", comparison(">", func(c int) bool { return c > 0 }))
	m.AddExportedNative(">=", "( a b -- bool )", "Ordered comparison.", comparison(">=", func(c int) bool { return c >= 0 }))

	m.AddExportedNative("AND", "( a b -- bool )",
		"Logical and of the truthiness of two values.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			v := Bool(Truthy(args[0]) && Truthy(args[1]))
			return &v, nil
		})

	m.AddExportedNative("OR", "( a b -- bool )",
		"Logical or of the truthiness of two values.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			v := Bool(Truthy(args[0]) || Truthy(args[1]))
			return &v, nil
		})

	m.AddExportedNative("NOT", "( a -- bool )",
		"Logical negation of truthiness.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			v := Bool(!Truthy(args[0]))
			return &v, nil
		})

	m.AddExportedNative("XOR", "( a b -- bool )",
		"Exclusive or of the truthiness of two values.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			v := Bool(Truthy(args[0]) != Truthy(args[1]))
			return &v, nil
		})

	m.AddExportedNative("IN", "( item array -- bool )",
		"Membership test by structural equality.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			items, err := asArray("IN", args[1])
			if err != nil {
				return nil, err
			}
			v := Bool(containsValue(items, args[0]))
			return &v, nil
		})

	m.AddExportedNative("ANY", "( array -- bool )",
		"TRUE when any item is truthy.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			items, err := asArray("ANY", args[0])
			if err != nil {
				return nil, err
			}
			for _, item := range items {
				if Truthy(item) {
					v := Bool(true)
					return &v, nil
				}
			}
			v := Bool(false)
			return &v, nil
		})

	m.AddExportedNative("ALL", "( array -- bool )",
		"TRUE when every item is truthy (vacuously true for an empty array).",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			items, err := asArray("ALL", args[0])
			if err != nil {
				return nil, err
			}
			for _, item := range items {
				if !Truthy(item) {
					v := Bool(false)
					return &v, nil
				}
			}
			v := Bool(true)
			return &v, nil
		})

	m.AddExportedNative(">BOOL", "( value -- bool )",
		"Truthiness of a value.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			v := Bool(Truthy(args[0]))
			return &v, nil
		})

	return m
}

func comparison(word string, keep func(c int) bool) NativeFn {
	return func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
		c, err := compareValues(word, args[0], args[1])
		if err != nil {
			return nil, err
		}
		v := Bool(keep(c))
		return &v, nil
	}
}

// compareValues returns -1, 0 or 1 for orderable value pairs.
func compareValues(word string, a, b Value) (int, error) {
	if isNumeric(a) && isNumeric(b) {
		fa, fb := numericValue(a), numericValue(b)
		return cmpFloat(fa, fb), nil
	}
	if a.Tag == VTStr && b.Tag == VTStr {
		sa, sb := a.Data.(string), b.Data.(string)
		switch {
		case sa < sb:
			return -1, nil
		case sa > sb:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if ta, ok := chronoValue(a); ok {
		if tb, ok := chronoValue(b); ok {
			return cmpFloat(ta, tb), nil
		}
	}
	return 0, fmt.Errorf("%s cannot compare %s with %s", word, TagName(a.Tag), TagName(b.Tag))
}

func isNumeric(v Value) bool { return v.Tag == VTInt || v.Tag == VTFloat }

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// chronoValue maps temporal values to comparable seconds. Dates compare as
// midnight UTC; clock times as seconds since midnight.
func chronoValue(v Value) (float64, bool) {
	switch v.Tag {
	case VTInstant:
		return timeSeconds(v), true
	case VTZoned:
		return float64(v.Data.(ZonedTime).Time.UnixNano()) / 1e9, true
	case VTDate:
		d := v.Data.(PlainDate)
		return float64(d.Midnight(time.UTC).UnixNano()) / 1e9, true
	case VTTime:
		t := v.Data.(TimeOfDay)
		return float64(t.Hour*3600 + t.Minute*60), true
	default:
		return 0, false
	}
}

func timeSeconds(v Value) float64 {
	t := v.Data.(time.Time)
	return float64(t.UnixNano()) / 1e9
}
