// module_math.go
//
// Arithmetic and numeric conversion words. The engine never coerces
// between int and float on its own; the promotion rules here are the words'
// own contracts: int op int stays int (except /, which always gives a
// float), and any float operand promotes the result to float.
package forthic

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
)

func newMathModule() *Module {
	m := NewModule("math")

	m.AddExportedNative("+", "( a b -- sum )",
		"Add two numbers.",
		binaryArith("+", func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b }))

	m.AddExportedNative("-", "( a b -- difference )",
		"Subtract b from a.",
		binaryArith("-", func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b }))

	m.AddExportedNative("*", "( a b -- product )",
		"Multiply two numbers.",
		binaryArith("*", func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b }))

	m.AddExportedNative("/", "( a b -- quotient )",
		"Divide a by b. The result is always a float; division by zero gives infinity.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			a, _, err := asNumber("/", args[0])
			if err != nil {
				return nil, err
			}
			b, _, err := asNumber("/", args[1])
			if err != nil {
				return nil, err
			}
			v := Float(a / b)
			return &v, nil
		})

	m.AddExportedNative("MOD", "( a b -- remainder )",
		"Integer remainder of a divided by b.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			a, err := asInt("MOD", args[0])
			if err != nil {
				return nil, err
			}
			b, err := asInt("MOD", args[1])
			if err != nil {
				return nil, err
			}
			if b == 0 {
				return nil, fmt.Errorf("MOD by zero")
			}
			v := Int(a % b)
			return &v, nil
		})

	m.AddExportedNative("SUM", "( numbers -- sum )",
		"Sum an array of numbers. An all-int array sums to an int.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			return sumNumbers("SUM", args[0])
		})

	m.AddExportedNative("MEAN", "( numbers -- mean )",
		"Arithmetic mean of an array of numbers; null for an empty array.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			items, err := asArray("MEAN", args[0])
			if err != nil {
				return nil, err
			}
			if len(items) == 0 {
				v := Null
				return &v, nil
			}
			var total float64
			for _, item := range items {
				f, _, err := asNumber("MEAN", item)
				if err != nil {
					return nil, err
				}
				total += f
			}
			v := Float(total / float64(len(items)))
			return &v, nil
		})

	m.AddExportedNative("MAX", "( numbers -- max )",
		"Largest of an array of numbers; null for an empty array.",
		extremum("MAX", func(a, b float64) bool { return a > b }))

	m.AddExportedNative("MIN", "( numbers -- min )",
		"Smallest of an array of numbers; null for an empty array.",
		extremum("MIN", func(a, b float64) bool { return a < b }))

	m.AddExportedNative(">INT", "( value -- int )",
		"Convert to int: floats truncate, strings parse, bools give 0/1.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			switch args[0].Tag {
			case VTInt:
				return &args[0], nil
			case VTFloat:
				v := Int(int64(args[0].Data.(float64)))
				return &v, nil
			case VTBool:
				v := Int(0)
				if args[0].Data.(bool) {
					v = Int(1)
				}
				return &v, nil
			case VTStr:
				s := strings.TrimSpace(args[0].Data.(string))
				if n, err := strconv.ParseInt(s, 10, 64); err == nil {
					v := Int(n)
					return &v, nil
				}
				if f, err := strconv.ParseFloat(s, 64); err == nil {
					v := Int(int64(f))
					return &v, nil
				}
				return nil, &WordTypeError{Word: ">INT", Want: "numeric string", Got: VTStr}
			default:
				return nil, &WordTypeError{Word: ">INT", Want: "int, float, bool or string", Got: args[0].Tag}
			}
		})

	m.AddExportedNative(">FLOAT", "( value -- float )",
		"Convert to float: ints widen, strings parse.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			switch args[0].Tag {
			case VTFloat:
				return &args[0], nil
			case VTInt:
				v := Float(float64(args[0].Data.(int64)))
				return &v, nil
			case VTStr:
				f, err := strconv.ParseFloat(strings.TrimSpace(args[0].Data.(string)), 64)
				if err != nil {
					return nil, &WordTypeError{Word: ">FLOAT", Want: "numeric string", Got: VTStr}
				}
				v := Float(f)
				return &v, nil
			default:
				return nil, &WordTypeError{Word: ">FLOAT", Want: "int, float or string", Got: args[0].Tag}
			}
		})

	m.AddExportedNative(">FIXED", "( num n -- string )",
		"Format a number with n decimal places.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			f, _, err := asNumber(">FIXED", args[0])
			if err != nil {
				return nil, err
			}
			n, err := asInt(">FIXED", args[1])
			if err != nil {
				return nil, err
			}
			v := Str(strconv.FormatFloat(f, 'f', int(n), 64))
			return &v, nil
		})

	m.AddExportedNative("ROUND", "( num -- int )",
		"Round to the nearest integer, halves away from zero.",
		unaryToInt("ROUND", math.Round))

	m.AddExportedNative("FLOOR", "( num -- int )",
		"Round down to an integer.",
		unaryToInt("FLOOR", math.Floor))

	m.AddExportedNative("CEILING", "( num -- int )",
		"Round up to an integer.",
		unaryToInt("CEILING", math.Ceil))

	m.AddExportedNative("ABS", "( num -- num )",
		"Absolute value, keeping the input's variant.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			switch args[0].Tag {
			case VTInt:
				n := args[0].Data.(int64)
				if n < 0 {
					n = -n
				}
				v := Int(n)
				return &v, nil
			case VTFloat:
				v := Float(math.Abs(args[0].Data.(float64)))
				return &v, nil
			default:
				return nil, &WordTypeError{Word: "ABS", Want: "int or float", Got: args[0].Tag}
			}
		})

	m.AddExportedNative("SQRT", "( num -- float )",
		"Square root.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			f, _, err := asNumber("SQRT", args[0])
			if err != nil {
				return nil, err
			}
			v := Float(math.Sqrt(f))
			return &v, nil
		})

	m.AddExportedNative("CLAMP", "( num low high -- num )",
		"Clamp a number into [low, high].",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			f, isInt, err := asNumber("CLAMP", args[0])
			if err != nil {
				return nil, err
			}
			low, lowInt, err := asNumber("CLAMP", args[1])
			if err != nil {
				return nil, err
			}
			high, highInt, err := asNumber("CLAMP", args[2])
			if err != nil {
				return nil, err
			}
			out := math.Min(math.Max(f, low), high)
			if isInt && lowInt && highInt {
				v := Int(int64(out))
				return &v, nil
			}
			v := Float(out)
			return &v, nil
		})

	addConstWord(m, "PI", Float(math.Pi))
	addConstWord(m, "E", Float(math.E))
	addConstWord(m, "INFINITY", Float(math.Inf(1)))

	m.AddExportedNative("UNIFORM-RANDOM", "( low high -- float )",
		"Uniformly distributed random float in [low, high).",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			low, _, err := asNumber("UNIFORM-RANDOM", args[0])
			if err != nil {
				return nil, err
			}
			high, _, err := asNumber("UNIFORM-RANDOM", args[1])
			if err != nil {
				return nil, err
			}
			v := Float(low + rand.Float64()*(high-low))
			return &v, nil
		})

	return m
}

func binaryArith(word string, intOp func(a, b int64) int64, floatOp func(a, b float64) float64) NativeFn {
	return func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
		if args[0].Tag == VTInt && args[1].Tag == VTInt {
			v := Int(intOp(args[0].Data.(int64), args[1].Data.(int64)))
			return &v, nil
		}
		a, _, err := asNumber(word, args[0])
		if err != nil {
			return nil, err
		}
		b, _, err := asNumber(word, args[1])
		if err != nil {
			return nil, err
		}
		v := Float(floatOp(a, b))
		return &v, nil
	}
}

func unaryToInt(word string, fn func(float64) float64) NativeFn {
	return func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
		f, _, err := asNumber(word, args[0])
		if err != nil {
			return nil, err
		}
		v := Int(int64(fn(f)))
		return &v, nil
	}
}

func extremum(word string, better func(a, b float64) bool) NativeFn {
	return func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
		items, err := asArray(word, args[0])
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			v := Null
			return &v, nil
		}
		best := items[0]
		bestF, _, err := asNumber(word, best)
		if err != nil {
			return nil, err
		}
		for _, item := range items[1:] {
			f, _, err := asNumber(word, item)
			if err != nil {
				return nil, err
			}
			if better(f, bestF) {
				best, bestF = item, f
			}
		}
		return &best, nil
	}
}

// sumNumbers sums an array, returning an int when every element was an
// int.
func sumNumbers(word string, arr Value) (*Value, error) {
	items, err := asArray(word, arr)
	if err != nil {
		return nil, err
	}
	allInt := true
	var total float64
	for _, item := range items {
		f, isInt, err := asNumber(word, item)
		if err != nil {
			return nil, err
		}
		allInt = allInt && isInt
		total += f
	}
	if allInt {
		v := Int(int64(total))
		return &v, nil
	}
	v := Float(total)
	return &v, nil
}
