// module_core.go
//
// Core words: stack shuffling, variables, module plumbing, options,
// profiling and nested interpretation. These live in a global module, so
// they resolve everywhere without an import.
package forthic

import (
	"fmt"
	"strings"
)

func newCoreModule() *Module {
	m := NewModule("core")

	m.AddExportedNative("POP", "( a -- )",
		"Drop the top of the stack.",
		func(_ *Interpreter, _ []Value, _ *WordOptions) (*Value, error) {
			return nil, nil
		})

	m.AddExportedNative("DUP", "( a -- a a )",
		"Duplicate the top of the stack.",
		func(ip *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			ip.Push(args[0])
			return &args[0], nil
		})

	m.AddExportedNative("SWAP", "( a b -- b a )",
		"Swap the top two stack values.",
		func(ip *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			ip.Push(args[1])
			return &args[0], nil
		})

	m.AddExportedNative("NULL", "( -- null )",
		"Push null.",
		func(_ *Interpreter, _ []Value, _ *WordOptions) (*Value, error) {
			v := Null
			return &v, nil
		})

	m.AddExportedNative("IDENTITY", "( -- )",
		"Do nothing.",
		func(_ *Interpreter, _ []Value, _ *WordOptions) (*Value, error) {
			return nil, nil
		})

	m.AddExportedNative("NOP", "( -- )",
		"Do nothing.",
		func(_ *Interpreter, _ []Value, _ *WordOptions) (*Value, error) {
			return nil, nil
		})

	m.AddExportedNative("ARRAY?", "( a -- bool )",
		"Push TRUE when the value is an array.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			v := Bool(args[0].Tag == VTArray)
			return &v, nil
		})

	m.AddExportedNative("DEFAULT", "( value default -- value )",
		"Replace a null value with a default.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			if args[0].Tag == VTNull {
				return &args[1], nil
			}
			return &args[0], nil
		})

	m.AddExportedDirect("*DEFAULT",
		"( value forthic -- value ) Replace a null value with the result of running a Forthic string.",
		func(ip *Interpreter) error {
			forthicSrc, err := popString(ip, "*DEFAULT")
			if err != nil {
				return err
			}
			v, err := ip.Pop()
			if err != nil {
				return &StackUnderflowError{Word: "*DEFAULT"}
			}
			if v.Tag != VTNull {
				ip.Push(v)
				return nil
			}
			return ip.RunAt(forthicSrc, CodeLocation{Source: "<*DEFAULT>", Line: 1, Col: 1})
		})

	m.AddExportedNative("VARIABLES", "( names -- )",
		"Create (or reuse) variables with the given names in the current module.",
		func(ip *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			names, err := asStringArray("VARIABLES", args[0])
			if err != nil {
				return nil, err
			}
			for _, name := range names {
				ip.CurModule().EnsureVariable(name)
			}
			return nil, nil
		})

	m.AddExportedNative("!", "( value variable -- )",
		"Store a value in a variable.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			v, err := asVariable("!", args[1])
			if err != nil {
				return nil, err
			}
			v.Value = args[0]
			return nil, nil
		})

	m.AddExportedNative("@", "( variable -- value )",
		"Push a variable's value.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			v, err := asVariable("@", args[0])
			if err != nil {
				return nil, err
			}
			return &v.Value, nil
		})

	m.AddExportedNative("!@", "( value variable -- value )",
		"Store a value in a variable and keep it on the stack.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			v, err := asVariable("!@", args[1])
			if err != nil {
				return nil, err
			}
			v.Value = args[0]
			return &args[0], nil
		})

	m.AddExportedDirect("INTERPRET",
		"( forthic -- ? ) Run a string as Forthic source in this interpreter. Null runs nothing.",
		func(ip *Interpreter) error {
			v, err := ip.Pop()
			if err != nil {
				return &StackUnderflowError{Word: "INTERPRET"}
			}
			if v.Tag == VTNull {
				return nil
			}
			if v.Tag != VTStr {
				return &WordTypeError{Word: "INTERPRET", Want: "string", Got: v.Tag}
			}
			return ip.RunAt(v.Data.(string), CodeLocation{Source: "<INTERPRET>", Line: 1, Col: 1})
		})

	m.AddExportedNative("EXPORT", "( names -- )",
		"Mark words of the current module as visible to importers.",
		func(ip *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			names, err := asStringArray("EXPORT", args[0])
			if err != nil {
				return nil, err
			}
			ip.CurModule().AddExportable(names...)
			return nil, nil
		})

	m.AddExportedDirect("USE-MODULES",
		"( items -- ) Import registered modules. Each item is a module name, or a [name prefix] pair to install prefixed words.",
		func(ip *Interpreter) error {
			items, err := popArray(ip, "USE-MODULES")
			if err != nil {
				return err
			}
			for _, item := range items {
				switch item.Tag {
				case VTStr:
					if err := ip.UseModule(item.Data.(string)); err != nil {
						return err
					}
				case VTArray:
					pair := item.Data.([]Value)
					if len(pair) != 2 || pair[0].Tag != VTStr || pair[1].Tag != VTStr {
						return fmt.Errorf("USE-MODULES expects [name prefix] string pairs")
					}
					if err := ip.UseModulePrefixed(pair[0].Data.(string), pair[1].Data.(string)); err != nil {
						return err
					}
				default:
					return &WordTypeError{Word: "USE-MODULES", Want: "string or [name prefix] pair", Got: item.Tag}
				}
			}
			return nil
		})

	m.AddExportedNative("~>", "( pairs -- options )",
		"Build word options from a flat array of [.key value ...] pairs.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			items, err := asArray("~>", args[0])
			if err != nil {
				return nil, err
			}
			opts, err := WordOptionsFromPairs(items)
			if err != nil {
				return nil, err
			}
			v := OptionsVal(opts)
			return &v, nil
		})

	m.AddExportedDirect("PROFILE-START",
		"( -- ) Begin a profiling window: count word executions and record timestamps.",
		func(ip *Interpreter) error {
			ip.StartProfiling()
			return nil
		})

	m.AddExportedDirect("PROFILE-END",
		"( -- ) End the profiling window.",
		func(ip *Interpreter) error {
			ip.StopProfiling()
			return nil
		})

	m.AddExportedDirect("PROFILE-TIMESTAMP",
		"( label -- ) Record a labeled timestamp in the profiling window.",
		func(ip *Interpreter) error {
			label, err := popString(ip, "PROFILE-TIMESTAMP")
			if err != nil {
				return err
			}
			ip.AddTimestamp(label)
			return nil
		})

	m.AddExportedDirect("PROFILE-DATA",
		"( -- record ) Push the profiling report: word counts and timestamps.",
		func(ip *Interpreter) error {
			ip.Push(ip.ProfileReport())
			return nil
		})

	m.AddExportedNative("INTERPOLATE", "( values template -- string )",
		"Replace each {} in the template with the next value from the array.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			values, err := asArray("INTERPOLATE", args[0])
			if err != nil {
				return nil, err
			}
			template, err := asString("INTERPOLATE", args[1])
			if err != nil {
				return nil, err
			}
			var sb strings.Builder
			next := 0
			rest := template
			for {
				idx := strings.Index(rest, "{}")
				if idx < 0 {
					sb.WriteString(rest)
					break
				}
				sb.WriteString(rest[:idx])
				if next < len(values) {
					sb.WriteString(FormatValue(values[next]))
					next++
				}
				rest = rest[idx+2:]
			}
			v := Str(sb.String())
			return &v, nil
		})

	m.AddExportedNative("PRINT", "( value -- )",
		"Print a value to stdout.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			fmt.Println(FormatValue(args[0]))
			return nil, nil
		})

	return m
}

// ---- argument helpers used across the builtin modules ------------------

func asString(word string, v Value) (string, error) {
	if v.Tag != VTStr {
		return "", &WordTypeError{Word: word, Want: "string", Got: v.Tag}
	}
	return v.Data.(string), nil
}

func asArray(word string, v Value) ([]Value, error) {
	if v.Tag != VTArray {
		return nil, &WordTypeError{Word: word, Want: "array", Got: v.Tag}
	}
	return v.Data.([]Value), nil
}

func asRecord(word string, v Value) (*RecordObject, error) {
	if v.Tag != VTRecord {
		return nil, &WordTypeError{Word: word, Want: "record", Got: v.Tag}
	}
	return v.Data.(*RecordObject), nil
}

func asVariable(word string, v Value) (*Variable, error) {
	if v.Tag != VTVariable {
		return nil, &WordTypeError{Word: word, Want: "variable", Got: v.Tag}
	}
	return v.Data.(*Variable), nil
}

func asStringArray(word string, v Value) ([]string, error) {
	items, err := asArray(word, v)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, err := asString(word, item)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func asInt(word string, v Value) (int64, error) {
	if v.Tag != VTInt {
		return 0, &WordTypeError{Word: word, Want: "int", Got: v.Tag}
	}
	return v.Data.(int64), nil
}

// asNumber accepts int or float and returns a float64 plus whether the
// input was an int. Words that preserve intness use the flag.
func asNumber(word string, v Value) (float64, bool, error) {
	switch v.Tag {
	case VTInt:
		return float64(v.Data.(int64)), true, nil
	case VTFloat:
		return v.Data.(float64), false, nil
	default:
		return 0, false, &WordTypeError{Word: word, Want: "int or float", Got: v.Tag}
	}
}

func popString(ip *Interpreter, word string) (string, error) {
	v, err := ip.Pop()
	if err != nil {
		return "", &StackUnderflowError{Word: word}
	}
	return asString(word, v)
}

func popArray(ip *Interpreter, word string) ([]Value, error) {
	v, err := ip.Pop()
	if err != nil {
		return nil, &StackUnderflowError{Word: word}
	}
	return asArray(word, v)
}
