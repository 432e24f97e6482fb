// module_array.go
//
// Array words. Higher-order words (MAP, FILTER, REDUCE, SORT with a
// comparator) take a Forthic string and run it against the interpreter for
// each item.
package forthic

import "sort"

func newArrayModule() *Module {
	m := NewModule("array")

	m.AddExportedNative("LENGTH", "( seq -- n )",
		"Length of an array or string.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			var n int64
			switch args[0].Tag {
			case VTArray:
				n = int64(len(args[0].Data.([]Value)))
			case VTStr:
				n = int64(len([]rune(args[0].Data.(string))))
			case VTRecord:
				n = int64(args[0].Data.(*RecordObject).Len())
			default:
				return nil, &WordTypeError{Word: "LENGTH", Want: "array, string or record", Got: args[0].Tag}
			}
			v := Int(n)
			return &v, nil
		})

	m.AddExportedNative("NTH", "( array n -- item )",
		"Item at index n, or null when out of range. Negative n counts from the end.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			items, err := asArray("NTH", args[0])
			if err != nil {
				return nil, err
			}
			n, err := asInt("NTH", args[1])
			if err != nil {
				return nil, err
			}
			idx := normalizeIndex(n, len(items))
			if idx < 0 || idx >= len(items) {
				v := Null
				return &v, nil
			}
			return &items[idx], nil
		})

	m.AddExportedNative("LAST", "( array -- item )",
		"Last item, or null for an empty array.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			items, err := asArray("LAST", args[0])
			if err != nil {
				return nil, err
			}
			if len(items) == 0 {
				v := Null
				return &v, nil
			}
			return &items[len(items)-1], nil
		})

	m.AddExportedNative("SLICE", "( array start end -- array )",
		"Inclusive slice. Negative indices count from the end; start past end slices in reverse.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			items, err := asArray("SLICE", args[0])
			if err != nil {
				return nil, err
			}
			start, err := asInt("SLICE", args[1])
			if err != nil {
				return nil, err
			}
			end, err := asInt("SLICE", args[2])
			if err != nil {
				return nil, err
			}
			s := normalizeIndex(start, len(items))
			e := normalizeIndex(end, len(items))
			var out []Value
			if s <= e {
				for i := s; i <= e; i++ {
					out = append(out, itemOrNull(items, i))
				}
			} else {
				for i := s; i >= e; i-- {
					out = append(out, itemOrNull(items, i))
				}
			}
			if out == nil {
				out = []Value{}
			}
			v := Arr(out)
			return &v, nil
		})

	m.AddExportedNative("TAKE", "( array n -- array )",
		"First n items (fewer when the array is short).",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			items, err := asArray("TAKE", args[0])
			if err != nil {
				return nil, err
			}
			n, err := asInt("TAKE", args[1])
			if err != nil {
				return nil, err
			}
			v := Arr(copyItems(items[:clampLen(n, len(items))]))
			return &v, nil
		})

	m.AddExportedNative("DROP", "( array n -- array )",
		"Array without its first n items.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			items, err := asArray("DROP", args[0])
			if err != nil {
				return nil, err
			}
			n, err := asInt("DROP", args[1])
			if err != nil {
				return nil, err
			}
			v := Arr(copyItems(items[clampLen(n, len(items)):]))
			return &v, nil
		})

	m.AddExportedNative("REVERSE", "( array -- array )",
		"Array in reverse order.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			items, err := asArray("REVERSE", args[0])
			if err != nil {
				return nil, err
			}
			out := make([]Value, len(items))
			for i, item := range items {
				out[len(items)-1-i] = item
			}
			v := Arr(out)
			return &v, nil
		})

	m.AddExportedNative("APPEND", "( array item -- array )",
		"Array with an item appended.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			items, err := asArray("APPEND", args[0])
			if err != nil {
				return nil, err
			}
			out := append(copyItems(items), args[1])
			v := Arr(out)
			return &v, nil
		})

	m.AddExportedNative("ZIP", "( a b -- pairs )",
		"Pair items of two arrays; the shorter array pads with null.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			xs, err := asArray("ZIP", args[0])
			if err != nil {
				return nil, err
			}
			ys, err := asArray("ZIP", args[1])
			if err != nil {
				return nil, err
			}
			n := len(xs)
			if len(ys) > n {
				n = len(ys)
			}
			out := make([]Value, n)
			for i := 0; i < n; i++ {
				out[i] = Arr([]Value{itemOrNull(xs, i), itemOrNull(ys, i)})
			}
			v := Arr(out)
			return &v, nil
		})

	m.AddExportedNative("UNIQUE", "( array -- array )",
		"Drop duplicate items, keeping first occurrences.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			items, err := asArray("UNIQUE", args[0])
			if err != nil {
				return nil, err
			}
			out := []Value{}
			for _, item := range items {
				if !containsValue(out, item) {
					out = append(out, item)
				}
			}
			v := Arr(out)
			return &v, nil
		})

	m.AddExportedNative("DIFFERENCE", "( a b -- array )",
		"Items of a that are not in b.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			return setOperation("DIFFERENCE", args, func(inB bool) bool { return !inB })
		})

	m.AddExportedNative("INTERSECTION", "( a b -- array )",
		"Items of a that are also in b.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			return setOperation("INTERSECTION", args, func(inB bool) bool { return inB })
		})

	m.AddExportedNative("UNION", "( a b -- array )",
		"Items of a followed by items of b not already present.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			xs, err := asArray("UNION", args[0])
			if err != nil {
				return nil, err
			}
			ys, err := asArray("UNION", args[1])
			if err != nil {
				return nil, err
			}
			out := copyItems(xs)
			for _, y := range ys {
				if !containsValue(out, y) {
					out = append(out, y)
				}
			}
			v := Arr(out)
			return &v, nil
		})

	m.AddExportedNative("SORT", "( array [options] -- array )",
		"Sort an array. The .comparator option is a Forthic string run per item to derive its sort key.",
		func(ip *Interpreter, args []Value, opts *WordOptions) (*Value, error) {
			items, err := asArray("SORT", args[0])
			if err != nil {
				return nil, err
			}
			keys := copyItems(items)
			if comp, ok := opts.Get("comparator"); ok && comp.Tag == VTStr {
				keys = make([]Value, len(items))
				for i, item := range items {
					k, err := applyForthic(ip, comp.Data.(string), item)
					if err != nil {
						return nil, err
					}
					keys[i] = k
				}
			}
			idx := make([]int, len(items))
			for i := range idx {
				idx[i] = i
			}
			sort.SliceStable(idx, func(i, j int) bool {
				return lessValues(keys[idx[i]], keys[idx[j]])
			})
			out := make([]Value, len(items))
			for i, j := range idx {
				out[i] = items[j]
			}
			v := Arr(out)
			return &v, nil
		})

	m.AddExportedNative("MAP", "( array forthic -- array )",
		"Run a Forthic string against each item, collecting the results.",
		func(ip *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			items, err := asArray("MAP", args[0])
			if err != nil {
				return nil, err
			}
			src, err := asString("MAP", args[1])
			if err != nil {
				return nil, err
			}
			out := make([]Value, len(items))
			for i, item := range items {
				res, err := applyForthic(ip, src, item)
				if err != nil {
					return nil, err
				}
				out[i] = res
			}
			v := Arr(out)
			return &v, nil
		})

	m.AddExportedNative("FILTER", "( array forthic -- array )",
		"Keep items for which the Forthic string leaves a truthy value.",
		func(ip *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			items, err := asArray("FILTER", args[0])
			if err != nil {
				return nil, err
			}
			src, err := asString("FILTER", args[1])
			if err != nil {
				return nil, err
			}
			out := []Value{}
			for _, item := range items {
				res, err := applyForthic(ip, src, item)
				if err != nil {
					return nil, err
				}
				if Truthy(res) {
					out = append(out, item)
				}
			}
			v := Arr(out)
			return &v, nil
		})

	m.AddExportedNative("REDUCE", "( array initial forthic -- value )",
		"Fold the array: for each item the string runs with accumulator and item on the stack.",
		func(ip *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			items, err := asArray("REDUCE", args[0])
			if err != nil {
				return nil, err
			}
			src, err := asString("REDUCE", args[2])
			if err != nil {
				return nil, err
			}
			acc := args[1]
			for _, item := range items {
				ip.Push(acc)
				ip.Push(item)
				if err := ip.RunAt(src, CodeLocation{Source: "<REDUCE>", Line: 1, Col: 1}); err != nil {
					return nil, err
				}
				acc, err = ip.Pop()
				if err != nil {
					return nil, &StackUnderflowError{Word: "REDUCE"}
				}
			}
			return &acc, nil
		})

	m.AddExportedNative("FLATTEN", "( array -- array )",
		"Flatten nested arrays into a single level.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			items, err := asArray("FLATTEN", args[0])
			if err != nil {
				return nil, err
			}
			out := []Value{}
			var walk func(xs []Value)
			walk = func(xs []Value) {
				for _, x := range xs {
					if x.Tag == VTArray {
						walk(x.Data.([]Value))
					} else {
						out = append(out, x)
					}
				}
			}
			walk(items)
			v := Arr(out)
			return &v, nil
		})

	m.AddExportedNative("GROUPS-OF", "( array n -- groups )",
		"Split an array into consecutive groups of n items.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			items, err := asArray("GROUPS-OF", args[0])
			if err != nil {
				return nil, err
			}
			n, err := asInt("GROUPS-OF", args[1])
			if err != nil {
				return nil, err
			}
			if n <= 0 {
				return nil, &WordTypeError{Word: "GROUPS-OF", Want: "positive group size", Got: args[1].Tag}
			}
			out := []Value{}
			for start := 0; start < len(items); start += int(n) {
				end := start + int(n)
				if end > len(items) {
					end = len(items)
				}
				out = append(out, Arr(copyItems(items[start:end])))
			}
			v := Arr(out)
			return &v, nil
		})

	m.AddExportedNative("KEY-OF", "( array item -- index )",
		"Index of the first occurrence of item, or null.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			items, err := asArray("KEY-OF", args[0])
			if err != nil {
				return nil, err
			}
			for i, item := range items {
				if DeepEqual(item, args[1]) {
					v := Int(int64(i))
					return &v, nil
				}
			}
			v := Null
			return &v, nil
		})

	m.AddExportedNative("UNPACK", "( array -- ...items )",
		"Push each item of an array.",
		func(ip *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			items, err := asArray("UNPACK", args[0])
			if err != nil {
				return nil, err
			}
			for _, item := range items {
				ip.Push(item)
			}
			return nil, nil
		})

	m.AddExportedNative("<REPEAT", "( forthic n -- ? )",
		"Run a Forthic string n times.",
		func(ip *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			src, err := asString("<REPEAT", args[0])
			if err != nil {
				return nil, err
			}
			n, err := asInt("<REPEAT", args[1])
			if err != nil {
				return nil, err
			}
			for i := int64(0); i < n; i++ {
				if err := ip.RunAt(src, CodeLocation{Source: "<REPEAT>", Line: 1, Col: 1}); err != nil {
					return nil, err
				}
			}
			return nil, nil
		})

	m.AddExportedNative("RANGE", "( start end -- array )",
		"Integers from start (inclusive) to end (exclusive).",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			start, err := asInt("RANGE", args[0])
			if err != nil {
				return nil, err
			}
			end, err := asInt("RANGE", args[1])
			if err != nil {
				return nil, err
			}
			out := []Value{}
			for i := start; i < end; i++ {
				out = append(out, Int(i))
			}
			v := Arr(out)
			return &v, nil
		})

	return m
}

// applyForthic pushes item, runs src and pops the result.
func applyForthic(ip *Interpreter, src string, item Value) (Value, error) {
	ip.Push(item)
	if err := ip.RunAt(src, CodeLocation{Source: "<apply>", Line: 1, Col: 1}); err != nil {
		return Null, err
	}
	v, err := ip.Pop()
	if err != nil {
		return Null, &StackUnderflowError{Word: src}
	}
	return v, nil
}

func normalizeIndex(n int64, length int) int {
	if n < 0 {
		return length + int(n)
	}
	return int(n)
}

func clampLen(n int64, length int) int {
	if n < 0 {
		return 0
	}
	if int(n) > length {
		return length
	}
	return int(n)
}

func itemOrNull(items []Value, i int) Value {
	if i < 0 || i >= len(items) {
		return Null
	}
	return items[i]
}

func copyItems(items []Value) []Value {
	out := make([]Value, len(items))
	copy(out, items)
	return out
}

func containsValue(items []Value, v Value) bool {
	for _, item := range items {
		if DeepEqual(item, v) {
			return true
		}
	}
	return false
}

func setOperation(word string, args []Value, keep func(inB bool) bool) (*Value, error) {
	xs, err := asArray(word, args[0])
	if err != nil {
		return nil, err
	}
	ys, err := asArray(word, args[1])
	if err != nil {
		return nil, err
	}
	out := []Value{}
	for _, x := range xs {
		if keep(containsValue(ys, x)) {
			out = append(out, x)
		}
	}
	v := Arr(out)
	return &v, nil
}

// lessValues is the default SORT ordering: numbers before strings before
// everything else; numbers compare numerically across int/float, strings
// lexicographically, anything else by its printed form.
func lessValues(a, b Value) bool {
	ra, rb := sortRank(a), sortRank(b)
	if ra != rb {
		return ra < rb
	}
	switch ra {
	case 0:
		return numericValue(a) < numericValue(b)
	case 1:
		return a.Data.(string) < b.Data.(string)
	default:
		return FormatValue(a) < FormatValue(b)
	}
}

func sortRank(v Value) int {
	switch v.Tag {
	case VTInt, VTFloat:
		return 0
	case VTStr:
		return 1
	default:
		return 2
	}
}

func numericValue(v Value) float64 {
	if v.Tag == VTInt {
		return float64(v.Data.(int64))
	}
	return v.Data.(float64)
}
