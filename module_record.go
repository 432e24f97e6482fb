// module_record.go
//
// Record words. Records are insertion-ordered; every word here preserves
// order and treats a repeated key as an overwrite of the existing slot.
// REC@ and <REC! accept either a string key or an array of keys for
// drilling into nested records (and array indices along the way).
package forthic

func newRecordModule() *Module {
	m := NewModule("record")

	m.AddExportedNative("REC", "( pairs -- record )",
		"Build a record from an array of [key value] pairs.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			pairs, err := asArray("REC", args[0])
			if err != nil {
				return nil, err
			}
			ro := NewRecordObject()
			for _, pair := range pairs {
				kv, err := asArray("REC", pair)
				if err != nil {
					return nil, err
				}
				if len(kv) != 2 {
					return nil, &WordTypeError{Word: "REC", Want: "[key value] pair", Got: pair.Tag}
				}
				key, err := asString("REC", kv[0])
				if err != nil {
					return nil, err
				}
				ro.Set(key, kv[1])
			}
			v := Value{Tag: VTRecord, Data: ro}
			return &v, nil
		})

	m.AddExportedNative("REC@", "( record key -- value )",
		"Value at a key (or key path array). Missing keys and null records give null.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			if args[0].Tag == VTNull {
				v := Null
				return &v, nil
			}
			path, err := keyPath("REC@", args[1])
			if err != nil {
				return nil, err
			}
			v := drill(args[0], path)
			return &v, nil
		})

	m.AddExportedNative("<REC!", "( record value key -- record )",
		"Set a key (or key path array) to a value, creating nested records as needed.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			rec := args[0]
			if rec.Tag == VTNull {
				rec = Value{Tag: VTRecord, Data: NewRecordObject()}
			}
			ro, err := asRecord("<REC!", rec)
			if err != nil {
				return nil, err
			}
			path, err := keyPath("<REC!", args[2])
			if err != nil {
				return nil, err
			}
			if len(path) == 0 {
				return nil, &WordTypeError{Word: "<REC!", Want: "non-empty key", Got: args[2].Tag}
			}
			cur := ro
			for _, key := range path[:len(path)-1] {
				next, ok := cur.Get(key)
				if !ok || next.Tag != VTRecord {
					child := NewRecordObject()
					cur.Set(key, Value{Tag: VTRecord, Data: child})
					cur = child
					continue
				}
				cur = next.Data.(*RecordObject)
			}
			cur.Set(path[len(path)-1], args[1])
			return &rec, nil
		})

	m.AddExportedNative("KEYS", "( record -- keys )",
		"Record keys in insertion order.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			ro, err := asRecord("KEYS", args[0])
			if err != nil {
				return nil, err
			}
			out := make([]Value, 0, ro.Len())
			for _, k := range ro.Keys {
				out = append(out, Str(k))
			}
			v := Arr(out)
			return &v, nil
		})

	m.AddExportedNative("VALUES", "( record -- values )",
		"Record values in insertion order.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			ro, err := asRecord("VALUES", args[0])
			if err != nil {
				return nil, err
			}
			out := make([]Value, 0, ro.Len())
			for _, k := range ro.Keys {
				out = append(out, ro.Entries[k])
			}
			v := Arr(out)
			return &v, nil
		})

	m.AddExportedNative("RELABEL", "( record old_keys new_keys -- record )",
		"Rename keys, keeping only the renamed ones, in new_keys order.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			ro, err := asRecord("RELABEL", args[0])
			if err != nil {
				return nil, err
			}
			oldKeys, err := asStringArray("RELABEL", args[1])
			if err != nil {
				return nil, err
			}
			newKeys, err := asStringArray("RELABEL", args[2])
			if err != nil {
				return nil, err
			}
			if len(oldKeys) != len(newKeys) {
				return nil, &OptionsError{Msg: "RELABEL needs matching key arrays"}
			}
			out := NewRecordObject()
			for i, oldKey := range oldKeys {
				if val, ok := ro.Get(oldKey); ok {
					out.Set(newKeys[i], val)
				}
			}
			v := Value{Tag: VTRecord, Data: out}
			return &v, nil
		})

	m.AddExportedNative("<DEL", "( record key -- record )",
		"Remove a key. Removing a missing key is a no-op.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			ro, err := asRecord("<DEL", args[0])
			if err != nil {
				return nil, err
			}
			key, err := asString("<DEL", args[1])
			if err != nil {
				return nil, err
			}
			ro.Delete(key)
			return &args[0], nil
		})

	m.AddExportedNative("REC-DEFAULTS", "( record defaults -- record )",
		"Fill missing or null keys from a defaults record.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			ro, err := asRecord("REC-DEFAULTS", args[0])
			if err != nil {
				return nil, err
			}
			defaults, err := asRecord("REC-DEFAULTS", args[1])
			if err != nil {
				return nil, err
			}
			for _, k := range defaults.Keys {
				cur, ok := ro.Get(k)
				if !ok || cur.Tag == VTNull {
					ro.Set(k, defaults.Entries[k])
				}
			}
			return &args[0], nil
		})

	return m
}

// keyPath normalizes a key argument: a string is a single-step path, an
// array of strings is a nested path.
func keyPath(word string, v Value) ([]string, error) {
	switch v.Tag {
	case VTStr:
		return []string{v.Data.(string)}, nil
	case VTArray:
		return asStringArray(word, v)
	default:
		return nil, &WordTypeError{Word: word, Want: "string or array of strings", Got: v.Tag}
	}
}

// drill follows a key path through records; any miss gives null.
func drill(v Value, path []string) Value {
	cur := v
	for _, key := range path {
		if cur.Tag != VTRecord {
			return Null
		}
		next, ok := cur.Data.(*RecordObject).Get(key)
		if !ok {
			return Null
		}
		cur = next
	}
	return cur
}
