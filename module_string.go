// module_string.go
//
// String words, including the regex trio backed by Go's regexp package.
package forthic

import (
	"net/url"
	"regexp"
	"strings"
)

func newStringModule() *Module {
	m := NewModule("string")

	m.AddExportedNative("CONCAT", "( strings -- string )",
		"Concatenate an array of strings.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			items, err := asStringArray("CONCAT", args[0])
			if err != nil {
				return nil, err
			}
			v := Str(strings.Join(items, ""))
			return &v, nil
		})

	m.AddExportedNative(">STR", "( value -- string )",
		"Printed form of any value.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			v := Str(FormatValue(args[0]))
			return &v, nil
		})

	m.AddExportedNative("SPLIT", "( string sep -- array )",
		"Split a string on a separator.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			s, err := asString("SPLIT", args[0])
			if err != nil {
				return nil, err
			}
			sep, err := asString("SPLIT", args[1])
			if err != nil {
				return nil, err
			}
			parts := strings.Split(s, sep)
			out := make([]Value, len(parts))
			for i, p := range parts {
				out[i] = Str(p)
			}
			v := Arr(out)
			return &v, nil
		})

	m.AddExportedNative("JOIN", "( items sep -- string )",
		"Join printed item forms with a separator.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			items, err := asArray("JOIN", args[0])
			if err != nil {
				return nil, err
			}
			sep, err := asString("JOIN", args[1])
			if err != nil {
				return nil, err
			}
			parts := make([]string, len(items))
			for i, item := range items {
				parts[i] = FormatValue(item)
			}
			v := Str(strings.Join(parts, sep))
			return &v, nil
		})

	addConstWord(m, "/N", Str("\n"))
	addConstWord(m, "/R", Str("\r"))
	addConstWord(m, "/T", Str("\t"))

	m.AddExportedNative("LOWERCASE", "( string -- string )",
		"Lowercase a string.",
		stringMap("LOWERCASE", strings.ToLower))

	m.AddExportedNative("UPPERCASE", "( string -- string )",
		"Uppercase a string.",
		stringMap("UPPERCASE", strings.ToUpper))

	m.AddExportedNative("STRIP", "( string -- string )",
		"Trim leading and trailing whitespace.",
		stringMap("STRIP", strings.TrimSpace))

	m.AddExportedNative("REPLACE", "( string old new -- string )",
		"Replace every occurrence of old with new.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			s, err := asString("REPLACE", args[0])
			if err != nil {
				return nil, err
			}
			old, err := asString("REPLACE", args[1])
			if err != nil {
				return nil, err
			}
			repl, err := asString("REPLACE", args[2])
			if err != nil {
				return nil, err
			}
			v := Str(strings.ReplaceAll(s, old, repl))
			return &v, nil
		})

	m.AddExportedNative("RE-MATCH", "( string regex -- match )",
		"First regex match, or null.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			re, s, err := regexArgs("RE-MATCH", args)
			if err != nil {
				return nil, err
			}
			match := re.FindString(s)
			if match == "" && !re.MatchString(s) {
				v := Null
				return &v, nil
			}
			v := Str(match)
			return &v, nil
		})

	m.AddExportedNative("RE-MATCH-ALL", "( string regex -- matches )",
		"All regex matches.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			re, s, err := regexArgs("RE-MATCH-ALL", args)
			if err != nil {
				return nil, err
			}
			matches := re.FindAllString(s, -1)
			out := make([]Value, len(matches))
			for i, match := range matches {
				out[i] = Str(match)
			}
			v := Arr(out)
			return &v, nil
		})

	m.AddExportedNative("RE-MATCH-GROUP", "( string regex n -- group )",
		"Capture group n of the first match, or null.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			re, s, err := regexArgs("RE-MATCH-GROUP", args)
			if err != nil {
				return nil, err
			}
			n, err := asInt("RE-MATCH-GROUP", args[2])
			if err != nil {
				return nil, err
			}
			groups := re.FindStringSubmatch(s)
			if groups == nil || n < 0 || int(n) >= len(groups) {
				v := Null
				return &v, nil
			}
			v := Str(groups[n])
			return &v, nil
		})

	m.AddExportedNative("URL-ENCODE", "( string -- string )",
		"Percent-encode a string for use in a URL query.",
		stringMap("URL-ENCODE", url.QueryEscape))

	m.AddExportedNative("URL-DECODE", "( string -- string )",
		"Decode a percent-encoded string. Bad escapes leave the input unchanged.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			s, err := asString("URL-DECODE", args[0])
			if err != nil {
				return nil, err
			}
			decoded, derr := url.QueryUnescape(s)
			if derr != nil {
				decoded = s
			}
			v := Str(decoded)
			return &v, nil
		})

	m.AddExportedNative("ASCII", "( string -- string )",
		"Drop non-ASCII characters.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			s, err := asString("ASCII", args[0])
			if err != nil {
				return nil, err
			}
			var sb strings.Builder
			for _, r := range s {
				if r < 128 {
					sb.WriteRune(r)
				}
			}
			v := Str(sb.String())
			return &v, nil
		})

	return m
}

func addConstWord(m *Module, name string, v Value) {
	m.AddWord(NewPushValueWord(name, v))
	m.AddExportable(name)
}

func stringMap(word string, fn func(string) string) NativeFn {
	return func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
		s, err := asString(word, args[0])
		if err != nil {
			return nil, err
		}
		v := Str(fn(s))
		return &v, nil
	}
}

// regexArgs compiles the regex argument of the RE-* words.
func regexArgs(word string, args []Value) (*regexp.Regexp, string, error) {
	s, err := asString(word, args[0])
	if err != nil {
		return nil, "", err
	}
	pattern, err := asString(word, args[1])
	if err != nil {
		return nil, "", err
	}
	re, rerr := regexp.Compile(pattern)
	if rerr != nil {
		return nil, "", &WordTypeError{Word: word, Want: "valid regex", Got: VTStr}
	}
	return re, s, nil
}
