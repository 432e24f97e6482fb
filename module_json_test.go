package forthic

import (
	"strings"
	"testing"
)

func TestJSONEncode(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{`NULL >JSON`, "null"},
		{`42 >JSON`, "42"},
		{`2.5 >JSON`, "2.5"},
		{`"hi" >JSON`, `"hi"`},
		{`[ 1 "two" TRUE ] >JSON`, `[1,"two",true]`},
		{`[ [ "b" 1 ] [ "a" 2 ] ] REC >JSON`, `{"b":1,"a":2}`},
	}
	for _, tc := range cases {
		wantValue(t, tc.src, Str(tc.want))
	}
}

func TestJSONDecode(t *testing.T) {
	wantValue(t, `'{"a": 1, "b": [true, null]}' JSON> "a" REC@`, Int(1))
	wantValue(t, `'[1, 2.5, "x"]' JSON>`,
		Arr([]Value{Int(1), Float(2.5), Str("x")}))

	// integers survive as ints, not float64
	v := runTop(t, `'9007199254740993' JSON>`)
	if v.Tag != VTInt || v.Data.(int64) != 9007199254740993 {
		t.Errorf("big int: got %s %v", TagName(v.Tag), v.Data)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	src := `[ [ "name" "pi" ] [ "value" 3.14 ] [ "tags" [ "a" "b" ] ] ] REC`
	original := runTop(t, src)
	encoded, err := EncodeJSON(original, false)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeJSON(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !DeepEqual(original, decoded) {
		t.Errorf("round trip: %s != %s", FormatValue(original), FormatValue(decoded))
	}
}

func TestJSONPrettify(t *testing.T) {
	v := runTop(t, `'{"a":1}' JSON-PRETTIFY`)
	if !strings.Contains(v.Data.(string), "\n") {
		t.Errorf("not prettified: %q", v.Data)
	}
}

func TestJSONEncodeRejectsInProcessValues(t *testing.T) {
	ip := NewStandardInterpreter()
	if err := ip.Run(`[ "v" ] VARIABLES [ v ] >JSON`); err == nil {
		t.Error("encoding a variable should fail")
	}
}

func TestJSONDecodeError(t *testing.T) {
	ip := NewStandardInterpreter()
	if err := ip.Run(`"{nope" JSON>`); err == nil {
		t.Error("bad JSON should fail")
	}
}
