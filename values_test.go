package forthic

import (
	"testing"
	"time"
)

func TestRecordObjectOrder(t *testing.T) {
	ro := NewRecordObject()
	ro.Set("z", Int(1))
	ro.Set("a", Int(2))
	ro.Set("z", Int(9))
	if len(ro.Keys) != 2 || ro.Keys[0] != "z" || ro.Keys[1] != "a" {
		t.Errorf("keys: %v", ro.Keys)
	}
	if v, _ := ro.Get("z"); !DeepEqual(v, Int(9)) {
		t.Errorf("overwrite lost: %v", v)
	}
	ro.Delete("z")
	if len(ro.Keys) != 1 || ro.Keys[0] != "a" {
		t.Errorf("delete: %v", ro.Keys)
	}
}

func TestDeepEqualVariants(t *testing.T) {
	if DeepEqual(Int(1), Float(1)) {
		t.Error("int should not equal float")
	}
	if !DeepEqual(Arr([]Value{Null, Str("x")}), Arr([]Value{Null, Str("x")})) {
		t.Error("array equality")
	}
	a := Rec(map[string]Value{"k": Int(1)})
	b := Rec(map[string]Value{"k": Int(1)})
	if !DeepEqual(a, b) {
		t.Error("record equality")
	}
	// order does not matter for record equality
	c := NewRecordObject()
	c.Set("x", Int(1))
	c.Set("y", Int(2))
	d := NewRecordObject()
	d.Set("y", Int(2))
	d.Set("x", Int(1))
	if !DeepEqual(Value{Tag: VTRecord, Data: c}, Value{Tag: VTRecord, Data: d}) {
		t.Error("record equality should ignore key order")
	}
}

func TestDeepCopyIsolation(t *testing.T) {
	inner := []Value{Int(1)}
	original := Arr([]Value{Arr(inner), Str("s")})
	copied := DeepCopy(original)
	copied.Data.([]Value)[0].Data.([]Value)[0] = Int(99)
	if !DeepEqual(original, Arr([]Value{Arr([]Value{Int(1)}), Str("s")})) {
		t.Errorf("copy mutated original: %s", FormatValue(original))
	}
}

func TestFormatValue(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Null, "NULL"},
		{Bool(true), "TRUE"},
		{Int(-3), "-3"},
		{Float(2.5), "2.5"},
		{Str("plain"), "plain"},
		{Arr([]Value{Int(1), Str("a")}), `[1 "a"]`},
		{Date(NewPlainDate(2025, time.May, 4)), "2025-05-04"},
		{Clock(TimeOfDay{Hour: 9, Minute: 5}), "09:05"},
	}
	for _, tc := range cases {
		if got := FormatValue(tc.v); got != tc.want {
			t.Errorf("FormatValue(%v): got %q, want %q", tc.v, got, tc.want)
		}
	}
}

func TestZonedTimeString(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	z := ZonedTime{Time: time.Date(2025, 5, 4, 10, 15, 0, 0, loc), Zone: "America/New_York"}
	want := "2025-05-04T10:15:00-04:00[America/New_York]"
	if got := z.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTruthy(t *testing.T) {
	truthy := []Value{Bool(true), Int(1), Float(0.5), Str("x"),
		Arr([]Value{Null}), Rec(map[string]Value{"k": Null})}
	falsy := []Value{Null, Bool(false), Int(0), Float(0), Str(""),
		Arr([]Value{}), Rec(map[string]Value{})}
	for _, v := range truthy {
		if !Truthy(v) {
			t.Errorf("%s should be truthy", FormatValue(v))
		}
	}
	for _, v := range falsy {
		if Truthy(v) {
			t.Errorf("%s should be falsy", FormatValue(v))
		}
	}
}
