package forthic

import "testing"

func TestRecBuildAndGet(t *testing.T) {
	wantValue(t, `[ [ "a" 1 ] [ "b" 2 ] ] REC "b" REC@`, Int(2))
	wantValue(t, `[ [ "a" 1 ] ] REC "missing" REC@`, Null)
	wantValue(t, `NULL "a" REC@`, Null)

	// nested path
	wantValue(t, `[ [ "outer" [ [ "inner" 42 ] ] REC ] ] REC [ "outer" "inner" ] REC@`, Int(42))
}

func TestRecInsertionOrder(t *testing.T) {
	wantValue(t, `[ [ "z" 1 ] [ "a" 2 ] [ "m" 3 ] ] REC KEYS`,
		Arr([]Value{Str("z"), Str("a"), Str("m")}))
	// overwriting keeps the original slot
	wantValue(t, `[ [ "z" 1 ] [ "a" 2 ] [ "z" 9 ] ] REC KEYS`,
		Arr([]Value{Str("z"), Str("a")}))
	wantValue(t, `[ [ "z" 1 ] [ "a" 2 ] [ "z" 9 ] ] REC "z" REC@`, Int(9))
}

func TestRecSet(t *testing.T) {
	wantValue(t, `[ [ "a" 1 ] ] REC 9 "a" <REC! "a" REC@`, Int(9))
	wantValue(t, `[ ] REC 5 [ "x" "y" ] <REC! [ "x" "y" ] REC@`, Int(5))
	// null record materializes
	wantValue(t, `NULL 5 "k" <REC! "k" REC@`, Int(5))
}

func TestRecValuesDeleteDefaults(t *testing.T) {
	wantValue(t, `[ [ "a" 1 ] [ "b" 2 ] ] REC VALUES`, Arr([]Value{Int(1), Int(2)}))
	wantValue(t, `[ [ "a" 1 ] [ "b" 2 ] ] REC "a" <DEL KEYS`, Arr([]Value{Str("b")}))
	wantValue(t, `[ [ "a" 1 ] ] REC "missing" <DEL KEYS`, Arr([]Value{Str("a")}))
	wantValue(t,
		`[ [ "a" NULL ] ] REC [ [ "a" 1 ] [ "b" 2 ] ] REC REC-DEFAULTS "a" REC@`,
		Int(1))
}

func TestRecRelabel(t *testing.T) {
	wantValue(t,
		`[ [ "a" 1 ] [ "b" 2 ] ] REC [ "b" ] [ "B" ] RELABEL KEYS`,
		Arr([]Value{Str("B")}))
}
