package forthic

import "testing"

func TestEquality(t *testing.T) {
	cases := []struct {
		src  string
		want Value
	}{
		{`1 1 ==`, Bool(true)},
		{`1 2 ==`, Bool(false)},
		{`"a" "a" ==`, Bool(true)},
		{`[ 1 2 ] [ 1 2 ] ==`, Bool(true)},
		{`NULL NULL ==`, Bool(true)},
		{`1 2 !=`, Bool(true)},
		// no numeric coercion: 1 and 1.0 are different values
		{`1 1.0 ==`, Bool(false)},
		{`[ [ "a" 1 ] ] REC [ [ "a" 1 ] ] REC ==`, Bool(true)},
	}
	for _, tc := range cases {
		wantValue(t, tc.src, tc.want)
	}
}

func TestOrdering(t *testing.T) {
	cases := []struct {
		src  string
		want Value
	}{
		{`1 2 <`, Bool(true)},
		{`2 2 <=`, Bool(true)},
		{`3 2 >`, Bool(true)},
		{`1 2 >=`, Bool(false)},
		// ordering words do compare int with float
		{`1 1.5 <`, Bool(true)},
		{`"apple" "pear" <`, Bool(true)},
		{`2025-01-01 2025-06-01 <`, Bool(true)},
	}
	for _, tc := range cases {
		wantValue(t, tc.src, tc.want)
	}
}

func TestLogic(t *testing.T) {
	cases := []struct {
		src  string
		want Value
	}{
		{`TRUE FALSE AND`, Bool(false)},
		{`TRUE FALSE OR`, Bool(true)},
		{`TRUE NOT`, Bool(false)},
		{`TRUE FALSE XOR`, Bool(true)},
		{`TRUE TRUE XOR`, Bool(false)},
		{`2 [ 1 2 3 ] IN`, Bool(true)},
		{`9 [ 1 2 3 ] IN`, Bool(false)},
		{`[ FALSE TRUE ] ANY`, Bool(true)},
		{`[ FALSE FALSE ] ANY`, Bool(false)},
		{`[ TRUE TRUE ] ALL`, Bool(true)},
		{`[ TRUE FALSE ] ALL`, Bool(false)},
		{`[] ALL`, Bool(true)},
		{`"" >BOOL`, Bool(false)},
		{`"x" >BOOL`, Bool(true)},
		{`0 >BOOL`, Bool(false)},
		{`NULL >BOOL`, Bool(false)},
		{`[] >BOOL`, Bool(false)},
	}
	for _, tc := range cases {
		wantValue(t, tc.src, tc.want)
	}
}

func TestOrderingErrors(t *testing.T) {
	ip := NewStandardInterpreter()
	if err := ip.Run(`1 "a" <`); err == nil {
		t.Error("comparing int with string should fail")
	}
}
