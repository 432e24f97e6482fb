package forthic

import "testing"

func TestArithmetic(t *testing.T) {
	cases := []struct {
		src  string
		want Value
	}{
		{`1 2 +`, Int(3)},
		{`5 3 -`, Int(2)},
		{`4 5 *`, Int(20)},
		{`1.5 2 +`, Float(3.5)},
		{`7 2 /`, Float(3.5)},
		{`7 3 MOD`, Int(1)},
		{`[ 1 2 3 ] SUM`, Int(6)},
		{`[ 1 2.0 ] SUM`, Float(3)},
		{`[ 1 2 3 4 ] MEAN`, Float(2.5)},
		{`[] MEAN`, Null},
		{`[ 4 9 2 ] MAX`, Int(9)},
		{`[ 4 9 2 ] MIN`, Int(2)},
	}
	for _, tc := range cases {
		wantValue(t, tc.src, tc.want)
	}
}

func TestIntStaysInt(t *testing.T) {
	// int op int keeps the int variant
	v := runTop(t, "2 3 +")
	if v.Tag != VTInt {
		t.Errorf("2 3 +: got %s, want int", TagName(v.Tag))
	}
	// any float operand promotes
	v = runTop(t, "2 3.0 +")
	if v.Tag != VTFloat {
		t.Errorf("2 3.0 +: got %s, want float", TagName(v.Tag))
	}
}

func TestConversions(t *testing.T) {
	cases := []struct {
		src  string
		want Value
	}{
		{`3.9 >INT`, Int(3)},
		{`"17" >INT`, Int(17)},
		{`TRUE >INT`, Int(1)},
		{`5 >FLOAT`, Float(5)},
		{`"2.5" >FLOAT`, Float(2.5)},
		{`3.14159 2 >FIXED`, Str("3.14")},
		{`2.5 ROUND`, Int(3)},
		{`2.9 FLOOR`, Int(2)},
		{`2.1 CEILING`, Int(3)},
		{`-5 ABS`, Int(5)},
		{`-2.5 ABS`, Float(2.5)},
		{`16 SQRT`, Float(4)},
		{`15 0 10 CLAMP`, Int(10)},
		{`-3 0 10 CLAMP`, Int(0)},
	}
	for _, tc := range cases {
		wantValue(t, tc.src, tc.want)
	}
}

func TestMathConstantsAndRandom(t *testing.T) {
	if v := runTop(t, "PI"); v.Tag != VTFloat {
		t.Errorf("PI: got %s", TagName(v.Tag))
	}
	v := runTop(t, "0 1 UNIFORM-RANDOM")
	f := v.Data.(float64)
	if f < 0 || f >= 1 {
		t.Errorf("UNIFORM-RANDOM out of range: %v", f)
	}
}

func TestConversionErrors(t *testing.T) {
	ip := NewStandardInterpreter()
	if err := ip.Run(`"not a number" >INT`); err == nil {
		t.Error(">INT on junk should fail")
	}
	ip = NewStandardInterpreter()
	if err := ip.Run(`5 0 MOD`); err == nil {
		t.Error("MOD by zero should fail")
	}
}
