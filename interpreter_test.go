package forthic

import (
	"errors"
	"testing"
)

// runStack runs src on a fresh standard interpreter and returns the stack.
func runStack(t *testing.T, src string) []Value {
	t.Helper()
	ip := NewStandardInterpreter()
	if err := ip.Run(src); err != nil {
		t.Fatalf("run %q: %v", src, err)
	}
	return ip.Stack()
}

// runTop runs src and returns the single value left on the stack.
func runTop(t *testing.T, src string) Value {
	t.Helper()
	stack := runStack(t, src)
	if len(stack) != 1 {
		t.Fatalf("run %q: stack has %d values, want 1: %v", src, len(stack), stack)
	}
	return stack[0]
}

func wantValue(t *testing.T, src string, want Value) {
	t.Helper()
	got := runTop(t, src)
	if !DeepEqual(got, want) {
		t.Fatalf("run %q: got %s, want %s", src, FormatValue(got), FormatValue(want))
	}
}

func TestLiterals(t *testing.T) {
	wantValue(t, "42", Int(42))
	wantValue(t, "-7", Int(-7))
	wantValue(t, "3.25", Float(3.25))
	wantValue(t, "TRUE", Bool(true))
	wantValue(t, "FALSE", Bool(false))
	wantValue(t, `"hi"`, Str("hi"))
	wantValue(t, ".symbol", Str("symbol"))

	// "2.0" is a float, never an int
	v := runTop(t, "2.0")
	if v.Tag != VTFloat {
		t.Errorf("2.0: got %s, want float", TagName(v.Tag))
	}
}

func TestDateAndTimeLiterals(t *testing.T) {
	v := runTop(t, "2025-05-04")
	if v.Tag != VTDate {
		t.Fatalf("date literal: got %s", TagName(v.Tag))
	}
	d := v.Data.(PlainDate)
	if d.Year != 2025 || int(d.Month) != 5 || d.Day != 4 {
		t.Errorf("date literal: got %v", d)
	}

	v = runTop(t, "9:30")
	if v.Tag != VTTime {
		t.Fatalf("time literal: got %s", TagName(v.Tag))
	}
	if tv := v.Data.(TimeOfDay); tv.Hour != 9 || tv.Minute != 30 {
		t.Errorf("time literal: got %v", tv)
	}

	v = runTop(t, "2025-05-04T10:15:00Z")
	if v.Tag != VTZoned {
		t.Fatalf("datetime literal: got %s", TagName(v.Tag))
	}
	if z := v.Data.(ZonedTime); z.Zone != "UTC" {
		t.Errorf("datetime zone: got %q", z.Zone)
	}
}

func TestArrays(t *testing.T) {
	wantValue(t, "[ 1 2 3 ]", Arr([]Value{Int(1), Int(2), Int(3)}))
	wantValue(t, "[]", Arr([]Value{}))
	wantValue(t, "[ [ 1 ] [ 2 ] ]", Arr([]Value{
		Arr([]Value{Int(1)}),
		Arr([]Value{Int(2)}),
	}))

	// words execute inside array collection
	wantValue(t, "[ 1 2 + ]", Arr([]Value{Int(3)}))
}

func TestDefinitions(t *testing.T) {
	wantValue(t, ": DOUBLE   DUP + ; 21 DOUBLE", Int(42))
	wantValue(t, ": A 1 ; : B A A + ; B", Int(2))

	// redefinition shadows
	wantValue(t, ": X 1 ; : X 2 ; X", Int(2))
}

func TestDefinitionsResolveAtCompileTime(t *testing.T) {
	ip := NewStandardInterpreter()
	err := ip.Run(": BROKEN   NO-SUCH-WORD ;")
	var unkErr *UnknownWordError
	if !errors.As(err, &unkErr) {
		t.Fatalf("got %v, want UnknownWordError at compile time", err)
	}
}

func TestMemoWords(t *testing.T) {
	ip := NewStandardInterpreter()
	ip.AppModule().EnsureVariable("count")
	src := `
0 count !
@: EXPENSIVE   count @ 1 + count !@ ;
EXPENSIVE EXPENSIVE EXPENSIVE
`
	if err := ip.Run(src); err != nil {
		t.Fatalf("run: %v", err)
	}
	stack := ip.Stack()
	if len(stack) != 3 {
		t.Fatalf("stack: %v", stack)
	}
	for i, v := range stack {
		if !DeepEqual(v, Int(1)) {
			t.Errorf("call %d: got %s, want 1 (memo should run once)", i, FormatValue(v))
		}
	}

	// NAME! refreshes without pushing; NAME!@ refreshes and pushes
	if err := ip.Run("EXPENSIVE! EXPENSIVE"); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	top, _ := ip.Peek()
	if !DeepEqual(top, Int(2)) {
		t.Errorf("after refresh: got %s, want 2", FormatValue(top))
	}
	if err := ip.Run("EXPENSIVE!@"); err != nil {
		t.Fatalf("refresh-push: %v", err)
	}
	top, _ = ip.Peek()
	if !DeepEqual(top, Int(3)) {
		t.Errorf("after refresh-push: got %s, want 3", FormatValue(top))
	}
}

func TestModuleBlocks(t *testing.T) {
	ip := NewStandardInterpreter()
	err := ip.Run(`
{helper
   : TRIPLE   3 * ;
}
{helper 5 TRIPLE }
`)
	if err != nil {
		t.Fatalf("module block: %v", err)
	}
	top, _ := ip.Peek()
	if !DeepEqual(top, Int(15)) {
		t.Errorf("got %s, want 15", FormatValue(top))
	}

	// module words are not visible outside their module
	ip2 := NewStandardInterpreter()
	err = ip2.Run("{helper : TRIPLE 3 * ; } 5 TRIPLE")
	var unkErr *UnknownWordError
	if !errors.As(err, &unkErr) {
		t.Fatalf("got %v, want UnknownWordError outside module", err)
	}
}

func TestUseModules(t *testing.T) {
	lib := NewModule("mylib")
	lib.AddExportedNative("GREET", "( -- s )", "",
		func(_ *Interpreter, _ []Value, _ *WordOptions) (*Value, error) {
			v := Str("hello")
			return &v, nil
		})
	lib.AddNativeWord("SECRET", "( -- s )", "",
		func(_ *Interpreter, _ []Value, _ *WordOptions) (*Value, error) {
			v := Str("hidden")
			return &v, nil
		})

	ip := NewStandardInterpreter()
	ip.RegisterModule(lib)
	if err := ip.Run(`[ "mylib" ] USE-MODULES GREET`); err != nil {
		t.Fatalf("use-modules: %v", err)
	}
	top, _ := ip.Peek()
	if !DeepEqual(top, Str("hello")) {
		t.Errorf("got %s", FormatValue(top))
	}

	// unexported words stay invisible
	err := ip.Run("SECRET")
	var unkErr *UnknownWordError
	if !errors.As(err, &unkErr) {
		t.Fatalf("got %v, want UnknownWordError for unexported word", err)
	}

	// imports are by reference: words added later are visible
	lib.AddExportedNative("LATER", "( -- n )", "",
		func(_ *Interpreter, _ []Value, _ *WordOptions) (*Value, error) {
			v := Int(7)
			return &v, nil
		})
	if err := ip.Run("LATER"); err != nil {
		t.Fatalf("late word: %v", err)
	}
}

func TestUseModulesPrefixed(t *testing.T) {
	lib := NewModule("mylib")
	lib.AddExportedNative("GREET", "( -- s )", "",
		func(_ *Interpreter, _ []Value, _ *WordOptions) (*Value, error) {
			v := Str("hello")
			return &v, nil
		})

	ip := NewStandardInterpreter()
	ip.RegisterModule(lib)
	if err := ip.Run(`[ [ "mylib" "my" ] ] USE-MODULES my.GREET`); err != nil {
		t.Fatalf("prefixed import: %v", err)
	}
	top, _ := ip.Peek()
	if !DeepEqual(top, Str("hello")) {
		t.Errorf("got %s", FormatValue(top))
	}
}

func TestUseModulesUnknown(t *testing.T) {
	ip := NewStandardInterpreter()
	err := ip.Run(`[ "nope" ] USE-MODULES`)
	var impErr *ModuleImportError
	if !errors.As(err, &impErr) {
		t.Fatalf("got %v, want ModuleImportError", err)
	}
}

func TestVariables(t *testing.T) {
	wantValue(t, `[ "x" ] VARIABLES  10 x !  x @`, Int(10))
	wantValue(t, `[ "x" ] VARIABLES  10 x !@`, Int(10))

	// uninitialized variables read null
	wantValue(t, `[ "fresh" ] VARIABLES  fresh @`, Null)
}

func TestInterpret(t *testing.T) {
	wantValue(t, `"1 2 +" INTERPRET`, Int(3))
	// null runs nothing
	stack := runStack(t, "NULL INTERPRET")
	if len(stack) != 0 {
		t.Errorf("NULL INTERPRET left %v", stack)
	}
}

func TestSemicolonErrors(t *testing.T) {
	ip := NewStandardInterpreter()
	err := ip.Run(": UNFINISHED   1 2 +")
	var missErr *MissingSemicolonError
	if !errors.As(err, &missErr) {
		t.Fatalf("got %v, want MissingSemicolonError", err)
	}

	err = NewStandardInterpreter().Run("1 ;")
	var extraErr *ExtraSemicolonError
	if !errors.As(err, &extraErr) {
		t.Fatalf("got %v, want ExtraSemicolonError", err)
	}
}

func TestUnknownWordReportsLocation(t *testing.T) {
	ip := NewStandardInterpreter()
	err := ip.Run("1\n  BOGUS-WORD")
	var unkErr *UnknownWordError
	if !errors.As(err, &unkErr) {
		t.Fatalf("got %v, want UnknownWordError", err)
	}
	if unkErr.Loc.Line != 2 || unkErr.Loc.Col != 3 {
		t.Errorf("location %d:%d, want 2:3", unkErr.Loc.Line, unkErr.Loc.Col)
	}
}

func TestFailureLeavesStack(t *testing.T) {
	ip := NewStandardInterpreter()
	err := ip.Run("1 2 BOGUS-WORD")
	if err == nil {
		t.Fatal("expected failure")
	}
	stack := ip.Stack()
	if len(stack) != 2 || !DeepEqual(stack[0], Int(1)) || !DeepEqual(stack[1], Int(2)) {
		t.Errorf("stack after failure: %v", stack)
	}
}

func TestProfiling(t *testing.T) {
	ip := NewStandardInterpreter()
	err := ip.Run(`
PROFILE-START
: TWICE   DUP + ;
1 TWICE POP
2 TWICE POP
"midpoint" PROFILE-TIMESTAMP
PROFILE-END
PROFILE-DATA
`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	counts := ip.WordCounts()
	if counts["TWICE"] != 2 {
		t.Errorf("TWICE count: got %d, want 2", counts["TWICE"])
	}
	if counts["DUP"] != 2 {
		t.Errorf("DUP count: got %d, want 2", counts["DUP"])
	}

	var sawMidpoint bool
	for _, ts := range ip.Timestamps() {
		if ts.Label == "midpoint" {
			sawMidpoint = true
		}
	}
	if !sawMidpoint {
		t.Errorf("timestamps missing midpoint: %v", ip.Timestamps())
	}

	report, _ := ip.Peek()
	if report.Tag != VTRecord {
		t.Fatalf("PROFILE-DATA: got %s", TagName(report.Tag))
	}
	if _, ok := report.Data.(*RecordObject).Get("word_counts"); !ok {
		t.Errorf("report missing word_counts")
	}
}

func TestMemoProfilesOnce(t *testing.T) {
	ip := NewStandardInterpreter()
	err := ip.Run(`
@: CACHED   1 2 + ;
PROFILE-START
CACHED POP
CACHED POP
PROFILE-END
`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// the memo word itself counts per call, its body only on the miss
	if got := ip.WordCounts()["+"]; got != 1 {
		t.Errorf("+ count: got %d, want 1", got)
	}
	if got := ip.WordCounts()["CACHED"]; got != 2 {
		t.Errorf("CACHED count: got %d, want 2", got)
	}
}

func TestWordHandlerRecovers(t *testing.T) {
	boom := NewModule("boom")
	boom.AddExportedNative("EXPLODE", "( -- )", "",
		func(_ *Interpreter, _ []Value, _ *WordOptions) (*Value, error) {
			return nil, errors.New("kaboom")
		})

	ip := NewStandardInterpreter()
	ip.RegisterModule(boom)
	ip.SetWordHandler("EXPLODE", func(ip *Interpreter, err error) error {
		ip.Push(Str("recovered"))
		return nil
	})
	if err := ip.Run(`[ "boom" ] USE-MODULES EXPLODE`); err != nil {
		t.Fatalf("handler should have recovered: %v", err)
	}
	top, _ := ip.Peek()
	if !DeepEqual(top, Str("recovered")) {
		t.Errorf("got %s", FormatValue(top))
	}
}

func TestRecoveryHandlerRetries(t *testing.T) {
	attempts := 0
	flaky := NewModule("flaky")
	flaky.AddExportedNative("FLAKY", "( -- n )", "",
		func(_ *Interpreter, _ []Value, _ *WordOptions) (*Value, error) {
			attempts++
			if attempts < 3 {
				return nil, errors.New("transient")
			}
			v := Int(99)
			return &v, nil
		})

	ip := NewStandardInterpreter()
	ip.RegisterModule(flaky)
	ip.SetRecoveryHandler(func(_ *Interpreter, _ error) error { return nil }, 5)
	if err := ip.Run(`[ "flaky" ] USE-MODULES FLAKY`); err != nil {
		t.Fatalf("recovery should have retried: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts: got %d, want 3", attempts)
	}
}

func TestReset(t *testing.T) {
	ip := NewStandardInterpreter()
	if err := ip.Run(": KEEP 1 ; 1 2 3"); err != nil {
		t.Fatalf("run: %v", err)
	}
	ip.Reset()
	if ip.StackDepth() != 0 {
		t.Errorf("stack not cleared")
	}
	// definitions survive a reset
	if err := ip.Run("KEEP"); err != nil {
		t.Errorf("definition lost after reset: %v", err)
	}
}

func TestSetStack(t *testing.T) {
	ip := NewInterpreter()
	ip.Push(Int(1))
	ip.Push(Int(2))
	ip.SetStack([]Value{Str("a"), Str("b"), Str("c")})
	if ip.StackDepth() != 3 {
		t.Fatalf("depth = %d, want 3", ip.StackDepth())
	}
	top, _ := ip.Pop()
	if !DeepEqual(top, Str("c")) {
		t.Errorf("top = %s, want c", FormatValue(top))
	}
	ip.SetStack(nil)
	if ip.StackDepth() != 0 {
		t.Errorf("depth after clearing = %d, want 0", ip.StackDepth())
	}
}

func TestDupInterpreter(t *testing.T) {
	ip := NewStandardInterpreter()
	lib := NewModule("lib")
	ip.RegisterModule(lib)
	ip.Push(Arr([]Value{Int(1)}))

	dup := ip.DupInterpreter()
	if _, ok := dup.FindRegisteredModule("lib"); !ok {
		t.Errorf("registered modules not shared")
	}
	if dup.StackDepth() != 1 {
		t.Fatalf("stack not copied")
	}
	// the copy is deep: mutating the duplicate leaves the original alone
	top, _ := dup.Pop()
	top.Data.([]Value)[0] = Int(999)
	orig, _ := ip.Peek()
	if !DeepEqual(orig, Arr([]Value{Int(1)})) {
		t.Errorf("stack copy is shallow: %s", FormatValue(orig))
	}
}

func TestDupInterpreterCarriesAppModule(t *testing.T) {
	ip := NewStandardInterpreter()
	lib := NewModule("lib")
	lib.AddExportedNative("LIB-WORD", "( -- x )", "Push a marker value.",
		func(_ *Interpreter, _ []Value, _ *WordOptions) (*Value, error) {
			v := Str("from-lib")
			return &v, nil
		})
	ip.RegisterModule(lib)
	if err := ip.UseModule("lib"); err != nil {
		t.Fatalf("UseModule error: %v", err)
	}
	if err := ip.Run(`: GREET "hi" ; ["n"] VARIABLES 7 n !`); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	// definitions, imports and variables all resolve in the duplicate
	dup := ip.DupInterpreter()
	if err := dup.Run("GREET LIB-WORD n @"); err != nil {
		t.Fatalf("duplicate Run error: %v", err)
	}
	for _, want := range []Value{Int(7), Str("from-lib"), Str("hi")} {
		got, err := dup.Pop()
		if err != nil {
			t.Fatalf("Pop error: %v", err)
		}
		if !DeepEqual(got, want) {
			t.Fatalf("got %s, want %s", FormatValue(got), FormatValue(want))
		}
	}

	// variable writes in the duplicate stay in the duplicate
	if err := dup.Run("99 n !"); err != nil {
		t.Fatalf("duplicate write error: %v", err)
	}
	if err := ip.Run("n @"); err != nil {
		t.Fatalf("original Run error: %v", err)
	}
	orig, _ := ip.Pop()
	if !DeepEqual(orig, Int(7)) {
		t.Errorf("variable leaked across duplicates: %s", FormatValue(orig))
	}
}

func TestRenderErrorSnippet(t *testing.T) {
	ip := NewStandardInterpreter()
	src := "1 2 +\nBOGUS"
	err := ip.Run(src)
	if err == nil {
		t.Fatal("expected failure")
	}
	rendered := RenderError(err, src)
	if rendered == err.Error() {
		t.Errorf("no snippet rendered: %q", rendered)
	}
}
