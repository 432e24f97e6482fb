// interpreter.go
//
// The Forthic interpreter: a single-threaded token-at-a-time engine with an
// operand stack and a module stack.
//
// Execution model
// ---------------
// Run tokenizes and handles each token immediately. Outside a definition,
// words execute as they are seen; inside ": NAME ... ;" (or the memoized
// "@: NAME ... ;") words are resolved immediately but appended to the
// definition under construction instead of executing. Module blocks
// "{name ... }" take effect during compilation too, so definitions resolve
// against the module they are written in.
//
// Name resolution walks the module stack top-down. Within each module the
// word list is searched newest-first, then its variables, then the exported
// words of modules it imported with USE-MODULES (latest import first). When
// the stack yields nothing, the global modules (the standard library) are
// searched, and finally the literal handlers get a chance. A word nobody
// recognizes is an UnknownWordError.
//
// A failed run leaves the operand stack exactly as it was at the failure
// point; callers that want a clean slate call Reset.
package forthic

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// moduleScope is one entry of the module stack.
type moduleScope struct {
	module *Module
}

// ProfileTimestamp is one labeled point recorded between PROFILE-START and
// PROFILE-END.
type ProfileTimestamp struct {
	Label   string
	Elapsed time.Duration // since PROFILE-START
}

// WordHandler is a per-word error handler: it runs with the failing word's
// error message on the stack, and a nil return swallows the failure.
type WordHandler func(ip *Interpreter, err error) error

// RecoveryHandler is the interpreter-level error handler consulted when a
// top-level word fails. A nil return means "retry the word".
type RecoveryHandler func(ip *Interpreter, err error) error

// Interpreter executes Forthic source.
type Interpreter struct {
	stack         []Value
	appModule     *Module
	moduleStack   []moduleScope
	globalModules []*Module
	registered    map[string]*Module
	handlers      []LiteralHandler
	timezone      *time.Location

	// compilation state
	curDef    *DefinitionWord
	defIsMemo bool
	defLoc    CodeLocation

	// profiling window
	profiling    bool
	wordCounts   map[string]int
	timestamps   []ProfileTimestamp
	profileStart time.Time

	// error recovery
	wordHandlers map[string]WordHandler
	recovery     RecoveryHandler
	maxAttempts  int
}

// NewInterpreter creates a bare interpreter: an empty app module, the core
// words, the default literal handlers and a UTC timezone. Most callers want
// NewStandardInterpreter (standard.go) instead.
func NewInterpreter() *Interpreter {
	ip := &Interpreter{
		appModule:    NewModule(""),
		registered:   map[string]*Module{},
		handlers:     defaultLiteralHandlers(),
		timezone:     time.UTC,
		wordHandlers: map[string]WordHandler{},
		maxAttempts:  1,
	}
	ip.moduleStack = []moduleScope{{module: ip.appModule}}
	ip.globalModules = []*Module{newCoreModule()}
	return ip
}

// ---- stack -------------------------------------------------------------

// Push puts a value on top of the operand stack.
func (ip *Interpreter) Push(v Value) { ip.stack = append(ip.stack, v) }

// Pop removes and returns the top of the stack.
func (ip *Interpreter) Pop() (Value, error) {
	if len(ip.stack) == 0 {
		return Null, &StackUnderflowError{}
	}
	v := ip.stack[len(ip.stack)-1]
	ip.stack = ip.stack[:len(ip.stack)-1]
	return v, nil
}

// Peek returns the top of the stack without removing it.
func (ip *Interpreter) Peek() (Value, bool) {
	if len(ip.stack) == 0 {
		return Null, false
	}
	return ip.stack[len(ip.stack)-1], true
}

// StackDepth returns the number of values on the stack.
func (ip *Interpreter) StackDepth() int { return len(ip.stack) }

// SetStack replaces the operand stack wholesale, bottom-first. The remote
// bridge uses this when a proxied word returns a peer's resulting stack.
func (ip *Interpreter) SetStack(values []Value) {
	ip.stack = append(ip.stack[:0], values...)
}

// Stack returns a copy of the operand stack, bottom first.
func (ip *Interpreter) Stack() []Value {
	out := make([]Value, len(ip.stack))
	copy(out, ip.stack)
	return out
}

// Reset clears the stack, the module stack (down to the app module) and any
// half-compiled definition. Installed words and registered modules survive.
func (ip *Interpreter) Reset() {
	ip.stack = nil
	ip.moduleStack = []moduleScope{{module: ip.appModule}}
	ip.curDef = nil
	ip.profiling = false
}

// ---- modules -----------------------------------------------------------

// AppModule returns the bottom-of-stack application module.
func (ip *Interpreter) AppModule() *Module { return ip.appModule }

// CurModule returns the module currently on top of the module stack.
func (ip *Interpreter) CurModule() *Module {
	return ip.moduleStack[len(ip.moduleStack)-1].module
}

func (ip *Interpreter) pushModuleScope(s moduleScope) {
	ip.moduleStack = append(ip.moduleStack, s)
}

func (ip *Interpreter) popModuleScope() {
	if len(ip.moduleStack) > 1 {
		ip.moduleStack = ip.moduleStack[:len(ip.moduleStack)-1]
	}
}

// RegisterModule makes a module importable by name via USE-MODULES.
func (ip *Interpreter) RegisterModule(m *Module) { ip.registered[m.Name] = m }

// FindRegisteredModule looks up a module registered on this interpreter.
func (ip *Interpreter) FindRegisteredModule(name string) (*Module, bool) {
	m, ok := ip.registered[name]
	return m, ok
}

// RegisteredModules returns registered modules sorted by name.
func (ip *Interpreter) RegisteredModules() []*Module {
	names := make([]string, 0, len(ip.registered))
	for name := range ip.registered {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*Module, len(names))
	for i, name := range names {
		out[i] = ip.registered[name]
	}
	return out
}

// UseModule imports a registered module into the current module: its
// exported words become resolvable unprefixed. The module is shared, not
// copied, so words installed in it later are visible to all importers.
func (ip *Interpreter) UseModule(name string) error {
	m, ok := ip.registered[name]
	if !ok {
		return &ModuleImportError{Name: name}
	}
	ip.CurModule().AddUsing(m)
	return nil
}

// UseModulePrefixed installs prefixed wrapper words for a registered
// module's exports into the current module.
func (ip *Interpreter) UseModulePrefixed(name, prefix string) error {
	m, ok := ip.registered[name]
	if !ok {
		return &ModuleImportError{Name: name}
	}
	return ip.CurModule().ImportPrefixed(m, prefix)
}

// ---- configuration -----------------------------------------------------

// Timezone returns the interpreter timezone used by datetime literals and
// words.
func (ip *Interpreter) Timezone() *time.Location { return ip.timezone }

// SetTimezone sets the interpreter timezone.
func (ip *Interpreter) SetTimezone(loc *time.Location) {
	if loc != nil {
		ip.timezone = loc
	}
}

// AddLiteralHandler appends a literal handler tried after the built-in
// ones.
func (ip *Interpreter) AddLiteralHandler(h LiteralHandler) {
	ip.handlers = append(ip.handlers, h)
}

// AddGlobalModule appends a module whose words are resolvable everywhere
// without importing. The standard library is wired this way.
func (ip *Interpreter) AddGlobalModule(m *Module) {
	ip.globalModules = append(ip.globalModules, m)
}

// SetWordHandler installs a per-word error handler. When the named word
// fails, the handler runs with the interpreter at the failure point; a nil
// return converts the failure into a normal outcome.
func (ip *Interpreter) SetWordHandler(wordName string, h WordHandler) {
	ip.wordHandlers[wordName] = h
}

// SetRecoveryHandler installs the interpreter-level handler consulted when
// a top-level word fails, with a bound on retry attempts.
func (ip *Interpreter) SetRecoveryHandler(h RecoveryHandler, maxAttempts int) {
	ip.recovery = h
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	ip.maxAttempts = maxAttempts
}

// ---- profiling ---------------------------------------------------------

// StartProfiling begins a profiling window: word execution counts and
// labeled timestamps accumulate until StopProfiling.
func (ip *Interpreter) StartProfiling() {
	ip.profiling = true
	ip.wordCounts = map[string]int{}
	ip.timestamps = nil
	ip.profileStart = time.Now()
	ip.AddTimestamp("START")
}

// StopProfiling ends the profiling window. Collected data stays readable.
func (ip *Interpreter) StopProfiling() {
	if ip.profiling {
		ip.AddTimestamp("END")
	}
	ip.profiling = false
}

// AddTimestamp records a labeled timestamp inside the profiling window.
func (ip *Interpreter) AddTimestamp(label string) {
	if !ip.profiling {
		return
	}
	ip.timestamps = append(ip.timestamps, ProfileTimestamp{
		Label:   label,
		Elapsed: time.Since(ip.profileStart),
	})
}

// WordCounts returns a copy of the word execution counts.
func (ip *Interpreter) WordCounts() map[string]int {
	out := make(map[string]int, len(ip.wordCounts))
	for k, v := range ip.wordCounts {
		out[k] = v
	}
	return out
}

// Timestamps returns the recorded timestamps in order.
func (ip *Interpreter) Timestamps() []ProfileTimestamp {
	out := make([]ProfileTimestamp, len(ip.timestamps))
	copy(out, ip.timestamps)
	return out
}

// ProfileReport builds the record pushed by PROFILE-DATA: word counts
// sorted most-frequent first and the labeled timestamps with elapsed and
// delta milliseconds.
func (ip *Interpreter) ProfileReport() Value {
	type wc struct {
		word  string
		count int
	}
	counts := make([]wc, 0, len(ip.wordCounts))
	for word, count := range ip.wordCounts {
		counts = append(counts, wc{word, count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].word < counts[j].word
	})
	countVals := make([]Value, len(counts))
	for i, c := range counts {
		countVals[i] = Rec(map[string]Value{
			"word":  Str(c.word),
			"count": Int(int64(c.count)),
		})
	}

	tsVals := make([]Value, len(ip.timestamps))
	var prev time.Duration
	for i, ts := range ip.timestamps {
		tsVals[i] = Rec(map[string]Value{
			"label":    Str(ts.Label),
			"time_ms":  Float(float64(ts.Elapsed) / float64(time.Millisecond)),
			"delta_ms": Float(float64(ts.Elapsed-prev) / float64(time.Millisecond)),
		})
		prev = ts.Elapsed
	}

	return Rec(map[string]Value{
		"word_counts": Arr(countVals),
		"timestamps":  Arr(tsVals),
	})
}

// ---- execution ---------------------------------------------------------

// Run tokenizes and executes src against this interpreter.
func (ip *Interpreter) Run(src string) error {
	return ip.RunAt(src, CodeLocation{Source: "<input>", Line: 1, Col: 1})
}

// RunAt is Run with a reference location, so source executed from inside a
// string (INTERPRET) reports positions in terms of the outer source.
func (ip *Interpreter) RunAt(src string, ref CodeLocation) error {
	tk := NewTokenizerAt(src, ref)
	for {
		tok, err := tk.NextToken()
		if err != nil {
			return err
		}
		if err := ip.handleToken(tok); err != nil {
			return err
		}
		if tok.Kind == TokEOS {
			return nil
		}
	}
}

func (ip *Interpreter) handleToken(tok Token) error {
	switch tok.Kind {
	case TokComment:
		return nil
	case TokString:
		return ip.compileOrRun(NewPushValueWord("<string>", Str(tok.Text)), tok)
	case TokDotSymbol:
		return ip.compileOrRun(NewPushValueWord("."+tok.Text, Str(tok.Text)), tok)
	case TokStartArray:
		return ip.compileOrRun(NewPushValueWord("[", Value{Tag: vtArrayOpen}), tok)
	case TokEndArray:
		return ip.compileOrRun(NewDirectWord("]", "", closeArray), tok)
	case TokStartModule:
		return ip.handleStartModule(tok)
	case TokEndModule:
		return ip.handleEndModule(tok)
	case TokStartDef:
		return ip.handleStartDef(tok, false)
	case TokStartMemo:
		return ip.handleStartDef(tok, true)
	case TokEndDef:
		return ip.handleEndDef(tok)
	case TokWord:
		return ip.handleWord(tok)
	case TokEOS:
		if ip.curDef != nil {
			name := ip.curDef.Name()
			ip.curDef = nil
			return &MissingSemicolonError{DefName: name, Loc: ip.defLoc}
		}
		return nil
	default:
		return fmt.Errorf("unhandled token kind %v", tok.Kind)
	}
}

// compileOrRun appends the word to the open definition, or executes it.
func (ip *Interpreter) compileOrRun(w Word, tok Token) error {
	if ip.curDef != nil {
		ip.curDef.Add(w)
		return nil
	}
	return ip.executeWordAt(w, tok.Loc)
}

// handleStartModule pushes a module scope. This happens during compilation
// too: definitions are installed into the module block they appear in.
// "{" with no name targets the app module.
func (ip *Interpreter) handleStartModule(tok Token) error {
	if tok.Text == "" {
		ip.pushModuleScope(moduleScope{module: ip.appModule})
		return nil
	}
	m := ip.CurModule().EnsureModule(tok.Text)
	ip.pushModuleScope(moduleScope{module: m})
	return nil
}

func (ip *Interpreter) handleEndModule(tok Token) error {
	if len(ip.moduleStack) <= 1 {
		return &WordExecutionError{
			WordName: "}",
			Loc:      tok.Loc,
			Err:      errors.New("'}' without a matching '{'"),
		}
	}
	ip.popModuleScope()
	return nil
}

func (ip *Interpreter) handleStartDef(tok Token, isMemo bool) error {
	if ip.curDef != nil {
		return &NestedDefinitionError{DefName: tok.Text, Loc: tok.Loc}
	}
	ip.curDef = NewDefinitionWord(tok.Text)
	ip.defIsMemo = isMemo
	ip.defLoc = tok.Loc
	return nil
}

func (ip *Interpreter) handleEndDef(tok Token) error {
	if ip.curDef == nil {
		return &ExtraSemicolonError{Loc: tok.Loc}
	}
	def := ip.curDef
	ip.curDef = nil
	m := ip.CurModule()
	if ip.defIsMemo {
		memo := NewMemoWord(def)
		m.AddWord(memo)
		m.AddWord(&MemoRefreshWord{memo: memo})
		m.AddWord(&MemoRefreshWord{memo: memo, push: true})
		return nil
	}
	m.AddWord(def)
	return nil
}

// handleWord resolves a word token: module stack top-down, then the global
// modules, then the literal handlers.
func (ip *Interpreter) handleWord(tok Token) error {
	if w, ok := ip.findWord(tok.Text); ok {
		return ip.compileOrRun(w, tok)
	}
	for _, h := range ip.handlers {
		if v, ok := h(tok.Text, ip.timezone); ok {
			return ip.compileOrRun(NewPushValueWord(tok.Text, v), tok)
		}
	}
	return &UnknownWordError{Name: tok.Text, Loc: tok.Loc}
}

func (ip *Interpreter) findWord(name string) (Word, bool) {
	for i := len(ip.moduleStack) - 1; i >= 0; i-- {
		if w, ok := findWordInModule(ip.moduleStack[i].module, name); ok {
			return w, true
		}
	}
	for i := len(ip.globalModules) - 1; i >= 0; i-- {
		if w, ok := ip.globalModules[i].FindWord(name); ok {
			return w, true
		}
	}
	return nil, false
}

// findWordInModule searches a module's own words, then its variables, then
// the exported words of modules it imported.
func findWordInModule(m *Module, name string) (Word, bool) {
	if w, ok := m.FindWord(name); ok {
		return w, true
	}
	if v, ok := m.FindVariable(name); ok {
		return NewPushValueWord(name, VariableVal(v)), true
	}
	for i := len(m.usings) - 1; i >= 0; i-- {
		if w, ok := m.usings[i].FindExportedWord(name); ok {
			return w, true
		}
	}
	return nil, false
}

// executeWordAt runs a top-level word, applying the recovery handler and
// attaching the call-site location to any failure.
func (ip *Interpreter) executeWordAt(w Word, loc CodeLocation) error {
	err := ip.executeWord(w)
	for attempt := 1; err != nil && ip.recovery != nil && attempt < ip.maxAttempts; attempt++ {
		if rerr := ip.recovery(ip, err); rerr != nil {
			break
		}
		err = ip.executeWord(w)
	}
	if err == nil {
		return nil
	}
	var wex *WordExecutionError
	if errors.As(err, &wex) {
		return err
	}
	return &WordExecutionError{
		WordName:   w.Name(),
		ModuleName: ip.CurModule().Name,
		Loc:        loc,
		Err:        err,
	}
}

// executeWord runs a word, counting it when profiling and consulting its
// per-word error handler on failure.
func (ip *Interpreter) executeWord(w Word) error {
	if ip.profiling {
		ip.wordCounts[w.Name()]++
	}
	err := w.Execute(ip)
	if err != nil {
		if h, ok := ip.wordHandlers[w.Name()]; ok {
			if herr := h(ip, err); herr == nil {
				return nil
			}
		}
	}
	return err
}

// closeArray collects values down to the matching "[" marker into an array.
func closeArray(ip *Interpreter) error {
	var items []Value
	for {
		v, err := ip.Pop()
		if err != nil {
			return &StackUnderflowError{Word: "]"}
		}
		if v.Tag == vtArrayOpen {
			break
		}
		items = append(items, v)
	}
	// items were popped top-first; reverse into push order
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	if items == nil {
		items = []Value{}
	}
	ip.Push(Arr(items))
	return nil
}

// DupInterpreter creates an interpreter sharing this one's global modules
// and module registry, with a deep copy of the operand stack and a fork of
// the app module, so the duplicate sees the original's definitions,
// variables and imports without being able to mutate them. The remote
// bridge uses this to give each request its own engine over shared
// read-only registries.
func (ip *Interpreter) DupInterpreter() *Interpreter {
	out := NewInterpreter()
	out.appModule = ip.appModule.Fork()
	out.moduleStack = []moduleScope{{module: out.appModule}}
	out.globalModules = ip.globalModules
	out.handlers = ip.handlers
	out.timezone = ip.timezone
	for name, m := range ip.registered {
		out.registered[name] = m
	}
	for _, v := range ip.stack {
		out.Push(DeepCopy(v))
	}
	return out
}
