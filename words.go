// words.go
//
// Word variants. Everything executable in Forthic is a Word: literals the
// compiler folds into definitions, user definitions, memoized definitions
// (and their ! / !@ refresh companions), native words bound through a
// declared stack effect, direct words that receive the interpreter, and
// prefixed wrappers installed by the pair form of USE-MODULES.
package forthic

import (
	"fmt"
	"strings"
)

// Word is a named executable unit.
type Word interface {
	Name() string
	Execute(ip *Interpreter) error
}

// ---- push-literal ------------------------------------------------------

// PushValueWord pushes a fixed value.
type PushValueWord struct {
	name string
	val  Value
}

func NewPushValueWord(name string, val Value) *PushValueWord {
	return &PushValueWord{name: name, val: val}
}

func (w *PushValueWord) Name() string { return w.name }

func (w *PushValueWord) Execute(ip *Interpreter) error {
	ip.Push(w.val)
	return nil
}

// ---- user definitions --------------------------------------------------

// DefinitionWord executes a compiled sequence of words.
type DefinitionWord struct {
	name  string
	words []Word
}

func NewDefinitionWord(name string) *DefinitionWord {
	return &DefinitionWord{name: name}
}

func (w *DefinitionWord) Name() string   { return w.name }
func (w *DefinitionWord) Add(inner Word) { w.words = append(w.words, inner) }
func (w *DefinitionWord) Words() []Word  { return w.words }

func (w *DefinitionWord) Execute(ip *Interpreter) error {
	for _, inner := range w.words {
		if err := ip.executeWord(inner); err != nil {
			return err
		}
	}
	return nil
}

// ---- memoized definitions ----------------------------------------------

// MemoWord runs its definition once and caches the single value it leaves
// on the stack; later calls push the cached value. Installing a MemoWord
// also installs NAME! (refresh, push nothing) and NAME!@ (refresh and
// push).
type MemoWord struct {
	name     string
	def      *DefinitionWord
	val      Value
	hasValue bool
}

func NewMemoWord(def *DefinitionWord) *MemoWord {
	return &MemoWord{name: def.Name(), def: def}
}

func (w *MemoWord) Name() string { return w.name }

func (w *MemoWord) Execute(ip *Interpreter) error {
	if !w.hasValue {
		if err := w.Refresh(ip); err != nil {
			return err
		}
	}
	ip.Push(w.val)
	return nil
}

// Refresh recomputes the cached value by running the definition and popping
// its result.
func (w *MemoWord) Refresh(ip *Interpreter) error {
	if err := w.def.Execute(ip); err != nil {
		return err
	}
	v, err := ip.Pop()
	if err != nil {
		return fmt.Errorf("memo word %s left no value: %w", w.name, err)
	}
	w.val = v
	w.hasValue = true
	return nil
}

// Reset drops the cached value so the next call recomputes.
func (w *MemoWord) Reset() { w.hasValue = false; w.val = Null }

// MemoRefreshWord is the NAME! companion of a MemoWord.
type MemoRefreshWord struct {
	memo *MemoWord
	push bool
}

func (w *MemoRefreshWord) Name() string {
	if w.push {
		return w.memo.Name() + "!@"
	}
	return w.memo.Name() + "!"
}

func (w *MemoRefreshWord) Execute(ip *Interpreter) error {
	if err := w.memo.Refresh(ip); err != nil {
		return err
	}
	if w.push {
		ip.Push(w.memo.val)
	}
	return nil
}

// ---- native words ------------------------------------------------------

// WordOptions holds keyword options popped by native words that declare
// them. Built by the ~> word from a flat [.key value ...] array.
type WordOptions struct {
	rec *RecordObject
}

func NewWordOptions() *WordOptions {
	return &WordOptions{rec: NewRecordObject()}
}

// WordOptionsFromPairs builds options from a flat array alternating string
// keys and values.
func WordOptionsFromPairs(items []Value) (*WordOptions, error) {
	if len(items)%2 != 0 {
		return nil, &OptionsError{Msg: fmt.Sprintf("expected key/value pairs, got %d items", len(items))}
	}
	opts := NewWordOptions()
	for i := 0; i < len(items); i += 2 {
		if items[i].Tag != VTStr {
			return nil, &OptionsError{Msg: fmt.Sprintf("option key must be a string, got %s", TagName(items[i].Tag))}
		}
		opts.rec.Set(items[i].Data.(string), items[i+1])
	}
	return opts, nil
}

func (o *WordOptions) Get(key string) (Value, bool) { return o.rec.Get(key) }

// GetOr returns the option value or def when absent or null.
func (o *WordOptions) GetOr(key string, def Value) Value {
	v, ok := o.rec.Get(key)
	if !ok || v.Tag == VTNull {
		return def
	}
	return v
}

func (o *WordOptions) Has(key string) bool { _, ok := o.rec.Get(key); return ok }
func (o *WordOptions) Len() int            { return o.rec.Len() }

func OptionsVal(o *WordOptions) Value { return Value{Tag: VTOptions, Data: o} }

// NativeFn implements a native word. args holds the declared inputs in
// left-to-right stack-effect order (args[0] was pushed earliest). opts is
// never nil for words that declare options; it is empty when the caller
// supplied none. A nil result pushes nothing.
type NativeFn func(ip *Interpreter, args []Value, opts *WordOptions) (*Value, error)

// NativeWord binds a Go function to a declared stack effect such as
//
//	"( items fn -- result )"
//	"( record key [options] -- value )"
//
// Inputs left of "--" give the argument count; a bracketed [options] input
// marks the word as options-aware: if the value on top of the stack is an
// options value it is consumed, otherwise empty options are supplied.
type NativeWord struct {
	name        string
	stackEffect string
	doc         string
	inputCount  int
	hasOptions  bool
	fn          NativeFn
}

func NewNativeWord(name, stackEffect, doc string, fn NativeFn) (*NativeWord, error) {
	inputs, hasOptions, err := parseStackEffect(stackEffect)
	if err != nil {
		return nil, fmt.Errorf("word %s: %w", name, err)
	}
	return &NativeWord{
		name:        name,
		stackEffect: stackEffect,
		doc:         doc,
		inputCount:  inputs,
		hasOptions:  hasOptions,
		fn:          fn,
	}, nil
}

// mustNativeWord panics on a malformed stack effect; used only from builtin
// registration where the effect strings are literals.
func mustNativeWord(name, stackEffect, doc string, fn NativeFn) *NativeWord {
	w, err := NewNativeWord(name, stackEffect, doc, fn)
	if err != nil {
		panic(err)
	}
	return w
}

func (w *NativeWord) Name() string        { return w.name }
func (w *NativeWord) StackEffect() string { return w.stackEffect }
func (w *NativeWord) Doc() string         { return w.doc }

func (w *NativeWord) Execute(ip *Interpreter) error {
	opts := NewWordOptions()
	if w.hasOptions {
		if top, ok := ip.Peek(); ok && top.Tag == VTOptions {
			v, _ := ip.Pop()
			opts = v.Data.(*WordOptions)
		}
	}
	args := make([]Value, w.inputCount)
	for i := w.inputCount - 1; i >= 0; i-- {
		v, err := ip.Pop()
		if err != nil {
			return &StackUnderflowError{Word: w.name}
		}
		args[i] = v
	}
	res, err := w.fn(ip, args, opts)
	if err != nil {
		return err
	}
	if res != nil {
		ip.Push(*res)
	}
	return nil
}

// parseStackEffect counts the inputs declared left of "--" in a stack
// effect comment. A "[...]" input flags keyword options and is not counted.
func parseStackEffect(effect string) (inputs int, hasOptions bool, err error) {
	s := strings.TrimSpace(effect)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	parts := strings.Split(s, "--")
	if len(parts) != 2 {
		return 0, false, fmt.Errorf("stack effect %q must contain exactly one \"--\"", effect)
	}
	for _, field := range strings.Fields(parts[0]) {
		if strings.HasPrefix(field, "[") {
			hasOptions = true
			continue
		}
		inputs++
	}
	return inputs, hasOptions, nil
}

// ---- direct words ------------------------------------------------------

// DirectWord manipulates the interpreter itself (module stack, profiling,
// nested interpretation). It bypasses the stack-effect machinery.
type DirectWord struct {
	name string
	doc  string
	fn   func(ip *Interpreter) error
}

func NewDirectWord(name, doc string, fn func(ip *Interpreter) error) *DirectWord {
	return &DirectWord{name: name, doc: doc, fn: fn}
}

func (w *DirectWord) Name() string { return w.name }
func (w *DirectWord) Doc() string  { return w.doc }

func (w *DirectWord) Execute(ip *Interpreter) error { return w.fn(ip) }

// ---- prefixed imports --------------------------------------------------

// ImportedWord wraps a word from another module under a prefixed name. It
// runs the target with its home module pushed so the target's own words
// resolve.
type ImportedWord struct {
	name   string
	target Word
	home   *Module
}

func NewImportedWord(prefix string, target Word, home *Module) *ImportedWord {
	name := target.Name()
	if prefix != "" {
		name = prefix + "." + name
	}
	return &ImportedWord{name: name, target: target, home: home}
}

func (w *ImportedWord) Name() string { return w.name }

func (w *ImportedWord) Execute(ip *Interpreter) error {
	ip.pushModuleScope(moduleScope{module: w.home})
	defer ip.popModuleScope()
	return w.target.Execute(ip)
}
